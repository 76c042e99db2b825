package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hollis/supportdesk/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps per-conversation ephemeral state in a Redis hash.
// No TTL: state lives until the conversation is explicitly deleted.
type SessionStore struct {
	client *Client
}

var _ domain.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(conversationID string) string {
	return fmt.Sprintf("%s%s", sessionPrefix, conversationID)
}

func (s *SessionStore) Get(ctx context.Context, conversationID, key string) (string, bool, error) {
	val, err := s.client.rdb.HGet(ctx, s.key(conversationID), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.Transient(fmt.Errorf("session get: %w", err))
	}
	return val, true, nil
}

func (s *SessionStore) Set(ctx context.Context, conversationID, key, value string) error {
	if err := s.client.rdb.HSet(ctx, s.key(conversationID), key, value).Err(); err != nil {
		return domain.Transient(fmt.Errorf("session set: %w", err))
	}
	return nil
}

func (s *SessionStore) Keys(ctx context.Context, conversationID string) ([]string, error) {
	keys, err := s.client.rdb.HKeys(ctx, s.key(conversationID)).Result()
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("session keys: %w", err))
	}
	return keys, nil
}

func (s *SessionStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.client.rdb.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return domain.Transient(fmt.Errorf("session clear: %w", err))
	}
	return nil
}
