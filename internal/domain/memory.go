package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MemoryTopic classifies a durable user fact.
type MemoryTopic string

const (
	TopicPreference   MemoryTopic = "PREFERENCE"
	TopicIssueHistory MemoryTopic = "ISSUE_HISTORY"
)

// MemoryEntry is a durable fact about a user, extracted asynchronously
// from finished turns. Entries are keyed by (user id, topic, dedup hash of
// the normalized text): repeated extraction updates confidence and
// timestamp instead of duplicating.
type MemoryEntry struct {
	UserID     string      `json:"user_id" bson:"user_id"`
	Topic      MemoryTopic `json:"topic" bson:"topic"`
	Text       string      `json:"text" bson:"text"`
	DedupHash  string      `json:"dedup_hash" bson:"dedup_hash"`
	Confidence float64     `json:"confidence" bson:"confidence"`
	SourceConv string      `json:"source_conversation_id" bson:"source_conversation_id"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" bson:"updated_at"`
}

// NormalizeFact lowercases a fact and collapses runs of whitespace so
// trivially restated facts dedup to the same entry.
func NormalizeFact(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// DedupHash returns the dedup key component for a fact text.
func DedupHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeFact(text)))
	return hex.EncodeToString(sum[:])
}

// MemoryRepository persists long-lived user memory.
type MemoryRepository interface {
	// Upsert inserts the entry, or on a (user, topic, hash) match updates
	// confidence and UpdatedAt on the existing entry.
	Upsert(ctx context.Context, entry *MemoryEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]MemoryEntry, error)
}
