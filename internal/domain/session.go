package domain

import "context"

// Session state keys written by specialists and read back on later turns
// of the same conversation.
const (
	StateLastProductID   = "last_product_id"
	StateLastProductName = "last_product_name"
	StateLastSearchIDs   = "last_search_ids"
	StateLastSearchQuery = "last_search_query"
)

// SessionStore is per-conversation ephemeral key/value state. Values are
// never visible across conversations and have no TTL within a live
// conversation; Clear removes everything when the conversation ends.
type SessionStore interface {
	Get(ctx context.Context, conversationID, key string) (string, bool, error)
	Set(ctx context.Context, conversationID, key, value string) error
	Keys(ctx context.Context, conversationID string) ([]string, error)
	Clear(ctx context.Context, conversationID string) error
}
