package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hollis/supportdesk/internal/domain"
)

const collectionMemories = "memories"

// MemoryRepository persists long-lived user memory, keyed by
// (user id, topic, dedup hash).
type MemoryRepository struct {
	store *Store
}

var _ domain.MemoryRepository = (*MemoryRepository)(nil)

func NewMemoryRepository(store *Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

// Upsert inserts a new fact, or refreshes confidence and UpdatedAt on an
// existing one. Never duplicates a (user, topic, normalized text) entry.
func (r *MemoryRepository) Upsert(ctx context.Context, entry *domain.MemoryEntry) error {
	filter := bson.M{
		"user_id":    entry.UserID,
		"topic":      entry.Topic,
		"dedup_hash": entry.DedupHash,
	}
	update := bson.M{
		"$set": bson.M{
			"confidence": entry.Confidence,
			"updated_at": entry.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"text":                   entry.Text,
			"source_conversation_id": entry.SourceConv,
			"created_at":             entry.CreatedAt,
		},
	}

	_, err := r.store.db.Collection(collectionMemories).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return classify(fmt.Errorf("upsert memory: %w", err))
	}
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.MemoryEntry, error) {
	opts := options.Find().SetSort(bson.M{"updated_at": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.store.db.Collection(collectionMemories).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, classify(fmt.Errorf("list memories: %w", err))
	}

	var entries []domain.MemoryEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, classify(fmt.Errorf("decode memories: %w", err))
	}
	return entries, nil
}
