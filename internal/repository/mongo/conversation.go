package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hollis/supportdesk/internal/domain"
)

const collectionConversations = "conversations"

// ConversationRepository persists conversations and their turns.
type ConversationRepository struct {
	store *Store
}

var _ domain.ConversationRepository = (*ConversationRepository)(nil)

func NewConversationRepository(store *Store) *ConversationRepository {
	return &ConversationRepository{store: store}
}

func (r *ConversationRepository) coll() *mongo.Collection {
	return r.store.db.Collection(collectionConversations)
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	doc := bson.M{
		"_id":        conv.ID,
		"user_id":    conv.UserID,
		"turns":      []domain.Turn{},
		"next_seq":   int64(1),
		"created_at": conv.CreatedAt,
		"updated_at": conv.UpdatedAt,
	}
	if _, err := r.coll().InsertOne(ctx, doc); err != nil {
		return classify(fmt.Errorf("create conversation: %w", err))
	}
	return nil
}

func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: conversation %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("get conversation: %w", err))
	}
	return &conv, nil
}

// AppendTurn claims the next sequence number and pushes the turn. Writers
// for the same conversation are serialized by the coordinator, and the
// $inc keeps the sequence monotonic regardless.
func (r *ConversationRepository) AppendTurn(ctx context.Context, id string, turn *domain.Turn) error {
	var claimed struct {
		NextSeq int64 `bson:"next_seq"`
	}
	err := r.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"next_seq": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before).
			SetProjection(bson.M{"next_seq": 1}),
	).Decode(&claimed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: conversation %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return classify(fmt.Errorf("claim turn seq: %w", err))
	}

	turn.Seq = claimed.NextSeq
	_, err = r.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"turns": turn},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return classify(fmt.Errorf("append turn: %w", err))
	}
	return nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(fmt.Errorf("delete conversation: %w", err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: conversation %s", domain.ErrNotFound, id)
	}
	return nil
}
