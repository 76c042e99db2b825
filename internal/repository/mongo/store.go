// Package mongo implements the record store adapter and the conversation
// and memory repositories on the MongoDB document store.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hollis/supportdesk/internal/config"
)

// Store wraps the Mongo client and database handle shared by the
// repositories. The connection pool is process-wide and safe for
// concurrent use.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	vectorIndex string
}

func NewStore(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		clientOpts.SetConnectTimeout(cfg.Timeout)
		clientOpts.SetServerSelectionTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &Store{
		client:      client,
		db:          client.Database(cfg.Database),
		vectorIndex: cfg.VectorIndex,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}
