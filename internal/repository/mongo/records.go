package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hollis/supportdesk/internal/domain"
)

// RecordStore is the typed read/query surface over the document store.
type RecordStore struct {
	store *Store
}

var _ domain.RecordStore = (*RecordStore)(nil)

func NewRecordStore(store *Store) *RecordStore {
	return &RecordStore{store: store}
}

func (r *RecordStore) GetByID(ctx context.Context, collection, id string, out any) error {
	err := r.store.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	if err != nil {
		return classify(fmt.Errorf("get %s/%s: %w", collection, id, err))
	}
	return nil
}

func (r *RecordStore) QueryByField(ctx context.Context, collection, field string, value any, out any) error {
	cur, err := r.store.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return classify(fmt.Errorf("query %s by %s: %w", collection, field, err))
	}
	if err := cur.All(ctx, out); err != nil {
		return classify(fmt.Errorf("decode %s results: %w", collection, err))
	}
	return nil
}

// NearestNeighbors runs an Atlas $vectorSearch aggregation. A command
// error naming the search index maps to ErrIndexUnavailable so the
// retrieval engine can switch to the fallback scan.
func (r *RecordStore) NearestNeighbors(ctx context.Context, collection, vectorField string, queryVec []float32, k int, filter domain.RecordFilter) ([]domain.ScoredRecord, error) {
	searchStage := bson.M{
		"index":         r.store.vectorIndex,
		"path":          vectorField,
		"queryVector":   queryVec,
		"numCandidates": k * 20,
		"limit":         k,
	}
	if pre := preFilter(filter); len(pre) > 0 {
		searchStage["filter"] = pre
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: searchStage}},
		{{Key: "$addFields", Value: bson.M{"similarity_score": bson.M{"$meta": "vectorSearchScore"}}}},
		{{Key: "$project", Value: bson.M{vectorField: 0}}},
	}

	cur, err := r.store.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		if isIndexUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		return nil, classify(fmt.Errorf("vector search on %s: %w", collection, err))
	}

	var rows []struct {
		domain.Product `bson:",inline"`
		Score          float64 `bson:"similarity_score"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, classify(fmt.Errorf("decode vector results: %w", err))
	}

	records := make([]domain.ScoredRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.ScoredRecord{
			ID:      row.Product.ID,
			Score:   row.Score,
			Product: row.Product,
		})
	}
	return records, nil
}

func (r *RecordStore) ListProducts(ctx context.Context, filter domain.RecordFilter) ([]domain.Product, error) {
	query := bson.M{}
	if filter.MaxPrice > 0 {
		query["price"] = bson.M{"$lte": filter.MaxPrice}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	cur, err := r.store.db.Collection(domain.CollectionProducts).Find(ctx, query)
	if err != nil {
		return nil, classify(fmt.Errorf("list products: %w", err))
	}

	var products []domain.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, classify(fmt.Errorf("decode products: %w", err))
	}
	return products, nil
}

func (r *RecordStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	res, err := r.store.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": patch})
	if err != nil {
		return classify(fmt.Errorf("update %s/%s: %w", collection, id, err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	return nil
}

// Replace upserts a full document by id. Used by the seeder so reruns
// are idempotent.
func (r *RecordStore) Replace(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.store.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return classify(fmt.Errorf("replace %s/%s: %w", collection, id, err))
	}
	return nil
}

func (r *RecordStore) Insert(ctx context.Context, collection string, doc any) error {
	if _, err := r.store.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return classify(fmt.Errorf("insert into %s: %w", collection, err))
	}
	return nil
}

// preFilter builds the $vectorSearch pre-filter from the structured
// filters. Filtered fields must be covered by the search index definition.
func preFilter(filter domain.RecordFilter) bson.M {
	pre := bson.M{}
	if filter.MaxPrice > 0 {
		pre["price"] = bson.M{"$lte": filter.MaxPrice}
	}
	if filter.Category != "" {
		pre["category"] = filter.Category
	}
	return pre
}

// isIndexUnavailable distinguishes a missing/misconfigured vector index
// from generic aggregation failures.
func isIndexUnavailable(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		msg := strings.ToLower(cmdErr.Message)
		if strings.Contains(msg, "vectorsearch") || strings.Contains(msg, "search index") {
			return true
		}
		// Unrecognized pipeline stage: the deployment has no vector
		// search capability at all.
		if cmdErr.Code == 40324 {
			return true
		}
	}
	return false
}

// classify tags connection-level failures as transient so callers retry
// them with backoff.
func classify(err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return domain.Transient(err)
	}
	return err
}
