// Package retrieval implements semantic product search: a native vector
// index query with a deterministic brute-force cosine fallback.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
)

// Engine embeds a query, tries the store's nearest-neighbor index and
// falls back to a full cosine scan when the index is unavailable or, if
// configured, when it returns nothing.
type Engine struct {
	store    domain.RecordStore
	embedder llm.Embedder
	cfg      config.RetrievalConfig
}

func NewEngine(store domain.RecordStore, embedder llm.Embedder, cfg config.RetrievalConfig) *Engine {
	return &Engine{store: store, embedder: embedder, cfg: cfg}
}

// Search runs a retrieval query. Zero matching candidates is an empty
// result, not an error; an empty query text is ErrInvalidInput.
func (e *Engine) Search(ctx context.Context, q domain.RetrievalQuery) (*domain.RetrievalResult, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query text", domain.ErrInvalidInput)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	filter := domain.RecordFilter{MaxPrice: q.MaxPrice, Category: q.Category}

	records, err := e.store.NearestNeighbors(ctx, domain.CollectionProducts, "embedding", vec, limit, filter)
	switch {
	case errors.Is(err, domain.ErrIndexUnavailable):
		// Recovered locally; the caller never sees this.
		log.Warn().Str("query", text).Msg("vector index unavailable, using fallback scan")
		return e.fallback(ctx, vec, filter, limit)
	case err != nil:
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	case len(records) == 0 && e.cfg.FallbackOnEmpty:
		log.Debug().Str("query", text).Msg("index returned zero results, using fallback scan")
		return e.fallback(ctx, vec, filter, limit)
	}

	sortRecords(records)
	return &domain.RetrievalResult{Records: records}, nil
}

// fallback scans every candidate passing the structured filters and ranks
// by cosine similarity. O(candidates), and the deterministic reference
// for the index path.
func (e *Engine) fallback(ctx context.Context, queryVec []float32, filter domain.RecordFilter, limit int) (*domain.RetrievalResult, error) {
	products, err := e.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	scored := make([]domain.ScoredRecord, 0, len(products))
	for _, p := range products {
		// Records without an embedding are excluded, never scored zero.
		if len(p.Embedding) == 0 {
			continue
		}
		score, ok := Cosine(queryVec, p.Embedding)
		if !ok {
			continue
		}
		p.Embedding = nil
		scored = append(scored, domain.ScoredRecord{ID: p.ID, Score: score, Product: p})
	}

	sortRecords(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return &domain.RetrievalResult{Records: scored, Fallback: true}, nil
}

// sortRecords orders by score descending, ties by record id ascending.
func sortRecords(records []domain.ScoredRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].ID < records[j].ID
	})
}
