// Package llm defines the contracts for the opaque language-model
// collaborators: intent classification, reply generation, fact extraction
// and text embeddings. The core never depends on a concrete provider.
package llm

import (
	"context"

	"github.com/hollis/supportdesk/internal/domain"
)

// Classifier maps an inbound message, in the context of a bounded window
// of prior turns, onto the closed route label set.
type Classifier interface {
	Classify(ctx context.Context, history []domain.Turn, message string) (domain.RouteLabel, error)
}

// Generator produces reply text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FactExtractor pulls durable user facts from a completed turn.
type FactExtractor interface {
	ExtractFacts(ctx context.Context, userID string, turn domain.Turn) ([]domain.MemoryEntry, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
