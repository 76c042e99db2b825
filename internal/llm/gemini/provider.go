package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
)

// Provider implements the classifier, generator, fact-extractor and
// embedder contracts on top of the Gemini API.
type Provider struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		client:         client,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) Classify(ctx context.Context, history []domain.Turn, message string) (domain.RouteLabel, error) {
	out, err := p.generate(ctx, llm.BuildClassifyPrompt(history, message), 0)
	if err != nil {
		return domain.RouteUnknown, err
	}
	return llm.ParseLabel(out), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.generate(ctx, prompt, 0.4)
}

func (p *Provider) ExtractFacts(ctx context.Context, userID string, turn domain.Turn) ([]domain.MemoryEntry, error) {
	out, err := p.generate(ctx, llm.BuildExtractPrompt(turn), 0)
	if err != nil {
		return nil, err
	}
	return llm.ParseFacts(out, userID, "")
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	em := p.client.EmbeddingModel(p.embeddingModel)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		// Embedding calls fail on rate limits and connection issues;
		// both are worth a retry.
		return nil, domain.Transient(fmt.Errorf("gemini embedding: %w", err))
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from gemini")
	}
	return resp.Embedding.Values, nil
}

func (p *Provider) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.Temperature = &temperature

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", domain.Transient(fmt.Errorf("gemini generation: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}
	return output, nil
}
