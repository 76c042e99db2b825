package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
	"github.com/hollis/supportdesk/internal/retrieval"
)

var (
	productIDPattern = regexp.MustCompile(`\bPROD-\d+\b`)

	// "under $600", "below 500", "less than $1000", "cheaper than 300",
	// "max $750"
	maxPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)under\s*\$?(\d+)`),
		regexp.MustCompile(`(?i)below\s*\$?(\d+)`),
		regexp.MustCompile(`(?i)less than\s*\$?(\d+)`),
		regexp.MustCompile(`(?i)cheaper than\s*\$?(\d+)`),
		regexp.MustCompile(`(?i)max(?:imum)?\s*\$?(\d+)`),
	}

	followUpPattern = regexp.MustCompile(`(?i)\b(that one|that|it|them|those|these|more|details?|all of them)\b`)
)

// ProductSpecialist handles product search, details, inventory and
// reviews. It keeps the last search and last discussed product in session
// state so follow-ups like "tell me more about that one" resolve.
type ProductSpecialist struct {
	engine    *retrieval.Engine
	store     domain.RecordStore
	generator llm.Generator
}

func NewProductSpecialist(engine *retrieval.Engine, store domain.RecordStore, generator llm.Generator) *ProductSpecialist {
	return &ProductSpecialist{engine: engine, store: store, generator: generator}
}

func (s *ProductSpecialist) Handle(ctx context.Context, req *TurnRequest) (string, error) {
	// An explicit product id beats everything else.
	if id := productIDPattern.FindString(req.Message); id != "" {
		return s.describeProducts(ctx, req, []string{id})
	}

	if s.isFollowUp(req.Message) {
		return s.handleFollowUp(ctx, req)
	}

	return s.search(ctx, req)
}

func (s *ProductSpecialist) search(ctx context.Context, req *TurnRequest) (string, error) {
	query := domain.RetrievalQuery{
		Text:     req.Message,
		MaxPrice: ParseMaxPrice(req.Message),
	}

	out, err := req.Tools.Record("search_products", req.Message, func() (string, error) {
		result, err := s.engine.Search(ctx, query)
		if err != nil {
			return "", err
		}
		data, _ := json.Marshal(result.Records)
		return string(data), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return "Could you tell me a bit more about what you're looking for?", nil
		}
		return "", err
	}

	var records []domain.ScoredRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		return "", fmt.Errorf("decode search output: %w", err)
	}

	if len(records) == 0 {
		return fmt.Sprintf("I couldn't find any products matching %q. Could you try different words?", req.Message), nil
	}

	s.rememberSearch(ctx, req, records)

	return s.compose(ctx, req,
		"Present the matching products with names and prices, best match first.",
		[]string{out},
		renderProducts(records))
}

func (s *ProductSpecialist) handleFollowUp(ctx context.Context, req *TurnRequest) (string, error) {
	lower := strings.ToLower(req.Message)

	// "all of them" refers to the whole last result set.
	if strings.Contains(lower, "all") || strings.Contains(lower, "them") || strings.Contains(lower, "those") {
		raw, ok, err := req.Session.Get(ctx, req.ConversationID, domain.StateLastSearchIDs)
		if err != nil {
			return "", err
		}
		if ok && raw != "" {
			return s.describeProducts(ctx, req, strings.Split(raw, ","))
		}
	}

	id, ok, err := req.Session.Get(ctx, req.ConversationID, domain.StateLastProductID)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		// Nothing to resolve the pronoun against: ask, don't error.
		return "I'm not sure which product you mean. Could you tell me its name or product ID?", nil
	}
	return s.describeProducts(ctx, req, []string{id})
}

func (s *ProductSpecialist) describeProducts(ctx context.Context, req *TurnRequest, ids []string) (string, error) {
	var outputs []string
	var plain strings.Builder

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		out, err := req.Tools.Record("get_product_details", id, func() (string, error) {
			var product domain.Product
			if err := s.store.GetByID(ctx, domain.CollectionProducts, id, &product); err != nil {
				return "", err
			}
			product.Embedding = nil

			detail := map[string]any{"product": product}
			var inv domain.Inventory
			if err := s.store.GetByID(ctx, domain.CollectionInventory, id, &inv); err == nil {
				detail["inventory"] = inv
			}
			var reviews domain.ReviewSummary
			if err := s.store.GetByID(ctx, domain.CollectionReviews, id, &reviews); err == nil {
				detail["reviews"] = reviews
			}

			data, _ := json.Marshal(detail)
			return string(data), nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Sprintf("I couldn't find a product with ID %s.", id), nil
			}
			return "", err
		}

		outputs = append(outputs, out)
		fmt.Fprintf(&plain, "Details for %s:\n%s\n", id, out)
	}

	if len(outputs) == 0 {
		return "I'm not sure which product you mean. Could you tell me its name or product ID?", nil
	}

	if len(ids) == 1 {
		s.rememberProduct(ctx, req, ids[0], "")
	}

	return s.compose(ctx, req,
		"Summarize the product details, stock and reviews for the customer.",
		outputs,
		plain.String())
}

// compose asks the generator for a grounded reply and falls back to the
// deterministic rendering when generation fails.
func (s *ProductSpecialist) compose(ctx context.Context, req *TurnRequest, instruction string, outputs []string, fallback string) (string, error) {
	if facts := renderMemories(req.Memories); facts != "" {
		outputs = append(outputs, facts)
	}

	reply, err := s.generator.Generate(ctx, llm.BuildReplyPrompt(instruction, req.Message, outputs))
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Warn().Err(err).Msg("reply generation failed, using plain rendering")
		return fallback, nil
	}
	return reply, nil
}

func (s *ProductSpecialist) rememberSearch(ctx context.Context, req *TurnRequest, records []domain.ScoredRecord) {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}

	s.rememberProduct(ctx, req, records[0].ID, records[0].Product.Name)
	s.setState(ctx, req, domain.StateLastSearchIDs, strings.Join(ids, ","))
	s.setState(ctx, req, domain.StateLastSearchQuery, req.Message)
}

func (s *ProductSpecialist) rememberProduct(ctx context.Context, req *TurnRequest, id, name string) {
	s.setState(ctx, req, domain.StateLastProductID, id)
	if name != "" {
		s.setState(ctx, req, domain.StateLastProductName, name)
	}
}

func (s *ProductSpecialist) setState(ctx context.Context, req *TurnRequest, key, value string) {
	if err := req.Session.Set(ctx, req.ConversationID, key, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write session state")
	}
}

func (s *ProductSpecialist) isFollowUp(message string) bool {
	// A follow-up leans on prior context instead of naming a product.
	words := strings.Fields(message)
	return followUpPattern.MatchString(message) && len(words) <= 8
}

// ParseMaxPrice extracts a maximum price constraint from free text.
// Returns 0 when the text carries none.
func ParseMaxPrice(text string) float64 {
	for _, p := range maxPricePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if price, err := strconv.ParseFloat(m[1], 64); err == nil {
				return price
			}
		}
	}
	return 0
}

func renderProducts(records []domain.ScoredRecord) string {
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for _, r := range records {
		fmt.Fprintf(&b, "- %s (%s): $%.2f\n", r.Product.Name, r.ID, r.Product.Price)
	}
	return b.String()
}

func renderMemories(memories []domain.MemoryEntry) string {
	if len(memories) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Known customer facts from earlier conversations:\n")
	for _, m := range memories {
		fmt.Fprintf(&b, "- [%s] %s\n", m.Topic, m.Text)
	}
	return b.String()
}
