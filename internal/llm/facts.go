package llm

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hollis/supportdesk/internal/domain"
)

type rawFact struct {
	Topic      string  `json:"topic"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ParseFacts decodes extractor output into memory entries. Markdown code
// fences around the JSON are tolerated; facts with an unknown topic or
// empty text are dropped rather than failing the batch.
func ParseFacts(content, userID, conversationID string) ([]domain.MemoryEntry, error) {
	content = stripCodeFence(content)

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, nil // no array present, nothing extracted
	}

	var raw []rawFact
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]domain.MemoryEntry, 0, len(raw))
	for _, f := range raw {
		topic := domain.MemoryTopic(strings.ToUpper(strings.TrimSpace(f.Topic)))
		if topic != domain.TopicPreference && topic != domain.TopicIssueHistory {
			continue
		}
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		confidence := f.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.5
		}
		entries = append(entries, domain.MemoryEntry{
			UserID:     userID,
			Topic:      topic,
			Text:       text,
			DedupHash:  domain.DedupHash(text),
			Confidence: confidence,
			SourceConv: conversationID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return entries, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return content
}
