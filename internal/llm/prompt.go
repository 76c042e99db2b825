package llm

import (
	"fmt"
	"strings"

	"github.com/hollis/supportdesk/internal/domain"
)

// BuildClassifyPrompt creates the intent classification prompt.
func BuildClassifyPrompt(history []domain.Turn, message string) string {
	var b strings.Builder
	b.WriteString(`You are an intent classifier for a customer support system.
Classify the customer's latest message into exactly one label:

PRODUCT - product search, details, inventory, reviews
ORDER   - order tracking, delivery status, order history
BILLING - invoices, payments
REFUND  - refund requests
UNKNOWN - anything else, or too ambiguous to tell

Reply with the label only, no explanation.
`)

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "customer: %s\nagent: %s\n", t.UserText, t.ReplyText)
		}
	}

	fmt.Fprintf(&b, "\nLatest message: %s\n\nLabel:", message)
	return b.String()
}

// BuildReplyPrompt creates a grounded reply-generation prompt. The tool
// outputs are the only facts the model may use.
func BuildReplyPrompt(instruction, message string, toolOutputs []string) string {
	var b strings.Builder
	b.WriteString("You are a helpful customer support agent. ")
	b.WriteString(instruction)
	b.WriteString("\nAnswer only from the data below. If it does not contain the answer, say so plainly.\n")

	for i, out := range toolOutputs {
		fmt.Fprintf(&b, "\nData %d:\n%s\n", i+1, out)
	}

	fmt.Fprintf(&b, "\nCustomer message: %s\n\nReply:", message)
	return b.String()
}

// BuildExtractPrompt creates the fact-extraction prompt for the memory
// consolidation worker. The model must answer with a JSON array.
func BuildExtractPrompt(turn domain.Turn) string {
	return fmt.Sprintf(`Extract durable facts about the customer from this support exchange.
Only include facts worth remembering across conversations, such as stated
preferences or recurring issues. Skip one-off requests.

Answer with a JSON array, possibly empty:
[{"topic": "PREFERENCE" | "ISSUE_HISTORY", "text": "...", "confidence": 0.0-1.0}]

customer: %s
agent: %s

JSON:`, turn.UserText, turn.ReplyText)
}

// ParseLabel extracts a route label from classifier output. Output that
// does not name a known label collapses to UNKNOWN.
func ParseLabel(content string) domain.RouteLabel {
	content = strings.ToUpper(strings.TrimSpace(content))
	// Models occasionally wrap the label in prose; take the first token
	// that matches.
	for _, field := range strings.FieldsFunc(content, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '.' || r == ':' || r == '"' || r == '`' || r == '*'
	}) {
		if label := domain.ParseRouteLabel(field); label != domain.RouteUnknown {
			return label
		}
	}
	return domain.RouteUnknown
}
