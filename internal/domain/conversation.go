package domain

import (
	"context"
	"time"
)

// MessageRole identifies the sender of a turn half.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ToolInvocation records one tool call made while producing a reply.
type ToolInvocation struct {
	Name     string        `json:"name" bson:"name"`
	Input    string        `json:"input" bson:"input"`
	Output   string        `json:"output" bson:"output"`
	Duration time.Duration `json:"duration" bson:"duration"`
	Success  bool          `json:"success" bson:"success"`
}

// Turn is one user message plus the assistant reply it produced, with any
// tool invocations made along the way. Seq is strictly monotonic within a
// conversation.
type Turn struct {
	Seq         int64            `json:"seq" bson:"seq"`
	UserText    string           `json:"user_text" bson:"user_text"`
	ReplyText   string           `json:"reply_text" bson:"reply_text"`
	Route       RouteLabel       `json:"route" bson:"route"`
	Tools       []ToolInvocation `json:"tools,omitempty" bson:"tools,omitempty"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	CompletedAt time.Time        `json:"completed_at" bson:"completed_at"`
}

// Conversation owns an ordered sequence of turns. UserID is empty for
// anonymous conversations.
type Conversation struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Turns     []Turn    `json:"turns" bson:"turns"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Reply is what the coordinator hands back for an inbound message.
type Reply struct {
	ConversationID string     `json:"conversation_id"`
	Text           string     `json:"reply"`
	Route          RouteLabel `json:"route"`
}

// ConversationRepository persists conversations and their turns.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, id string) (*Conversation, error)
	// AppendTurn atomically appends a turn with the next sequence number.
	AppendTurn(ctx context.Context, id string, turn *Turn) error
	Delete(ctx context.Context, id string) error
}
