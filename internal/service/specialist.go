package service

import (
	"context"
	"time"

	"github.com/hollis/supportdesk/internal/domain"
)

// TurnRequest carries everything a specialist needs for one turn: the
// message, the conversation-scoped session state (mutable), long-lived
// user memory from prior turns, and the tool recorder.
type TurnRequest struct {
	ConversationID string
	UserID         string
	Message        string
	Session        domain.SessionStore
	Memories       []domain.MemoryEntry
	Tools          *ToolRecorder
}

// Specialist is a domain-scoped handler invoked by the coordinator.
type Specialist interface {
	Handle(ctx context.Context, req *TurnRequest) (string, error)
}

// ToolRecorder collects tool invocation records for the turn transcript.
type ToolRecorder struct {
	invocations []domain.ToolInvocation
}

func NewToolRecorder() *ToolRecorder {
	return &ToolRecorder{}
}

// Record runs fn and records its name, input, output, duration and
// success flag. The output (or error text) is returned unchanged.
func (r *ToolRecorder) Record(name, input string, fn func() (string, error)) (string, error) {
	start := time.Now()
	output, err := fn()

	inv := domain.ToolInvocation{
		Name:     name,
		Input:    input,
		Duration: time.Since(start),
		Success:  err == nil,
	}
	if err != nil {
		inv.Output = err.Error()
	} else {
		inv.Output = output
	}
	r.invocations = append(r.invocations, inv)

	return output, err
}

// Invocations returns the recorded invocations in call order.
func (r *ToolRecorder) Invocations() []domain.ToolInvocation {
	return r.invocations
}
