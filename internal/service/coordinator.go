package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
)

const (
	clarifyReply = "I'm sorry, I'm not sure what you need. I can help with product questions, order tracking, billing and refunds - which is it?"
	apologyReply = "I'm sorry, something went wrong on our side. Please try again in a moment."
)

// Coordinator routes inbound messages to specialists, owns the turn
// lifecycle and schedules memory consolidation. One invocation per
// message; same-conversation invocations serialize on a per-conversation
// lock.
type Coordinator struct {
	classifier    llm.Classifier
	specialists   map[domain.RouteLabel]Specialist
	conversations domain.ConversationRepository
	session       domain.SessionStore
	memories      domain.MemoryRepository
	consolidator  *Consolidator
	cfg           config.RouterConfig

	locks conversationLocks
}

func NewCoordinator(
	classifier llm.Classifier,
	specialists map[domain.RouteLabel]Specialist,
	conversations domain.ConversationRepository,
	session domain.SessionStore,
	memories domain.MemoryRepository,
	consolidator *Consolidator,
	cfg config.RouterConfig,
) *Coordinator {
	return &Coordinator{
		classifier:    classifier,
		specialists:   specialists,
		conversations: conversations,
		session:       session,
		memories:      memories,
		consolidator:  consolidator,
		cfg:           cfg,
	}
}

// Handle processes one inbound message and always produces a reply; the
// only error returns are invalid input and conversation-store failures
// that prevent any turn from existing.
func (c *Coordinator) Handle(ctx context.Context, conversationID, userID, message string) (*domain.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	unlock := c.locks.acquire(conversationIDOrNew(&conversationID))
	defer unlock()

	conv, err := c.loadOrCreate(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	started := time.Now().UTC()
	label := c.classify(ctx, conv, message)

	tools := NewToolRecorder()
	replyText := c.dispatch(ctx, label, &TurnRequest{
		ConversationID: conversationID,
		UserID:         userID,
		Message:        message,
		Session:        c.session,
		Memories:       c.recall(ctx, userID),
		Tools:          tools,
	})

	turn := domain.Turn{
		UserText:    message,
		ReplyText:   replyText,
		Route:       label,
		Tools:       tools.Invocations(),
		CreatedAt:   started,
		CompletedAt: time.Now().UTC(),
	}
	if err := c.conversations.AppendTurn(ctx, conversationID, &turn); err != nil {
		// The reply still goes out; the transcript gap is logged.
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to append turn")
	}

	if c.consolidator != nil {
		c.consolidator.Enqueue(conversationID, userID, turn)
	}

	return &domain.Reply{ConversationID: conversationID, Text: replyText, Route: label}, nil
}

// Delete removes a conversation and clears its session state.
func (c *Coordinator) Delete(ctx context.Context, conversationID string) error {
	if err := c.conversations.Delete(ctx, conversationID); err != nil {
		return err
	}
	if err := c.session.Clear(ctx, conversationID); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to clear session state")
	}
	return nil
}

// History returns a conversation's turns.
func (c *Coordinator) History(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return c.conversations.Get(ctx, conversationID)
}

func (c *Coordinator) loadOrCreate(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conv, err := c.conversations.Get(ctx, conversationID)
	if errors.Is(err, domain.ErrNotFound) {
		now := time.Now().UTC()
		conv = &domain.Conversation{ID: conversationID, UserID: userID, CreatedAt: now, UpdatedAt: now}
		if err := c.conversations.Create(ctx, conv); err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		return conv, nil
	}
	return conv, err
}

// classify asks the intent classifier for a route label over a bounded
// window of prior turns. Transient failures retry the same call; the
// label is never re-guessed. A persistent failure collapses to UNKNOWN so
// the user gets a clarifying question instead of a wrong specialist.
func (c *Coordinator) classify(ctx context.Context, conv *domain.Conversation, message string) domain.RouteLabel {
	history := conv.Turns
	if n := c.cfg.ContextWindowTurns; n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}

	var label domain.RouteLabel
	err := withBackoff(ctx, c.cfg.MaxAttempts, c.cfg.RetryBaseDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
		var err error
		label, err = c.classifier.Classify(callCtx, history, message)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("intent classification failed")
		return domain.RouteUnknown
	}
	return label
}

// dispatch runs the specialist for the label. Retryable failures back off
// and retry up to the configured bound; anything that still fails becomes
// the generic apology. Every path yields a reply.
func (c *Coordinator) dispatch(ctx context.Context, label domain.RouteLabel, req *TurnRequest) string {
	if label == domain.RouteUnknown {
		return clarifyReply
	}

	specialist, ok := c.specialists[label]
	if !ok {
		log.Error().Str("label", string(label)).Msg("no specialist registered for label")
		return clarifyReply
	}

	var reply string
	err := withBackoff(ctx, c.cfg.MaxAttempts, c.cfg.RetryBaseDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
		var err error
		reply, err = specialist.Handle(callCtx, req)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("label", string(label)).Msg("specialist failed")
		return apologyReply
	}
	return reply
}

// recall loads the user's long-lived memory for grounding. Written
// entries from this very turn are not yet visible here; that lag is
// intentional.
func (c *Coordinator) recall(ctx context.Context, userID string) []domain.MemoryEntry {
	if userID == "" || c.memories == nil {
		return nil
	}
	entries, err := c.memories.ListByUser(ctx, userID, 10)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("memory recall failed")
		return nil
	}
	return entries
}

func conversationIDOrNew(id *string) string {
	if *id == "" {
		*id = uuid.New().String()
	}
	return *id
}
