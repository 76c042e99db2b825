package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm"
)

// Consolidator extracts durable user facts from finished turns and
// upserts them into long-lived memory. It runs on its own queue: a failed
// consolidation is logged and swallowed, never surfaced to the user, and
// never blocks the reply path. New entries become visible on the next
// turn, not the one that produced them.
type Consolidator struct {
	extractor llm.FactExtractor
	memories  domain.MemoryRepository
	timeout   time.Duration

	jobs chan consolidationJob
	wg   sync.WaitGroup
	once sync.Once
}

type consolidationJob struct {
	conversationID string
	userID         string
	turn           domain.Turn
}

func NewConsolidator(extractor llm.FactExtractor, memories domain.MemoryRepository, queueSize int, timeout time.Duration) *Consolidator {
	if queueSize < 1 {
		queueSize = 1
	}
	c := &Consolidator{
		extractor: extractor,
		memories:  memories,
		timeout:   timeout,
		jobs:      make(chan consolidationJob, queueSize),
	}

	c.wg.Add(1)
	go c.worker()
	return c
}

// Enqueue schedules consolidation for a finished turn. Non-blocking: when
// the queue is full the job is dropped with a log line rather than
// delaying the caller.
func (c *Consolidator) Enqueue(conversationID, userID string, turn domain.Turn) {
	// Memory is keyed by user; anonymous turns have nothing durable to
	// attach facts to.
	if userID == "" {
		return
	}

	select {
	case c.jobs <- consolidationJob{conversationID: conversationID, userID: userID, turn: turn}:
	default:
		log.Warn().Str("conversation_id", conversationID).Msg("memory queue full, dropping consolidation job")
	}
}

// Close drains the queue and stops the worker.
func (c *Consolidator) Close() {
	c.once.Do(func() { close(c.jobs) })
	c.wg.Wait()
}

func (c *Consolidator) worker() {
	defer c.wg.Done()
	for job := range c.jobs {
		c.consolidate(job)
	}
}

func (c *Consolidator) consolidate(job consolidationJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("memory consolidation panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	entries, err := c.extractor.ExtractFacts(ctx, job.userID, job.turn)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", job.conversationID).Msg("fact extraction failed")
		return
	}

	for _, entry := range entries {
		entry.SourceConv = job.conversationID
		if err := c.memories.Upsert(ctx, &entry); err != nil {
			log.Warn().Err(err).Str("user_id", job.userID).Msg("memory upsert failed")
			continue
		}
		log.Debug().
			Str("user_id", job.userID).
			Str("topic", string(entry.Topic)).
			Msg("memory entry consolidated")
	}
}
