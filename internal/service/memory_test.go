package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hollis/supportdesk/internal/domain"
)

func TestConsolidator_ExtractsAndUpserts(t *testing.T) {
	mockExtractor := new(MockFactExtractor)
	mockMemRepo := new(MockMemoryRepository)

	turn := domain.Turn{UserText: "I prefer gaming laptops", ReplyText: "noted"}
	entries := []domain.MemoryEntry{
		{
			UserID:     "CUST-001",
			Topic:      domain.TopicPreference,
			Text:       "prefers gaming laptops",
			DedupHash:  domain.DedupHash("prefers gaming laptops"),
			Confidence: 0.9,
		},
	}

	mockExtractor.On("ExtractFacts", mock.Anything, "CUST-001", turn).Return(entries, nil)
	mockMemRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.MemoryEntry) bool {
		return e.SourceConv == "conv-1" && e.Text == "prefers gaming laptops"
	})).Return(nil)

	c := NewConsolidator(mockExtractor, mockMemRepo, 4, time.Second)
	c.Enqueue("conv-1", "CUST-001", turn)
	c.Close()

	mockExtractor.AssertExpectations(t)
	mockMemRepo.AssertExpectations(t)
}

func TestConsolidator_SkipsAnonymousTurns(t *testing.T) {
	mockExtractor := new(MockFactExtractor)
	mockMemRepo := new(MockMemoryRepository)

	c := NewConsolidator(mockExtractor, mockMemRepo, 4, time.Second)
	c.Enqueue("conv-1", "", domain.Turn{UserText: "hello"})
	c.Close()

	mockExtractor.AssertNotCalled(t, "ExtractFacts", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsolidator_ExtractionFailureSwallowed(t *testing.T) {
	mockExtractor := new(MockFactExtractor)
	mockMemRepo := new(MockMemoryRepository)

	mockExtractor.On("ExtractFacts", mock.Anything, "CUST-001", mock.Anything).
		Return(nil, domain.Transient(assert.AnError))

	c := NewConsolidator(mockExtractor, mockMemRepo, 4, time.Second)
	c.Enqueue("conv-1", "CUST-001", domain.Turn{UserText: "hello"})
	c.Close()

	mockMemRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestConsolidator_UpsertFailureDoesNotStopOthers(t *testing.T) {
	mockExtractor := new(MockFactExtractor)
	mockMemRepo := new(MockMemoryRepository)

	entries := []domain.MemoryEntry{
		{UserID: "CUST-001", Topic: domain.TopicPreference, Text: "first"},
		{UserID: "CUST-001", Topic: domain.TopicIssueHistory, Text: "second"},
	}
	mockExtractor.On("ExtractFacts", mock.Anything, "CUST-001", mock.Anything).Return(entries, nil)
	mockMemRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.MemoryEntry) bool {
		return e.Text == "first"
	})).Return(assert.AnError)
	mockMemRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.MemoryEntry) bool {
		return e.Text == "second"
	})).Return(nil)

	c := NewConsolidator(mockExtractor, mockMemRepo, 4, time.Second)
	c.Enqueue("conv-1", "CUST-001", domain.Turn{UserText: "hello"})
	c.Close()

	mockMemRepo.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestConsolidator_CloseIsIdempotent(t *testing.T) {
	c := NewConsolidator(new(MockFactExtractor), new(MockMemoryRepository), 4, time.Second)
	c.Close()
	c.Close()
}
