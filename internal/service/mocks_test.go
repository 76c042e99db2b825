package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hollis/supportdesk/internal/domain"
)

// MockClassifier mocks the llm.Classifier interface
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, history []domain.Turn, message string) (domain.RouteLabel, error) {
	args := m.Called(ctx, history, message)
	return args.Get(0).(domain.RouteLabel), args.Error(1)
}

// MockGenerator mocks the llm.Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockFactExtractor mocks the llm.FactExtractor interface
type MockFactExtractor struct {
	mock.Mock
}

func (m *MockFactExtractor) ExtractFacts(ctx context.Context, userID string, turn domain.Turn) ([]domain.MemoryEntry, error) {
	args := m.Called(ctx, userID, turn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MemoryEntry), args.Error(1)
}

// MockSpecialist mocks the Specialist interface
type MockSpecialist struct {
	mock.Mock
}

func (m *MockSpecialist) Handle(ctx context.Context, req *TurnRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockConversationRepository mocks the domain.ConversationRepository interface
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

func (m *MockConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) AppendTurn(ctx context.Context, id string, turn *domain.Turn) error {
	args := m.Called(ctx, id, turn)
	return args.Error(0)
}

func (m *MockConversationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMemoryRepository mocks the domain.MemoryRepository interface
type MockMemoryRepository struct {
	mock.Mock
}

func (m *MockMemoryRepository) Upsert(ctx context.Context, entry *domain.MemoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.MemoryEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MemoryEntry), args.Error(1)
}
