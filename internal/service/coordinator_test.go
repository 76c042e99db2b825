package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/repository/memstore"
)

func routerConfig() config.RouterConfig {
	return config.RouterConfig{
		ContextWindowTurns: 10,
		MaxAttempts:        3,
		RetryBaseDelay:     time.Millisecond,
		CallTimeout:        time.Second,
	}
}

func existingConversation(id, userID string) *domain.Conversation {
	now := time.Now().UTC()
	return &domain.Conversation{ID: id, UserID: userID, CreatedAt: now, UpdatedAt: now}
}

func TestCoordinator_RoutesToSpecialist(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)

	conv := existingConversation("conv-1", "CUST-001")
	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(conv, nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.AnythingOfType("*domain.Turn")).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, "where is my order ORD-12345").
		Return(domain.RouteOrder, nil)
	mockSpecialist.On("Handle", mock.Anything, mock.AnythingOfType("*service.TurnRequest")).
		Return("Order ORD-12345 is in transit.", nil)

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteOrder: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		nil,
		nil,
		routerConfig(),
	)

	reply, err := c.Handle(context.Background(), "conv-1", "CUST-001", "where is my order ORD-12345")
	require.NoError(t, err)

	assert.Equal(t, "conv-1", reply.ConversationID)
	assert.Equal(t, domain.RouteOrder, reply.Route)
	assert.Equal(t, "Order ORD-12345 is in transit.", reply.Text)

	mockClassifier.AssertExpectations(t)
	mockSpecialist.AssertExpectations(t)
	mockConvRepo.AssertExpectations(t)
}

func TestCoordinator_EmptyMessage(t *testing.T) {
	c := NewCoordinator(new(MockClassifier), nil, new(MockConversationRepository),
		memstore.NewSessionStore(), nil, nil, routerConfig())

	_, err := c.Handle(context.Background(), "conv-1", "", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCoordinator_NewConversationGetsID(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrNotFound)
	mockConvRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Conversation")).Return(nil)
	mockConvRepo.On("AppendTurn", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteUnknown, nil)

	c := NewCoordinator(mockClassifier, nil, mockConvRepo,
		memstore.NewSessionStore(), nil, nil, routerConfig())

	reply, err := c.Handle(context.Background(), "", "", "hello")
	require.NoError(t, err)

	assert.NotEmpty(t, reply.ConversationID)
	mockConvRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCoordinator_UnknownRouteClarifies(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", ""), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteUnknown, nil)

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteProduct: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		nil,
		nil,
		routerConfig(),
	)

	reply, err := c.Handle(context.Background(), "conv-1", "", "asdf qwerty")
	require.NoError(t, err)

	assert.Equal(t, domain.RouteUnknown, reply.Route)
	assert.Equal(t, clarifyReply, reply.Text)
	mockSpecialist.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestCoordinator_ClassifierRetriesTransientFailures(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", ""), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)

	// Two transient failures, then a label. The same call is retried; the
	// label is never re-guessed.
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteUnknown, domain.Transient(assert.AnError)).Twice()
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteProduct, nil).Once()
	mockSpecialist.On("Handle", mock.Anything, mock.Anything).Return("here are some laptops", nil)

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteProduct: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		nil,
		nil,
		routerConfig(),
	)

	reply, err := c.Handle(context.Background(), "conv-1", "", "show me laptops")
	require.NoError(t, err)

	assert.Equal(t, domain.RouteProduct, reply.Route)
	mockClassifier.AssertNumberOfCalls(t, "Classify", 3)
}

func TestCoordinator_ClassifierPersistentFailureClarifies(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", ""), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteUnknown, domain.Transient(assert.AnError))

	c := NewCoordinator(mockClassifier, nil, mockConvRepo,
		memstore.NewSessionStore(), nil, nil, routerConfig())

	reply, err := c.Handle(context.Background(), "conv-1", "", "show me laptops")
	require.NoError(t, err)

	assert.Equal(t, domain.RouteUnknown, reply.Route)
	assert.Equal(t, clarifyReply, reply.Text)
	mockClassifier.AssertNumberOfCalls(t, "Classify", 3)
}

func TestCoordinator_SpecialistFailureApologizes(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", ""), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteProduct, nil)
	mockSpecialist.On("Handle", mock.Anything, mock.Anything).
		Return("", domain.Transient(assert.AnError))

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteProduct: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		nil,
		nil,
		routerConfig(),
	)

	reply, err := c.Handle(context.Background(), "conv-1", "", "show me laptops")
	require.NoError(t, err, "a failed specialist still yields a reply")

	assert.Equal(t, apologyReply, reply.Text)
	mockSpecialist.AssertNumberOfCalls(t, "Handle", 3)
}

func TestCoordinator_NonRetryableSpecialistErrorNotRetried(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", ""), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteProduct, nil)
	mockSpecialist.On("Handle", mock.Anything, mock.Anything).Return("", assert.AnError)

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteProduct: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		nil,
		nil,
		routerConfig(),
	)

	reply, err := c.Handle(context.Background(), "conv-1", "", "show me laptops")
	require.NoError(t, err)

	assert.Equal(t, apologyReply, reply.Text)
	mockSpecialist.AssertNumberOfCalls(t, "Handle", 1)
}

func TestCoordinator_AppendTurnFailureStillReplies(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", ""), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).
		Return(domain.Transient(assert.AnError))
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteProduct, nil)
	mockSpecialist.On("Handle", mock.Anything, mock.Anything).Return("reply text", nil)

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteProduct: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		nil,
		nil,
		routerConfig(),
	)

	reply, err := c.Handle(context.Background(), "conv-1", "", "show me laptops")
	require.NoError(t, err)
	assert.Equal(t, "reply text", reply.Text)
}

func TestCoordinator_ClassifierSeesBoundedWindow(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockConvRepo := new(MockConversationRepository)

	conv := existingConversation("conv-1", "")
	for i := 0; i < 25; i++ {
		conv.Turns = append(conv.Turns, domain.Turn{Seq: int64(i + 1)})
	}

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(conv, nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)
	mockClassifier.On("Classify", mock.Anything, mock.MatchedBy(func(history []domain.Turn) bool {
		return len(history) == 10 && history[0].Seq == 16
	}), mock.Anything).Return(domain.RouteUnknown, nil)

	c := NewCoordinator(mockClassifier, nil, mockConvRepo,
		memstore.NewSessionStore(), nil, nil, routerConfig())

	_, err := c.Handle(context.Background(), "conv-1", "", "hello")
	require.NoError(t, err)
	mockClassifier.AssertExpectations(t)
}

func TestCoordinator_RecallPassesMemoriesToSpecialist(t *testing.T) {
	mockClassifier := new(MockClassifier)
	mockSpecialist := new(MockSpecialist)
	mockConvRepo := new(MockConversationRepository)
	mockMemRepo := new(MockMemoryRepository)

	memories := []domain.MemoryEntry{
		{UserID: "CUST-001", Topic: domain.TopicPreference, Text: "prefers gaming laptops"},
	}

	mockConvRepo.On("Get", mock.Anything, "conv-1").Return(existingConversation("conv-1", "CUST-001"), nil)
	mockConvRepo.On("AppendTurn", mock.Anything, "conv-1", mock.Anything).Return(nil)
	mockMemRepo.On("ListByUser", mock.Anything, "CUST-001", 10).Return(memories, nil)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RouteProduct, nil)
	mockSpecialist.On("Handle", mock.Anything, mock.MatchedBy(func(req *TurnRequest) bool {
		return len(req.Memories) == 1 && req.Memories[0].Text == "prefers gaming laptops"
	})).Return("ok", nil)

	c := NewCoordinator(
		mockClassifier,
		map[domain.RouteLabel]Specialist{domain.RouteProduct: mockSpecialist},
		mockConvRepo,
		memstore.NewSessionStore(),
		mockMemRepo,
		nil,
		routerConfig(),
	)

	_, err := c.Handle(context.Background(), "conv-1", "CUST-001", "recommend a laptop")
	require.NoError(t, err)
	mockSpecialist.AssertExpectations(t)
}

func TestCoordinator_DeleteClearsSession(t *testing.T) {
	mockConvRepo := new(MockConversationRepository)
	session := memstore.NewSessionStore()

	require.NoError(t, session.Set(context.Background(), "conv-1", domain.StateLastProductID, "PROD-001"))
	mockConvRepo.On("Delete", mock.Anything, "conv-1").Return(nil)

	c := NewCoordinator(new(MockClassifier), nil, mockConvRepo, session, nil, nil, routerConfig())

	require.NoError(t, c.Delete(context.Background(), "conv-1"))

	_, ok, err := session.Get(context.Background(), "conv-1", domain.StateLastProductID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCoordinator_DeleteMissingConversation(t *testing.T) {
	mockConvRepo := new(MockConversationRepository)
	mockConvRepo.On("Delete", mock.Anything, "conv-404").Return(domain.ErrNotFound)

	c := NewCoordinator(new(MockClassifier), nil, mockConvRepo,
		memstore.NewSessionStore(), nil, nil, routerConfig())

	err := c.Delete(context.Background(), "conv-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
