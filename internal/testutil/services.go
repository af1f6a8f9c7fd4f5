package testutil

import (
	"context"
	"time"

	"interlinear/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockFlashcardService is a mock for the review service as seen by transports
type MockFlashcardService struct {
	mock.Mock
}

func (m *MockFlashcardService) Today(ctx context.Context) time.Time {
	args := m.Called(ctx)
	return args.Get(0).(time.Time)
}

func (m *MockFlashcardService) CreateCard(ctx context.Context, ownerID uuid.UUID, in domain.NewFlashcard) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardService) CreateClozeCard(ctx context.Context, ownerID uuid.UUID, sentence, word string, notes *string, deckID *uuid.UUID) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, sentence, word, notes, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardService) GetDueCards(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, asOf, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardService) GetAllCards(ctx context.Context, ownerID uuid.UUID) ([]domain.Flashcard, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardService) GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardService) UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, edit domain.FlashcardEdit) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, cardID, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardService) ReviewCard(ctx context.Context, ownerID, cardID uuid.UUID, wasCorrect bool) (*domain.ReviewResult, error) {
	args := m.Called(ctx, ownerID, cardID, wasCorrect)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewResult), args.Error(1)
}

func (m *MockFlashcardService) DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error {
	args := m.Called(ctx, ownerID, cardID)
	return args.Error(0)
}

func (m *MockFlashcardService) GetStats(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (*domain.Stats, error) {
	args := m.Called(ctx, ownerID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

// MockLinkService is a mock for Telegram linking as seen by transports
type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) IssueCode(ctx context.Context, ownerID uuid.UUID) (*domain.LinkCode, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkCode), args.Error(1)
}

func (m *MockLinkService) Redeem(ctx context.Context, code string, telegramUserID int64) (uuid.UUID, error) {
	args := m.Called(ctx, code, telegramUserID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockLinkService) OwnerFor(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error) {
	args := m.Called(ctx, telegramUserID)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockLinkService) Unlink(ctx context.Context, telegramUserID int64) error {
	args := m.Called(ctx, telegramUserID)
	return args.Error(0)
}

// MockPinger is a mock database health check
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
