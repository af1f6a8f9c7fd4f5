package testutil

import (
	"context"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockFlashcardRepository is a mock for FlashcardRepository
type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) Create(ctx context.Context, card *domain.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) ListDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, asOf, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) ListAll(ctx context.Context, ownerID uuid.UUID) ([]domain.Flashcard, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) UpdateContent(ctx context.Context, ownerID, id uuid.UUID, edit domain.FlashcardEdit) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, id, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

// ApplyReview runs apply against the card registered as the first return value,
// the way the real repository does against the locked row.
func (m *MockFlashcardRepository) ApplyReview(ctx context.Context, ownerID, id uuid.UUID, apply repository.ReviewFunc) (*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, id, mock.Anything)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if err := args.Error(1); err != nil {
		return nil, err
	}

	current := args.Get(0).(*domain.Flashcard)
	next, err := apply(*current)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (m *MockFlashcardRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockFlashcardRepository) Totals(ctx context.Context, ownerID uuid.UUID, asOf, dayStart, dayEnd time.Time) (*domain.CardTotals, error) {
	args := m.Called(ctx, ownerID, asOf, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardTotals), args.Error(1)
}

// MockLinkRepository is a mock for LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) SaveCode(ctx context.Context, code domain.LinkCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockLinkRepository) RedeemCode(ctx context.Context, code string, telegramUserID int64, now time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, code, telegramUserID, now)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockLinkRepository) OwnerOf(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error) {
	args := m.Called(ctx, telegramUserID)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockLinkRepository) Unlink(ctx context.Context, telegramUserID int64) error {
	args := m.Called(ctx, telegramUserID)
	return args.Error(0)
}

func (m *MockLinkRepository) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
