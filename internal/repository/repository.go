package repository

import (
	"context"
	"time"

	"interlinear/internal/domain"

	"github.com/google/uuid"
)

// ReviewFunc computes a card's new state from its current, locked state
type ReviewFunc func(current domain.Flashcard) (domain.Flashcard, error)

// FlashcardRepository defines flashcard data operations.
// Every method that takes an id also takes the owner and matches on both;
// a card owned by someone else is reported as domain.ErrNotFound.
type FlashcardRepository interface {
	Create(ctx context.Context, card *domain.Flashcard) error
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Flashcard, error)
	ListDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error)
	ListAll(ctx context.Context, ownerID uuid.UUID) ([]domain.Flashcard, error)
	UpdateContent(ctx context.Context, ownerID, id uuid.UUID, edit domain.FlashcardEdit) (*domain.Flashcard, error)
	// ApplyReview runs apply against the row locked for update and persists the
	// schedule and counters it returns, all in one transaction.
	ApplyReview(ctx context.Context, ownerID, id uuid.UUID, apply ReviewFunc) (*domain.Flashcard, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// Totals aggregates the owner's cards. Cards updated within [dayStart, dayEnd) count as reviewed that day.
	Totals(ctx context.Context, ownerID uuid.UUID, asOf, dayStart, dayEnd time.Time) (*domain.CardTotals, error)
}

// LinkRepository defines Telegram account link operations
type LinkRepository interface {
	SaveCode(ctx context.Context, code domain.LinkCode) error
	// RedeemCode consumes an unexpired code and links telegramUserID to its owner
	RedeemCode(ctx context.Context, code string, telegramUserID int64, now time.Time) (uuid.UUID, error)
	OwnerOf(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error)
	Unlink(ctx context.Context, telegramUserID int64) error
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}
