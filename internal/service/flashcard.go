// Package service holds the flashcard business logic.
package service

import (
	"context"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/repository"
	"interlinear/internal/srs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlashcardService handles flashcard creation, scheduling and review
type FlashcardService struct {
	cardRepo  repository.FlashcardRepository
	scheduler srs.Scheduler
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a FlashcardService
type Option func(*FlashcardService)

// WithScheduler replaces the default doubling scheduler
func WithScheduler(scheduler srs.Scheduler) Option {
	return func(s *FlashcardService) {
		s.scheduler = scheduler
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *FlashcardService) {
		s.now = now
	}
}

// WithLocation sets the timezone used when the request carries none
func WithLocation(loc *time.Location) Option {
	return func(s *FlashcardService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewFlashcardService creates a new flashcard service
func NewFlashcardService(cardRepo repository.FlashcardRepository, logger *zap.Logger, opts ...Option) *FlashcardService {
	s := &FlashcardService{
		cardRepo:  cardRepo,
		scheduler: srs.Doubling{},
		location:  time.UTC,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the reviewer's location for ctx
func (s *FlashcardService) Location(ctx context.Context) *time.Location {
	if loc, ok := domain.LocationFromContext(ctx); ok {
		return loc
	}
	return s.location
}

// Today returns the reviewer's current calendar date
func (s *FlashcardService) Today(ctx context.Context) time.Time {
	return domain.DateOf(s.now(), s.Location(ctx))
}

// CreateCard creates a card that is due today with the minimum interval
func (s *FlashcardService) CreateCard(ctx context.Context, ownerID uuid.UUID, in domain.NewFlashcard) (*domain.Flashcard, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	card := &domain.Flashcard{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		DeckID:         in.DeckID,
		Front:          in.Front,
		Back:           in.Back,
		Notes:          in.Notes,
		SourceType:     in.SourceType,
		SourceRef:      in.SourceRef,
		IntervalDays:   srs.MinIntervalDays,
		NextReviewDate: s.Today(ctx),
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Debug("Flashcard created",
		zap.String("owner_id", ownerID.String()),
		zap.String("card_id", card.ID.String()),
		zap.String("source_type", string(card.SourceType)))
	return card, nil
}

// CreateClozeCard creates a sentence card whose front hides the first occurrence of word
func (s *FlashcardService) CreateClozeCard(ctx context.Context, ownerID uuid.UUID, sentence, word string, notes *string, deckID *uuid.UUID) (*domain.Flashcard, error) {
	front, err := domain.MakeCloze(sentence, word)
	if err != nil {
		return nil, err
	}

	return s.CreateCard(ctx, ownerID, domain.NewFlashcard{
		Front:      front,
		Back:       sentence,
		Notes:      notes,
		SourceType: domain.SourceSentence,
		DeckID:     deckID,
	})
}

// GetDueCards returns cards due on or before asOf, most overdue first.
// A zero asOf means the reviewer's today.
func (s *FlashcardService) GetDueCards(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.Today(ctx)
	}

	return s.cardRepo.ListDue(ctx, ownerID, domain.DateOf(asOf, time.UTC), deckID)
}

// GetAllCards returns every card of the owner
func (s *FlashcardService) GetAllCards(ctx context.Context, ownerID uuid.UUID) ([]domain.Flashcard, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	return s.cardRepo.ListAll(ctx, ownerID)
}

// GetCard returns a single card of the owner
func (s *FlashcardService) GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Flashcard, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	return s.cardRepo.Get(ctx, ownerID, cardID)
}

// UpdateCard edits the card's text. Scheduling state is left alone.
func (s *FlashcardService) UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, edit domain.FlashcardEdit) (*domain.Flashcard, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}

	edit = edit.Normalize()
	if err := edit.Validate(); err != nil {
		return nil, err
	}

	return s.cardRepo.UpdateContent(ctx, ownerID, cardID, edit)
}

// ReviewCard records one review outcome and reschedules the card
func (s *FlashcardService) ReviewCard(ctx context.Context, ownerID, cardID uuid.UUID, wasCorrect bool) (*domain.ReviewResult, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}

	today := s.Today(ctx)
	reviewed, err := s.cardRepo.ApplyReview(ctx, ownerID, cardID, func(current domain.Flashcard) (domain.Flashcard, error) {
		interval := current.IntervalDays
		if !srs.ValidInterval(interval) {
			s.logger.Warn("Stored interval out of range, clamping",
				zap.String("card_id", current.ID.String()),
				zap.Int("interval_days", interval))
			interval = srs.ClampInterval(interval)
		}

		schedule := s.scheduler.Next(interval, wasCorrect, today)

		next := current
		next.IntervalDays = schedule.IntervalDays
		next.NextReviewDate = schedule.NextReviewDate
		next.TimesReviewed++
		if wasCorrect {
			next.TimesCorrect++
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Flashcard reviewed",
		zap.String("owner_id", ownerID.String()),
		zap.String("card_id", cardID.String()),
		zap.Bool("correct", wasCorrect),
		zap.Int("interval_days", reviewed.IntervalDays))

	return &domain.ReviewResult{
		CardID:          reviewed.ID,
		NewIntervalDays: reviewed.IntervalDays,
		NextReviewDate:  reviewed.NextReviewDate,
	}, nil
}

// DeleteCard permanently removes a card of the owner
func (s *FlashcardService) DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	return s.cardRepo.Delete(ctx, ownerID, cardID)
}

func checkOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return domain.NewValidationError("owner", "owner is required")
	}
	return nil
}
