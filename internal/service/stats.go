package service

import (
	"context"
	"math"
	"time"

	"interlinear/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetStats summarises the owner's collection on asOf.
// A zero asOf means the reviewer's today.
func (s *FlashcardService) GetStats(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (*domain.Stats, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.Today(ctx)
	}
	asOf = domain.DateOf(asOf, time.UTC)

	dayStart, dayEnd := domain.DayBounds(asOf, s.Location(ctx))
	totals, err := s.cardRepo.Totals(ctx, ownerID, asOf, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		TotalCards:      totals.TotalCards,
		DueToday:        totals.DueToday,
		ReviewedToday:   totals.ReviewedToday,
		AccuracyPercent: accuracyPercent(totals.TimesCorrect, totals.TimesReviewed),
	}, nil
}

func accuracyPercent(correct, reviewed int) int {
	if reviewed == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(reviewed)))
}

// CodeCleaner removes expired link codes
type CodeCleaner interface {
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// MaintenanceService handles periodic cleanup
type MaintenanceService struct {
	codes  CodeCleaner
	now    func() time.Time
	logger *zap.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(codes CodeCleaner, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		codes:  codes,
		now:    time.Now,
		logger: logger,
	}
}

// CleanupExpiredCodes removes Telegram link codes that can no longer be redeemed
func (s *MaintenanceService) CleanupExpiredCodes(ctx context.Context) error {
	s.logger.Info("Starting cleanup of expired link codes")

	deleted, err := s.codes.DeleteExpiredCodes(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to cleanup expired link codes", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("deleted", deleted))
	return nil
}
