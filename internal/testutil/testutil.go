package testutil

import (
	"time"

	"interlinear/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// Date parses a YYYY-MM-DD calendar date and panics on malformed input
func Date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewTestFlashcard creates a word card due on the given date
func NewTestFlashcard(ownerID uuid.UUID, front, back string, intervalDays int, due time.Time) *domain.Flashcard {
	created := due.Add(-time.Duration(intervalDays) * 24 * time.Hour)
	return &domain.Flashcard{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Front:          front,
		Back:           back,
		SourceType:     domain.SourceWord,
		IntervalDays:   intervalDays,
		NextReviewDate: due,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}
