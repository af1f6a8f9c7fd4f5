package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFlashcardService_GetStats(t *testing.T) {
	tests := []struct {
		name             string
		totals           *domain.CardTotals
		expectedAccuracy int
	}{
		{
			name:             "no reviews yet",
			totals:           &domain.CardTotals{TotalCards: 3, DueToday: 3},
			expectedAccuracy: 0,
		},
		{
			name:             "two of three correct",
			totals:           &domain.CardTotals{TotalCards: 3, DueToday: 1, ReviewedToday: 2, TimesCorrect: 2, TimesReviewed: 3},
			expectedAccuracy: 67,
		},
		{
			name:             "three of four correct",
			totals:           &domain.CardTotals{TotalCards: 1, ReviewedToday: 1, TimesCorrect: 3, TimesReviewed: 4},
			expectedAccuracy: 75,
		},
		{
			name:             "half rounds up",
			totals:           &domain.CardTotals{TotalCards: 1, TimesCorrect: 1, TimesReviewed: 8},
			expectedAccuracy: 13,
		},
		{
			name:             "all correct",
			totals:           &domain.CardTotals{TotalCards: 2, TimesCorrect: 5, TimesReviewed: 5},
			expectedAccuracy: 100,
		},
		{
			name:             "empty collection",
			totals:           &domain.CardTotals{},
			expectedAccuracy: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asOf := testutil.Date("2024-03-01")
			dayStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
			dayEnd := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

			mockRepo := new(testutil.MockFlashcardRepository)
			mockRepo.On("Totals", mock.Anything, testOwner, asOf, dayStart, dayEnd).Return(tt.totals, nil)

			service := newTestService(mockRepo)

			stats, err := service.GetStats(context.Background(), testOwner, time.Time{})

			require.NoError(t, err)
			assert.Equal(t, tt.totals.TotalCards, stats.TotalCards)
			assert.Equal(t, tt.totals.DueToday, stats.DueToday)
			assert.Equal(t, tt.totals.ReviewedToday, stats.ReviewedToday)
			assert.Equal(t, tt.expectedAccuracy, stats.AccuracyPercent)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestFlashcardService_GetStatsUsesReviewerDay(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	asOf := testutil.Date("2024-03-02")
	dayStart := time.Date(2024, 3, 2, 0, 0, 0, 0, zone)
	dayEnd := time.Date(2024, 3, 3, 0, 0, 0, 0, zone)

	mockRepo := new(testutil.MockFlashcardRepository)
	mockRepo.On("Totals", mock.Anything, testOwner, asOf, mock.MatchedBy(dayStart.Equal), mock.MatchedBy(dayEnd.Equal)).
		Return(&domain.CardTotals{}, nil)

	service := newTestService(mockRepo)
	ctx := domain.WithLocation(context.Background(), zone)

	_, err := service.GetStats(ctx, testOwner, time.Time{})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestFlashcardService_GetStatsError(t *testing.T) {
	mockRepo := new(testutil.MockFlashcardRepository)
	mockRepo.On("Totals", mock.Anything, testOwner, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewPersistenceError("aggregate flashcards", fmt.Errorf("db error")))

	service := newTestService(mockRepo)

	stats, err := service.GetStats(context.Background(), testOwner, testutil.Date("2024-03-01"))

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Nil(t, stats)
}

func TestMaintenanceService_CleanupExpiredCodes(t *testing.T) {
	tests := []struct {
		name          string
		mockError     error
		expectedError bool
	}{
		{
			name:          "successful cleanup",
			mockError:     nil,
			expectedError: false,
		},
		{
			name:          "database error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockLinkRepository)
			mockRepo.On("DeleteExpiredCodes", mock.Anything, testNow).Return(int64(2), tt.mockError)

			logger := testutil.NewTestLogger()
			service := NewMaintenanceService(mockRepo, logger)
			service.now = func() time.Time { return testNow }

			err := service.CleanupExpiredCodes(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
