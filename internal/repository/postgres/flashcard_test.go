package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"interlinear/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flashcardColumnNames = []string{
	"id", "owner_id", "deck_id", "front", "back", "notes", "source_type", "source_ref",
	"interval_days", "next_review_date", "times_reviewed", "times_correct", "created_at", "updated_at",
}

func date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func addFlashcardRow(rows *sqlmock.Rows, id, ownerID uuid.UUID, front string, interval int, next string) *sqlmock.Rows {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id.String(), ownerID.String(), nil, front, "back of "+front, nil, "word", nil,
		interval, date(next), 0, 0, created, created,
	)
}

func TestFlashcardRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlashcardRepo(db)

	notes := "irregular"
	card := &domain.Flashcard{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		Front:          "amo",
		Back:           "I love",
		Notes:          &notes,
		SourceType:     domain.SourceWord,
		IntervalDays:   1,
		NextReviewDate: date("2024-03-01"),
	}
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO flashcards").
		WithArgs(card.ID, card.OwnerID, nil, "amo", "I love", "irregular", "word", nil, 1, "2024-03-01", 0, 0).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	err := repo.Create(context.Background(), card)

	require.NoError(t, err)
	assert.Equal(t, created, card.CreatedAt)
	assert.Equal(t, created, card.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlashcardRepo_CreateError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlashcardRepo(db)

	mock.ExpectQuery("INSERT INTO flashcards").WillReturnError(fmt.Errorf("connection reset"))

	err := repo.Create(context.Background(), &domain.Flashcard{ID: uuid.New(), OwnerID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlashcardRepo_Get(t *testing.T) {
	ownerID := uuid.New()
	cardID := uuid.New()
	query := "SELECT (.+) FROM flashcards WHERE id = \\$1 AND owner_id = \\$2"

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := addFlashcardRow(sqlmock.NewRows(flashcardColumnNames), cardID, ownerID, "amo", 4, "2024-03-05")
				mock.ExpectQuery(query).WithArgs(cardID, ownerID).WillReturnRows(rows)
			},
		},
		{
			name: "missing or foreign card",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs(cardID, ownerID).WillReturnRows(sqlmock.NewRows(flashcardColumnNames))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs(cardID, ownerID).WillReturnError(fmt.Errorf("timeout"))
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewFlashcardRepo(db)
			tt.setupMock(mock)

			card, err := repo.Get(context.Background(), ownerID, cardID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, card)
			} else {
				require.NoError(t, err)
				assert.Equal(t, cardID, card.ID)
				assert.Equal(t, ownerID, card.OwnerID)
				assert.Equal(t, "amo", card.Front)
				assert.Equal(t, 4, card.IntervalDays)
				assert.Equal(t, date("2024-03-05"), card.NextReviewDate)
				assert.Nil(t, card.DeckID)
				assert.Nil(t, card.Notes)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFlashcardRepo_ListDue(t *testing.T) {
	ownerID := uuid.New()
	deckID := uuid.New()
	first, second := uuid.New(), uuid.New()
	query := "SELECT (.+) FROM flashcards WHERE owner_id = \\$1 AND next_review_date <= \\$2::date (.+) ORDER BY next_review_date ASC, created_at ASC, id ASC"

	tests := []struct {
		name     string
		deckID   *uuid.UUID
		deckArg  any
		rows     *sqlmock.Rows
		expected []uuid.UUID
	}{
		{
			name:    "all decks",
			deckArg: nil,
			rows: addFlashcardRow(
				addFlashcardRow(sqlmock.NewRows(flashcardColumnNames), first, ownerID, "amo", 1, "2024-02-28"),
				second, ownerID, "amas", 2, "2024-03-01"),
			expected: []uuid.UUID{first, second},
		},
		{
			name:     "single deck with nothing due",
			deckID:   &deckID,
			deckArg:  deckID,
			rows:     sqlmock.NewRows(flashcardColumnNames),
			expected: []uuid.UUID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewFlashcardRepo(db)

			mock.ExpectQuery(query).WithArgs(ownerID, "2024-03-01", tt.deckArg).WillReturnRows(tt.rows)

			cards, err := repo.ListDue(context.Background(), ownerID, date("2024-03-01"), tt.deckID)

			require.NoError(t, err)
			ids := make([]uuid.UUID, 0, len(cards))
			for _, c := range cards {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expected, ids)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFlashcardRepo_ListAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlashcardRepo(db)

	ownerID := uuid.New()
	deckID := uuid.New()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(flashcardColumnNames).AddRow(
		uuid.New().String(), ownerID.String(), deckID.String(), "Puella {{rosam}} amat", "The girl loves the rose", "accusative",
		"sentence", "lesson-3", 8, date("2024-03-09"), 5, 4, created, created,
	)
	mock.ExpectQuery("SELECT (.+) FROM flashcards WHERE owner_id = \\$1 ORDER BY").
		WithArgs(ownerID).
		WillReturnRows(rows)

	cards, err := repo.ListAll(context.Background(), ownerID)

	require.NoError(t, err)
	require.Len(t, cards, 1)
	card := cards[0]
	require.NotNil(t, card.DeckID)
	assert.Equal(t, deckID, *card.DeckID)
	require.NotNil(t, card.Notes)
	assert.Equal(t, "accusative", *card.Notes)
	require.NotNil(t, card.SourceRef)
	assert.Equal(t, "lesson-3", *card.SourceRef)
	assert.Equal(t, domain.SourceSentence, card.SourceType)
	assert.Equal(t, 5, card.TimesReviewed)
	assert.Equal(t, 4, card.TimesCorrect)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlashcardRepo_UpdateContent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlashcardRepo(db)

	ownerID := uuid.New()
	cardID := uuid.New()
	back := "I love (1st sg.)"
	empty := ""

	rows := addFlashcardRow(sqlmock.NewRows(flashcardColumnNames), cardID, ownerID, "amo", 2, "2024-03-03")
	mock.ExpectQuery("UPDATE flashcards SET front = COALESCE").
		WithArgs(cardID, ownerID, nil, back, "").
		WillReturnRows(rows)

	card, err := repo.UpdateContent(context.Background(), ownerID, cardID, domain.FlashcardEdit{Back: &back, Notes: &empty})

	require.NoError(t, err)
	assert.Equal(t, cardID, card.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlashcardRepo_UpdateContentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlashcardRepo(db)

	front := "amas"
	mock.ExpectQuery("UPDATE flashcards").WillReturnRows(sqlmock.NewRows(flashcardColumnNames))

	card, err := repo.UpdateContent(context.Background(), uuid.New(), uuid.New(), domain.FlashcardEdit{Front: &front})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, card)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlashcardRepo_ApplyReview(t *testing.T) {
	ownerID := uuid.New()
	cardID := uuid.New()
	selectQuery := "SELECT (.+) FROM flashcards WHERE id = \\$1 AND owner_id = \\$2 FOR UPDATE"
	updateQuery := "UPDATE flashcards SET interval_days = \\$3, next_review_date = \\$4::date"
	reviewedAt := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	promote := func(current domain.Flashcard) (domain.Flashcard, error) {
		current.IntervalDays *= 2
		current.NextReviewDate = domain.AddDays(date("2024-03-01"), current.IntervalDays)
		current.TimesReviewed++
		current.TimesCorrect++
		return current, nil
	}

	tests := []struct {
		name      string
		apply     func(domain.Flashcard) (domain.Flashcard, error)
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:  "persists computed schedule",
			apply: promote,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(selectQuery).WithArgs(cardID, ownerID).
					WillReturnRows(addFlashcardRow(sqlmock.NewRows(flashcardColumnNames), cardID, ownerID, "amo", 4, "2024-03-01"))
				mock.ExpectQuery(updateQuery).WithArgs(cardID, ownerID, 8, "2024-03-09", 1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(reviewedAt))
				mock.ExpectCommit()
			},
		},
		{
			name:  "card not found rolls back",
			apply: promote,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(selectQuery).WithArgs(cardID, ownerID).
					WillReturnRows(sqlmock.NewRows(flashcardColumnNames))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "apply error rolls back",
			apply: func(domain.Flashcard) (domain.Flashcard, error) {
				return domain.Flashcard{}, domain.NewValidationError("intervalDays", "bad interval")
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(selectQuery).WithArgs(cardID, ownerID).
					WillReturnRows(addFlashcardRow(sqlmock.NewRows(flashcardColumnNames), cardID, ownerID, "amo", 4, "2024-03-01"))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "update failure rolls back",
			apply: promote,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(selectQuery).WithArgs(cardID, ownerID).
					WillReturnRows(addFlashcardRow(sqlmock.NewRows(flashcardColumnNames), cardID, ownerID, "amo", 4, "2024-03-01"))
				mock.ExpectQuery(updateQuery).WillReturnError(fmt.Errorf("deadlock detected"))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewFlashcardRepo(db)
			tt.setupMock(mock)

			card, err := repo.ApplyReview(context.Background(), ownerID, cardID, tt.apply)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, card)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 8, card.IntervalDays)
				assert.Equal(t, date("2024-03-09"), card.NextReviewDate)
				assert.Equal(t, reviewedAt, card.UpdatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFlashcardRepo_Delete(t *testing.T) {
	ownerID := uuid.New()
	cardID := uuid.New()
	query := "DELETE FROM flashcards WHERE id = \\$1 AND owner_id = \\$2"

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "deleted",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WithArgs(cardID, ownerID).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "nothing deleted",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WithArgs(cardID, ownerID).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WithArgs(cardID, ownerID).WillReturnError(sql.ErrConnDone)
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewFlashcardRepo(db)
			tt.setupMock(mock)

			err := repo.Delete(context.Background(), ownerID, cardID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFlashcardRepo_Totals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlashcardRepo(db)

	ownerID := uuid.New()
	dayStart, dayEnd := domain.DayBounds(date("2024-03-01"), time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total_cards").
		WithArgs(ownerID, "2024-03-01", dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"total_cards", "due_today", "reviewed_today", "times_correct", "times_reviewed"}).
			AddRow(12, 5, 3, 7, 9))

	totals, err := repo.Totals(context.Background(), ownerID, date("2024-03-01"), dayStart, dayEnd)

	require.NoError(t, err)
	assert.Equal(t, &domain.CardTotals{TotalCards: 12, DueToday: 5, ReviewedToday: 3, TimesCorrect: 7, TimesReviewed: 9}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}
