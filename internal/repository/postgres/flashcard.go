package postgres

import (
	"context"
	"database/sql"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const flashcardColumns = `id, owner_id, deck_id, front, back, notes, source_type, source_ref,
	interval_days, next_review_date, times_reviewed, times_correct, created_at, updated_at`

// flashcardRow is the flashcards table as scanned by sqlx
type flashcardRow struct {
	ID             uuid.UUID      `db:"id"`
	OwnerID        uuid.UUID      `db:"owner_id"`
	DeckID         uuid.NullUUID  `db:"deck_id"`
	Front          string         `db:"front"`
	Back           string         `db:"back"`
	Notes          sql.NullString `db:"notes"`
	SourceType     string         `db:"source_type"`
	SourceRef      sql.NullString `db:"source_ref"`
	IntervalDays   int            `db:"interval_days"`
	NextReviewDate time.Time      `db:"next_review_date"`
	TimesReviewed  int            `db:"times_reviewed"`
	TimesCorrect   int            `db:"times_correct"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r flashcardRow) toDomain() domain.Flashcard {
	card := domain.Flashcard{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Front:          r.Front,
		Back:           r.Back,
		SourceType:     domain.SourceType(r.SourceType),
		IntervalDays:   r.IntervalDays,
		NextReviewDate: domain.DateOf(r.NextReviewDate, time.UTC),
		TimesReviewed:  r.TimesReviewed,
		TimesCorrect:   r.TimesCorrect,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.DeckID.Valid {
		deck := r.DeckID.UUID
		card.DeckID = &deck
	}
	if r.Notes.Valid {
		card.Notes = &r.Notes.String
	}
	if r.SourceRef.Valid {
		card.SourceRef = &r.SourceRef.String
	}
	return card
}

type totalsRow struct {
	TotalCards    int `db:"total_cards"`
	DueToday      int `db:"due_today"`
	ReviewedToday int `db:"reviewed_today"`
	TimesCorrect  int `db:"times_correct"`
	TimesReviewed int `db:"times_reviewed"`
}

// FlashcardRepo implements repository.FlashcardRepository
type FlashcardRepo struct {
	db *sqlx.DB
}

// NewFlashcardRepo creates a new flashcard repository
func NewFlashcardRepo(db *sqlx.DB) *FlashcardRepo {
	return &FlashcardRepo{db: db}
}

// Create inserts card and fills in its timestamps
func (r *FlashcardRepo) Create(ctx context.Context, card *domain.Flashcard) error {
	query := `
		INSERT INTO flashcards (id, owner_id, deck_id, front, back, notes, source_type, source_ref,
			interval_days, next_review_date, times_reviewed, times_correct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::date, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		card.ID,
		card.OwnerID,
		nullUUID(card.DeckID),
		card.Front,
		card.Back,
		nullString(card.Notes),
		string(card.SourceType),
		nullString(card.SourceRef),
		card.IntervalDays,
		domain.FormatDate(card.NextReviewDate),
		card.TimesReviewed,
		card.TimesCorrect,
	).Scan(&card.CreatedAt, &card.UpdatedAt)
	return classify("insert flashcard", err)
}

// Get returns one card of the owner
func (r *FlashcardRepo) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = $1 AND owner_id = $2`

	var row flashcardRow
	if err := r.db.GetContext(ctx, &row, query, id, ownerID); err != nil {
		return nil, classify("get flashcard", err)
	}

	card := row.toDomain()
	return &card, nil
}

// ListDue returns cards due on or before asOf, oldest due first.
// Ties are broken by creation order.
func (r *FlashcardRepo) ListDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error) {
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE owner_id = $1
			AND next_review_date <= $2::date
			AND ($3::uuid IS NULL OR deck_id = $3::uuid)
		ORDER BY next_review_date ASC, created_at ASC, id ASC
	`
	return r.list(ctx, "list due flashcards", query, ownerID, domain.FormatDate(asOf), nullUUID(deckID))
}

// ListAll returns every card of the owner in due order
func (r *FlashcardRepo) ListAll(ctx context.Context, ownerID uuid.UUID) ([]domain.Flashcard, error) {
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE owner_id = $1
		ORDER BY next_review_date ASC, created_at ASC, id ASC
	`
	return r.list(ctx, "list flashcards", query, ownerID)
}

func (r *FlashcardRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.Flashcard, error) {
	var rows []flashcardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(op, err)
	}

	cards := make([]domain.Flashcard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.toDomain())
	}
	return cards, nil
}

// UpdateContent applies a partial edit of the card's text fields.
// An empty notes value clears the notes.
func (r *FlashcardRepo) UpdateContent(ctx context.Context, ownerID, id uuid.UUID, edit domain.FlashcardEdit) (*domain.Flashcard, error) {
	query := `
		UPDATE flashcards
		SET front = COALESCE($3::text, front),
			back = COALESCE($4::text, back),
			notes = CASE WHEN $5::text IS NULL THEN notes ELSE NULLIF($5::text, '') END,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + flashcardColumns

	var row flashcardRow
	err := r.db.GetContext(ctx, &row, query, id, ownerID,
		nullString(edit.Front), nullString(edit.Back), nullString(edit.Notes))
	if err != nil {
		return nil, classify("update flashcard", err)
	}

	card := row.toDomain()
	return &card, nil
}

// ApplyReview locks the card row, lets apply compute the new state and writes it back
func (r *FlashcardRepo) ApplyReview(ctx context.Context, ownerID, id uuid.UUID, apply repository.ReviewFunc) (*domain.Flashcard, error) {
	selectQuery := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = $1 AND owner_id = $2 FOR UPDATE`
	updateQuery := `
		UPDATE flashcards
		SET interval_days = $3,
			next_review_date = $4::date,
			times_reviewed = $5,
			times_correct = $6,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING updated_at
	`

	var reviewed domain.Flashcard
	err := RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var row flashcardRow
		if err := tx.GetContext(ctx, &row, selectQuery, id, ownerID); err != nil {
			return classify("lock flashcard", err)
		}

		next, err := apply(row.toDomain())
		if err != nil {
			return err
		}

		err = tx.QueryRowxContext(ctx, updateQuery, id, ownerID,
			next.IntervalDays,
			domain.FormatDate(next.NextReviewDate),
			next.TimesReviewed,
			next.TimesCorrect,
		).Scan(&next.UpdatedAt)
		if err != nil {
			return classify("update flashcard schedule", err)
		}

		reviewed = next
		return nil
	})
	if err != nil {
		return nil, classify("review flashcard", err)
	}

	return &reviewed, nil
}

// Delete removes the card permanently
func (r *FlashcardRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM flashcards WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return classify("delete flashcard", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return classify("delete flashcard", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Totals aggregates counters over all of the owner's cards.
// Cards that were never reviewed do not count towards reviewed_today even
// though creation sets updated_at.
func (r *FlashcardRepo) Totals(ctx context.Context, ownerID uuid.UUID, asOf, dayStart, dayEnd time.Time) (*domain.CardTotals, error) {
	query := `
		SELECT
			COUNT(*) AS total_cards,
			COUNT(*) FILTER (WHERE next_review_date <= $2::date) AS due_today,
			COUNT(*) FILTER (WHERE times_reviewed > 0 AND updated_at >= $3 AND updated_at < $4) AS reviewed_today,
			COALESCE(SUM(times_correct), 0) AS times_correct,
			COALESCE(SUM(times_reviewed), 0) AS times_reviewed
		FROM flashcards
		WHERE owner_id = $1
	`

	var row totalsRow
	if err := r.db.GetContext(ctx, &row, query, ownerID, domain.FormatDate(asOf), dayStart, dayEnd); err != nil {
		return nil, classify("aggregate flashcards", err)
	}

	return &domain.CardTotals{
		TotalCards:    row.TotalCards,
		DueToday:      row.DueToday,
		ReviewedToday: row.ReviewedToday,
		TimesCorrect:  row.TimesCorrect,
		TimesReviewed: row.TimesReviewed,
	}, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
