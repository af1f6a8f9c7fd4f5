package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"interlinear/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LinkRepo implements repository.LinkRepository
type LinkRepo struct {
	db *sqlx.DB
}

// NewLinkRepo creates a new Telegram link repository
func NewLinkRepo(db *sqlx.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

// SaveCode stores a freshly issued link code
func (r *LinkRepo) SaveCode(ctx context.Context, code domain.LinkCode) error {
	query := `
		INSERT INTO telegram_link_codes (code, owner_id, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, code.Code, code.OwnerID, code.ExpiresAt)
	return classify("save link code", err)
}

// RedeemCode consumes code and links the Telegram user to the code's owner.
// A Telegram user that was linked before is moved to the new owner.
func (r *LinkRepo) RedeemCode(ctx context.Context, code string, telegramUserID int64, now time.Time) (uuid.UUID, error) {
	consumeQuery := `
		DELETE FROM telegram_link_codes
		WHERE code = $1 AND expires_at > $2
		RETURNING owner_id
	`
	linkQuery := `
		INSERT INTO telegram_links (telegram_user_id, owner_id)
		VALUES ($1, $2)
		ON CONFLICT (telegram_user_id)
		DO UPDATE SET owner_id = EXCLUDED.owner_id, linked_at = NOW()
	`

	var ownerID uuid.UUID
	err := RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, consumeQuery, code, now).Scan(&ownerID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrLinkCodeInvalid
		}
		if err != nil {
			return classify("consume link code", err)
		}

		if _, err := tx.ExecContext(ctx, linkQuery, telegramUserID, ownerID); err != nil {
			return classify("link telegram user", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, classify("redeem link code", err)
	}

	return ownerID, nil
}

// OwnerOf returns the owner linked to the Telegram user
func (r *LinkRepo) OwnerOf(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error) {
	var ownerID uuid.UUID
	query := `SELECT owner_id FROM telegram_links WHERE telegram_user_id = $1`
	err := r.db.QueryRowxContext(ctx, query, telegramUserID).Scan(&ownerID)

	if errors.Is(err, sql.ErrNoRows) {
		// Not linked yet
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, classify("get telegram link", err)
	}

	return ownerID, true, nil
}

// Unlink removes the Telegram user's link, if any
func (r *LinkRepo) Unlink(ctx context.Context, telegramUserID int64) error {
	query := `DELETE FROM telegram_links WHERE telegram_user_id = $1`
	_, err := r.db.ExecContext(ctx, query, telegramUserID)
	return classify("unlink telegram user", err)
}

// DeleteExpiredCodes removes codes that expired at or before now
func (r *LinkRepo) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM telegram_link_codes WHERE expires_at <= $1`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, classify("delete expired link codes", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, classify("delete expired link codes", err)
	}
	return deleted, nil
}
