package middleware

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const telegramOwnerKey = "owner_id"

// LinkResolver finds the owner a Telegram account is linked to
type LinkResolver interface {
	OwnerFor(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error)
}

// LinkRequired stops Telegram users whose account is not linked to an owner.
// Linked users continue with the owner stored in the telebot context.
func LinkRequired(links LinkResolver, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			ownerID, linked, err := links.OwnerFor(context.Background(), userID)
			if err != nil {
				logger.Error("Failed to resolve Telegram link in middleware",
					zap.Int64("user_id", userID),
					zap.Error(err))
				return c.Send("Something went wrong. Please try again later.")
			}

			if !linked {
				return c.Send("This chat is not linked to an Interlinear account yet. Send /start to link it.")
			}

			c.Set(telegramOwnerKey, ownerID)
			return next(c)
		}
	}
}

// TelegramOwner returns the owner stored by LinkRequired
func TelegramOwner(c tele.Context) (uuid.UUID, bool) {
	ownerID, ok := c.Get(telegramOwnerKey).(uuid.UUID)
	return ownerID, ok
}
