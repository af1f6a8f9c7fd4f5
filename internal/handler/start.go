package handler

import (
	"context"

	"interlinear/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const linkPrompt = "👋 Hi! This chat is not linked to Interlinear yet.\n\n" +
	"Open Interlinear, create a Telegram link code and send it here."

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	_, linked, err := h.links.OwnerFor(context.Background(), userID)
	if err != nil {
		h.logger.Error("Failed to check Telegram link", zap.Error(err))
		return c.Send(genericErrorText)
	}

	if !linked {
		// Wait for a link code
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingCode})
		if c.Callback() != nil {
			_ = c.Respond()
		}
		return c.Send(linkPrompt)
	}

	// Show main menu
	h.ResetState(userID)
	if c.Callback() != nil {
		if err := c.Edit(mainMenuText, mainMenuMarkup()); err != nil {
			if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
				return nil
			}
			return c.Send(mainMenuText, mainMenuMarkup())
		}
		return c.Respond()
	}
	return c.Send(mainMenuText, mainMenuMarkup())
}

// handleUnlink handles /unlink command
func (h *Handler) handleUnlink(c tele.Context) error {
	userID := c.Sender().ID

	if err := h.links.Unlink(context.Background(), userID); err != nil {
		h.logger.Error("Failed to unlink Telegram account", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(genericErrorText)
	}

	h.ResetState(userID)
	h.logger.Info("Telegram account unlinked", zap.Int64("user_id", userID))
	return c.Send("🔌 This chat is no longer linked. Send /start to link it again.")
}
