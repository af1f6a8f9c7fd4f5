package handler

import (
	"context"
	"errors"
	"strings"

	"interlinear/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const genericErrorText = "Something went wrong. Please try again later."

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	state := h.GetState(userID)
	if state.State == domain.StateWaitingCode {
		return h.redeemCode(c, text)
	}

	ownerID, linked, err := h.links.OwnerFor(context.Background(), userID)
	if err != nil {
		h.logger.Error("Failed to check Telegram link", zap.Error(err))
		return c.Send(genericErrorText)
	}
	if !linked {
		// A code may arrive without /start first
		return h.redeemCode(c, text)
	}

	switch state.State {
	case domain.StateWaitingBack:
		// User sent the back, save the card
		front := state.CurrentFront

		card, err := h.cards.CreateCard(context.Background(), ownerID, domain.NewFlashcard{
			Front:      front,
			Back:       text,
			SourceType: domain.SourceWord,
		})
		if err != nil {
			var validationErr *domain.ValidationError
			if errors.As(err, &validationErr) {
				return c.Send("⚠️ " + validationErr.Message)
			}
			h.logger.Error("Failed to create flashcard",
				zap.Error(err),
				zap.Int64("user_id", userID),
			)
			return c.Send("Could not save the card. Please try again.")
		}

		h.logger.Info("Flashcard created from Telegram",
			zap.Int64("user_id", userID),
			zap.String("card_id", card.ID.String()),
		)

		// Wait for the next card
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingFront})

		return c.Send("✅ Saved! It is due today.\n\nSend the front of another card or go back to /start", cancelMarkup())

	default:
		// Idle or waiting for a front: this text is the front
		h.SetState(userID, &domain.StateData{
			State:        domain.StateWaitingBack,
			CurrentFront: text,
		})

		return c.Send("Now send the back of the card", cancelMarkup())
	}
}

// redeemCode links the sender to the owner of code
func (h *Handler) redeemCode(c tele.Context, code string) error {
	userID := c.Sender().ID

	ownerID, err := h.links.Redeem(context.Background(), code, userID)
	if errors.Is(err, domain.ErrLinkCodeInvalid) {
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingCode})
		return c.Send("❌ That code is invalid or has expired. Check it or create a new one in Interlinear.")
	}
	if err != nil {
		h.logger.Error("Failed to redeem link code", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(genericErrorText)
	}

	h.logger.Info("Telegram user linked",
		zap.Int64("user_id", userID),
		zap.String("owner_id", ownerID.String()),
	)
	h.ResetState(userID)
	return c.Send("✅ Linked!\n\n"+mainMenuText, mainMenuMarkup())
}

// handleAddCard starts the two-step card creation flow
func (h *Handler) handleAddCard(c tele.Context) error {
	h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingFront})
	_ = c.Respond()
	return c.Send("Send the front of the card (a word or phrase)", cancelMarkup())
}

