package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"interlinear/internal/domain"
	"interlinear/internal/middleware"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Grade payloads carried by the grade buttons
const (
	gradeCorrect = "1"
	gradeWrong   = "0"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// editOrSend edits the callback message, or sends a new one for commands and failed edits
func (h *Handler) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

// handleCallback handles callbacks no registered button matched
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Info("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Buttons whose Unique did not come through
	if callback.Unique == "" {
		switch data {
		case btnCancel.Unique:
			return h.handleCancel(c)
		case btnMainMenu.Unique:
			return h.handleStart(c)
		case btnReview.Unique:
			return middleware.LinkRequired(h.links, h.logger)(h.handleReview)(c)
		case btnAddCard.Unique:
			return middleware.LinkRequired(h.links, h.logger)(h.handleAddCard)(c)
		case btnStats.Unique:
			return middleware.LinkRequired(h.links, h.logger)(h.handleStats)(c)
		}
	}

	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleReview shows the prompt of the next due card
func (h *Handler) handleReview(c tele.Context) error {
	ownerID, ok := middleware.TelegramOwner(c)
	if !ok {
		return c.Send(genericErrorText)
	}
	return h.showNextCard(c, ownerID, "")
}

// showNextCard shows the first due card, prefixed by header when one is given
func (h *Handler) showNextCard(c tele.Context, ownerID uuid.UUID, header string) error {
	ctx := context.Background()

	cards, err := h.cards.GetDueCards(ctx, ownerID, time.Time{}, nil)
	if err != nil {
		h.logger.Error("Failed to load due cards", zap.Error(err), zap.String("owner_id", ownerID.String()))
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Could not load your cards"})
		}
		return c.Send(genericErrorText)
	}

	if len(cards) == 0 {
		menu := &tele.ReplyMarkup{}
		menu.Inline(menu.Row(btnAddCard), menu.Row(btnMainMenu))
		return h.editOrSend(c, header+"🎉 Nothing is due. Come back tomorrow!", menu)
	}

	return h.editOrSend(c, header+formatPrompt(cards[0], len(cards)), revealMarkup(cards[0].ID))
}

// handleReveal shows the answer side of a card with the grade buttons
func (h *Handler) handleReveal(c tele.Context) error {
	ownerID, ok := middleware.TelegramOwner(c)
	if !ok {
		return c.Send(genericErrorText)
	}

	args := c.Args()
	if len(args) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown card"})
	}
	cardID, err := uuid.Parse(cleanCallbackData(args[0]))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown card"})
	}

	card, err := h.cards.GetCard(context.Background(), ownerID, cardID)
	if errors.Is(err, domain.ErrNotFound) {
		return h.editOrSend(c, "This card no longer exists.", mainMenuMarkup())
	}
	if err != nil {
		h.logger.Error("Failed to load card", zap.Error(err), zap.String("card_id", cardID.String()))
		return c.Respond(&tele.CallbackResponse{Text: "Could not load the card"})
	}

	return h.editOrSend(c, formatAnswer(*card), gradeMarkup(card.ID))
}

// handleGrade records a review and moves on to the next due card
func (h *Handler) handleGrade(c tele.Context) error {
	userID := c.Sender().ID
	ownerID, ok := middleware.TelegramOwner(c)
	if !ok {
		return c.Send(genericErrorText)
	}

	cardID, correct, err := parseGradeArgs(c.Args())
	if err != nil {
		h.logger.Warn("Malformed grade callback", zap.Strings("args", c.Args()), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Unknown card"})
	}

	// Double taps queue here and the second one is dropped below
	lock := h.reviewLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ctx := context.Background()
	today := h.cards.Today(ctx)
	if h.alreadyGraded(userID, cardID, today) {
		h.logger.Debug("Ignoring repeated grade",
			zap.Int64("user_id", userID),
			zap.String("card_id", cardID.String()),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Already graded"})
	}

	result, err := h.cards.ReviewCard(ctx, ownerID, cardID, correct)
	if errors.Is(err, domain.ErrNotFound) {
		return h.showNextCard(c, ownerID, "This card no longer exists.\n\n")
	}
	if err != nil {
		h.logger.Error("Failed to record review",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("card_id", cardID.String()),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Could not save the review, try again"})
	}

	h.markGraded(userID, cardID, today)

	h.logger.Info("Card reviewed from Telegram",
		zap.Int64("user_id", userID),
		zap.String("card_id", cardID.String()),
		zap.Bool("correct", correct),
		zap.Int("interval_days", result.NewIntervalDays),
	)

	return h.showNextCard(c, ownerID, formatReviewResult(*result, correct, today)+"\n\n")
}

// handleStats shows the owner's collection stats for today
func (h *Handler) handleStats(c tele.Context) error {
	ownerID, ok := middleware.TelegramOwner(c)
	if !ok {
		return c.Send(genericErrorText)
	}

	stats, err := h.cards.GetStats(context.Background(), ownerID, time.Time{})
	if err != nil {
		h.logger.Error("Failed to load stats", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return c.Respond(&tele.CallbackResponse{Text: "Could not load stats"})
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnReview), markup.Row(btnMainMenu))
	return h.editOrSend(c, formatStats(*stats), markup)
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.editOrSend(c, mainMenuText, mainMenuMarkup())
}

func formatPrompt(card domain.Flashcard, due int) string {
	return fmt.Sprintf("📚 %d due\n\n❓ %s", due, card.Prompt())
}

func formatAnswer(card domain.Flashcard) string {
	var b strings.Builder
	if domain.IsCloze(card.Front) {
		fmt.Fprintf(&b, "❓ %s\n\n✏️ %s\n\n💡 %s",
			card.Prompt(), strings.Join(domain.ClozeAnswers(card.Front), ", "), card.Back)
	} else {
		fmt.Fprintf(&b, "❓ %s\n\n💡 %s", card.Front, card.Back)
	}
	if card.Notes != nil && *card.Notes != "" {
		fmt.Fprintf(&b, "\n\n📝 %s", *card.Notes)
	}
	b.WriteString("\n\nDid you get it right?")
	return b.String()
}

func formatReviewResult(result domain.ReviewResult, correct bool, today time.Time) string {
	when := domain.DisplayDate(result.NextReviewDate, today)
	if correct {
		return fmt.Sprintf("✅ Correct! Next review %s (in %d days).", when, result.NewIntervalDays)
	}
	return fmt.Sprintf("❌ Not quite. Next review %s.", when)
}

func formatStats(stats domain.Stats) string {
	return fmt.Sprintf("📊 Your stats\n\nCards: %d\nDue today: %d\nReviewed today: %d\nAccuracy: %d%%",
		stats.TotalCards, stats.DueToday, stats.ReviewedToday, stats.AccuracyPercent)
}

// parseGradeArgs reads the card id and grade from a grade button payload
func parseGradeArgs(args []string) (uuid.UUID, bool, error) {
	if len(args) != 2 {
		return uuid.Nil, false, fmt.Errorf("expected 2 args, got %d", len(args))
	}
	cardID, err := uuid.Parse(cleanCallbackData(args[0]))
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("parse card id: %w", err)
	}
	switch cleanCallbackData(args[1]) {
	case gradeCorrect:
		return cardID, true, nil
	case gradeWrong:
		return cardID, false, nil
	}
	return uuid.Nil, false, fmt.Errorf("unknown grade %q", args[1])
}
