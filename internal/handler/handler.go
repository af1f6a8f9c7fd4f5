// Package handler implements the Telegram review channel.
package handler

import (
	"context"
	"sync"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/middleware"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// CardService is the part of the review service the bot uses
type CardService interface {
	Today(ctx context.Context) time.Time
	CreateCard(ctx context.Context, ownerID uuid.UUID, in domain.NewFlashcard) (*domain.Flashcard, error)
	GetDueCards(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error)
	GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Flashcard, error)
	ReviewCard(ctx context.Context, ownerID, cardID uuid.UUID, wasCorrect bool) (*domain.ReviewResult, error)
	GetStats(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (*domain.Stats, error)
}

// LinkService links Telegram accounts to owners
type LinkService interface {
	Redeem(ctx context.Context, code string, telegramUserID int64) (uuid.UUID, error)
	OwnerFor(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error)
	Unlink(ctx context.Context, telegramUserID int64) error
}

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	cards  CardService
	links  LinkService
	logger *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Serialises grading per user
	reviewLocks map[int64]*sync.Mutex
	// Last card each user graded, so a repeated tap on the same grade buttons is ignored
	lastGraded map[int64]gradedCard
	reviewMux  sync.Mutex
}

type gradedCard struct {
	cardID uuid.UUID
	day    time.Time
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	cards CardService,
	links LinkService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:         bot,
		cards:       cards,
		links:       links,
		logger:      logger,
		states:      make(map[int64]*domain.StateData),
		reviewLocks: make(map[int64]*sync.Mutex),
		lastGraded:  make(map[int64]gradedCard),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/unlink", h.handleUnlink)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Buttons that need no linked account
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Buttons that act on the linked owner's cards
	linked := h.bot.Group()
	linked.Use(middleware.LinkRequired(h.links, h.logger))
	linked.Handle(&btnReview, h.handleReview)
	linked.Handle(&btnAddCard, h.handleAddCard)
	linked.Handle(&btnStats, h.handleStats)
	linked.Handle(&btnReveal, h.handleReveal)
	linked.Handle(&btnGrade, h.handleGrade)

	// Generic callback handler for anything else
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

func (h *Handler) reviewLock(userID int64) *sync.Mutex {
	h.reviewMux.Lock()
	defer h.reviewMux.Unlock()

	lock, exists := h.reviewLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.reviewLocks[userID] = lock
	}
	return lock
}

// alreadyGraded reports whether userID graded cardID on day.
// A graded card is never due again the same day, so a repeat is a double tap.
func (h *Handler) alreadyGraded(userID int64, cardID uuid.UUID, day time.Time) bool {
	h.reviewMux.Lock()
	defer h.reviewMux.Unlock()

	last, exists := h.lastGraded[userID]
	return exists && last.cardID == cardID && last.day.Equal(day)
}

func (h *Handler) markGraded(userID int64, cardID uuid.UUID, day time.Time) {
	h.reviewMux.Lock()
	defer h.reviewMux.Unlock()
	h.lastGraded[userID] = gradedCard{cardID: cardID, day: day}
}

// Inline keyboard buttons
var (
	btnReview = tele.Btn{
		Unique: "review",
		Text:   "📚 Review due cards",
	}
	btnAddCard = tele.Btn{
		Unique: "add_card",
		Text:   "➕ Add a card",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Stats",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Cancel",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
	// Carry the card id as payload
	btnReveal = tele.Btn{Unique: "reveal"}
	btnGrade  = tele.Btn{Unique: "grade"}
)

const mainMenuText = "🏠 Main menu\n\nChoose an action:"

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnReview),
		menu.Row(btnAddCard, btnStats),
	)
	return menu
}

func revealMarkup(cardID uuid.UUID) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("👀 Show answer", btnReveal.Unique, cardID.String())),
		markup.Row(btnMainMenu),
	)
	return markup
}

func gradeMarkup(cardID uuid.UUID) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("✅ Correct", btnGrade.Unique, cardID.String(), gradeCorrect),
			markup.Data("❌ Wrong", btnGrade.Unique, cardID.String(), gradeWrong),
		),
		markup.Row(btnMainMenu),
	)
	return markup
}

func cancelMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancel))
	return markup
}
