package api

import (
	"net/http"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/middleware"

	"github.com/google/uuid"
)

type flashcardResponse struct {
	ID             string  `json:"id"`
	DeckID         *string `json:"deckId"`
	Front          string  `json:"front"`
	Back           string  `json:"back"`
	Prompt         string  `json:"prompt"`
	Notes          *string `json:"notes"`
	SourceType     string  `json:"sourceType"`
	SourceRef      *string `json:"sourceRef"`
	IntervalDays   int     `json:"intervalDays"`
	NextReviewDate string  `json:"nextReviewDate"`
	TimesReviewed  int     `json:"timesReviewed"`
	TimesCorrect   int     `json:"timesCorrect"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func toFlashcardResponse(card domain.Flashcard) flashcardResponse {
	resp := flashcardResponse{
		ID:             card.ID.String(),
		Front:          card.Front,
		Back:           card.Back,
		Prompt:         card.Prompt(),
		Notes:          card.Notes,
		SourceType:     string(card.SourceType),
		SourceRef:      card.SourceRef,
		IntervalDays:   card.IntervalDays,
		NextReviewDate: domain.FormatDate(card.NextReviewDate),
		TimesReviewed:  card.TimesReviewed,
		TimesCorrect:   card.TimesCorrect,
		CreatedAt:      card.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      card.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if card.DeckID != nil {
		deck := card.DeckID.String()
		resp.DeckID = &deck
	}
	return resp
}

type flashcardEnvelope struct {
	Flashcard flashcardResponse `json:"flashcard"`
}

type flashcardListResponse struct {
	Flashcards []flashcardResponse `json:"flashcards"`
}

type createFlashcardRequest struct {
	Front      string  `json:"front" validate:"required,max=2000"`
	Back       string  `json:"back" validate:"required,max=2000"`
	SourceType string  `json:"sourceType" validate:"required,oneof=word sentence correction"`
	Notes      *string `json:"notes" validate:"omitempty,max=4000"`
	SourceRef  *string `json:"sourceRef" validate:"omitempty,max=200"`
	DeckID     *string `json:"deckId" validate:"omitempty,uuid"`
}

type createClozeRequest struct {
	Sentence string  `json:"sentence" validate:"required,max=2000"`
	Word     string  `json:"word" validate:"required,max=200"`
	Notes    *string `json:"notes" validate:"omitempty,max=4000"`
	DeckID   *string `json:"deckId" validate:"omitempty,uuid"`
}

type updateFlashcardRequest struct {
	Front *string `json:"front" validate:"omitempty,max=2000"`
	Back  *string `json:"back" validate:"omitempty,max=2000"`
	Notes *string `json:"notes" validate:"omitempty,max=4000"`
}

type reviewRequest struct {
	CardID  string `json:"cardId" validate:"required,uuid"`
	Correct *bool  `json:"correct" validate:"required"`
}

type reviewResponse struct {
	NextReviewDate  string `json:"nextReviewDate"`
	NewIntervalDays int    `json:"newIntervalDays"`
}

type statsResponse struct {
	TotalCards    int `json:"totalCards"`
	DueToday      int `json:"dueToday"`
	ReviewedToday int `json:"reviewedToday"`
	Accuracy      int `json:"accuracy"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// handleListFlashcards lists all cards, or only the due ones when ?due is set.
func (s *Server) handleListFlashcards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())
		query := r.URL.Query()

		deckID, err := parseOptionalID("deck", query.Get("deck"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var cards []domain.Flashcard
		if due := query.Get("due"); due != "" {
			asOf, err := parseDay("due", due)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			cards, err = s.cards.GetDueCards(r.Context(), ownerID, asOf, deckID)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
		} else {
			cards, err = s.cards.GetAllCards(r.Context(), ownerID)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			cards = filterDeck(cards, deckID)
		}

		resp := flashcardListResponse{Flashcards: make([]flashcardResponse, 0, len(cards))}
		for _, card := range cards {
			resp.Flashcards = append(resp.Flashcards, toFlashcardResponse(card))
		}
		s.writeJSON(w, http.StatusOK, resp)
	}
}

// handleGetFlashcard returns one card.
func (s *Server) handleGetFlashcard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())
		cardID, err := parseID("id", r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		card, err := s.cards.GetCard(r.Context(), ownerID, cardID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, flashcardEnvelope{Flashcard: toFlashcardResponse(*card)})
	}
}

// handleCreateFlashcard creates a card from explicit front and back.
func (s *Server) handleCreateFlashcard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())

		var req createFlashcardRequest
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		deckID, err := parseOptionalIDPtr("deckId", req.DeckID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		card, err := s.cards.CreateCard(r.Context(), ownerID, domain.NewFlashcard{
			Front:      req.Front,
			Back:       req.Back,
			Notes:      req.Notes,
			SourceType: domain.SourceType(req.SourceType),
			SourceRef:  req.SourceRef,
			DeckID:     deckID,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, flashcardEnvelope{Flashcard: toFlashcardResponse(*card)})
	}
}

// handleCreateCloze creates a sentence card hiding one word.
func (s *Server) handleCreateCloze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())

		var req createClozeRequest
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		deckID, err := parseOptionalIDPtr("deckId", req.DeckID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		card, err := s.cards.CreateClozeCard(r.Context(), ownerID, req.Sentence, req.Word, req.Notes, deckID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, flashcardEnvelope{Flashcard: toFlashcardResponse(*card)})
	}
}

// handleUpdateFlashcard edits a card's text.
func (s *Server) handleUpdateFlashcard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())
		cardID, err := parseID("id", r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req updateFlashcardRequest
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		card, err := s.cards.UpdateCard(r.Context(), ownerID, cardID, domain.FlashcardEdit{
			Front: req.Front,
			Back:  req.Back,
			Notes: req.Notes,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, flashcardEnvelope{Flashcard: toFlashcardResponse(*card)})
	}
}

// handleReview submits one review outcome.
func (s *Server) handleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())

		var req reviewRequest
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		cardID, err := parseID("cardId", req.CardID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.cards.ReviewCard(r.Context(), ownerID, cardID, *req.Correct)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, reviewResponse{
			NextReviewDate:  domain.FormatDate(result.NextReviewDate),
			NewIntervalDays: result.NewIntervalDays,
		})
	}
}

// handleDeleteFlashcard removes a card.
func (s *Server) handleDeleteFlashcard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())
		cardID, err := parseID("id", r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.cards.DeleteCard(r.Context(), ownerID, cardID); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// handleStats summarises the collection for today or ?date.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())

		var asOf time.Time
		if raw := r.URL.Query().Get("date"); raw != "" {
			var err error
			if asOf, err = parseDay("date", raw); err != nil {
				s.writeError(w, r, err)
				return
			}
		}

		stats, err := s.cards.GetStats(r.Context(), ownerID, asOf)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, statsResponse{
			TotalCards:    stats.TotalCards,
			DueToday:      stats.DueToday,
			ReviewedToday: stats.ReviewedToday,
			Accuracy:      stats.AccuracyPercent,
		})
	}
}

// parseDay accepts "today" or a YYYY-MM-DD date. "today" maps to the zero
// time, which the service resolves in the reviewer's timezone.
func parseDay(field, raw string) (time.Time, error) {
	if raw == "today" {
		return time.Time{}, nil
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, field+" must be today or a YYYY-MM-DD date")
	}
	return date, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, field+" must be a valid UUID")
	}
	return id, nil
}

func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseOptionalIDPtr(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	return parseOptionalID(field, *raw)
}

func filterDeck(cards []domain.Flashcard, deckID *uuid.UUID) []domain.Flashcard {
	if deckID == nil {
		return cards
	}
	filtered := make([]domain.Flashcard, 0, len(cards))
	for _, card := range cards {
		if card.DeckID != nil && *card.DeckID == *deckID {
			filtered = append(filtered, card)
		}
	}
	return filtered
}
