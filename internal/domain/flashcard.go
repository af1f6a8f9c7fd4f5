package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceType tags where a flashcard came from. It never affects scheduling.
type SourceType string

const (
	SourceWord       SourceType = "word"
	SourceSentence   SourceType = "sentence"
	SourceCorrection SourceType = "correction"
)

// Valid reports whether s is a known source type
func (s SourceType) Valid() bool {
	switch s {
	case SourceWord, SourceSentence, SourceCorrection:
		return true
	}
	return false
}

// Flashcard is the reviewable unit owned by exactly one user
type Flashcard struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	DeckID         *uuid.UUID
	Front          string
	Back           string
	Notes          *string
	SourceType     SourceType
	SourceRef      *string
	IntervalDays   int
	NextReviewDate time.Time // calendar date, see DateOf
	TimesReviewed  int
	TimesCorrect   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Prompt returns the front as shown before reveal, with cloze deletions blanked
func (f Flashcard) Prompt() string {
	return ClozePrompt(f.Front)
}

// NewFlashcard holds user input for creating a card
type NewFlashcard struct {
	Front      string
	Back       string
	Notes      *string
	SourceType SourceType
	SourceRef  *string
	DeckID     *uuid.UUID
}

// Normalize trims the text fields and defaults the source type
func (n NewFlashcard) Normalize() NewFlashcard {
	n.Front = strings.TrimSpace(n.Front)
	n.Back = strings.TrimSpace(n.Back)
	n.Notes = trimOptional(n.Notes)
	n.SourceRef = trimOptional(n.SourceRef)
	if n.SourceType == "" {
		n.SourceType = SourceWord
	}
	return n
}

// Validate checks the input after Normalize
func (n NewFlashcard) Validate() error {
	if n.Front == "" {
		return NewValidationError("front", "front cannot be empty")
	}
	if n.Back == "" {
		return NewValidationError("back", "back cannot be empty")
	}
	if !n.SourceType.Valid() {
		return NewValidationError("sourceType", "sourceType must be one of word, sentence, correction")
	}
	return nil
}

// FlashcardEdit is a partial content update. Nil fields are left unchanged.
type FlashcardEdit struct {
	Front *string
	Back  *string
	Notes *string
}

// Empty reports whether the edit changes nothing
func (e FlashcardEdit) Empty() bool {
	return e.Front == nil && e.Back == nil && e.Notes == nil
}

// Normalize trims the provided fields
func (e FlashcardEdit) Normalize() FlashcardEdit {
	if e.Front != nil {
		front := strings.TrimSpace(*e.Front)
		e.Front = &front
	}
	if e.Back != nil {
		back := strings.TrimSpace(*e.Back)
		e.Back = &back
	}
	if e.Notes != nil {
		notes := strings.TrimSpace(*e.Notes)
		e.Notes = &notes
	}
	return e
}

// Validate checks the edit after Normalize
func (e FlashcardEdit) Validate() error {
	if e.Empty() {
		return NewValidationError("", "nothing to update")
	}
	if e.Front != nil && *e.Front == "" {
		return NewValidationError("front", "front cannot be empty")
	}
	if e.Back != nil && *e.Back == "" {
		return NewValidationError("back", "back cannot be empty")
	}
	return nil
}

// ReviewResult is returned after a review submission
type ReviewResult struct {
	CardID          uuid.UUID
	NewIntervalDays int
	NextReviewDate  time.Time
}

// Stats summarises an owner's collection on a given date
type Stats struct {
	TotalCards      int
	DueToday        int
	ReviewedToday   int
	AccuracyPercent int
}

// CardTotals are the raw aggregates Stats is derived from
type CardTotals struct {
	TotalCards    int
	DueToday      int
	ReviewedToday int
	TimesCorrect  int
	TimesReviewed int
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
