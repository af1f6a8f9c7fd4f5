package domain

import (
	"time"

	"github.com/google/uuid"
)

// LinkCode is a short-lived code that links a Telegram account to an owner
type LinkCode struct {
	Code      string
	OwnerID   uuid.UUID
	ExpiresAt time.Time
}

// UserState represents a Telegram user's current interaction state
type UserState string

const (
	StateIdle         UserState = "idle"
	StateWaitingCode  UserState = "waiting_code"
	StateWaitingFront UserState = "waiting_front"
	StateWaitingBack  UserState = "waiting_back"
)

// StateData holds temporary data for a Telegram user's current state
type StateData struct {
	State        UserState
	CurrentFront string
}
