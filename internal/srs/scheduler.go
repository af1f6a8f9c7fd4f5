// Package srs computes spaced-repetition schedules.
//
// The schedule is a geometric doubling of the review interval capped at
// MaxIntervalDays, with a full reset to MinIntervalDays on a failed review.
package srs

import (
	"time"
)

const (
	MinIntervalDays = 1
	MaxIntervalDays = 30
)

// Schedule is the outcome of a review
type Schedule struct {
	IntervalDays   int
	NextReviewDate time.Time
}

// Scheduler computes the next schedule from the current interval and the review outcome.
// today is the reviewer's calendar date.
type Scheduler interface {
	Next(currentIntervalDays int, wasCorrect bool, today time.Time) Schedule
}

// Doubling is the default Scheduler
type Doubling struct{}

// Next implements Scheduler
func (Doubling) Next(currentIntervalDays int, wasCorrect bool, today time.Time) Schedule {
	return Next(currentIntervalDays, wasCorrect, today)
}

// Next doubles the interval on a correct answer, capped at MaxIntervalDays,
// and resets it to MinIntervalDays otherwise. currentIntervalDays must already
// be within [MinIntervalDays, MaxIntervalDays].
func Next(currentIntervalDays int, wasCorrect bool, today time.Time) Schedule {
	interval := MinIntervalDays
	if wasCorrect {
		interval = min(currentIntervalDays*2, MaxIntervalDays)
	}

	return Schedule{
		IntervalDays:   interval,
		NextReviewDate: today.AddDate(0, 0, interval),
	}
}

// ValidInterval reports whether days is within the allowed range
func ValidInterval(days int) bool {
	return days >= MinIntervalDays && days <= MaxIntervalDays
}

// ClampInterval forces days into [MinIntervalDays, MaxIntervalDays]
func ClampInterval(days int) int {
	return max(MinIntervalDays, min(days, MaxIntervalDays))
}
