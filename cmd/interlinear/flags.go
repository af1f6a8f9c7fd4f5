package main

import (
	"fmt"
	"time"

	"interlinear/internal/domain"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

// uuidFlag is a pflag.Value holding an id
type uuidFlag uuid.UUID

// Set implements pflag.Value.
func (f *uuidFlag) Set(v string) error {
	id, err := uuid.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", v, err)
	}
	*f = uuidFlag(id)
	return nil
}

// String implements pflag.Value.
func (f *uuidFlag) String() string {
	if f == nil || uuid.UUID(*f) == uuid.Nil {
		return ""
	}
	return uuid.UUID(*f).String()
}

// Type implements pflag.Value.
func (f *uuidFlag) Type() string {
	return "uuid"
}

// dateFlag is a pflag.Value holding a YYYY-MM-DD calendar date
type dateFlag time.Time

// Set implements pflag.Value.
func (f *dateFlag) Set(v string) error {
	date, err := domain.ParseDate(v)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	*f = dateFlag(date)
	return nil
}

// String implements pflag.Value.
func (f *dateFlag) String() string {
	if f == nil || time.Time(*f).IsZero() {
		return ""
	}
	return domain.FormatDate(time.Time(*f))
}

// Type implements pflag.Value.
func (f *dateFlag) Type() string {
	return "date"
}

var (
	_ pflag.Value = (*uuidFlag)(nil)
	_ pflag.Value = (*dateFlag)(nil)
)
