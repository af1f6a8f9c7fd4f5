package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-12-12 20:30 UTC is already the 13th in Tokyo and still the 12th in New York
	instant := time.Date(2024, 12, 12, 20, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		loc      *time.Location
		expected time.Time
	}{
		{
			name:     "utc",
			loc:      time.UTC,
			expected: time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "ahead of utc",
			loc:      tokyo,
			expected: time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "behind utc",
			loc:      newYork,
			expected: time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "nil location defaults to utc",
			loc:      nil,
			expected: time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DateOf(instant, tt.loc))
		})
	}
}

func TestParseAndFormatDate(t *testing.T) {
	date, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "2024-02-29", FormatDate(date))

	_, err = ParseDate("20240229")
	assert.Error(t, err)
}

func TestAddDays_CrossesMonthAndYear(t *testing.T) {
	date := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), AddDays(date, 30))
}

func TestDayBounds(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	start, end := DayBounds(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), madrid)

	assert.Equal(t, time.Date(2024, 6, 14, 22, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2024, 6, 15, 22, 0, 0, 0, time.UTC), end.UTC())
}

func TestDisplayDate(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{name: "today", date: today, expected: "today"},
		{name: "tomorrow", date: AddDays(today, 1), expected: "tomorrow"},
		{name: "later", date: AddDays(today, 4), expected: "19 Jun 2024"},
		{name: "past", date: AddDays(today, -2), expected: "overdue since 13 Jun 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayDate(tt.date, today))
		})
	}
}

func TestLocationContext(t *testing.T) {
	_, ok := LocationFromContext(context.Background())
	assert.False(t, ok)

	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	loc, ok := LocationFromContext(WithLocation(context.Background(), lima))
	assert.True(t, ok)
	assert.Equal(t, lima, loc)
}
