package main

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/testutil"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "stats"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestUUIDFlag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "7b0e4a4c-2f7b-4cf4-9d0c-6a3d2f5e8a11"},
		{name: "garbage", input: "owner", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f uuidFlag
			err := f.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, "", f.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, f.String())
			assert.Equal(t, "uuid", f.Type())
		})
	}
}

func TestDateFlag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "2024-03-01"},
		{name: "leap day", input: "2024-02-29"},
		{name: "not a date", input: "2023-02-29", wantErr: true},
		{name: "wrong layout", input: "01/03/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f dateFlag
			err := f.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, f.String())
			assert.Equal(t, testutil.Date(tt.input), time.Time(f))
		})
	}
}

func TestStatsCommand_RequiresOwner(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"stats"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--owner is required")
}

func TestPrintStats(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	ownerID := uuid.MustParse("7b0e4a4c-2f7b-4cf4-9d0c-6a3d2f5e8a11")
	printStats(&buf, ownerID, testutil.Date("2024-03-01"), domain.Stats{
		TotalCards:      12,
		DueToday:        5,
		ReviewedToday:   3,
		AccuracyPercent: 67,
	})

	out := buf.String()
	assert.Contains(t, out, "Stats for 7b0e4a4c-2f7b-4cf4-9d0c-6a3d2f5e8a11 on 2024-03-01")
	assert.Contains(t, out, "Cards:          12")
	assert.Contains(t, out, "Due today:      5")
	assert.Contains(t, out, "Reviewed today: 3")
	assert.Contains(t, out, "Accuracy:       67%")
}

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupExpiredCodes(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestRunCleanupJob_RunsAtStartupAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &countingCleaner{err: errors.New("boom")}

	done := make(chan struct{})
	go func() {
		runCleanupJob(ctx, c, testutil.NewTestLogger())
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup job did not stop")
	}
}
