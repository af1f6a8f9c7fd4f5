package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"interlinear/internal/config"
	"interlinear/internal/domain"
	"interlinear/internal/repository/postgres"
	"interlinear/internal/service"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	var (
		owner uuidFlag
		date  dateFlag
	)

	command := &cobra.Command{
		Use:   "stats",
		Short: "Print an owner's review stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID := uuid.UUID(owner)
			if ownerID == uuid.Nil {
				return errors.New("--owner is required")
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := connectDatabase(cmd.Context(), cfg.DSN(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			cardService := service.NewFlashcardService(postgres.NewFlashcardRepo(db), logger, service.WithLocation(loc))

			asOf := time.Time(date)
			if asOf.IsZero() {
				asOf = cardService.Today(cmd.Context())
			}

			stats, err := cardService.GetStats(cmd.Context(), ownerID, asOf)
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			printStats(cmd.OutOrStdout(), ownerID, asOf, *stats)
			return nil
		},
	}

	flags := command.Flags()
	flags.Var(&owner, "owner", "owner id")
	flags.Var(&date, "date", "calendar date as YYYY-MM-DD (default today)")

	return command
}

func printStats(w io.Writer, ownerID uuid.UUID, asOf time.Time, stats domain.Stats) {
	bold := color.New(color.Bold)
	accuracy := color.New(color.FgGreen)
	switch {
	case stats.AccuracyPercent < 50:
		accuracy = color.New(color.FgRed)
	case stats.AccuracyPercent < 80:
		accuracy = color.New(color.FgYellow)
	}

	bold.Fprintf(w, "Stats for %s on %s\n", ownerID, domain.FormatDate(asOf))
	fmt.Fprintf(w, "  Cards:          %d\n", stats.TotalCards)
	fmt.Fprintf(w, "  Due today:      %d\n", stats.DueToday)
	fmt.Fprintf(w, "  Reviewed today: %d\n", stats.ReviewedToday)
	fmt.Fprint(w, "  Accuracy:       ")
	accuracy.Fprintf(w, "%d%%\n", stats.AccuracyPercent)
}
