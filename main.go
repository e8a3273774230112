package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/studyplan/internal/bot"
	"github.com/example/studyplan/internal/config"
	"github.com/example/studyplan/internal/database"
	"github.com/example/studyplan/internal/excel"
	"github.com/example/studyplan/internal/review"
	"github.com/example/studyplan/internal/scheduler"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var envFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "studyplan",
		Short:        "Spaced repetition and study session planner",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "path to an optional .env file")
	root.AddCommand(serveCmd(), migrateCmd(), importCmd(), reportCmd(), rollupCmd())
	return root
}

// setup loads the configuration, installs the logger and connects to the database
func setup() (*config.Config, *database.Store, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := database.Connect(cfg.Driver(), cfg.DBDSN); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, database.NewStore(nil), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := bot.New(cfg, store, nil)
			if err != nil {
				return err
			}

			if cfg.EnableScheduler {
				sched := scheduler.New(store, b, cfg, nil)
				if err := sched.Start(ctx); err != nil {
					return err
				}
				defer sched.Stop()
			}

			slog.Info("bot started, press Ctrl+C to stop")
			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("bot stopped")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := setup(); err != nil {
				return err
			}
			defer database.Close()
			slog.Info("schema is up to date")
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	importConfig := excel.DefaultImportConfig()
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import flashcards from an xlsx or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			importConfig.FilePath = args[0]
			result, err := excel.ImportFlashcards(cmd.Context(), importConfig, review.NewScheduler(nil), store)
			if err != nil {
				return err
			}
			for _, e := range result.Errors {
				slog.Warn("row not imported", "error", e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d, created %d, skipped %d, failed %d\n",
				result.TotalProcessed, result.Created, result.Skipped, len(result.Errors))
			return nil
		},
	}
	cmd.Flags().StringVar(&importConfig.UserID, "user", "", "owner of the cards")
	cmd.Flags().StringVar(&importConfig.GoalID, "goal", "", "goal the cards belong to")
	cmd.Flags().StringVar(&importConfig.SheetName, "sheet", importConfig.SheetName, "sheet to read from xlsx files")
	cmd.Flags().IntVar(&importConfig.StartRow, "start-row", importConfig.StartRow, "first data row (1-based)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func reportCmd() *cobra.Command {
	var userID, from, to string
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Export daily progress records to an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			end := time.Now().In(cfg.Location)
			if to != "" {
				if end, err = time.ParseInLocation(dateLayout, to, cfg.Location); err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
			}
			start := end.AddDate(0, 0, -30)
			if from != "" {
				if start, err = time.ParseInLocation(dateLayout, from, cfg.Location); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
			}

			records, err := store.ProgressRange(cmd.Context(), userID, start, end.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			if err := excel.ExportProgress(args[0], records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d day(s) to %s\n", len(records), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user to report on")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default 30 days ago)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func rollupCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Build the daily progress records for every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			at := time.Now().In(cfg.Location)
			if day != "" {
				if at, err = time.ParseInLocation(dateLayout, day, cfg.Location); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			return scheduler.New(store, nil, cfg, nil).Rollup(cmd.Context(), at)
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "day to roll up, YYYY-MM-DD (default today)")
	return cmd
}
