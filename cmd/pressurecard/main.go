// Command pressurecard builds the daily NHL schedule pressure slides.
//
// Usage:
//
//	pressurecard run
//	pressurecard run --date 2026-01-15 --per 10
//	pressurecard schedule --count 5
//	pressurecard version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/stat-trick-hockey/ig-pressure/internal/config"
	"github.com/stat-trick-hockey/ig-pressure/internal/pipeline"
	"github.com/stat-trick-hockey/ig-pressure/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// defaults until a command loads the configuration
	setupLogger(nil)

	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pressurecard",
		Short:         "Daily NHL schedule pressure slides",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(versionCmd())
	return root
}

// loadConfig reads the configuration and applies its logging settings
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	return cfg, nil
}

func runCmd() *cobra.Command {
	var (
		date        string
		outDir      string
		per         int
		arenas      string
		logo        string
		historyDays int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, score, render and write today's slides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("outdir") {
				cfg.OutputDir = outDir
			}
			if flags.Changed("per") {
				cfg.TeamsPerPage = per
			}
			if flags.Changed("arenas") {
				cfg.ArenasPath = arenas
			}
			if flags.Changed("logo") {
				cfg.LogoPath = logo
			}
			if flags.Changed("history-days") {
				cfg.HistoryDays = historyDays
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log.Info().
				Str("env", cfg.AppEnv).
				Str("timezone", cfg.Timezone).
				Str("outdir", cfg.OutputDir).
				Msg("Configuration loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = pipeline.Run(ctx, cfg, pipeline.Options{Date: date})
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "target date YYYY-MM-DD (default today in PRESSURE_TIMEZONE)")
	cmd.Flags().StringVar(&outDir, "outdir", "", "output root, overrides OUTPUT_DIR")
	cmd.Flags().IntVar(&per, "per", 0, "teams per slide, overrides TEAMS_PER_PAGE")
	cmd.Flags().StringVar(&arenas, "arenas", "", "arena table CSV, overrides ARENAS_CSV_PATH")
	cmd.Flags().StringVar(&logo, "logo", "", "logo image, overrides LOGO_PATH")
	cmd.Flags().IntVar(&historyDays, "history-days", 0, "days of schedule history, overrides HISTORY_DAYS")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the next publish trigger times",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runs, err := scheduler.NextRuns(cfg.PublishCron, time.Now(), count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", cfg.PublishCron)
			for _, t := range runs {
				fmt.Fprintf(out, "  %s\n", t.In(cfg.Location()).Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 3, "number of upcoming runs to show")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pressurecard %s\n", version)
		},
	}
}

// setupLogger configures the zerolog logger from cfg.
// A nil cfg gives JSON on stderr at info level.
func setupLogger(cfg *config.Config) {
	level := zerolog.InfoLevel
	if cfg != nil {
		if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && parsedLevel != zerolog.NoLevel {
			level = parsedLevel
		}
	}

	log.Logger = zerolog.New(logWriter(cfg)).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// logWriter returns the log sink for cfg
func logWriter(cfg *config.Config) io.Writer {
	// Pretty console logging in development
	if cfg != nil && cfg.IsDevelopment() {
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return os.Stderr
}
