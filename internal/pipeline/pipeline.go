// Package pipeline runs one daily pressure card build: fetch the schedule
// window, score every team, render the slides and write them out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/arena"
	"github.com/stat-trick-hockey/ig-pressure/internal/client"
	"github.com/stat-trick-hockey/ig-pressure/internal/config"
	"github.com/stat-trick-hockey/ig-pressure/internal/metrics"
	"github.com/stat-trick-hockey/ig-pressure/internal/models"
	"github.com/stat-trick-hockey/ig-pressure/internal/pressure"
	"github.com/stat-trick-hockey/ig-pressure/internal/publish"
	"github.com/stat-trick-hockey/ig-pressure/internal/render"
	"github.com/stat-trick-hockey/ig-pressure/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options tunes a single run
type Options struct {
	// Date is the target date (YYYY-MM-DD). Empty means today in the
	// configured timezone.
	Date string
	// Source replaces the NHL client, used in tests
	Source schedule.Source
	// Now replaces time.Now
	Now func() time.Time
}

// Summary describes a finished run
type Summary struct {
	RunID           string
	Date            string
	Games           int
	GamesToday      int
	Teams           int
	Unknown         []string
	DataUnavailable bool
	Cards           []models.CardImage
}

// Run builds and writes the cards for one date. Missing reference data or
// logo fail the run before anything is written. An unavailable schedule
// does not: the cards are rendered from whatever games were retrieved.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	summary, err := run(ctx, cfg, opts, runID, logger)

	var games, teams, pages int
	if summary != nil {
		games, teams, pages = summary.Games, summary.Teams, len(summary.Cards)
	}
	metrics.RecordRun(games, teams, pages, time.Since(start).Seconds(), err == nil)

	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Warn().Err(werr).Str("path", cfg.MetricsTextfile).Msg("Failed to write metrics textfile")
		}
	}

	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Pressure run failed")
		return summary, err
	}

	logger.Info().
		Str("date", summary.Date).
		Int("games", summary.Games).
		Int("teams", summary.Teams).
		Int("pages", len(summary.Cards)).
		Bool("data_unavailable", summary.DataUnavailable).
		Dur("duration", time.Since(start)).
		Msg("Pressure run complete")
	return summary, nil
}

func run(ctx context.Context, cfg *config.Config, opts Options, runID string, logger zerolog.Logger) (*Summary, error) {
	loc := cfg.Location()

	target, err := targetDate(opts, loc)
	if err != nil {
		metrics.RecordError("pipeline", "invalid_date")
		return nil, err
	}
	date := target.Format(models.DateLayout)
	logger = logger.With().Str("date", date).Logger()

	// reference data and assets, before any output
	table, err := arena.Load(cfg.ArenasPath)
	if err != nil {
		metrics.RecordError("arena", "load")
		return nil, err
	}
	logger.Info().Int("teams", table.Len()).Str("path", cfg.ArenasPath).Msg("Arena table loaded")

	logo, err := render.LoadLogo(cfg.LogoPath)
	if err != nil {
		metrics.RecordError("render", "logo")
		return nil, err
	}

	theme, err := render.LoadTheme(cfg.ThemePath)
	if err != nil {
		metrics.RecordError("render", "theme")
		return nil, err
	}

	// schedule
	source := opts.Source
	if source == nil {
		source = client.NewClient(client.Options{
			BaseURL:    cfg.NHLBaseURL,
			UserAgent:  cfg.NHLUserAgent,
			Timeout:    cfg.NHLTimeout,
			MaxRetries: cfg.NHLMaxRetries,
		})
	}

	summary := &Summary{RunID: runID, Date: date}

	window := schedule.NewWindow(target, cfg.HistoryDays)
	games, err := schedule.NewFetcher(source, logger).FetchWindow(ctx, window)
	switch {
	case errors.Is(err, schedule.ErrDataUnavailable):
		metrics.RecordError("schedule", "unavailable")
		logger.Warn().Err(err).Int("games", len(games)).Msg("Schedule data unavailable, continuing")
		summary.DataUnavailable = true
	case err != nil:
		metrics.RecordError("schedule", "fetch")
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	summary.Games = len(games)
	summary.GamesToday = len(schedule.OnDate(games, date))

	// scores
	calc := pressure.NewCalculator(pressure.Weights{
		BackToBack:  cfg.WeightBackToBack,
		ThreeInFour: cfg.WeightThreeInFour,
		FourInSix:   cfg.WeightFourInSix,
		TravelPer1k: cfg.WeightTravel,
	})
	result := calc.Compute(target, games, table)
	summary.Teams = len(result.Scores)
	summary.Unknown = result.Unknown
	if len(result.Unknown) > 0 {
		logger.Warn().Strs("teams", result.Unknown).Msg("Teams missing from arena table, skipped")
	}

	// slides
	renderer, err := render.NewRenderer(render.Options{
		PerPage:      cfg.TeamsPerPage,
		Location:     loc,
		Theme:        theme,
		Logo:         logo,
		RegularFonts: cfg.FontRegularPaths,
		BoldFonts:    cfg.FontBoldPaths,
		Logger:       logger,
	})
	if err != nil {
		metrics.RecordError("render", "init")
		return nil, err
	}
	defer renderer.Close()

	pages, err := renderer.Render(result.Scores, render.Meta{
		Date:            date,
		GamesToday:      summary.GamesToday,
		DataUnavailable: summary.DataUnavailable,
	})
	if err != nil {
		metrics.RecordError("render", "draw")
		return nil, err
	}

	cards, err := publish.NewPublisher(cfg.OutputDir, cfg.OutputPrefix, cfg.PagesBaseURL, logger).Publish(date, pages)
	summary.Cards = cards
	if err != nil {
		metrics.RecordError("publish", "write")
		return summary, err
	}

	for _, c := range cards {
		if c.URL != "" {
			logger.Info().Int("page", c.PageIndex).Str("url", c.URL).Msg("Slide published")
		}
	}

	return summary, nil
}

// targetDate resolves the run date in loc
func targetDate(opts Options, loc *time.Location) (time.Time, error) {
	if opts.Date != "" {
		t, err := time.ParseInLocation(models.DateLayout, opts.Date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", opts.Date, err)
		}
		return t, nil
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	y, m, d := now().In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}
