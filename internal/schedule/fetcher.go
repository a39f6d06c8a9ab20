// Package schedule assembles the game records of a date window from the
// NHL schedule API.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/models"

	"github.com/rs/zerolog"
)

// ErrDataUnavailable is returned when the upstream API fails or has no games
// for the window. It is not fatal: callers render an empty-state card.
var ErrDataUnavailable = errors.New("schedule data unavailable")

// weekSpan is the number of days one schedule page covers
const weekSpan = 7

// Source is the subset of the NHL client used by the fetcher
type Source interface {
	FetchSchedule(ctx context.Context, date string) (*models.ScheduleResponse, error)
}

// Window is an inclusive range of civil dates
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window of historyDays before target up to target
func NewWindow(target time.Time, historyDays int) Window {
	day := civil(target)
	return Window{Start: day.AddDate(0, 0, -historyDays), End: day}
}

// Contains reports whether the YYYY-MM-DD date lies in the window
func (w Window) Contains(date string) bool {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return false
	}
	return !d.Before(civil(w.Start)) && !d.After(civil(w.End))
}

// Fetcher retrieves the games of a window
type Fetcher struct {
	source Source
	logger zerolog.Logger
}

// NewFetcher creates a fetcher over source
func NewFetcher(source Source, logger zerolog.Logger) *Fetcher {
	return &Fetcher{source: source, logger: logger}
}

// FetchWindow returns every game dated inside w, sorted by start time.
// Pages that fail are skipped; when any page failed or no games were found
// the error wraps ErrDataUnavailable and the games that were retrieved are
// still returned.
func (f *Fetcher) FetchWindow(ctx context.Context, w Window) ([]models.GameRecord, error) {
	seen := make(map[int64]bool)
	var games []models.GameRecord
	var failures []error

	for page := civil(w.Start); !page.After(civil(w.End)); page = page.AddDate(0, 0, weekSpan) {
		date := page.Format(models.DateLayout)

		resp, err := f.source.FetchSchedule(ctx, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warn().Err(err).Str("page", date).Msg("Schedule page unavailable")
			failures = append(failures, err)
			continue
		}

		added := 0
		for _, rec := range flatten(resp) {
			if !w.Contains(rec.Date) || seen[rec.GameID] {
				continue
			}
			seen[rec.GameID] = true
			games = append(games, rec)
			added++
		}

		f.logger.Debug().
			Str("page", date).
			Int("games", added).
			Msg("Schedule page fetched")
	}

	sortGames(games)

	switch {
	case len(failures) > 0:
		return games, fmt.Errorf("%w: %d of %d pages failed: %w", ErrDataUnavailable, len(failures), pageCount(w), failures[0])
	case len(games) == 0:
		return games, fmt.Errorf("%w: no games between %s and %s", ErrDataUnavailable,
			w.Start.Format(models.DateLayout), w.End.Format(models.DateLayout))
	}

	return games, nil
}

// OnDate returns the games dated date, preserving order
func OnDate(games []models.GameRecord, date string) []models.GameRecord {
	var out []models.GameRecord
	for _, g := range games {
		if g.Date == date {
			out = append(out, g)
		}
	}
	return out
}

// flatten converts a schedule page into records. Days come from gameWeek;
// a bare games array is accepted when gameWeek is absent.
func flatten(resp *models.ScheduleResponse) []models.GameRecord {
	if resp == nil {
		return nil
	}

	var out []models.GameRecord
	for _, day := range resp.GameWeek {
		for i := range day.Games {
			out = append(out, day.Games[i].ToGameRecord(day.Date))
		}
	}
	if len(out) == 0 {
		for i := range resp.Games {
			out = append(out, resp.Games[i].ToGameRecord(""))
		}
	}
	return out
}

func sortGames(games []models.GameRecord) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.GameID < b.GameID
	})
}

func pageCount(w Window) int {
	days := int(civil(w.End).Sub(civil(w.Start)).Hours()/24) + 1
	return (days + weekSpan - 1) / weekSpan
}

// civil drops the clock and zone, keeping the calendar date
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
