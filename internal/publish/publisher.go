// Package publish writes rendered slides into the served output directory.
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stat-trick-hockey/ig-pressure/internal/models"
	"github.com/stat-trick-hockey/ig-pressure/internal/render"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// ErrWrite is returned when the output tree cannot be written
var ErrWrite = errors.New("output write error")

// FileName returns the slide file name: <prefix><date>_p<page>.png
func FileName(prefix, date string, page int) string {
	return fmt.Sprintf("%s%s_p%d.png", prefix, date, page)
}

// PagePath returns the slide path under root
func PagePath(root, prefix, date string, page int) string {
	return filepath.Join(root, FileName(prefix, date, page))
}

// PageURL returns the public URL of a slide, or "" when base is empty
func PageURL(base, prefix, date string, page int) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + FileName(prefix, date, page)
}

// Publisher writes slides to disk
type Publisher struct {
	root    string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewPublisher creates a publisher rooted at root
func NewPublisher(root, prefix, baseURL string, logger zerolog.Logger) *Publisher {
	return &Publisher{root: root, prefix: prefix, baseURL: baseURL, logger: logger}
}

// Publish writes every page for date. Files are replaced atomically so a
// rerun overwrites the previous slides, and pages numbered above the new
// count are removed.
func (p *Publisher) Publish(date string, pages []render.Page) ([]models.CardImage, error) {
	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	cards := make([]models.CardImage, 0, len(pages))
	for _, page := range pages {
		path := PagePath(p.root, p.prefix, date, page.Index)
		if err := renameio.WriteFile(path, page.PNG, 0o644); err != nil {
			return cards, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
		}

		card := models.CardImage{
			PageIndex: page.Index,
			FilePath:  path,
			DateStamp: date,
			URL:       PageURL(p.baseURL, p.prefix, date, page.Index),
		}
		cards = append(cards, card)

		p.logger.Info().
			Int("page", page.Index).
			Str("path", path).
			Msg("Slide written")
	}

	if err := p.removeStale(date, len(pages)); err != nil {
		return cards, err
	}
	return cards, nil
}

// removeStale deletes slides of date numbered above count
func (p *Publisher) removeStale(date string, count int) error {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	head := p.prefix + date + "_p"
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, head) || !strings.HasSuffix(name, ".png") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, head), ".png"))
		if err != nil || n <= count {
			continue
		}
		path := filepath.Join(p.root, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		p.logger.Info().Str("path", path).Msg("Stale slide removed")
	}
	return nil
}
