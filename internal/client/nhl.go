package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/metrics"
	"github.com/stat-trick-hockey/ig-pressure/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public NHL web API
const DefaultBaseURL = "https://api-web.nhle.com/v1"

// Client is the NHL web API client
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Options configures a Client
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int           // 0 disables retries
	RetryDelay time.Duration // first backoff step, 1s when zero
}

// NewClient creates a new NHL API client
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 1 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		retryDelay: retryDelay,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// get performs a GET request to the NHL API with optional retry logic
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, status, err := c.do(ctx, endpoint, url, attempt)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		switch status {
		case http.StatusOK:
			return body, nil

		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = &StatusError{Code: status, Body: snippet(body)}
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", status).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
			}
			continue

		default:
			// Other errors - don't retry
			return nil, &StatusError{Code: status, Body: snippet(body)}
		}
	}

	return nil, lastErr
}

// do runs one request and returns the body with its status code
func (c *Client) do(ctx context.Context, endpoint, url string, attempt int) ([]byte, int, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Int("attempt", attempt+1).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.RecordAPICall(endpoint, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request finished")

	return body, resp.StatusCode, nil
}

// FetchSchedule fetches the schedule page for a date (YYYY-MM-DD).
// The API answers with a gameWeek of up to seven days starting at date.
func (c *Client) FetchSchedule(ctx context.Context, date string) (*models.ScheduleResponse, error) {
	body, err := c.get(ctx, "schedule", "schedule/"+date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %s: %w", date, err)
	}

	var schedule models.ScheduleResponse
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule for %s: %w", date, err)
	}

	return &schedule, nil
}

// StatusError is returned for non-200 responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
