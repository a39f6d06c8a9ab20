package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Config holds all application configuration
type Config struct {
	// NHL web API
	NHLBaseURL    string        `envconfig:"NHL_API_BASE_URL" default:"https://api-web.nhle.com/v1"`
	NHLTimeout    time.Duration `envconfig:"NHL_API_TIMEOUT" default:"20s"`
	NHLMaxRetries int           `envconfig:"NHL_API_MAX_RETRIES" default:"0"`
	NHLUserAgent  string        `envconfig:"NHL_API_USER_AGENT" default:"Mozilla/5.0 (compatible; StatTrickPressure/1.0)"`

	// Run window
	Timezone    string `envconfig:"PRESSURE_TIMEZONE" default:"America/Toronto"`
	HistoryDays int    `envconfig:"HISTORY_DAYS" default:"14"`

	// Local assets
	ArenasPath string `envconfig:"ARENAS_CSV_PATH" default:"assets/nhl_arenas.csv"`
	LogoPath   string `envconfig:"LOGO_PATH" default:"assets/stat_trick_logo.png"`
	ThemePath  string `envconfig:"CARD_THEME_PATH" default:""`

	// Fonts are tried in order; the built-in bitmap face is used when none load
	FontRegularPaths []string `envconfig:"FONT_REGULAR_PATHS" default:"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf,/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf"`
	FontBoldPaths    []string `envconfig:"FONT_BOLD_PATHS" default:"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf,/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf"`

	// Rendering
	TeamsPerPage int `envconfig:"TEAMS_PER_PAGE" default:"8"`

	// Pressure score weights
	WeightBackToBack  float64 `envconfig:"WEIGHT_B2B" default:"2.0"`
	WeightThreeInFour float64 `envconfig:"WEIGHT_3IN4" default:"1.0"`
	WeightFourInSix   float64 `envconfig:"WEIGHT_4IN6" default:"0.5"`
	WeightTravel      float64 `envconfig:"WEIGHT_TRAVEL" default:"1.0"` // per 1000 km

	// Output
	OutputDir    string `envconfig:"OUTPUT_DIR" default:"docs/ig_pressure"`
	OutputPrefix string `envconfig:"OUTPUT_PREFIX" default:""`
	PagesBaseURL string `envconfig:"PAGES_BASE_URL" default:""`

	// Trigger schedule used by the CI workflow
	PublishCron string `envconfig:"PUBLISH_CRON" default:"CRON_TZ=America/Toronto 0 6 * * *"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE" default:""`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.NHLBaseURL == "" {
		return fmt.Errorf("NHL_API_BASE_URL is required")
	}

	if c.NHLMaxRetries < 0 {
		return fmt.Errorf("NHL_API_MAX_RETRIES must be >= 0, got %d", c.NHLMaxRetries)
	}

	if c.HistoryDays < 6 {
		// travel looks back 7 days including today
		return fmt.Errorf("HISTORY_DAYS must be >= 6, got %d", c.HistoryDays)
	}

	if c.TeamsPerPage < 1 {
		return fmt.Errorf("TEAMS_PER_PAGE must be >= 1, got %d", c.TeamsPerPage)
	}

	if c.WeightBackToBack < 0 || c.WeightThreeInFour < 0 || c.WeightFourInSix < 0 || c.WeightTravel < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}

	if c.ArenasPath == "" {
		return fmt.Errorf("ARENAS_CSV_PATH is required")
	}

	if c.LogoPath == "" {
		return fmt.Errorf("LOGO_PATH is required")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid PRESSURE_TIMEZONE %q: %w", c.Timezone, err)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}

	if _, err := cron.ParseStandard(c.PublishCron); err != nil {
		return fmt.Errorf("invalid PUBLISH_CRON %q: %w", c.PublishCron, err)
	}

	return nil
}

// Location returns the timezone used to pick "today" and format start times.
// Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
