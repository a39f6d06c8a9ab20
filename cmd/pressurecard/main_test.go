package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/arena"
	"github.com/stat-trick-hockey/ig-pressure/internal/config"
	"github.com/stat-trick-hockey/ig-pressure/internal/render"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArenas = `team_abbr,arena,lat,lon
TOR,Scotiabank Arena,43.6435,-79.3791
MTL,Bell Centre,45.4961,-73.5693
VAN,Rogers Arena,49.2778,-123.1089
BOS,TD Garden,42.3662,-71.0621
`

const scheduleBody = `{"gameWeek":[{"date":"2026-01-15","games":[
{"id":1,"gameDate":"2026-01-15","startTimeUTC":"2026-01-16T00:00:00Z","awayTeam":{"abbrev":"BOS"},"homeTeam":{"abbrev":"TOR"}}]}]}`

// workdir moves the test into an empty directory so no .env leaks in,
// and restores the logger and its env vars afterwards
func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides a set var, even an empty one
	for _, key := range []string{"LOG_LEVEL", "APP_ENV"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	level, logger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		log.Logger = logger
	})
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func writeAssets(t *testing.T, dir string) (arenas, logo string) {
	t.Helper()
	arenas = filepath.Join(dir, "arenas.csv")
	require.NoError(t, os.WriteFile(arenas, []byte(testArenas), 0o644))

	logo = filepath.Join(dir, "logo.png")
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	img.Set(16, 16, color.White)
	f, err := os.Create(logo)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return arenas, logo
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pressurecard dev\n", out)
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	workdir(t)

	_, err := execute(t, "publish")
	assert.Error(t, err, "Unknown subcommands should fail so main exits non-zero")
}

func TestScheduleCmd(t *testing.T) {
	workdir(t)
	t.Setenv("PUBLISH_CRON", "CRON_TZ=America/Toronto 0 6 * * *")

	out, err := execute(t, "schedule", "--count", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3, "Expression then one line per run")
	assert.Equal(t, "CRON_TZ=America/Toronto 0 6 * * *", lines[0])

	var prev time.Time
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "  "), "Runs should be indented: %q", line)
		at, err := time.Parse(time.RFC1123, strings.TrimSpace(line))
		require.NoError(t, err)
		assert.Equal(t, 6, at.Hour(), "Runs should print in the configured timezone")
		assert.True(t, at.After(prev))
		prev = at
	}
}

func TestScheduleCmd_InvalidCron(t *testing.T) {
	workdir(t)
	t.Setenv("PUBLISH_CRON", "daily")

	out, err := execute(t, "schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUBLISH_CRON")
	assert.Empty(t, out)
}

func TestRunCmd_InvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short history", []string{"--history-days", "3"}, "HISTORY_DAYS"},
		{"zero per page", []string{"--per", "0"}, "TEAMS_PER_PAGE"},
		{"empty arenas", []string{"--arenas", ""}, "ARENAS_CSV_PATH"},
		{"empty outdir", []string{"--outdir", ""}, "OUTPUT_DIR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := workdir(t)

			_, err := execute(t, append([]string{"run", "--date", "2026-01-15"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NoDirExists(t, filepath.Join(dir, "docs"), "Nothing should be written on invalid flags")
		})
	}
}

func TestRunCmd_AssetOverrides(t *testing.T) {
	dir := workdir(t)
	t.Setenv("NHL_API_BASE_URL", "http://127.0.0.1:0")
	arenas, logo := writeAssets(t, dir)
	out := filepath.Join(dir, "out")

	_, err := execute(t, "run", "--date", "2026-01-15", "--outdir", out, "--logo", logo,
		"--arenas", filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, arena.ErrReferenceData)

	_, err = execute(t, "run", "--date", "2026-01-15", "--outdir", out, "--arenas", arenas,
		"--logo", filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, render.ErrLogo)

	assert.NoDirExists(t, out)
}

func TestRunCmd(t *testing.T) {
	dir := workdir(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleBody))
	}))
	defer srv.Close()

	t.Setenv("NHL_API_BASE_URL", srv.URL)
	t.Setenv("FONT_REGULAR_PATHS", filepath.Join(dir, "none.ttf"))
	t.Setenv("FONT_BOLD_PATHS", filepath.Join(dir, "none-bold.ttf"))
	arenas, logo := writeAssets(t, dir)
	out := filepath.Join(dir, "out")

	_, err := execute(t, "run", "--date", "2026-01-15", "--outdir", out, "--per", "3",
		"--arenas", arenas, "--logo", logo, "--history-days", "7")
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"2026-01-15_p1.png", "2026-01-15_p2.png"}, names, "Four teams at three per page")
	assert.NoDirExists(t, filepath.Join(dir, "docs"), "--outdir should replace OUTPUT_DIR")
}

func TestSetupLogger_Defaults(t *testing.T) {
	workdir(t)

	setupLogger(nil)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Equal(t, os.Stderr, logWriter(nil))
}

func TestSetupLogger_DotEnv(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nAPP_ENV=development\n"), 0o644))

	setupLogger(nil)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	_, err := execute(t, "schedule", "--count", "1")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel(), "LOG_LEVEL from .env should reach the logger")

	cfg, err := config.Load()
	require.NoError(t, err)
	_, console := logWriter(cfg).(zerolog.ConsoleWriter)
	assert.True(t, console, "APP_ENV=development from .env should switch to console output")
}

func TestSetupLogger_Level(t *testing.T) {
	workdir(t)

	setupLogger(&config.Config{LogLevel: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogger(&config.Config{})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel(), "An empty level should fall back to info")
}
