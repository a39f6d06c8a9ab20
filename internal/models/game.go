package models

import (
	"strings"
	"time"
)

// DateLayout is the civil date format used by the NHL API and in output names
const DateLayout = "2006-01-02"

// GameRecord is a single scheduled NHL game within the query window
type GameRecord struct {
	GameID    int64
	Date      string // YYYY-MM-DD, venue-local as reported by the schedule
	HomeTeam  string
	AwayTeam  string
	VenueID   string // arenas are keyed by their home team
	VenueName string
	StartTime time.Time // UTC; zero when the API omits it
}

// Involves reports whether team plays in the game
func (g GameRecord) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// Opponent returns the other team for team, or "" if team does not play
func (g GameRecord) Opponent(team string) string {
	switch team {
	case g.HomeTeam:
		return g.AwayTeam
	case g.AwayTeam:
		return g.HomeTeam
	default:
		return ""
	}
}

// ScheduleResponse is the body of GET /schedule/{date}
type ScheduleResponse struct {
	GameWeek []ScheduleDay `json:"gameWeek"`
	Games    []GameInput   `json:"games"`
}

// ScheduleDay groups the games of one date in a gameWeek page
type ScheduleDay struct {
	Date  string      `json:"date"`
	Games []GameInput `json:"games"`
}

// GameInput is a game as returned by the NHL web API
type GameInput struct {
	ID           int64     `json:"id"`
	GameDate     string    `json:"gameDate"`
	GameType     int       `json:"gameType"`
	GameState    string    `json:"gameState"`
	StartTimeUTC string    `json:"startTimeUTC"`
	StartTime    string    `json:"startTime"`
	Venue        LocalName `json:"venue"`
	AwayTeam     TeamInput `json:"awayTeam"`
	HomeTeam     TeamInput `json:"homeTeam"`
}

// LocalName is the NHL API's localized string object
type LocalName struct {
	Default string `json:"default"`
}

// TeamInput identifies a team inside a GameInput
type TeamInput struct {
	ID         int       `json:"id"`
	Abbrev     string    `json:"abbrev"`
	TriCode    string    `json:"triCode"`
	TeamAbbrev string    `json:"teamAbbrev"`
	PlaceName  LocalName `json:"placeName"`
}

// Abbreviation returns the upper-cased team code, trying the fields the
// API has used over time. Returns "UNK" when none is set.
func (ti TeamInput) Abbreviation() string {
	for _, v := range []string{ti.Abbrev, ti.TriCode, ti.TeamAbbrev} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.ToUpper(v)
		}
	}
	return "UNK"
}

// ToGameRecord converts GameInput (from API) to a GameRecord.
// day is the gameWeek date the game was listed under and is used when the
// game carries no gameDate of its own.
func (gi *GameInput) ToGameRecord(day string) GameRecord {
	home := gi.HomeTeam.Abbreviation()
	rec := GameRecord{
		GameID:    gi.ID,
		Date:      gi.GameDate,
		HomeTeam:  home,
		AwayTeam:  gi.AwayTeam.Abbreviation(),
		VenueID:   home,
		VenueName: gi.Venue.Default,
	}
	if rec.Date == "" {
		rec.Date = day
	}

	start := gi.StartTimeUTC
	if start == "" {
		start = gi.StartTime
	}
	if t, err := time.Parse(time.RFC3339, start); err == nil {
		rec.StartTime = t.UTC()
	}

	return rec
}
