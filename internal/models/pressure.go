package models

import "time"

// TravelStatus describes how TravelKm was obtained
type TravelStatus int

const (
	// TravelNone means fewer than two games in the travel window
	TravelNone TravelStatus = iota
	// TravelResolved means every venue in the window had coordinates
	TravelResolved
	// TravelUnresolved means at least one venue was missing from the arena table
	TravelUnresolved
)

// String returns the status name used in logs
func (s TravelStatus) String() string {
	switch s {
	case TravelResolved:
		return "resolved"
	case TravelUnresolved:
		return "unresolved"
	default:
		return "none"
	}
}

// TeamPressureScore is the derived schedule load of one team for a run date
type TeamPressureScore struct {
	TeamAbbr string
	Score    float64

	// Today's game, if any
	GamesToday int
	Opponent   string
	IsHome     bool
	StartTime  time.Time

	// Density
	BackToBack bool
	GamesLast4 int // 3IN4 window, today included
	GamesLast6 int // 4IN6 window, today included

	// Travel over the last 7 days
	TravelKm float64
	Travel   TravelStatus
}

// PlaysToday returns true if the team has a game on the run date
func (s *TeamPressureScore) PlaysToday() bool {
	return s.GamesToday > 0
}
