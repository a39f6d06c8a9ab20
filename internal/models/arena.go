package models

// ArenaEntry maps a team to the coordinates of its home arena
type ArenaEntry struct {
	TeamAbbr  string
	Name      string
	Latitude  float64
	Longitude float64
}
