package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeamInput_Abbreviation(t *testing.T) {
	assert.Equal(t, "TOR", TeamInput{Abbrev: " tor "}.Abbreviation())
	assert.Equal(t, "MTL", TeamInput{TriCode: "MTL"}.Abbreviation())
	assert.Equal(t, "BOS", TeamInput{TeamAbbrev: "bos"}.Abbreviation())
	assert.Equal(t, "UNK", TeamInput{}.Abbreviation())
}

func TestGameInput_ToGameRecord(t *testing.T) {
	gi := &GameInput{
		ID:        42,
		StartTime: "2026-01-15T19:00:00-05:00",
		Venue:     LocalName{Default: "Bell Centre"},
		AwayTeam:  TeamInput{Abbrev: "TOR"},
		HomeTeam:  TeamInput{Abbrev: "MTL"},
	}

	rec := gi.ToGameRecord("2026-01-15")
	assert.Equal(t, int64(42), rec.GameID)
	assert.Equal(t, "2026-01-15", rec.Date, "Day should fill a missing gameDate")
	assert.Equal(t, "MTL", rec.VenueID)
	assert.Equal(t, "Bell Centre", rec.VenueName)
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), rec.StartTime)

	assert.True(t, rec.Involves("TOR"))
	assert.False(t, rec.Involves("BOS"))
	assert.Equal(t, "MTL", rec.Opponent("TOR"))
	assert.Equal(t, "TOR", rec.Opponent("MTL"))
	assert.Equal(t, "", rec.Opponent("BOS"))

	gi.StartTime = "tbd"
	gi.GameDate = "2026-01-14"
	rec = gi.ToGameRecord("2026-01-15")
	assert.Equal(t, "2026-01-14", rec.Date)
	assert.True(t, rec.StartTime.IsZero())
}

func TestTravelStatus_String(t *testing.T) {
	assert.Equal(t, "none", TravelNone.String())
	assert.Equal(t, "resolved", TravelResolved.String())
	assert.Equal(t, "unresolved", TravelUnresolved.String())
}
