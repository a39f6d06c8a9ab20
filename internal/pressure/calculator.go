// Package pressure derives per-team schedule pressure scores.
package pressure

import (
	"math"
	"sort"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/arena"
	"github.com/stat-trick-hockey/ig-pressure/internal/models"
)

// Window lengths in days, today included
const (
	DensityShortDays = 4 // 3IN4
	DensityLongDays  = 6 // 4IN6
	TravelDays       = 7
)

// Thresholds above which a metric is flagged on the card
const (
	HotTravelKm   = 3000.0
	HotGamesLast4 = 3
	HotGamesLast6 = 4
)

// Weights scale each metric into the score
type Weights struct {
	BackToBack  float64
	ThreeInFour float64
	FourInSix   float64
	TravelPer1k float64
}

// DefaultWeights returns the weights used when none are configured
func DefaultWeights() Weights {
	return Weights{BackToBack: 2.0, ThreeInFour: 1.0, FourInSix: 0.5, TravelPer1k: 1.0}
}

// Calculator computes pressure scores
type Calculator struct {
	weights Weights
}

// NewCalculator creates a calculator with w
func NewCalculator(w Weights) *Calculator {
	return &Calculator{weights: w}
}

// Result is the output of Compute
type Result struct {
	Scores []models.TeamPressureScore
	// Unknown lists teams found in games but absent from the arena table
	Unknown []string
}

// Compute scores every team of the arena table for target.
// games should cover at least the TravelDays before target. Teams without
// games get the zero baseline. Scores are sorted by score descending, then
// team ascending.
func (c *Calculator) Compute(target time.Time, games []models.GameRecord, table *arena.Table) Result {
	day := civil(target)

	ordered := make([]models.GameRecord, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.GameID < b.GameID
	})

	unknown := map[string]bool{}
	for _, g := range ordered {
		for _, team := range []string{g.AwayTeam, g.HomeTeam} {
			if _, ok := table.Lookup(team); !ok {
				unknown[team] = true
			}
		}
	}

	teams := table.Teams()
	scores := make([]models.TeamPressureScore, 0, len(teams))
	for _, team := range teams {
		s := models.TeamPressureScore{TeamAbbr: team}

		var travelGames []models.GameRecord
		for _, g := range ordered {
			if !g.Involves(team) {
				continue
			}
			d, err := time.Parse(models.DateLayout, g.Date)
			if err != nil || d.After(day) {
				continue
			}
			ago := int(day.Sub(d).Hours() / 24)

			if ago == 0 {
				if s.GamesToday == 0 {
					s.Opponent = g.Opponent(team)
					s.IsHome = g.HomeTeam == team
					s.StartTime = g.StartTime
				}
				s.GamesToday++
			}
			if ago == 1 {
				s.BackToBack = true
			}
			if ago < DensityShortDays {
				s.GamesLast4++
			}
			if ago < DensityLongDays {
				s.GamesLast6++
			}
			if ago < TravelDays {
				travelGames = append(travelGames, g)
			}
		}

		s.TravelKm, s.Travel = travel(travelGames, table)
		s.Score = c.score(s)
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].TeamAbbr < scores[j].TeamAbbr
	})

	res := Result{Scores: scores}
	for team := range unknown {
		res.Unknown = append(res.Unknown, team)
	}
	sort.Strings(res.Unknown)
	return res
}

// score combines the metrics. Unresolved travel contributes nothing.
func (c *Calculator) score(s models.TeamPressureScore) float64 {
	v := c.weights.ThreeInFour*float64(s.GamesLast4) + c.weights.FourInSix*float64(s.GamesLast6)
	if s.BackToBack {
		v += c.weights.BackToBack
	}
	if s.Travel == models.TravelResolved {
		v += c.weights.TravelPer1k * s.TravelKm / 1000
	}
	v = math.Round(v*100) / 100
	if v < 0 {
		return 0
	}
	return v
}

// travel sums the legs between consecutive venues. games are in schedule
// order. Any venue missing from the table makes the result unresolved.
func travel(games []models.GameRecord, table *arena.Table) (float64, models.TravelStatus) {
	if len(games) < 2 {
		return 0, models.TravelNone
	}

	venues := make([]models.ArenaEntry, 0, len(games))
	for _, g := range games {
		a, ok := table.Lookup(g.VenueID)
		if !ok {
			return 0, models.TravelUnresolved
		}
		venues = append(venues, a)
	}

	km := 0.0
	for i := 1; i < len(venues); i++ {
		km += arena.HaversineKm(venues[i-1], venues[i])
	}
	return km, models.TravelResolved
}

// IsHot reports which metrics of s are above their thresholds
func IsHot(s models.TeamPressureScore) (hotTravel, hotLast6, hotLast4, b2b bool) {
	hotTravel = s.Travel == models.TravelResolved && s.TravelKm >= HotTravelKm
	return hotTravel, s.GamesLast6 >= HotGamesLast6, s.GamesLast4 >= HotGamesLast4, s.BackToBack
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
