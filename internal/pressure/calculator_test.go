package pressure

import (
	"strings"
	"testing"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/arena"
	"github.com/stat-trick-hockey/ig-pressure/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArenas = `team_abbr,arena,lat,lon
TOR,Scotiabank Arena,43.6435,-79.3791
MTL,Bell Centre,45.4961,-73.5693
VAN,Rogers Arena,49.2778,-123.1089
BOS,TD Garden,42.3662,-71.0621
`

var target = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func testTable(t *testing.T) *arena.Table {
	t.Helper()
	table, err := arena.LoadFromReader(strings.NewReader(testArenas))
	require.NoError(t, err)
	return table
}

func game(id int64, date, away, home string) models.GameRecord {
	start, _ := time.Parse(time.RFC3339, date+"T23:00:00Z")
	return models.GameRecord{GameID: id, Date: date, AwayTeam: away, HomeTeam: home, VenueID: home, StartTime: start}
}

func byTeam(scores []models.TeamPressureScore) map[string]models.TeamPressureScore {
	out := make(map[string]models.TeamPressureScore, len(scores))
	for _, s := range scores {
		out[s.TeamAbbr] = s
	}
	return out
}

func TestCalculator_Compute_OneScorePerTeam(t *testing.T) {
	table := testTable(t)
	res := NewCalculator(DefaultWeights()).Compute(target, nil, table)

	require.Len(t, res.Scores, table.Len(), "Every team of the table should be scored")
	for _, s := range res.Scores {
		assert.Zero(t, s.Score, "No games should give the baseline score for %s", s.TeamAbbr)
		assert.False(t, s.PlaysToday())
		assert.Equal(t, models.TravelNone, s.Travel)
	}

	// ties break on team ascending
	teams := make([]string, 0, len(res.Scores))
	for _, s := range res.Scores {
		teams = append(teams, s.TeamAbbr)
	}
	assert.Equal(t, []string{"BOS", "MTL", "TOR", "VAN"}, teams)
	assert.Empty(t, res.Unknown)
}

func TestCalculator_Compute_BackToBackAndTravel(t *testing.T) {
	games := []models.GameRecord{
		game(1, "2026-01-14", "TOR", "MTL"),
		game(2, "2026-01-15", "BOS", "TOR"),
		game(3, "2026-01-16", "VAN", "TOR"), // after target, ignored
	}

	res := NewCalculator(DefaultWeights()).Compute(target, games, testTable(t))
	scores := byTeam(res.Scores)

	tor := scores["TOR"]
	assert.True(t, tor.BackToBack)
	assert.Equal(t, 1, tor.GamesToday)
	assert.Equal(t, "BOS", tor.Opponent)
	assert.True(t, tor.IsHome)
	assert.Equal(t, 2, tor.GamesLast4)
	assert.Equal(t, 2, tor.GamesLast6)
	assert.Equal(t, models.TravelResolved, tor.Travel)
	assert.InDelta(t, 504, tor.TravelKm, 5, "Montreal to Toronto")
	assert.InDelta(t, 5.5, tor.Score, 0.01)

	mtl := scores["MTL"]
	assert.True(t, mtl.BackToBack)
	assert.False(t, mtl.PlaysToday())
	assert.Equal(t, models.TravelNone, mtl.Travel)
	assert.InDelta(t, 3.5, mtl.Score, 1e-9)

	bos := scores["BOS"]
	assert.False(t, bos.BackToBack)
	assert.False(t, bos.IsHome)
	assert.Equal(t, "TOR", bos.Opponent)
	assert.InDelta(t, 1.5, bos.Score, 1e-9)

	assert.Zero(t, scores["VAN"].Score)

	order := []string{res.Scores[0].TeamAbbr, res.Scores[1].TeamAbbr, res.Scores[2].TeamAbbr, res.Scores[3].TeamAbbr}
	assert.Equal(t, []string{"TOR", "MTL", "BOS", "VAN"}, order, "Scores should sort descending")
}

func TestCalculator_Compute_DensityWindows(t *testing.T) {
	// VAN plays four in six days, three of them in the last four
	games := []models.GameRecord{
		game(1, "2026-01-08", "VAN", "TOR"), // outside 4IN6 and travel windows
		game(2, "2026-01-10", "VAN", "MTL"),
		game(3, "2026-01-12", "VAN", "BOS"),
		game(4, "2026-01-13", "TOR", "VAN"),
		game(5, "2026-01-15", "MTL", "VAN"),
	}

	res := NewCalculator(DefaultWeights()).Compute(target, games, testTable(t))
	van := byTeam(res.Scores)["VAN"]

	assert.Equal(t, 3, van.GamesLast4)
	assert.Equal(t, 4, van.GamesLast6)
	assert.False(t, van.BackToBack)

	hotTravel, hot6, hot4, b2b := IsHot(van)
	assert.True(t, hotTravel, "MTL-BOS-VAN-VAN is over 3000 km")
	assert.True(t, hot6)
	assert.True(t, hot4)
	assert.False(t, b2b)
}

func TestCalculator_Compute_UnknownTeams(t *testing.T) {
	games := []models.GameRecord{
		game(1, "2026-01-12", "TOR", "SEA"),
		game(2, "2026-01-15", "MTL", "TOR"),
	}

	res := NewCalculator(DefaultWeights()).Compute(target, games, testTable(t))
	assert.Equal(t, []string{"SEA"}, res.Unknown)
	assert.Len(t, res.Scores, 4, "Unknown teams should not be scored")

	tor := byTeam(res.Scores)["TOR"]
	assert.Equal(t, models.TravelUnresolved, tor.Travel)
	assert.Zero(t, tor.TravelKm)
	assert.InDelta(t, 1.0*2+0.5*2, tor.Score, 1e-9, "Unresolved travel should not add to the score")

	hotTravel, _, _, _ := IsHot(tor)
	assert.False(t, hotTravel)
}

func TestCalculator_Compute_OnlyOwnGames(t *testing.T) {
	games := []models.GameRecord{
		game(1, "2026-01-14", "MTL", "BOS"),
		game(2, "2026-01-15", "BOS", "MTL"),
		game(3, "2026-01-15", "SEA", "VAN"),
	}

	scores := byTeam(NewCalculator(DefaultWeights()).Compute(target, games, testTable(t)).Scores)
	assert.Equal(t, 2, scores["BOS"].GamesLast4)
	assert.Equal(t, 2, scores["MTL"].GamesLast4)
	assert.Equal(t, 1, scores["VAN"].GamesToday, "Games against unknown teams still count for the known side")
	assert.Zero(t, scores["TOR"].GamesLast6, "Teams should only see games they play in")
	assert.Zero(t, scores["TOR"].Score)
}

func TestCalculator_Compute_Deterministic(t *testing.T) {
	games := []models.GameRecord{
		game(1, "2026-01-11", "BOS", "VAN"),
		game(2, "2026-01-13", "BOS", "TOR"),
		game(3, "2026-01-14", "MTL", "BOS"),
		game(4, "2026-01-15", "VAN", "MTL"),
	}
	reversed := make([]models.GameRecord, len(games))
	for i, g := range games {
		reversed[len(games)-1-i] = g
	}

	calc := NewCalculator(DefaultWeights())
	a := calc.Compute(target, games, testTable(t))
	b := calc.Compute(target, reversed, testTable(t))

	assert.Equal(t, a, b, "Input order should not change the result")
}

func TestCalculator_Compute_Weights(t *testing.T) {
	games := []models.GameRecord{
		game(1, "2026-01-14", "TOR", "MTL"),
		game(2, "2026-01-15", "BOS", "TOR"),
	}

	res := NewCalculator(Weights{BackToBack: 10}).Compute(target, games, testTable(t))
	assert.InDelta(t, 10, byTeam(res.Scores)["TOR"].Score, 1e-9)
	assert.Zero(t, byTeam(res.Scores)["BOS"].Score)
}
