// Package arena loads the arena coordinate reference table.
//
// The table is a CSV file curated by hand. Two layouts are accepted:
//
//   - with a header row naming team_abbr, lat and lon (and optionally
//     arena or name), in any column order;
//   - without a header, where column 0 is the team, 4 the latitude and
//     5 the longitude.
//
// Any defect in the file is fatal for the run.
package arena

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/stat-trick-hockey/ig-pressure/internal/models"
)

// ErrReferenceData is returned when the arena table is missing or malformed
var ErrReferenceData = errors.New("arena reference data error")

// Positional columns of the headerless layout
const (
	posTeam = 0
	posLat  = 4
	posLon  = 5
)

// Table maps team abbreviations to their home arena
type Table struct {
	entries map[string]models.ArenaEntry
	teams   []string
}

// Load reads the arena table at path
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReferenceData, err)
	}
	defer f.Close()

	t, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadFromReader parses an arena table from r
func LoadFromReader(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReferenceData, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table is empty", ErrReferenceData)
	}

	cols, hasHeader, err := columns(rows[0])
	if err != nil {
		return nil, err
	}

	data := rows
	firstLine := 1
	if hasHeader {
		data = rows[1:]
		firstLine = 2
	}

	t := &Table{entries: make(map[string]models.ArenaEntry, len(data))}
	for i, row := range data {
		line := firstLine + i
		if isBlank(row) {
			continue
		}

		entry, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrReferenceData, line, err)
		}
		if _, dup := t.entries[entry.TeamAbbr]; dup {
			return nil, fmt.Errorf("%w: row %d: duplicate team %s", ErrReferenceData, line, entry.TeamAbbr)
		}
		t.entries[entry.TeamAbbr] = entry
	}

	if len(t.entries) == 0 {
		return nil, fmt.Errorf("%w: table has no arenas", ErrReferenceData)
	}

	t.teams = make([]string, 0, len(t.entries))
	for team := range t.entries {
		t.teams = append(t.teams, team)
	}
	sort.Strings(t.teams)

	return t, nil
}

// Lookup returns the arena of team
func (t *Table) Lookup(team string) (models.ArenaEntry, bool) {
	e, ok := t.entries[strings.ToUpper(team)]
	return e, ok
}

// Teams returns every team abbreviation in ascending order
func (t *Table) Teams() []string {
	out := make([]string, len(t.teams))
	copy(out, t.teams)
	return out
}

// Len returns the number of arenas
func (t *Table) Len() int {
	return len(t.entries)
}

// HaversineKm returns the great-circle distance between two arenas
func HaversineKm(a, b models.ArenaEntry) float64 {
	const earthRadiusKm = 6371.0

	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

type columnSet struct {
	team, lat, lon, name int
}

func (c columnSet) maxIndex() int {
	return max(c.team, c.lat, c.lon)
}

// columns inspects the first row and decides the layout
func columns(first []string) (columnSet, bool, error) {
	idx := make(map[string]int, len(first))
	for i, h := range first {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	_, hasTeam := idx["team_abbr"]
	_, hasLat := idx["lat"]
	_, hasLon := idx["lon"]
	if !hasTeam && !hasLat && !hasLon {
		return columnSet{team: posTeam, lat: posLat, lon: posLon, name: -1}, false, nil
	}
	if !hasTeam || !hasLat || !hasLon {
		return columnSet{}, true, fmt.Errorf("%w: header must include team_abbr, lat, lon", ErrReferenceData)
	}

	cols := columnSet{team: idx["team_abbr"], lat: idx["lat"], lon: idx["lon"], name: -1}
	for _, key := range []string{"arena", "name"} {
		if i, ok := idx[key]; ok {
			cols.name = i
			break
		}
	}
	return cols, true, nil
}

func parseRow(row []string, cols columnSet) (models.ArenaEntry, error) {
	if len(row) <= cols.maxIndex() {
		return models.ArenaEntry{}, fmt.Errorf("expected at least %d columns, got %d", cols.maxIndex()+1, len(row))
	}

	team := strings.ToUpper(strings.TrimSpace(row[cols.team]))
	if team == "" {
		return models.ArenaEntry{}, fmt.Errorf("empty team")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(row[cols.lat]), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return models.ArenaEntry{}, fmt.Errorf("invalid latitude %q for %s", row[cols.lat], team)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row[cols.lon]), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return models.ArenaEntry{}, fmt.Errorf("invalid longitude %q for %s", row[cols.lon], team)
	}

	entry := models.ArenaEntry{TeamAbbr: team, Latitude: lat, Longitude: lon}
	if cols.name >= 0 && cols.name < len(row) {
		entry.Name = strings.TrimSpace(row[cols.name])
	}
	return entry, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
