// Package stations loads the station metadata table used to locate reports.
package stations

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/metar-etl/internal/domain"
)

//go:embed stations.csv
var defaultTable string

var requiredColumns = []string{"id", "latitude", "longitude", "elevation"}

// Default returns the built-in station table.
func Default() (domain.StationTable, error) {
	return Load(strings.NewReader(defaultTable))
}

// LoadFile reads a station table from a CSV file.
func LoadFile(path string) (domain.StationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station file: %w", err)
	}
	defer f.Close()

	table, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return table, nil
}

// Load reads a station table from CSV. The first record is a header naming
// the columns; id, latitude, longitude and elevation are required, name is
// optional and other columns are ignored. Lines starting with "#" are
// comments. A later row for the same id replaces an earlier one.
func Load(r io.Reader) (domain.StationTable, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("station table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("station table header is missing column %q", c)
		}
	}

	table := make(domain.StationTable)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read station row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		st, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table[st.ID] = st
	}

	return table, nil
}

func parseRow(rec []string, cols map[string]int) (domain.Station, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	id := strings.ToUpper(field("id"))
	if id == "" {
		return domain.Station{}, errors.New("station id is empty")
	}

	var coords [3]float64
	for i, name := range []string{"latitude", "longitude", "elevation"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return domain.Station{}, fmt.Errorf("station %s: invalid %s %q", id, name, field(name))
		}
		coords[i] = v
	}
	if coords[0] < -90 || coords[0] > 90 || coords[1] < -180 || coords[1] > 180 {
		return domain.Station{}, fmt.Errorf("station %s: coordinates out of range", id)
	}

	return domain.Station{
		ID:        id,
		Name:      field("name"),
		Latitude:  coords[0],
		Longitude: coords[1],
		Elevation: coords[2],
	}, nil
}
