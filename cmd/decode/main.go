// Command decode parses METAR reports, one per line, and writes the decoded
// observations as a JSON array. Reports that cannot be tokenized are logged
// to stderr and skipped.
//
// Usage:
//
//	go run ./cmd/decode \
//	  -in data/mock/metar_reports.txt \
//	  -out observations.json \
//	  -year 2024 -month 4
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/metar-etl/internal/adapter/stations"
	"github.com/couchcryptid/metar-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input file with one report per line (default stdin)")
	out := flag.String("out", "", "output path for the JSON array (default stdout)")
	year := flag.Int("year", 0, "observation year (default current UTC year)")
	month := flag.Int("month", 0, "observation month 1-12 (default current UTC month)")
	stationFile := flag.String("stations", "", "station CSV (default built-in table)")
	decodedAt := flag.String("decoded-at", "", "fixed RFC3339 decode timestamp for reproducible output")
	stats := flag.Bool("stats", false, "print missing-field counts to stderr")
	flag.Parse()

	if *month < 0 || *month > 12 {
		return fmt.Errorf("invalid -month %d", *month)
	}

	if *decodedAt != "" {
		ts, err := time.Parse(time.RFC3339, *decodedAt)
		if err != nil {
			return fmt.Errorf("invalid -decoded-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(ts))
		defer domain.SetClock(nil)
	}

	table, err := loadStations(*stationFile)
	if err != nil {
		return err
	}
	decoder := domain.NewDecoder(table, nil)

	r := io.Reader(os.Stdin)
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	y, m := domain.ResolveYearMonth(*year, time.Month(*month))
	observations, failures, err := decodeLines(r, decoder, y, m)
	if err != nil {
		return err
	}
	for _, f := range failures {
		log.Printf("line %d: %v", f.line, f.err)
	}
	log.Printf("decoded %d reports, skipped %d", len(observations), len(failures))

	if *stats {
		printStats(os.Stderr, observations)
	}
	return writeJSON(*out, observations)
}

func loadStations(path string) (domain.StationTable, error) {
	if path == "" {
		return stations.Default()
	}
	return stations.LoadFile(path)
}

type lineError struct {
	line int
	err  error
}

// decodeLines decodes every non-blank line of r. Lines starting with '#' are
// comments. ParseErrors are collected and skipped; read errors abort.
func decodeLines(r io.Reader, decoder *domain.Decoder, year int, month time.Month) ([]domain.Observation, []lineError, error) {
	observations := []domain.Observation{}
	var failures []lineError

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		report := strings.TrimSpace(sc.Text())
		if report == "" || strings.HasPrefix(report, "#") {
			continue
		}
		obs, err := decoder.Parse(report, year, month)
		if err != nil {
			var pe *domain.ParseError
			if !errors.As(err, &pe) {
				return nil, nil, err
			}
			failures = append(failures, lineError{line: lineNo, err: err})
			continue
		}
		observations = append(observations, domain.MarkDecoded(obs))
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	return observations, failures, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

type fieldCount struct {
	field string
	count int
}

func missingFieldCounts(observations []domain.Observation) []fieldCount {
	counts := map[string]int{}
	for i := range observations {
		for _, f := range observations[i].MissingFields() {
			counts[f]++
		}
	}
	fc := make([]fieldCount, 0, len(counts))
	for f, c := range counts {
		fc = append(fc, fieldCount{f, c})
	}
	sort.Slice(fc, func(i, j int) bool {
		if fc[i].count != fc[j].count {
			return fc[i].count > fc[j].count
		}
		return fc[i].field < fc[j].field
	})
	return fc
}

func printStats(w io.Writer, observations []domain.Observation) {
	fmt.Fprintf(w, "\n=== Missing fields (%d observations) ===\n", len(observations))
	for _, fc := range missingFieldCounts(observations) {
		fmt.Fprintf(w, "  %-15s %d\n", fc.field, fc.count)
	}
}
