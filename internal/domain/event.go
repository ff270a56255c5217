package domain

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// RawEvent represents an unprocessed message from the source topic. Value
// holds the report text.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SkyLayer is one reported cloud layer. Height is in feet above ground.
type SkyLayer struct {
	Cover      *string  `json:"cover"`
	Height     *float64 `json:"height"`
	Convective *string  `json:"convective,omitempty"` // "CB" or "TCU"
}

// IndeterminateCoverageCode is the wire value for coverage that could not be
// derived from the sky groups.
const IndeterminateCoverageCode = 10

// CloudCoverage is total sky cover in oktas, or indeterminate. The zero value
// is indeterminate so an unset coverage never reads as clear sky.
type CloudCoverage struct {
	oktas int
	known bool
}

// CoverageOktas returns a known coverage of n oktas.
func CoverageOktas(n int) CloudCoverage {
	return CloudCoverage{oktas: n, known: true}
}

// Oktas returns the coverage and whether it is known.
func (c CloudCoverage) Oktas() (int, bool) { return c.oktas, c.known }

// Code returns oktas 0-8, or 10 when indeterminate.
func (c CloudCoverage) Code() int {
	if !c.known {
		return IndeterminateCoverageCode
	}
	return c.oktas
}

func (c CloudCoverage) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(c.Code()), 10), nil
}

func (c *CloudCoverage) UnmarshalJSON(data []byte) error {
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("decode cloud coverage: %w", err)
	}
	switch {
	case n == IndeterminateCoverageCode:
		*c = CloudCoverage{}
	case n >= 0 && n <= 8:
		*c = CoverageOktas(n)
	default:
		return fmt.Errorf("decode cloud coverage: %d out of range", n)
	}
	return nil
}

// Observation is one decoded report. Nil pointers mark missing values.
type Observation struct {
	StationID string   `json:"station_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Elevation *float64 `json:"elevation"` // meters

	DateTime *time.Time `json:"date_time"`

	WindDirection *int     `json:"wind_direction"` // degrees
	WindSpeed     *float64 `json:"wind_speed"`     // knots
	WindGust      *float64 `json:"wind_gust"`      // knots

	Visibility *float64 `json:"visibility"` // meters

	CurrentWeather       [3]*string `json:"current_wx"`
	CurrentWeatherSymbol [3]int     `json:"current_wx_symbol"`

	SkyCover      [4]SkyLayer   `json:"sky_cover"`
	CloudCoverage CloudCoverage `json:"cloud_coverage"`

	Temperature *float64 `json:"temperature"` // degC
	Dewpoint    *float64 `json:"dewpoint"`    // degC
	Altimeter   *float64 `json:"altimeter"`   // inHg

	Remarks string `json:"remarks,omitempty"`

	// StationSource records where the coordinates came from: "table",
	// "remote", "failed" or empty when unknown.
	StationSource string    `json:"station_source,omitempty"`
	DecodedAt     time.Time `json:"decoded_at"`
}

// MissingFields names the decoded fields that came out nil. Sky layers are
// only counted when the first layer is missing.
func (o Observation) MissingFields() []string {
	var missing []string
	add := func(name string, isNil bool) {
		if isNil {
			missing = append(missing, name)
		}
	}
	add("location", o.Latitude == nil)
	add("date_time", o.DateTime == nil)
	add("wind_direction", o.WindDirection == nil)
	add("wind_speed", o.WindSpeed == nil)
	add("visibility", o.Visibility == nil)
	add("sky_cover", o.SkyCover[0].Cover == nil)
	add("temperature", o.Temperature == nil)
	add("dewpoint", o.Dewpoint == nil)
	add("altimeter", o.Altimeter == nil)
	return missing
}
