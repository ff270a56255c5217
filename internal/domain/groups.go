package domain

// Span is a contiguous piece of a report. Offset is the byte index of Text in
// the report; for an empty span it is the position where the group would
// have started.
type Span struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// End returns the byte index just past the span.
func (s Span) End() int { return s.Offset + len(s.Text) }

// IsEmpty reports whether the group was absent.
func (s Span) IsEmpty() bool { return s.Text == "" }

// sub returns the part of s between byte indexes i and j of its text.
func (s Span) sub(i, j int) Span {
	return Span{Offset: s.Offset + i, Text: s.Text[i:j]}
}

// WindGroup is the wind span with its direction, speed, gust and unit parts.
// Variation holds a trailing "dddVddd" group when present.
type WindGroup struct {
	Span
	Direction Span `json:"direction"`
	Speed     Span `json:"speed"`
	Gust      Span `json:"gust"`
	Unit      Span `json:"unit"`
	Variation Span `json:"variation"`
}

// TempGroup is the temperature/dewpoint span split at its separator.
type TempGroup struct {
	Span
	Temperature Span `json:"temperature"`
	Dewpoint    Span `json:"dewpoint"`
}

// RawGroups holds the spans found by Tokenize, in report order.
type RawGroups struct {
	Report         string    `json:"report"`
	Kind           Span      `json:"kind"`
	StationID      Span      `json:"station_id"`
	DateTime       Span      `json:"datetime"`
	Modifier       Span      `json:"modifier"`
	Wind           WindGroup `json:"wind"`
	Visibility     Span      `json:"visibility"`
	RunwayRange    Span      `json:"runway_range"`
	CurrentWeather Span      `json:"current_weather"`
	SkyCover       Span      `json:"sky_cover"`
	TempDewpoint   TempGroup `json:"temp_dewpoint"`
	Altimeter      Span      `json:"altimeter"`
	Remarks        Span      `json:"remarks"`
}

// Spans returns the top-level group spans in report order.
func (g RawGroups) Spans() []Span {
	return []Span{
		g.Kind,
		g.StationID,
		g.DateTime,
		g.Modifier,
		g.Wind.Span,
		g.Visibility,
		g.RunwayRange,
		g.CurrentWeather,
		g.SkyCover,
		g.TempDewpoint.Span,
		g.Altimeter,
		g.Remarks,
	}
}
