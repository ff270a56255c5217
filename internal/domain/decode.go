package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	metersPerStatuteMile = 1609.344
	hectopascalsPerInHg  = 33.8638866667

	knotsPerMeterPerSecond   = 1.943844
	knotsPerKilometerPerHour = 0.539957

	// cavokVisibility is the meters value assigned to "ceiling and visibility OK".
	cavokVisibility = 10000

	// altimeterScaleThreshold separates hundredths of inHg (A2992) from whole
	// hectopascals (Q1013). Real QNH never exceeds 1100 hPa and real altimeter
	// settings never drop below 11.00 inHg.
	altimeterScaleThreshold = 1100
)

// Decoder converts tokenized reports into observations. It is safe for
// concurrent use; its tables are never written after construction.
type Decoder struct {
	stations  StationProvider
	phenomena PhenomenonTable
}

// NewDecoder creates a Decoder. A nil stations provider leaves every location
// missing; a nil phenomenon table falls back to DefaultPhenomena.
func NewDecoder(stations StationProvider, phenomena PhenomenonTable) *Decoder {
	if phenomena == nil {
		phenomena = DefaultPhenomena
	}
	return &Decoder{stations: stations, phenomena: phenomena}
}

// Parse tokenizes and decodes one report. The only error it returns is the
// *ParseError from Tokenize.
func (d *Decoder) Parse(report string, year int, month time.Month) (Observation, error) {
	groups, err := Tokenize(report)
	if err != nil {
		return Observation{}, err
	}
	return d.Decode(groups, year, month), nil
}

// Decode converts each group independently. Fields that cannot be decoded
// are left nil; Decode itself never fails.
func (d *Decoder) Decode(g RawGroups, year int, month time.Month) Observation {
	obs := Observation{
		StationID: g.StationID.Text,
		Remarks:   g.Remarks.Text,
	}

	if st, ok := d.lookupStation(obs.StationID); ok {
		obs.Latitude = ptr(st.Latitude)
		obs.Longitude = ptr(st.Longitude)
		obs.Elevation = ptr(st.Elevation)
		obs.StationSource = "table"
	}

	obs.DateTime = decodeDateTime(g.DateTime.Text, year, month)
	obs.WindDirection, obs.WindSpeed = decodeWind(g.Wind)
	obs.WindGust = decodeGust(g.Wind)
	obs.Visibility = decodeVisibility(g.Visibility.Text)
	obs.CurrentWeather, obs.CurrentWeatherSymbol = d.decodeWeather(g.CurrentWeather.Text)
	obs.SkyCover = decodeSkyCover(g.SkyCover.Text)
	obs.CloudCoverage = deriveCloudCoverage(g.SkyCover.Text, g.Visibility.Text)
	obs.Temperature, obs.Dewpoint = decodeTempDewpoint(g.TempDewpoint)
	obs.Altimeter = decodeAltimeter(g.Altimeter.Text)

	return obs
}

// ResolveYearMonth fills a zero year or month from the current UTC date.
func ResolveYearMonth(year int, month time.Month) (int, time.Month) {
	if year != 0 && month != 0 {
		return year, month
	}
	now := clock.Now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	return year, month
}

func (d *Decoder) lookupStation(id string) (Station, bool) {
	if d.stations == nil {
		return Station{}, false
	}
	return d.stations.LookupStation(id)
}

// decodeDateTime reads DDHHMM with an optional trailing designator.
func decodeDateTime(text string, year int, month time.Month) *time.Time {
	text = strings.TrimSpace(text)
	if n := len(text); n > 0 && !isDigit(text[n-1]) {
		text = text[:n-1]
	}
	if len(text) < 6 {
		return nil
	}

	day, errD := strconv.Atoi(text[0:2])
	hour, errH := strconv.Atoi(text[2:4])
	minute, errM := strconv.Atoi(text[4:min(7, len(text))])
	if errD != nil || errH != nil || errM != nil {
		return nil
	}
	if month < time.January || month > time.December ||
		day < 1 || day > daysIn(year, month) ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// decodeWind returns direction and speed. Filler anywhere in the group, a
// bare unit, or any conversion error drops both. A variable direction keeps
// the speed only.
func decodeWind(w WindGroup) (*int, *float64) {
	text := strings.TrimSpace(w.Text)
	if strings.Contains(text, "/") || text == "KT" || text == "" {
		return nil, nil
	}

	switch w.Direction.Text {
	case "VRB", "VAR":
		speed, err := strconv.ParseFloat(w.Speed.Text, 64)
		if err != nil {
			return nil, nil
		}
		return nil, ptr(speed * knotsPer(w.Unit.Text))
	}

	dir, errD := strconv.Atoi(w.Direction.Text)
	speed, errS := strconv.Atoi(w.Speed.Text)
	if errD != nil || errS != nil {
		return nil, nil
	}
	return &dir, ptr(float64(speed) * knotsPer(w.Unit.Text))
}

func decodeGust(w WindGroup) *float64 {
	if w.Gust.IsEmpty() || strings.Contains(w.Gust.Text, "/") {
		return nil
	}
	gust, err := strconv.Atoi(w.Gust.Text)
	if err != nil {
		return nil
	}
	return ptr(float64(gust) * knotsPer(w.Unit.Text))
}

// knotsPer returns the factor converting a wind unit to knots. A missing
// unit is taken as knots.
func knotsPer(unit string) float64 {
	switch unit {
	case "MPS":
		return knotsPerMeterPerSecond
	case "KMH":
		return knotsPerKilometerPerHour
	}
	return 1
}

// decodeVisibility returns meters. Rules apply in order: statute miles,
// CAVOK, missing, then the first four characters as meters.
func decodeVisibility(text string) *float64 {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasSuffix(text, "SM"):
		miles, ok := parseStatuteMiles(strings.TrimSuffix(text, "SM"))
		if !ok {
			return nil
		}
		return ptr(miles * metersPerStatuteMile)
	case strings.Contains(text, "CAVOK"):
		return ptr(float64(cavokVisibility))
	case text == "" || text == "////":
		return nil
	}

	// Some stations append NDV or a compass direction; only the digits count.
	if len(text) > 4 {
		text = text[:4]
	}
	meters, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return ptr(float64(meters))
}

// parseStatuteMiles reads "1 1/4", "3/4" or "10". A leading P (more than) or
// M (less than) qualifier is dropped.
func parseStatuteMiles(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}
	fields[0] = strings.TrimLeft(fields[0], "PM")

	var total float64
	if len(fields) == 2 {
		whole, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, false
		}
		total += float64(whole)
		fields = fields[1:]
	}

	if num, den, ok := strings.Cut(fields[0], "/"); ok {
		n, errN := strconv.Atoi(num)
		d, errD := strconv.Atoi(den)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return total + float64(n)/float64(d), true
	}

	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return total + float64(v), true
}

// decodeWeather returns up to three present-weather codes and their symbols.
func (d *Decoder) decodeWeather(text string) ([3]*string, [3]int) {
	var codes [3]*string
	var symbols [3]int

	text = strings.TrimSpace(text)
	if text == "" || text == "//" {
		return codes, symbols
	}

	for i, code := range strings.Fields(text) {
		if i == len(codes) {
			break
		}
		codes[i] = ptr(code)
		symbols[i] = d.phenomena.Symbol(code)
	}
	return codes, symbols
}

// decodeSkyCover returns up to four layers. Vertical visibility collapses to
// a single layer.
func decodeSkyCover(text string) [4]SkyLayer {
	var layers [4]SkyLayer

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return layers
	}

	if strings.HasPrefix(fields[0], "VV") {
		layers[0].Cover = ptr("VV")
		layers[0].Height = decodeLayerHeight(strings.TrimPrefix(fields[0], "VV"))
		return layers
	}

	for i, tok := range fields {
		if i == len(layers) {
			break
		}
		layers[i] = decodeSkyLayer(tok)
	}
	return layers
}

// decodeSkyLayer splits a layer into its three-character cover, a height in
// hundreds of feet and an optional cloud type. A token whose cover is not a
// known cover word decodes to an empty layer.
func decodeSkyLayer(tok string) SkyLayer {
	var layer SkyLayer

	cover, rest := tok, ""
	if len(tok) > 3 {
		cover, rest = tok[:3], tok[3:]
	}
	switch {
	case strings.Contains(cover, "/"):
	case isCoverWord(cover):
		layer.Cover = ptr(cover)
	default:
		return SkyLayer{}
	}

	if len(rest) > 3 {
		switch kind := rest[3:]; kind {
		case "CB", "TCU":
			layer.Convective = ptr(kind)
		}
		rest = rest[:3]
	}
	layer.Height = decodeLayerHeight(rest)
	return layer
}

func isCoverWord(cover string) bool {
	switch cover {
	case "FEW", "SCT", "BKN", "OVC", "SKC", "CLR", "NSC", "NCD":
		return true
	}
	return false
}

func decodeLayerHeight(text string) *float64 {
	if strings.Contains(text, "/") {
		return nil
	}
	hundreds, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return ptr(float64(100 * hundreds))
}

// deriveCloudCoverage scans the raw sky text, not the decoded layers, so the
// most significant keyword anywhere in the group wins.
func deriveCloudCoverage(sky, visibility string) CloudCoverage {
	has := func(keys ...string) bool {
		for _, k := range keys {
			if strings.Contains(sky, k) {
				return true
			}
		}
		return false
	}

	switch {
	case has("OVC", "VV"):
		return CoverageOktas(8)
	case has("BKN"):
		return CoverageOktas(6)
	case has("SCT"):
		return CoverageOktas(4)
	case has("FEW"):
		return CoverageOktas(2)
	case has("SKC", "NCD", "NSC", "CLR") || strings.Contains(visibility, "CAVOK"):
		return CoverageOktas(0)
	}
	return CloudCoverage{}
}

// decodeTempDewpoint decodes both halves independently.
func decodeTempDewpoint(g TempGroup) (*float64, *float64) {
	text := strings.TrimSpace(g.Text)
	if text == "" || text == "MM/MM" {
		return nil, nil
	}
	return decodeTemperature(g.Temperature.Text), decodeTemperature(g.Dewpoint.Text)
}

// decodeTemperature reads the last two characters as whole degrees; an "M"
// anywhere in the token negates.
func decodeTemperature(text string) *float64 {
	magnitude := text
	if len(text) > 2 {
		magnitude = text[len(text)-2:]
	}
	v, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return nil
	}
	if strings.Contains(text, "M") && v != 0 {
		v = -v
	}
	return &v
}

// decodeAltimeter returns inHg from A2992 or Q1013. The four characters
// after the prefix must all be digits.
func decodeAltimeter(text string) *float64 {
	text = strings.TrimSpace(text)
	if len(text) < 5 {
		return nil
	}
	digits := text[1:5]
	for i := range len(digits) {
		if !isDigit(digits[i]) {
			return nil
		}
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}
	if v > altimeterScaleThreshold {
		return ptr(v / 100)
	}
	return ptr(v / hectopascalsPerInHg)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func ptr[T any](v T) *T { return &v }
