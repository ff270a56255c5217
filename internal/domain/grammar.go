package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// kindRe matches the optional report type prefix.
	kindRe = regexp.MustCompile(`^(METAR|SPECI)$`)

	// stationRe matches a four-character ICAO location indicator, e.g. "KOKC".
	stationRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)

	// dateTimeRe matches DDHHMM with an optional designator, e.g. "011755Z".
	dateTimeRe = regexp.MustCompile(`^\d{6}[A-Z]?$`)

	modifierRe = regexp.MustCompile(`^(AUTO|COR|NIL)$`)

	// windUnitRe matches any token ending in a wind speed unit. The body is
	// left unvalidated so a garbled group still lands in the wind span.
	windUnitRe = regexp.MustCompile(`^(.*?)(KT|MPS|KMH)$`)

	// windBareRe matches a wind group transmitted without its unit.
	windBareRe = regexp.MustCompile(`^(\d{3}|VRB|VAR|///|MMM)(\d{2,3}|//|MM)(G\d{2,3})?$`)

	// windVarRe matches the variable direction range, e.g. "180V240".
	windVarRe = regexp.MustCompile(`^\d{3}V\d{3}$`)

	visMetersRe = regexp.MustCompile(`^\d{4}(NDV|[NSEW]{1,2})?$`)
	visMilesRe  = regexp.MustCompile(`^[PM]?\d+(/\d+)?SM$`)
	visWholeRe  = regexp.MustCompile(`^\d{1,2}$`)
	visFracRe   = regexp.MustCompile(`^\d/\d{1,2}SM$`)

	runwayRe = regexp.MustCompile(`^R\d{2}[LCR]?/`)

	// weatherRe matches intensity, proximity, descriptor and phenomena, e.g.
	// "-TSRA", "VCSH", "+FC", or the "//" filler.
	weatherRe = regexp.MustCompile(`^(//|NSW|[-+]?(VC)?(MI|PR|BC|DR|BL|SH|TS|FZ)?(DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*)$`)

	skyRe = regexp.MustCompile(`^((FEW|SCT|BKN|OVC|///)(\d{3}|///)?(CB|TCU|///)?|VV(\d{3}|///)|SKC|CLR|NSC|NCD)$`)

	// tempRe matches temperature/dewpoint, e.g. "M05/M10", "25/", "MM/MM".
	tempRe = regexp.MustCompile(`^(M?\d{2}|MM|//)?/(M?\d{2}|MM|//)?$`)

	// tempGarbledRe matches a temperature group with a corrupted half, e.g.
	// "2A/15". The decoder drops the bad half.
	tempGarbledRe = regexp.MustCompile(`^M?[0-9A-Z]{1,2}/(M?[0-9A-Z]{1,2})?$`)

	// altimeterRe matches any A or Q prefixed setting, including malformed
	// values such as "A29.2" that decode to missing.
	altimeterRe = regexp.MustCompile(`^[AQ]\S{1,5}$`)

	remarksRe = regexp.MustCompile(`^(RMK|NOSIG|TEMPO|BECMG)$`)
)

// ParseError reports a report that cannot be partitioned into groups.
type ParseError struct {
	Pos      int    // byte offset in the report
	Expected string // what the grammar expected at Pos
	Found    string // offending token, empty at end of input
}

func (e *ParseError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("parse report: expected %s at offset %d", e.Expected, e.Pos)
	}
	return fmt.Sprintf("parse report: expected %s at offset %d, found %q", e.Expected, e.Pos, e.Found)
}

type token struct {
	text   string
	offset int
}

func (t token) end() int { return t.offset + len(t.text) }

// lex splits a report on whitespace, keeping byte offsets. A trailing "="
// end-of-report marker is dropped.
func lex(report string) []token {
	var toks []token
	start := -1
	for i, r := range report {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{text: report[start:i], offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: report[start:], offset: start})
	}

	if n := len(toks); n > 0 && strings.HasSuffix(toks[n-1].text, "=") {
		toks[n-1].text = strings.TrimSuffix(toks[n-1].text, "=")
		if toks[n-1].text == "" {
			toks = toks[:n-1]
		}
	}
	return toks
}

// scanner walks the token list group by group.
type scanner struct {
	report string
	toks   []token
	pos    int
}

func (s *scanner) peek() (token, bool) {
	if s.pos >= len(s.toks) {
		return token{}, false
	}
	return s.toks[s.pos], true
}

// peekMatches reports whether the token n places ahead matches re.
func (s *scanner) peekMatches(n int, re *regexp.Regexp) bool {
	i := s.pos + n
	return i < len(s.toks) && re.MatchString(s.toks[i].text)
}

// here is the offset an empty span gets at the current position.
func (s *scanner) here() int {
	if t, ok := s.peek(); ok {
		return t.offset
	}
	return len(s.report)
}

// span covers tokens [from, s.pos), including the separators between them.
func (s *scanner) span(from int) Span {
	if from >= s.pos {
		return Span{Offset: s.here()}
	}
	start, end := s.toks[from].offset, s.toks[s.pos-1].end()
	return Span{Offset: start, Text: s.report[start:end]}
}

// takeOne consumes the next token if it matches re.
func (s *scanner) takeOne(re *regexp.Regexp) Span {
	from := s.pos
	if s.peekMatches(0, re) {
		s.pos++
	}
	return s.span(from)
}

// takeAll consumes consecutive tokens matching re.
func (s *scanner) takeAll(re *regexp.Regexp) Span {
	from := s.pos
	for s.peekMatches(0, re) {
		s.pos++
	}
	return s.span(from)
}

// Tokenize partitions a single-line report into its groups. Groups that are
// absent come back as empty spans; only a report that cannot be partitioned
// at all yields a *ParseError.
func Tokenize(report string) (RawGroups, error) {
	s := &scanner{report: report, toks: lex(report)}
	g := RawGroups{Report: report}

	g.Kind = s.kind()

	station, ok := s.peek()
	if !ok || !stationRe.MatchString(station.text) {
		return RawGroups{}, &ParseError{Pos: s.here(), Expected: "station identifier", Found: station.text}
	}
	s.pos++
	g.StationID = Span{Offset: station.offset, Text: station.text}

	if _, ok := s.peek(); !ok {
		return RawGroups{}, &ParseError{Pos: len(report), Expected: "report body after station identifier"}
	}

	g.DateTime = s.takeOne(dateTimeRe)
	if g.DateTime.IsEmpty() {
		g.DateTime = s.takeGarbled(afterDateTime)
	}
	g.Modifier = s.takeOne(modifierRe)
	g.Wind = s.wind()
	g.Visibility = s.visibility()
	if g.Visibility.IsEmpty() {
		g.Visibility = s.takeGarbled(afterVisibility)
	}
	g.RunwayRange = s.takeAll(runwayRe)
	g.CurrentWeather = s.takeAll(weatherRe)
	g.SkyCover = s.skyCover()
	g.TempDewpoint = s.tempDewpoint()
	g.Altimeter = s.takeAltimeter()

	remarks, err := s.remarks(!g.Altimeter.IsEmpty())
	if err != nil {
		return RawGroups{}, err
	}
	g.Remarks = remarks

	return g, nil
}

// kind consumes "METAR"/"SPECI" and a following "COR".
func (s *scanner) kind() Span {
	from := s.pos
	if s.peekMatches(0, kindRe) {
		s.pos++
	}
	if t, ok := s.peek(); ok && t.text == "COR" && s.peekMatches(1, stationRe) {
		s.pos++
	}
	return s.span(from)
}

func (s *scanner) wind() WindGroup {
	from := s.pos
	t, ok := s.peek()
	if !ok {
		return emptyWind(s.span(from))
	}

	var body string
	switch {
	case windUnitRe.MatchString(t.text):
		body = windUnitRe.FindStringSubmatch(t.text)[1]
	case windBareRe.MatchString(t.text):
		body = t.text
	case !s.opensLaterGroup(afterWind):
		return s.garbledWind()
	default:
		return emptyWind(s.span(from))
	}
	s.pos++
	grp := s.span(from)

	w := WindGroup{}
	split := min(3, len(body))
	w.Direction = grp.sub(0, split)

	rest := body[split:]
	if i := strings.IndexByte(rest, 'G'); i >= 0 {
		w.Speed = grp.sub(split, split+i)
		w.Gust = grp.sub(split+i+1, len(body))
	} else {
		w.Speed = grp.sub(split, len(body))
		w.Gust = Span{Offset: grp.Offset + len(body)}
	}
	w.Unit = grp.sub(len(body), len(grp.Text))

	w.Variation = s.windVariation()
	w.Span = s.span(from)
	return w
}

// garbledWind binds a malformed token in the wind position to the wind span
// with empty parts, so only wind decodes to missing.
func (s *scanner) garbledWind() WindGroup {
	from := s.pos
	t := s.toks[s.pos]
	s.pos++
	part := Span{Offset: t.offset}
	w := WindGroup{Direction: part, Speed: part, Gust: part, Unit: part}
	w.Variation = s.windVariation()
	w.Span = s.span(from)
	return w
}

func (s *scanner) windVariation() Span {
	if !s.peekMatches(0, windVarRe) {
		return Span{Offset: s.here()}
	}
	v := s.toks[s.pos]
	s.pos++
	return Span{Offset: v.offset, Text: v.text}
}

func emptyWind(sp Span) WindGroup {
	return WindGroup{Span: sp, Direction: sp, Speed: sp, Gust: sp, Unit: sp, Variation: sp}
}

func (s *scanner) visibility() Span {
	from := s.pos
	s.pos += s.visibilityLen()
	return s.span(from)
}

// visibilityLen is the number of tokens the visibility group would take at
// the current position.
func (s *scanner) visibilityLen() int {
	t, ok := s.peek()
	if !ok {
		return 0
	}

	switch {
	case t.text == "CAVOK" || t.text == "////" || visMilesRe.MatchString(t.text):
		return 1
	case visWholeRe.MatchString(t.text) && s.peekMatches(1, visFracRe):
		return 2
	case visMetersRe.MatchString(t.text):
		// Directional minima follow the prevailing value, e.g. "6000 2000SW".
		n := 1
		for s.peekMatches(n, visMetersRe) {
			n++
		}
		return n
	}
	return 0
}

// stage is a point in the fixed group order.
type stage int

const (
	afterDateTime stage = iota
	afterWind
	afterVisibility
)

// opensLaterGroup reports whether the next token can start a group that
// comes after st.
func (s *scanner) opensLaterGroup(st stage) bool {
	t, ok := s.peek()
	if !ok {
		return false
	}
	text := t.text

	switch st {
	case afterDateTime:
		if modifierRe.MatchString(text) || windUnitRe.MatchString(text) || windBareRe.MatchString(text) {
			return true
		}
		fallthrough
	case afterWind:
		if s.visibilityLen() > 0 {
			return true
		}
		fallthrough
	default:
		return runwayRe.MatchString(text) || weatherRe.MatchString(text) ||
			skyRe.MatchString(text) || startsTail(text)
	}
}

// takeGarbled binds the next token to the group ending at st when it fits
// no later group, so a malformed group degrades only its own field.
func (s *scanner) takeGarbled(st stage) Span {
	from := s.pos
	if _, ok := s.peek(); ok && !s.opensLaterGroup(st) {
		s.pos++
	}
	return s.span(from)
}

// skyCover consumes cloud layers. Tokens that fit no later group are kept in
// the sky span so that garbage degrades only the sky-derived fields.
func (s *scanner) skyCover() Span {
	from := s.pos
	for {
		t, ok := s.peek()
		if !ok {
			break
		}
		if !skyRe.MatchString(t.text) && startsTail(t.text) {
			break
		}
		s.pos++
	}
	return s.span(from)
}

// startsTail reports whether a token begins the temperature, altimeter or
// remarks part of the report.
func startsTail(text string) bool {
	return isTemp(text) || isAltimeter(text) || remarksRe.MatchString(text)
}

func isTemp(text string) bool {
	return tempRe.MatchString(text) || tempGarbledRe.MatchString(text)
}

// isAltimeter excludes report modifiers such as "AUTO" that share the prefix.
func isAltimeter(text string) bool {
	return altimeterRe.MatchString(text) && !modifierRe.MatchString(text)
}

func (s *scanner) tempDewpoint() TempGroup {
	from := s.pos
	t, ok := s.peek()
	if !ok || !isTemp(t.text) {
		sp := s.span(from)
		return TempGroup{Span: sp, Temperature: sp, Dewpoint: sp}
	}
	s.pos++
	sp := s.span(from)

	g := TempGroup{Span: sp}
	if m := tempRe.FindStringSubmatchIndex(t.text); m != nil {
		g.Temperature = subOrEmpty(sp, m[2], m[3], 0)
		g.Dewpoint = subOrEmpty(sp, m[4], m[5], len(sp.Text))
		return g
	}
	i := strings.IndexByte(t.text, '/')
	g.Temperature = sp.sub(0, i)
	g.Dewpoint = sp.sub(i+1, len(sp.Text))
	return g
}

func (s *scanner) takeAltimeter() Span {
	from := s.pos
	if t, ok := s.peek(); ok && isAltimeter(t.text) {
		s.pos++
	}
	return s.span(from)
}

// subOrEmpty returns the submatch [i, j) of sp, or an empty span at the
// fallback offset when the submatch did not participate.
func subOrEmpty(sp Span, i, j, fallback int) Span {
	if i < 0 {
		return Span{Offset: sp.Offset + fallback}
	}
	return sp.sub(i, j)
}

// remarks consumes the rest of the report. After an altimeter anything goes
// (trend groups, runway state, recent weather); before it only a remarks
// keyword may follow.
func (s *scanner) remarks(afterAltimeter bool) (Span, error) {
	t, ok := s.peek()
	if !ok {
		return s.span(s.pos), nil
	}
	if !afterAltimeter && !remarksRe.MatchString(t.text) {
		return Span{}, &ParseError{Pos: t.offset, Expected: "altimeter or remarks", Found: t.text}
	}
	from := s.pos
	s.pos = len(s.toks)
	return s.span(from), nil
}
