package domain

import (
	"bytes"
	"time"
)

// ReportText returns the report carried in a raw message, trimmed of
// surrounding whitespace and any byte-order mark.
func ReportText(raw RawEvent) string {
	v := bytes.TrimPrefix(raw.Value, []byte("\xef\xbb\xbf"))
	return string(bytes.TrimSpace(v))
}

// ReportPeriod picks the year and month a message's day-of-month belongs to.
// Reports only carry DDHHMM, so the message timestamp supplies the rest. A
// report stamped on the last day of a month but delivered just after
// midnight on the 1st belongs to the previous month.
func ReportPeriod(raw RawEvent, day int) (int, time.Month) {
	ts := raw.Timestamp
	if ts.IsZero() {
		return ResolveYearMonth(0, 0)
	}
	ts = ts.UTC()
	if day > ts.Day() {
		ts = time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	}
	return ts.Year(), ts.Month()
}

// ParseRawEvent tokenizes and decodes the report carried in raw. The only
// error is the *ParseError from Tokenize.
func (d *Decoder) ParseRawEvent(raw RawEvent) (Observation, error) {
	groups, err := Tokenize(ReportText(raw))
	if err != nil {
		return Observation{}, err
	}
	year, month := ReportPeriod(raw, reportDay(groups.DateTime.Text))
	return d.Decode(groups, year, month), nil
}

// reportDay returns the day-of-month digits of a datetime group, or 0.
func reportDay(text string) int {
	if len(text) < 2 || !isDigit(text[0]) || !isDigit(text[1]) {
		return 0
	}
	return int(text[0]-'0')*10 + int(text[1]-'0')
}
