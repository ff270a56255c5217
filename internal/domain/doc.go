// Package domain decodes METAR aviation surface weather reports.
//
// # Data Source
//
// Reports arrive one per message on the source topic as plain text, already
// joined onto a single line by the upstream collector, e.g.
//
//	METAR KOKC 011755Z 18010G18KT 10SM -RA FEW025 BKN250 25/12 A2992 RMK AO2
//
// # Report Layout
//
// Groups appear in the fixed order mandated by the WMO/FAA handbooks:
//
//	[METAR|SPECI] [COR] station datetime [AUTO|COR] wind visibility
//	runway-range* weather* sky* temp/dewpoint altimeter [RMK ...]
//
// Every group after the station id may be missing. Transmitted reports also
// replace digits that could not be observed with the filler character "/",
// so "/////KT" is a wind group whose contents are unknown.
//
// # Two Layers
//
// [Tokenize] only recognizes group shapes and returns the spans it found as
// [RawGroups]. It fails with a [*ParseError] only when the report cannot be
// partitioned at all (no station id, nothing after it, or an unrecognized
// group between the temperature and the altimeter).
//
// [Decoder.Decode] converts each span into a typed [Observation] field in
// isolation. A field that cannot be decoded becomes nil; it never aborts the
// rest of the report.
//
// # Field Conventions
//
// Date/time:
//
//	DDHHMMZ, day/hour/minute at offsets [0:2], [2:4], [4:6]. Year and month are
//	not in the report and come from the caller (message timestamp or clock).
//
// Wind:
//
//	dddff(Gff)KT. "VRB"/"VAR" direction means variable and decodes to a nil
//	direction with a speed. Any filler in the group drops both values.
//
// Visibility:
//
//	"1 1/4SM" statute miles (converted to meters), "CAVOK" (10 km),
//	"9999" meters (first four characters only, so "9999NDV" is 9999),
//	"////" missing.
//
// Sky cover:
//
//	FEW/SCT/BKN/OVC + height in hundreds of feet, optional CB/TCU, or VVhhh
//	vertical visibility. Coverage in oktas is derived from the raw text by
//	keyword precedence: OVC/VV 8, BKN 6, SCT 4, FEW 2, SKC/CLR/NSC/NCD/CAVOK 0,
//	anything else 10 (indeterminate).
//
// Temperature/dewpoint:
//
//	TT/DD in whole degrees Celsius, "M" prefix for negative values.
//
// Altimeter:
//
//	A2992 (hundredths of inHg) or Q1013 (hPa). Values above 1100 are taken as
//	hundredths of inHg, anything else as hPa and converted to inHg.
package domain
