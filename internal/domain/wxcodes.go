package domain

// PhenomenonTable maps a METAR present-weather code, intensity prefix
// included, to its WMO 306 code table 4677 present-weather (ww) number.
type PhenomenonTable map[string]int

// Symbol returns the ww number for code, or 0 when the code is unknown.
func (t PhenomenonTable) Symbol(code string) int {
	return t[code]
}

// DefaultPhenomena covers the codes seen in routine North American and
// European reports. Thunderstorm combinations map to the 9x range; the
// rest follow the intensity steps of 4677 (light, moderate, heavy).
var DefaultPhenomena = PhenomenonTable{
	// Haze, dust and smoke.
	"FU": 4, "VA": 4,
	"HZ": 5,
	"DU": 6,
	"SA": 7, "BLDU": 7, "BLSA": 7, "BLPY": 7, "VCBLDU": 7, "VCBLSA": 7,
	"PO": 8, "VCPO": 8,
	"VCDS": 9, "VCSS": 9,

	// Mist, shallow fog and nearby phenomena.
	"BR": 10,
	"BCFG": 11,
	"MIFG": 12,
	"VCTS": 13,
	"VCSH": 16,
	"TS": 17,
	"SQ": 18,
	"FC": 19, "+FC": 19,

	// Duststorm, sandstorm, blowing snow.
	"DS": 31, "SS": 31, "DRSA": 31, "DRDU": 31,
	"+DS": 34, "+SS": 34,
	"-BLSN": 36, "BLSN": 36, "VCBLSN": 36,
	"+BLSN": 37,
	"DRSN": 38, "+DRSN": 39,

	// Fog.
	"VCFG": 40,
	"PRFG": 44,
	"FG": 45,
	"FZFG": 49,

	// Drizzle.
	"-DZ": 51, "DZ": 53, "+DZ": 55,
	"-FZDZ": 56, "FZDZ": 57, "+FZDZ": 57,
	"-DZRA": 58, "DZRA": 59, "+DZRA": 59,

	// Rain.
	"-RA": 61, "RA": 63, "+RA": 65, "VCRA": 63,
	"-FZRA": 66, "FZRA": 67, "+FZRA": 67,
	"-RASN": 68, "-SNRA": 68,
	"RASN": 69, "SNRA": 69, "+RASN": 69, "+SNRA": 69,

	// Solid precipitation.
	"-SN": 71, "SN": 73, "+SN": 75, "VCSN": 73,
	"IN": 76, "-UP": 76, "UP": 76, "+UP": 76,
	"-SG": 77, "SG": 77,
	"IC": 78,
	"-PL": 79, "PL": 79, "+PL": 79, "-RAPL": 79, "RAPL": 79, "-SNPL": 79, "SNPL": 79,

	// Showers.
	"-SHRA": 80, "-SH": 80,
	"SHRA": 81, "SH": 81,
	"+SHRA": 82, "+SH": 82,
	"-SHRASN": 83, "-SHSNRA": 83,
	"SHRASN": 84, "SHSNRA": 84, "+SHRASN": 84, "+SHSNRA": 84,
	"-SHSN": 85, "SHSN": 86, "+SHSN": 86,
	"-SHGS": 87, "-GS": 87,
	"SHGS": 88, "GS": 88, "+SHGS": 88, "+GS": 88,
	"-SHGR": 89, "-GR": 89,
	"SHGR": 90, "GR": 90, "+SHGR": 90, "+GR": 90,

	// Thunderstorms.
	"-TSRA": 95, "TSRA": 95, "-TSSN": 95, "TSSN": 95, "-TSRASN": 95, "TSRASN": 95,
	"TSPL": 95, "-TSPL": 95, "TSUP": 95,
	"-TSGR": 96, "TSGR": 96, "-TSGS": 96, "TSGS": 96,
	"+TSRA": 97, "+TSSN": 97, "+TSRASN": 97, "+TSPL": 97,
	"TSSA": 98, "TSDS": 98, "TSSS": 98,
	"+TSGR": 99, "+TSGS": 99,
}
