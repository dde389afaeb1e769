package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the geographic granularity of a spending table.
type Level string

const (
	LevelDistrict Level = "district"
	LevelState    Level = "state"
)

// ParseLevel validates a level name. Unlike identifier conversion this is a
// configuration error, so it fails loudly.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDistrict:
		return LevelDistrict, nil
	case LevelState:
		return LevelState, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidLevel, s, LevelDistrict, LevelState)
	}
}

// Label is the human-readable name used in tooltips.
func (l Level) Label() string {
	switch l {
	case LevelState:
		return "State"
	default:
		return "District"
	}
}

// stateFIPS maps USPS abbreviations to 2-digit state FIPS codes:
// 50 states, DC, and the five inhabited territories.
var stateFIPS = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06", "CO": "08", "CT": "09",
	"DE": "10", "DC": "11", "FL": "12", "GA": "13", "HI": "15", "ID": "16", "IL": "17",
	"IN": "18", "IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23", "MD": "24",
	"MA": "25", "MI": "26", "MN": "27", "MS": "28", "MO": "29", "MT": "30", "NE": "31",
	"NV": "32", "NH": "33", "NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44", "SC": "45", "SD": "46",
	"TN": "47", "TX": "48", "UT": "49", "VT": "50", "VA": "51", "WA": "53", "WV": "54",
	"WI": "55", "WY": "56", "AS": "60", "GU": "66", "MP": "69", "PR": "72", "VI": "78",
}

var fipsState = func() map[string]string {
	m := make(map[string]string, len(stateFIPS))
	for abbr, fips := range stateFIPS {
		m[fips] = abbr
	}
	return m
}()

// StateToJoinKey converts a state abbreviation ("ca", "CA") to its 2-digit
// FIPS code. Unknown abbreviations report false.
func StateToJoinKey(s string) (string, bool) {
	fips, ok := stateFIPS[strings.ToUpper(strings.TrimSpace(s))]
	return fips, ok
}

// StateAbbreviation is the inverse of StateToJoinKey.
func StateAbbreviation(fips string) (string, bool) {
	abbr, ok := fipsState[fips]
	return abbr, ok
}

// DistrictToJoinKey converts "ST-NN" to the 4-character Census GEOID
// (state FIPS + 2-digit district). "00" (at-large) and "ZZ" (non-voting) pass
// through uppercased; other district numbers must be integers in 0..99 and are
// zero-padded, so "CA-1" and "CA-01" both give "0601".
func DistrictToJoinKey(s string) (string, bool) {
	state, district, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		return "", false
	}

	fips, ok := StateToJoinKey(state)
	if !ok {
		return "", false
	}

	district = strings.ToUpper(strings.TrimSpace(district))
	if district == "00" || district == "ZZ" {
		return fips + district, true
	}

	n, err := strconv.Atoi(district)
	if err != nil || n < 0 || n > 99 {
		return "", false
	}
	return fmt.Sprintf("%s%02d", fips, n), true
}

// JoinKey normalizes an identifier according to the table's level.
func JoinKey(level Level, s string) (string, bool) {
	switch level {
	case LevelDistrict:
		return DistrictToJoinKey(s)
	case LevelState:
		return StateToJoinKey(s)
	default:
		return "", false
	}
}
