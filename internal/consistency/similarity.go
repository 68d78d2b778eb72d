package consistency

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"

	"github.com/sells-group/address-precision/internal/variant"
)

// stateToAbbr maps full state names to USPS abbreviations so "California"
// and "CA" compare equal.
var stateToAbbr = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

// ParseStreetLine splits a unit-stripped street line into house number and
// street name. A line with no leading number yields an empty house number.
func ParseStreetLine(street string) (houseNumber, streetName string) {
	stripped := variant.StripUnit(street)
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return "", ""
	}
	if isHouseNumber(fields[0]) {
		return fields[0], strings.Join(fields[1:], " ")
	}
	return "", strings.Join(fields, " ")
}

func isHouseNumber(token string) bool {
	hasDigit := false
	for _, r := range token {
		if unicode.IsDigit(r) {
			hasDigit = true
		} else if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return hasDigit
}

// stringSimilarity returns the normalized Levenshtein similarity of two
// values, treating a pair of blanks as agreement and a single blank as a
// full mismatch.
func stringSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	switch {
	case a == "" && b == "":
		return 1
	case a == "" || b == "":
		return 0
	}
	return levenshtein.Similarity(a, b, nil)
}

// streetSimilarity expands suffix and directional abbreviations before
// comparing, so "Cahuilla St" matches "Cahuilla Street" exactly.
func streetSimilarity(a, b string) float64 {
	return stringSimilarity(variant.Standardize(a), variant.Standardize(b))
}

// stateSimilarity compares normalized USPS abbreviations.
func stateSimilarity(a, b string) float64 {
	return stringSimilarity(normalizeState(a), normalizeState(b))
}

func normalizeState(s string) string {
	s = strings.TrimSpace(s)
	if abbr, ok := stateToAbbr[strings.ToLower(s)]; ok {
		return abbr
	}
	return strings.ToUpper(s)
}
