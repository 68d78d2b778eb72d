package variant

import (
	"regexp"
	"strings"

	"github.com/sells-group/address-precision/internal/model"
)

var (
	unitDesignatorRe = regexp.MustCompile(`(?i)[\s,]*\b(?:apartment|apt|unit|suite|ste|room|rm|building|bldg|tower|twr)\b[\s#]*[a-z0-9\-]*`)
	hashDesignatorRe = regexp.MustCompile(`(?i)[\s,]*#\s*[a-z0-9\-]*`)
	spacesRe         = regexp.MustCompile(`\s+`)
	trailingCommaRe  = regexp.MustCompile(`[\s,]+$`)
)

// suffixExpansions maps abbreviated street suffixes to their full form.
var suffixExpansions = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"blvd": "boulevard",
	"rd":   "road",
	"dr":   "drive",
	"ct":   "court",
	"pl":   "place",
	"ln":   "lane",
	"cir":  "circle",
	"ter":  "terrace",
	"pkwy": "parkway",
	"hwy":  "highway",
}

var directionalExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

var unitExpansions = map[string]string{
	"apt":  "apartment",
	"ste":  "suite",
	"rm":   "room",
	"bldg": "building",
	"twr":  "tower",
}

// streetTypeWords marks where the street name ends for the simplified form.
var streetTypeWords = map[string]bool{
	"street": true, "st": true, "avenue": true, "ave": true,
	"boulevard": true, "blvd": true, "road": true, "rd": true,
	"drive": true, "dr": true, "court": true, "ct": true,
	"place": true, "pl": true, "lane": true, "ln": true,
	"circle": true, "cir": true, "way": true, "terrace": true,
	"ter": true, "parkway": true, "pkwy": true, "highway": true, "hwy": true,
}

// Generator rewrites an address into the forms tried against the geocoder.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns the ordered variant list for one record. The original
// rendering always comes first; later strategies that render identically to
// an earlier one are dropped.
func (g *Generator) Generate(rec model.AddressRecord, verdict model.ApartmentVerdict) []model.AddressVariant {
	// For a plain house there is no designator to strip, so the stripped and
	// simplified forms start from the raw street line.
	stripped := strings.TrimSpace(spacesRe.ReplaceAllString(rec.Street, " "))
	if verdict.IsApartment {
		stripped = StripUnit(rec.Street)
	}

	forms := []model.AddressVariant{
		{Strategy: model.StrategyOriginal, Rendered: render(rec, strings.TrimSpace(rec.Street))},
		{Strategy: model.StrategyUnitStripped, Rendered: render(rec, stripped)},
		{Strategy: model.StrategyStandardized, Rendered: render(rec, Standardize(rec.Street))},
		{Strategy: model.StrategySimplified, Rendered: render(rec, simplify(stripped))},
	}

	seen := make(map[string]bool, len(forms))
	variants := make([]model.AddressVariant, 0, len(forms))
	for _, f := range forms {
		key := strings.ToLower(f.Rendered)
		if f.Rendered == "" || seen[key] {
			continue
		}
		seen[key] = true
		variants = append(variants, f)
	}
	return variants
}

// StripUnit removes any secondary-unit designator from a street line.
func StripUnit(street string) string {
	s := unitDesignatorRe.ReplaceAllString(street, "")
	s = hashDesignatorRe.ReplaceAllString(s, "")
	s = trailingCommaRe.ReplaceAllString(s, "")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// Standardize expands abbreviated suffixes, directionals and unit keywords.
func Standardize(street string) string {
	words := strings.Fields(street)
	for i, w := range words {
		bare := strings.Trim(strings.ToLower(w), ".,")
		expansion, ok := suffixExpansions[bare]
		if !ok {
			expansion, ok = directionalExpansions[bare]
		}
		if !ok {
			expansion, ok = unitExpansions[bare]
		}
		if !ok {
			continue
		}
		words[i] = matchCase(w, expansion)
	}
	return strings.Join(words, " ")
}

// simplify reduces a unit-stripped line to house number plus street name,
// cutting everything after the first street-type word.
func simplify(stripped string) string {
	words := strings.Fields(stripped)
	for i, w := range words {
		if streetTypeWords[strings.Trim(strings.ToLower(w), ".,")] {
			return strings.Join(words[:i+1], " ")
		}
	}
	return strings.Join(words, " ")
}

// matchCase renders expansion in the same case style as the original token.
func matchCase(original, expansion string) string {
	trimmed := strings.Trim(original, ".,")
	switch {
	case trimmed == strings.ToUpper(trimmed):
		return strings.ToUpper(expansion)
	case len(trimmed) > 0 && trimmed[0] >= 'A' && trimmed[0] <= 'Z':
		return strings.ToUpper(expansion[:1]) + expansion[1:]
	default:
		return expansion
	}
}

// render joins the street line with the record's locality fields.
func render(rec model.AddressRecord, streetLine string) string {
	if streetLine == "" {
		return ""
	}
	parts := []string{streetLine}
	if rec.City != "" {
		parts = append(parts, rec.City)
	}
	tail := strings.TrimSpace(rec.State + " " + rec.ZipCode)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}
