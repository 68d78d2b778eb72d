package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/address-precision/internal/model"
)

// KeywordRule binds one unit keyword to the confidence and type it implies.
type KeywordRule struct {
	Keyword    string              `yaml:"keyword"`
	Confidence int                 `yaml:"confidence"`
	Type       model.ApartmentType `yaml:"type"`
}

// Rules is the full, immutable pattern table the classifier runs on. High
// tier requires a trailing unit token; medium takes one when present; the
// positional tier matches bare position words near the end of the text.
type Rules struct {
	High       []KeywordRule `yaml:"high"`
	Medium     []KeywordRule `yaml:"medium"`
	Hash       KeywordRule   `yaml:"hash"`
	Positional []KeywordRule `yaml:"positional"`
	Exclusions []string      `yaml:"exclusions"`
	// StreetTypes and Directionals feed the street-name artifact check:
	// a directional immediately before a street type is part of the street
	// name, never a unit marker.
	StreetTypes  []string `yaml:"street_types"`
	Directionals []string `yaml:"directionals"`
}

// DefaultRules returns the built-in pattern table.
func DefaultRules() Rules {
	return Rules{
		High: []KeywordRule{
			{Keyword: "apartment", Confidence: 95, Type: model.ApartmentTypeApartment},
			{Keyword: "apt", Confidence: 95, Type: model.ApartmentTypeApartment},
			{Keyword: "unit", Confidence: 95, Type: model.ApartmentTypeUnit},
			{Keyword: "suite", Confidence: 95, Type: model.ApartmentTypeSuite},
			{Keyword: "ste", Confidence: 95, Type: model.ApartmentTypeSuite},
		},
		Medium: []KeywordRule{
			{Keyword: "room", Confidence: 80, Type: model.ApartmentTypeRoom},
			{Keyword: "rm", Confidence: 80, Type: model.ApartmentTypeRoom},
			{Keyword: "building", Confidence: 75, Type: model.ApartmentTypeTower},
			{Keyword: "bldg", Confidence: 75, Type: model.ApartmentTypeTower},
			{Keyword: "tower", Confidence: 75, Type: model.ApartmentTypeTower},
			{Keyword: "twr", Confidence: 75, Type: model.ApartmentTypeTower},
		},
		Hash: KeywordRule{Keyword: "#", Confidence: 60, Type: model.ApartmentTypeUnit},
		Positional: []KeywordRule{
			{Keyword: "upper", Confidence: 55, Type: model.ApartmentTypeUnit},
			{Keyword: "lower", Confidence: 55, Type: model.ApartmentTypeUnit},
			{Keyword: "front", Confidence: 55, Type: model.ApartmentTypeUnit},
			{Keyword: "rear", Confidence: 55, Type: model.ApartmentTypeUnit},
		},
		Exclusions: []string{"townhouse", "townhome", "duplex"},
		StreetTypes: []string{
			"street", "st", "avenue", "ave", "boulevard", "blvd", "road", "rd",
			"drive", "dr", "court", "ct", "place", "pl", "lane", "ln",
			"circle", "cir", "way", "terrace", "ter", "parkway", "pkwy",
			"highway", "hwy",
		},
		Directionals: []string{
			"north", "south", "east", "west",
			"northeast", "northwest", "southeast", "southwest",
			"n", "s", "e", "w", "ne", "nw", "se", "sw",
		},
	}
}

// LoadRules reads a YAML rule file and overlays it on the defaults. Only the
// sections present in the file replace their default counterparts, so an
// override file can adjust one tier without restating the table.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "reading rule file %s", path)
	}
	var overlay Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Rules{}, eris.Wrapf(err, "parsing rule file %s", path)
	}

	rules := DefaultRules()
	if len(overlay.High) > 0 {
		rules.High = overlay.High
	}
	if len(overlay.Medium) > 0 {
		rules.Medium = overlay.Medium
	}
	if overlay.Hash.Keyword != "" {
		rules.Hash = overlay.Hash
	}
	if len(overlay.Positional) > 0 {
		rules.Positional = overlay.Positional
	}
	if len(overlay.Exclusions) > 0 {
		rules.Exclusions = overlay.Exclusions
	}
	if len(overlay.StreetTypes) > 0 {
		rules.StreetTypes = overlay.StreetTypes
	}
	if len(overlay.Directionals) > 0 {
		rules.Directionals = overlay.Directionals
	}
	return rules, nil
}
