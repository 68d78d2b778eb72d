package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-precision/internal/model"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name        string
		text        string
		isApartment bool
		aType       model.ApartmentType
		unit        string
		confidence  int
	}{
		{"apt with number", "2270 Cahuilla St Apt 154", true, model.ApartmentTypeApartment, "154", 95},
		{"full word apartment", "600 W 9th St Apartment 12", true, model.ApartmentTypeApartment, "12", 95},
		{"unit with alnum token", "456 Oak Ave Unit 12A", true, model.ApartmentTypeUnit, "12A", 95},
		{"suite", "789 Pine Blvd Suite 300", true, model.ApartmentTypeSuite, "300", 95},
		{"ste abbreviation", "789 Pine Blvd Ste 300", true, model.ApartmentTypeSuite, "300", 95},
		{"room", "10 Elm St Room 4", true, model.ApartmentTypeRoom, "4", 80},
		{"rm abbreviation", "10 Elm St Rm 4B", true, model.ApartmentTypeRoom, "4B", 80},
		{"building letter", "55 Harbor Way Bldg C", true, model.ApartmentTypeTower, "C", 75},
		{"tower", "55 Harbor Way Tower B", true, model.ApartmentTypeTower, "B", 75},
		{"hash with space", "1950 Broadway # 809", true, model.ApartmentTypeUnit, "809", 60},
		{"hash tight", "1950 Broadway #809", true, model.ApartmentTypeUnit, "809", 60},
		{"rear position", "77 Lake Dr Rear", true, model.ApartmentTypeUnit, "", 55},
		{"upper position", "12 Cedar Ave Upper", true, model.ApartmentTypeUnit, "", 55},
		{"plain house", "123 Main Street", false, model.ApartmentTypeHouse, "", 0},
		{"directional street name", "321 North Street", false, model.ApartmentTypeHouse, "", 0},
		{"unit keyword inside street name", "100 Unit Street", false, model.ApartmentTypeHouse, "", 0},
		{"keyword before directional street", "100 Unit North Street", false, model.ApartmentTypeHouse, "", 0},
		{"trailing directional unit token", "815 Main St Apt N", true, model.ApartmentTypeApartment, "N", 95},
		{"no unit signal", "9000 Sunset Blvd", false, model.ApartmentTypeHouse, "", 0},
		{"duplex exclusion on position word", "88 Maple Duplex Rear", false, model.ApartmentTypeHouse, "", 0},
		{"apt survives exclusion word", "88 Townhouse Ln Apt 3", true, model.ApartmentTypeApartment, "3", 95},
		{"mixed case", "2270 CAHUILLA ST APT 154", true, model.ApartmentTypeApartment, "154", 95},
		{"comma punctuation", "2270 Cahuilla St, Apt 154", true, model.ApartmentTypeApartment, "154", 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.text)
			assert.Equal(t, tt.isApartment, v.IsApartment)
			assert.Equal(t, tt.aType, v.ApartmentType)
			assert.Equal(t, tt.unit, v.UnitToken)
			assert.Equal(t, tt.confidence, v.Confidence)
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := NewClassifier(DefaultRules())

	for _, text := range []string{"", "   ", "!!!", ",.;"} {
		v := c.Classify(text)
		assert.False(t, v.IsApartment)
		assert.Equal(t, model.ApartmentTypeUnknown, v.ApartmentType)
		assert.Zero(t, v.Confidence)
	}
}

func TestClassifyPicksMatchClosestToEnd(t *testing.T) {
	c := NewClassifier(DefaultRules())

	v := c.Classify("100 Unit 1 Plaza Apt 2")
	require.True(t, v.IsApartment)
	assert.Equal(t, model.ApartmentTypeApartment, v.ApartmentType)
	assert.Equal(t, "2", v.UnitToken)
}

func TestClassifyHighTierBeatsHash(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// "Apt # 5" should resolve through the keyword, not the bare hash.
	v := c.Classify("42 River Rd Apt # 5")
	assert.Equal(t, 95, v.Confidence)
	assert.Equal(t, "5", v.UnitToken)
	assert.Equal(t, "high:apt", v.MatchedPattern)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(DefaultRules())

	first := c.Classify("456 Oak Ave Unit 12A")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify("456 Oak Ave Unit 12A"))
	}
}
