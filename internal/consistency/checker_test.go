package consistency

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/pkg/geocode"
)

func staticReverse(addr *geocode.Address) ReverseFunc {
	return func(ctx context.Context, placeKey string) (*geocode.Address, error) {
		return addr, nil
	}
}

func TestCheckFullAgreement(t *testing.T) {
	c := NewChecker()
	rec := model.AddressRecord{
		Street: "2270 Cahuilla St Apt 154",
		City:   "Palm Springs",
		State:  "CA",
	}
	reverse := staticReverse(&geocode.Address{
		HouseNumber: "2270",
		StreetName:  "Cahuilla Street",
		City:        "Palm Springs",
		State:       "CA",
	})

	report := c.Check(context.Background(), rec, "pk", reverse)

	assert.InDelta(t, 1.0, report.Similarity, 1e-9)
	assert.False(t, report.Conflict)
	require.NotNil(t, report.ReverseAddress)
	assert.Equal(t, "2270", report.ReverseAddress.HouseNumber)
}

func TestCheckHouseNumberDriftIsConflict(t *testing.T) {
	c := NewChecker()
	rec := model.AddressRecord{
		Street: "2270 Cahuilla St",
		City:   "Palm Springs",
		State:  "CA",
	}
	reverse := staticReverse(&geocode.Address{
		HouseNumber: "2260",
		StreetName:  "Cahuilla Street",
		City:        "Palm Springs",
		State:       "CA",
	})

	report := c.Check(context.Background(), rec, "pk", reverse)

	// Street, city and state agree; only the house number differs.
	assert.InDelta(t, 0.70, report.Similarity, 1e-9)
	assert.True(t, report.Conflict)
	assert.Zero(t, report.ComponentScores["house_number"])
	assert.InDelta(t, 1.0, report.ComponentScores["street_name"], 1e-9)
}

func TestCheckLowSimilarityConflict(t *testing.T) {
	c := NewChecker()
	rec := model.AddressRecord{Street: "100 Elm St", City: "Portland", State: "OR"}
	reverse := staticReverse(&geocode.Address{
		HouseNumber: "4821",
		StreetName:  "Industrial Parkway",
		City:        "Gresham",
		State:       "OR",
	})

	report := c.Check(context.Background(), rec, "pk", reverse)

	assert.Less(t, report.Similarity, 0.5)
	assert.True(t, report.Conflict)
}

func TestCheckMatchingHouseNeverConflicts(t *testing.T) {
	c := NewChecker()
	rec := model.AddressRecord{Street: "100 Elm St", City: "Portland", State: "OR"}
	reverse := staticReverse(&geocode.Address{
		HouseNumber: "100",
		StreetName:  "Completely Different Rd",
		City:        "Elsewhere",
		State:       "TX",
	})

	report := c.Check(context.Background(), rec, "pk", reverse)

	assert.False(t, report.Conflict)
}

func TestCheckReverseFailure(t *testing.T) {
	c := NewChecker()
	rec := model.AddressRecord{Street: "100 Elm St"}
	reverse := func(ctx context.Context, placeKey string) (*geocode.Address, error) {
		return nil, &geocode.Failure{Kind: geocode.KindNotFound, Err: eris.New("gone")}
	}

	report := c.Check(context.Background(), rec, "pk", reverse)

	assert.Zero(t, report.Similarity)
	assert.False(t, report.Conflict)
	assert.Nil(t, report.ReverseAddress)
}

func TestCheckStateAbbreviationEquivalence(t *testing.T) {
	c := NewChecker()
	rec := model.AddressRecord{Street: "2270 Cahuilla St", City: "Palm Springs", State: "California"}
	reverse := staticReverse(&geocode.Address{
		HouseNumber: "2270",
		StreetName:  "Cahuilla St",
		City:        "Palm Springs",
		State:       "CA",
	})

	report := c.Check(context.Background(), rec, "pk", reverse)

	assert.InDelta(t, 1.0, report.ComponentScores["state"], 1e-9)
	assert.InDelta(t, 1.0, report.Similarity, 1e-9)
}

func TestParseStreetLine(t *testing.T) {
	tests := []struct {
		in, house, street string
	}{
		{"2270 Cahuilla St Apt 154", "2270", "Cahuilla St"},
		{"1950 Broadway # 809", "1950", "Broadway"},
		{"Main Street", "", "Main Street"},
		{"", "", ""},
		{"123-A Oak Ave", "123-A", "Oak Ave"},
	}
	for _, tt := range tests {
		house, street := ParseStreetLine(tt.in)
		assert.Equal(t, tt.house, house, tt.in)
		assert.Equal(t, tt.street, street, tt.in)
	}
}
