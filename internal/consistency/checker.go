package consistency

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/pkg/geocode"
)

// ReverseFunc is the reverse-resolution hook the checker drives. It is the
// shape of geocode.Client.ResolveKey.
type ReverseFunc func(ctx context.Context, placeKey string) (*geocode.Address, error)

// Component weights. House number dominates conflict detection while street
// name carries the largest share of the blended score.
const (
	weightHouseNumber = 0.30
	weightStreetName  = 0.40
	weightCity        = 0.20
	weightState       = 0.10
)

// conflictStreetAgreement is the street score above which a differing house
// number reads as interpolation drift rather than a genuinely different road.
const conflictStreetAgreement = 0.8

// Checker cross-references a resolved place key against the input address.
type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// Check reverse-resolves the place key and scores component agreement with
// the input record. A reverse failure yields a zero-similarity report with
// no conflict flag: absence of evidence is not a conflict.
func (c *Checker) Check(ctx context.Context, rec model.AddressRecord, placeKey string, reverse ReverseFunc) model.ConsistencyReport {
	addr, err := reverse(ctx, placeKey)
	if err != nil {
		zap.L().Warn("reverse resolution failed",
			zap.String("place_key", placeKey),
			zap.Error(err))
		return model.ConsistencyReport{}
	}

	inputHouse, inputStreet := ParseStreetLine(rec.Street)

	scores := map[string]float64{
		"house_number": houseNumberScore(inputHouse, addr.HouseNumber),
		"street_name":  streetSimilarity(inputStreet, addr.StreetName),
		"city":         stringSimilarity(rec.City, addr.City),
		"state":        stateSimilarity(rec.State, addr.State),
	}

	similarity := weightHouseNumber*scores["house_number"] +
		weightStreetName*scores["street_name"] +
		weightCity*scores["city"] +
		weightState*scores["state"]

	mismatch := inputHouse != "" && addr.HouseNumber != "" && inputHouse != addr.HouseNumber
	conflict := mismatch && (similarity < 0.5 || scores["street_name"] >= conflictStreetAgreement)

	return model.ConsistencyReport{
		ReverseAddress: &model.ReverseAddress{
			HouseNumber: addr.HouseNumber,
			StreetName:  addr.StreetName,
			City:        addr.City,
			State:       addr.State,
		},
		Similarity:      similarity,
		ComponentScores: scores,
		Conflict:        conflict,
	}
}

// houseNumberScore is binary: house numbers either match exactly or not at
// all, partial digit overlap means a different building.
func houseNumberScore(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return 0
}
