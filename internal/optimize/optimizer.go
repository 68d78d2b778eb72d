package optimize

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/pkg/geocode"
)

// ResolveFunc is the forward-resolution hook the optimizer drives. It is the
// shape of geocode.Client.Resolve.
type ResolveFunc func(ctx context.Context, address string) (*geocode.Result, error)

// baseScores anchors each provider precision class.
var baseScores = map[model.LocationType]int{
	model.LocationRooftop:           95,
	model.LocationRangeInterpolated: 80,
	model.LocationApproximate:       65,
	model.LocationGeometricCenter:   50,
	model.LocationUnknown:           0,
}

// Score computes the precision score for one candidate. It is a pure
// function of the precision class and the provider's raw confidence.
func Score(locationType model.LocationType, rawConfidence float64) int {
	score := baseScores[locationType] + int(math.Round(rawConfidence*5))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Optimizer tries every variant of an address against the geocoder and keeps
// the most precise answer.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Optimize resolves each variant in order and selects the candidate with the
// strictly highest precision score; on a tie the earlier variant wins. When
// every variant fails, the first failure is the selected candidate.
func (o *Optimizer) Optimize(ctx context.Context, variants []model.AddressVariant, resolve ResolveFunc) model.OptimizationResult {
	result := model.OptimizationResult{
		All:              make([]model.GeocodeCandidate, 0, len(variants)),
		StrategiesTested: len(variants),
	}

	for _, v := range variants {
		candidate := o.resolveVariant(ctx, v, resolve)
		result.All = append(result.All, candidate)
		if candidate.Success {
			result.StrategiesSucceeded++
		}
	}

	selectedIdx := -1
	for i, cand := range result.All {
		if !cand.Success {
			continue
		}
		if selectedIdx < 0 || cand.PrecisionScore > result.All[selectedIdx].PrecisionScore {
			selectedIdx = i
		}
	}
	if selectedIdx < 0 {
		// Total failure: surface the first variant's outcome.
		if len(result.All) > 0 {
			result.Selected = result.All[0]
		}
		return result
	}

	result.Selected = result.All[selectedIdx]
	return result
}

func (o *Optimizer) resolveVariant(ctx context.Context, v model.AddressVariant, resolve ResolveFunc) model.GeocodeCandidate {
	res, err := resolve(ctx, v.Rendered)
	if err != nil {
		zap.L().Debug("variant resolution failed",
			zap.String("strategy", string(v.Strategy)),
			zap.String("kind", string(geocode.KindOf(err))),
			zap.Error(err))
		return model.GeocodeCandidate{
			Variant:      v,
			LocationType: model.LocationUnknown,
			Error:        err.Error(),
		}
	}

	locType := model.LocationType(res.LocationType)
	if _, known := baseScores[locType]; !known {
		locType = model.LocationUnknown
	}
	return model.GeocodeCandidate{
		Variant:        v,
		PlaceKey:       res.PlaceKey,
		LocationType:   locType,
		PrecisionScore: Score(locType, res.Confidence),
		RawConfidence:  res.Confidence,
		Success:        true,
	}
}
