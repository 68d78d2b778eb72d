package optimize

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/pkg/geocode"
)

func variants(renders ...string) []model.AddressVariant {
	strategies := []model.VariantStrategy{
		model.StrategyOriginal,
		model.StrategyUnitStripped,
		model.StrategyStandardized,
		model.StrategySimplified,
	}
	vs := make([]model.AddressVariant, len(renders))
	for i, r := range renders {
		vs[i] = model.AddressVariant{Strategy: strategies[i], Rendered: r}
	}
	return vs
}

func TestScore(t *testing.T) {
	tests := []struct {
		locType model.LocationType
		conf    float64
		want    int
	}{
		{model.LocationRooftop, 0.9, 100},
		{model.LocationRooftop, 0.0, 95},
		{model.LocationRangeInterpolated, 1.0, 85},
		{model.LocationRangeInterpolated, 0.0, 80},
		{model.LocationApproximate, 0.5, 68},
		{model.LocationGeometricCenter, 0.2, 51},
		{model.LocationUnknown, 1.0, 5},
		{model.LocationUnknown, 0.0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.locType, tt.conf), "%s/%v", tt.locType, tt.conf)
	}
}

func TestOptimizeSelectsHighestPrecision(t *testing.T) {
	byAddress := map[string]*geocode.Result{
		"original": {PlaceKey: "pk-orig", LocationType: "RANGE_INTERPOLATED", Confidence: 0.8},
		"stripped": {PlaceKey: "pk-strip", LocationType: "ROOFTOP", Confidence: 0.9},
		"expanded": {PlaceKey: "pk-std", LocationType: "APPROXIMATE", Confidence: 0.4},
	}
	resolve := func(ctx context.Context, addr string) (*geocode.Result, error) {
		return byAddress[addr], nil
	}

	o := NewOptimizer()
	result := o.Optimize(context.Background(), variants("original", "stripped", "expanded"), resolve)

	assert.Equal(t, 3, result.StrategiesTested)
	assert.Equal(t, 3, result.StrategiesSucceeded)
	assert.Equal(t, "pk-strip", result.Selected.PlaceKey)
	assert.Equal(t, model.StrategyUnitStripped, result.Selected.Variant.Strategy)
	assert.Equal(t, 100, result.Selected.PrecisionScore)
	assert.Len(t, result.All, 3)
}

func TestOptimizeTieGoesToEarlierVariant(t *testing.T) {
	resolve := func(ctx context.Context, addr string) (*geocode.Result, error) {
		return &geocode.Result{PlaceKey: "pk-" + addr, LocationType: "ROOFTOP", Confidence: 1.0}, nil
	}

	o := NewOptimizer()
	result := o.Optimize(context.Background(), variants("a", "b"), resolve)

	assert.Equal(t, "pk-a", result.Selected.PlaceKey)
	assert.Equal(t, model.StrategyOriginal, result.Selected.Variant.Strategy)
}

func TestOptimizeContinuesPastFailures(t *testing.T) {
	resolve := func(ctx context.Context, addr string) (*geocode.Result, error) {
		if addr == "bad" {
			return nil, &geocode.Failure{Kind: geocode.KindNotFound, Err: eris.New("no match")}
		}
		return &geocode.Result{PlaceKey: "pk-good", LocationType: "GEOMETRIC_CENTER", Confidence: 0.5}, nil
	}

	o := NewOptimizer()
	result := o.Optimize(context.Background(), variants("bad", "good"), resolve)

	assert.Equal(t, 2, result.StrategiesTested)
	assert.Equal(t, 1, result.StrategiesSucceeded)
	assert.True(t, result.Selected.Success)
	assert.Equal(t, "pk-good", result.Selected.PlaceKey)

	require.Len(t, result.All, 2)
	assert.False(t, result.All[0].Success)
	assert.Contains(t, result.All[0].Error, "NOT_FOUND")
}

func TestOptimizeAllFail(t *testing.T) {
	resolve := func(ctx context.Context, addr string) (*geocode.Result, error) {
		return nil, &geocode.Failure{Kind: geocode.KindRateLimited, Err: eris.New("throttled")}
	}

	o := NewOptimizer()
	result := o.Optimize(context.Background(), variants("a", "b", "c"), resolve)

	assert.Equal(t, 3, result.StrategiesTested)
	assert.Zero(t, result.StrategiesSucceeded)
	assert.False(t, result.Selected.Success)
	assert.Contains(t, result.Selected.Error, "RATE_LIMITED")
	assert.Equal(t, model.StrategyOriginal, result.Selected.Variant.Strategy)
}

func TestOptimizeUnknownLocationTypeScoresLowest(t *testing.T) {
	resolve := func(ctx context.Context, addr string) (*geocode.Result, error) {
		return &geocode.Result{PlaceKey: "pk", LocationType: "SOMETHING_NEW", Confidence: 1.0}, nil
	}

	o := NewOptimizer()
	result := o.Optimize(context.Background(), variants("a"), resolve)

	assert.Equal(t, model.LocationUnknown, result.Selected.LocationType)
	assert.Equal(t, 5, result.Selected.PrecisionScore)
}
