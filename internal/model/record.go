package model

import "time"

// ApartmentType categorizes the kind of secondary unit a classification found.
type ApartmentType string

const (
	ApartmentTypeApartment ApartmentType = "apartment"
	ApartmentTypeUnit      ApartmentType = "unit"
	ApartmentTypeSuite     ApartmentType = "suite"
	ApartmentTypeRoom      ApartmentType = "room"
	ApartmentTypeTower     ApartmentType = "tower"
	ApartmentTypeHouse     ApartmentType = "house"
	ApartmentTypeUnknown   ApartmentType = "unknown"
)

// VariantStrategy names one rewrite applied to an address before geocoding.
type VariantStrategy string

const (
	StrategyOriginal     VariantStrategy = "original"
	StrategyUnitStripped VariantStrategy = "unit_stripped"
	StrategyStandardized VariantStrategy = "standardized"
	StrategySimplified   VariantStrategy = "simplified"
)

// LocationType mirrors the precision class reported by the geocoding provider.
type LocationType string

const (
	LocationRooftop           LocationType = "ROOFTOP"
	LocationRangeInterpolated LocationType = "RANGE_INTERPOLATED"
	LocationGeometricCenter   LocationType = "GEOMETRIC_CENTER"
	LocationApproximate       LocationType = "APPROXIMATE"
	LocationUnknown           LocationType = "UNKNOWN"
)

// ProcessingStatus is the per-row outcome of a batch run.
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusPartial ProcessingStatus = "partial"
	StatusFailed  ProcessingStatus = "failed"
)

// AddressRecord is one input row. Extra carries passthrough columns that the
// engine never interprets but must echo into the output.
type AddressRecord struct {
	RowID   int               `json:"row_id"`
	Street  string            `json:"street"`
	City    string            `json:"city,omitempty"`
	State   string            `json:"state,omitempty"`
	ZipCode string            `json:"zip_code,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// ApartmentVerdict is the classifier's decision for a single address.
type ApartmentVerdict struct {
	IsApartment    bool          `json:"is_apartment"`
	ApartmentType  ApartmentType `json:"apartment_type"`
	UnitToken      string        `json:"unit_number,omitempty"`
	Confidence     int           `json:"confidence_score"`
	MatchedPattern string        `json:"matched_pattern,omitempty"`
}

// AddressVariant is one rewritten form of an input address.
type AddressVariant struct {
	Strategy VariantStrategy `json:"strategy"`
	Rendered string          `json:"rendered"`
}

// GeocodeCandidate records the provider response for one variant.
type GeocodeCandidate struct {
	Variant        AddressVariant `json:"variant"`
	PlaceKey       string         `json:"place_key,omitempty"`
	LocationType   LocationType   `json:"location_type"`
	PrecisionScore int            `json:"precision_score"`
	RawConfidence  float64        `json:"raw_confidence"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
}

// OptimizationResult is the outcome of trying every variant against the geocoder.
type OptimizationResult struct {
	Selected            GeocodeCandidate   `json:"selected"`
	All                 []GeocodeCandidate `json:"all"`
	StrategiesTested    int                `json:"strategies_tested"`
	StrategiesSucceeded int                `json:"strategies_succeeded"`
}

// ConsistencyReport compares the reverse-resolved address against the input.
type ConsistencyReport struct {
	ReverseAddress  *ReverseAddress    `json:"reverse_address,omitempty"`
	Similarity      float64            `json:"consistency_score"`
	ComponentScores map[string]float64 `json:"component_scores,omitempty"`
	Conflict        bool               `json:"conflict_flag"`
}

// ReverseAddress is the structured address recovered from a place key.
type ReverseAddress struct {
	HouseNumber string `json:"house_number,omitempty"`
	StreetName  string `json:"street_name,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
}

// MergedResult is one fully processed output row.
type MergedResult struct {
	Record       AddressRecord       `json:"record"`
	Verdict      ApartmentVerdict    `json:"verdict"`
	Optimization *OptimizationResult `json:"optimization,omitempty"`
	Consistency  *ConsistencyReport  `json:"consistency,omitempty"`
	Status       ProcessingStatus    `json:"processing_status"`
	Error        string              `json:"error,omitempty"`
}

// BatchStats aggregates a completed batch run.
type BatchStats struct {
	Total            int           `json:"total"`
	Apartments       int           `json:"apartments"`
	Succeeded        int           `json:"succeeded"`
	Partial          int           `json:"partial"`
	Failed           int           `json:"failed"`
	Conflicts        int           `json:"conflicts"`
	ProviderFailures int           `json:"provider_failures"`
	MeanPrecision    float64       `json:"mean_precision"`
	Elapsed          time.Duration `json:"elapsed"`
}

// ApartmentRate returns the share of rows classified as apartments.
func (s BatchStats) ApartmentRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Apartments) / float64(s.Total)
}

// SuccessRate returns the share of rows that finished with StatusSuccess.
func (s BatchStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}
