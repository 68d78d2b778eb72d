package batch

import (
	"sort"
	"strings"

	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/internal/variant"
)

// BuildingSummary counts the units found at one unit-stripped base address.
type BuildingSummary struct {
	BaseAddress string   `json:"base_address"`
	Units       int      `json:"units"`
	UnitTokens  []string `json:"unit_tokens,omitempty"`
}

// AggregateBuildings groups apartment rows by their unit-stripped base
// address. Buildings are ordered by unit count, largest first.
func AggregateBuildings(results []model.MergedResult) []BuildingSummary {
	byBase := make(map[string]*BuildingSummary)
	for _, r := range results {
		if !r.Verdict.IsApartment {
			continue
		}
		base := variant.StripUnit(r.Record.Street)
		if r.Record.City != "" {
			base += ", " + r.Record.City
		}
		if r.Record.State != "" {
			base += ", " + r.Record.State
		}
		key := strings.ToLower(base)

		summary, ok := byBase[key]
		if !ok {
			summary = &BuildingSummary{BaseAddress: base}
			byBase[key] = summary
		}
		summary.Units++
		if r.Verdict.UnitToken != "" {
			summary.UnitTokens = append(summary.UnitTokens, r.Verdict.UnitToken)
		}
	}

	summaries := make([]BuildingSummary, 0, len(byBase))
	for _, s := range byBase {
		sort.Strings(s.UnitTokens)
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Units != summaries[j].Units {
			return summaries[i].Units > summaries[j].Units
		}
		return summaries[i].BaseAddress < summaries[j].BaseAddress
	})
	return summaries
}
