package rowio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/address-precision/internal/model"
)

// outputColumns are appended after the passthrough columns.
var outputColumns = []string{
	"is_apartment",
	"apartment_type",
	"unit_number",
	"confidence_score",
	"place_key",
	"precision_score",
	"location_type",
	"selected_strategy",
	"consistency_score",
	"conflict_flag",
	"processing_status",
	"error",
}

// WriteCSV writes merged results with the original columns first and the
// engine's output columns appended. A UTF-8 BOM keeps spreadsheet tools from
// mangling the file on round-trip.
func WriteCSV(path string, headers []string, results []model.MergedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "creating %s", path)
	}
	if err := writeResults(f, headers, results); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "closing %s", path)
}

func writeResults(w io.Writer, headers []string, results []model.MergedResult) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return eris.Wrap(err, "writing BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, headers...), outputColumns...)); err != nil {
		return eris.Wrap(err, "writing header")
	}

	for _, r := range results {
		row := make([]string, 0, len(headers)+len(outputColumns))
		for _, h := range headers {
			row = append(row, r.Record.Extra[h])
		}
		row = append(row, resultCells(r)...)
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "writing row %d", r.Record.RowID)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "flushing output")
}

func resultCells(r model.MergedResult) []string {
	placeKey, locationType, strategy := "", string(model.LocationUnknown), ""
	precision := ""
	if r.Optimization != nil {
		sel := r.Optimization.Selected
		placeKey = sel.PlaceKey
		locationType = string(sel.LocationType)
		strategy = string(sel.Variant.Strategy)
		if sel.Success {
			precision = strconv.Itoa(sel.PrecisionScore)
		}
	}

	consistencyScore, conflict := "", ""
	if r.Consistency != nil {
		conflict = strconv.FormatBool(r.Consistency.Conflict)
		if r.Consistency.ReverseAddress != nil {
			consistencyScore = fmt.Sprintf("%.3f", r.Consistency.Similarity)
		}
	}

	return []string{
		strconv.FormatBool(r.Verdict.IsApartment),
		string(r.Verdict.ApartmentType),
		r.Verdict.UnitToken,
		strconv.Itoa(r.Verdict.Confidence),
		placeKey,
		precision,
		locationType,
		strategy,
		consistencyScore,
		conflict,
		string(r.Status),
		r.Error,
	}
}
