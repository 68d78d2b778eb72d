package rowio

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/address-precision/internal/model"
)

// ReadXLSX parses the first sheet of a workbook into address records.
func ReadXLSX(path string, mapping ColumnMapping) ([]model.AddressRecord, []string, error) {
	rows, err := readXLSXRows(path)
	if err != nil {
		return nil, nil, err
	}
	return rowsToRecords(rows, mapping)
}

// PreviewXLSX returns the header and up to n data rows of the first sheet.
func PreviewXLSX(path string, n int) ([]string, [][]string, error) {
	rows, err := readXLSXRows(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, eris.Errorf("%s is empty", path)
	}
	data := rows[1:]
	if len(data) > n {
		data = data[:n]
	}
	return rows[0], data, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "opening %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("%s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// IsXLSX reports whether the path looks like a workbook rather than a CSV.
func IsXLSX(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}

// ReadFile dispatches on the file extension.
func ReadFile(path string, mapping ColumnMapping) ([]model.AddressRecord, []string, error) {
	if IsXLSX(path) {
		return ReadXLSX(path, mapping)
	}
	return ReadCSV(path, mapping)
}

// PreviewFile dispatches on the file extension.
func PreviewFile(path string, n int) ([]string, [][]string, error) {
	if IsXLSX(path) {
		return PreviewXLSX(path, n)
	}
	return PreviewCSV(path, n)
}
