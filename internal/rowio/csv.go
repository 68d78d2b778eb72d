package rowio

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/sells-group/address-precision/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses the file into address records. The full original row is
// kept in Extra so the writer can echo every passthrough column.
func ReadCSV(path string, mapping ColumnMapping) ([]model.AddressRecord, []string, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, nil, err
	}
	return rowsToRecords(rows, mapping)
}

// PreviewCSV returns the header and up to n data rows.
func PreviewCSV(path string, n int) ([]string, [][]string, error) {
	rows, err := readCSVRows(path)
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

func readCSVRows(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", path)
	}
	decoded, err := decodeText(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "decoding %s", path)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "parsing %s", path)
	}
	return rows, nil
}

// decodeText sniffs the byte stream: UTF-8 (with or without BOM) passes
// through, anything else is tried as GB18030, which covers GBK and GB2312
// exports from legacy spreadsheet tools.
func decodeText(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}

	decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
	if err != nil {
		return nil, eris.Wrap(err, "not valid UTF-8 or GB18030")
	}
	zap.L().Debug("decoded input as GB18030", zap.Int("bytes", len(raw)))
	return decoded, nil
}

// rowsToRecords maps raw rows onto address records using the header row.
func rowsToRecords(rows [][]string, mapping ColumnMapping) ([]model.AddressRecord, []string, error) {
	if len(rows) == 0 {
		return nil, nil, eris.New("input has no header row")
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	idx, err := mapping.resolve(headers)
	if err != nil {
		return nil, nil, err
	}

	records := make([]model.AddressRecord, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		rec := model.AddressRecord{
			RowID:   rowNum,
			Street:  cellAt(row, idx.street),
			City:    cellAt(row, idx.city),
			State:   cellAt(row, idx.state),
			ZipCode: cellAt(row, idx.zip),
			Extra:   make(map[string]string, len(headers)),
		}
		for i, h := range headers {
			rec.Extra[h] = cellAt(row, i)
		}
		records = append(records, rec)
	}
	return records, headers, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
