// Package rowio reads address rows from CSV and XLSX files and writes merged
// results back out, preserving every passthrough column.
package rowio

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ColumnMapping names the input columns holding each address field. Empty
// fields fall back to header auto-detection.
type ColumnMapping struct {
	Street  string `yaml:"street" json:"street"`
	City    string `yaml:"city" json:"city"`
	State   string `yaml:"state" json:"state"`
	ZipCode string `yaml:"zip_code" json:"zip_code"`
}

// Auto-detection candidates, checked in order, case-insensitive.
var (
	streetCandidates = []string{"street", "address", "street_address", "addr", "address1", "address_line_1"}
	cityCandidates   = []string{"city", "town", "locality"}
	stateCandidates  = []string{"state", "province", "region"}
	zipCandidates    = []string{"zip", "zip_code", "zipcode", "postal_code", "postcode"}
)

// LoadMapping reads a YAML column-mapping file.
func LoadMapping(path string) (ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ColumnMapping{}, eris.Wrapf(err, "reading mapping file %s", path)
	}
	var m ColumnMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return ColumnMapping{}, eris.Wrapf(err, "parsing mapping file %s", path)
	}
	return m, nil
}

// columnIndexes holds resolved header positions; -1 means the column is
// absent from the input.
type columnIndexes struct {
	street, city, state, zip int
}

// resolve locates the mapped columns in the header row. The street column is
// required; everything else is optional.
func (m ColumnMapping) resolve(headers []string) (columnIndexes, error) {
	idx := columnIndexes{
		street: findColumn(headers, m.Street, streetCandidates),
		city:   findColumn(headers, m.City, cityCandidates),
		state:  findColumn(headers, m.State, stateCandidates),
		zip:    findColumn(headers, m.ZipCode, zipCandidates),
	}
	if idx.street < 0 {
		return idx, eris.Errorf("no street column found in header %v", headers)
	}
	return idx, nil
}

func findColumn(headers []string, explicit string, candidates []string) int {
	if explicit != "" {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), explicit) {
				return i
			}
		}
		return -1
	}
	for _, cand := range candidates {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), cand) {
				return i
			}
		}
	}
	return -1
}
