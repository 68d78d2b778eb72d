package rowio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadCSVAutoDetectsColumns(t *testing.T) {
	path := writeTemp(t, "in.csv", []byte(
		"id,Address,City,State,Zip,notes\n"+
			"1,2270 Cahuilla St Apt 154,Palm Springs,CA,92262,keep me\n"+
			"2,123 Main St,Springfield,IL,62704,\n"))

	records, headers, err := ReadCSV(path, ColumnMapping{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Address", "City", "State", "Zip", "notes"}, headers)
	require.Len(t, records, 2)

	assert.Equal(t, 0, records[0].RowID)
	assert.Equal(t, "2270 Cahuilla St Apt 154", records[0].Street)
	assert.Equal(t, "Palm Springs", records[0].City)
	assert.Equal(t, "CA", records[0].State)
	assert.Equal(t, "92262", records[0].ZipCode)
	assert.Equal(t, "keep me", records[0].Extra["notes"])
	assert.Equal(t, "1", records[0].Extra["id"])

	assert.Equal(t, 1, records[1].RowID)
	assert.Equal(t, "123 Main St", records[1].Street)
}

func TestReadCSVExplicitMapping(t *testing.T) {
	path := writeTemp(t, "in.csv", []byte(
		"ref,street_line,municipality\n"+
			"a,1950 Broadway # 809,New York\n"))

	mapping := ColumnMapping{Street: "street_line", City: "municipality"}
	records, _, err := ReadCSV(path, mapping)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1950 Broadway # 809", records[0].Street)
	assert.Equal(t, "New York", records[0].City)
	assert.Empty(t, records[0].State)
}

func TestReadCSVMissingStreetColumn(t *testing.T) {
	path := writeTemp(t, "in.csv", []byte("id,notes\n1,x\n"))

	_, _, err := ReadCSV(path, ColumnMapping{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "street")
}

func TestReadCSVSkipsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("address\n123 Main St\n")...)
	path := writeTemp(t, "bom.csv", data)

	records, headers, err := ReadCSV(path, ColumnMapping{})
	require.NoError(t, err)
	assert.Equal(t, []string{"address"}, headers)
	require.Len(t, records, 1)
	assert.Equal(t, "123 Main St", records[0].Street)
}

func TestReadCSVDecodesGB18030(t *testing.T) {
	utf8CSV := "address,city\n123 Main St,北京\n"
	encoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewEncoder(), []byte(utf8CSV))
	require.NoError(t, err)
	require.False(t, bytes.Equal(encoded, []byte(utf8CSV)))

	path := writeTemp(t, "gbk.csv", encoded)
	records, _, err := ReadCSV(path, ColumnMapping{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "北京", records[0].City)
}

func TestPreviewCSV(t *testing.T) {
	path := writeTemp(t, "in.csv", []byte(
		"address\n1 A St\n2 B St\n3 C St\n4 D St\n"))

	header, rows, err := PreviewCSV(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"address"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1 A St"}, rows[0])
}

func TestLoadMapping(t *testing.T) {
	path := writeTemp(t, "mapping.yaml", []byte("street: street_line\ncity: municipality\n"))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, "street_line", m.Street)
	assert.Equal(t, "municipality", m.City)
	assert.Empty(t, m.State)
}
