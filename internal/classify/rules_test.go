package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-precision/internal/model"
)

func TestLoadRulesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `high:
  - keyword: flat
    confidence: 90
    type: apartment
exclusions:
  - casita
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	// Overridden sections replace the defaults.
	require.Len(t, rules.High, 1)
	assert.Equal(t, "flat", rules.High[0].Keyword)
	assert.Equal(t, []string{"casita"}, rules.Exclusions)

	// Untouched sections keep the built-in table.
	assert.Equal(t, DefaultRules().Medium, rules.Medium)
	assert.Equal(t, DefaultRules().Hash, rules.Hash)

	c := NewClassifier(rules)
	v := c.Classify("12 High St Flat 3")
	assert.True(t, v.IsApartment)
	assert.Equal(t, model.ApartmentTypeApartment, v.ApartmentType)
	assert.Equal(t, 90, v.Confidence)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRulesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("high: [unbalanced"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
}
