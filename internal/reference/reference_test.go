package reference_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/nfe-analyzer/internal/reference"
)

func TestDefault(t *testing.T) {
	d := reference.Default()

	table := d.CESTTable()
	cest, ok := table.Resolve("30049099")
	require.True(t, ok)
	assert.Equal(t, "1300200", cest)

	assert.True(t, d.PrefixSet().Matches("30049099"))
	assert.False(t, d.PrefixSet().Matches("84713012"))

	params, err := d.Params()
	require.NoError(t, err)
	assert.Equal(t, "SP", params.HomeUF)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.yaml")
	content := `
cest:
  "2202": "0300100"
st_ncm_prefixes:
  - "2202"
rates:
  home_uf: "MG"
  mva: "0.50"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := reference.Load(path)
	require.NoError(t, err)

	cest, ok := d.CESTTable().Resolve("22021000")
	require.True(t, ok)
	assert.Equal(t, "0300100", cest)
	assert.True(t, d.PrefixSet().Matches("22021000"))

	params, err := d.Params()
	require.NoError(t, err)
	assert.Equal(t, "MG", params.HomeUF)
	assert.True(t, params.MVA.Equal(decimal.RequireFromString("0.50")))
	// unset rates keep engine defaults
	assert.True(t, params.InternalRate.Equal(decimal.RequireFromString("0.18")))
}

func TestLoad_MissingSectionsFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`rates: {home_uf: "RS"}`), 0o644))

	d, err := reference.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, d.CEST)
	assert.True(t, d.PrefixSet().Matches("30049099"))
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := reference.Load("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestParams_InvalidRateRejected(t *testing.T) {
	d := reference.Default()
	d.Rates = &reference.Rates{MVA: "forty percent"}

	_, err := d.Params()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mva")
}
