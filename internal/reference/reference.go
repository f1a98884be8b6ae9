// Package reference loads the fiscal reference data the engine depends on:
// the NCM→CEST mapping, the ST NCM prefix set and the projection rate
// constants. All of it is deployment-time data, supplied as YAML so tables
// can be updated without a rebuild; built-in pharmacy-sector defaults are
// used when no file is given.
package reference

import (
	"fmt"
	"os"

	sdecimal "github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fiscalhub/nfe-analyzer/internal/decimal"
	"github.com/fiscalhub/nfe-analyzer/internal/fiscal"
)

// Data is the materialized reference data set.
type Data struct {
	CEST       map[string]string `yaml:"cest"`
	STPrefixes []string          `yaml:"st_ncm_prefixes"`
	Rates      *Rates            `yaml:"rates"`
}

// Rates externalizes the projection constants. Values are decimal strings.
type Rates struct {
	HomeUF         string `yaml:"home_uf"`
	MVA            string `yaml:"mva"`
	InternalRate   string `yaml:"internal_rate"`
	InterstateRate string `yaml:"interstate_rate"`
	ResaleMargin   string `yaml:"resale_margin"`
	ICMSShare      string `yaml:"icms_share"`
}

// Default returns the built-in reference data. The CEST entries are
// illustrative pharmacy-retail values, not a complete CONFAZ table.
func Default() *Data {
	return &Data{
		CEST: map[string]string{
			"3003":     "1300100",
			"3004":     "1300200",
			"30049099": "1300200",
			"3006":     "1301000",
			"3304":     "2800900",
			"330410":   "2801000",
			"3305":     "2801700",
			"3306":     "2005500",
			"3307":     "2802900",
			"3401":     "2803000",
			"4014":     "1301200",
			"9018":     "1301100",
		},
		STPrefixes: fiscal.DefaultSTPrefixes(),
	}
}

// Load reads reference data from a YAML file. Sections absent from the file
// fall back to the built-in defaults, so a deployment can override just the
// CEST table while keeping default prefixes and rates.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}

	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing reference data %s: %w", path, err)
	}

	defaults := Default()
	if len(d.CEST) == 0 {
		d.CEST = defaults.CEST
	}
	if len(d.STPrefixes) == 0 {
		d.STPrefixes = defaults.STPrefixes
	}
	return &d, nil
}

// CESTTable builds the immutable lookup table from the data set.
func (d *Data) CESTTable() *fiscal.CESTTable {
	return fiscal.NewCESTTable(d.CEST)
}

// PrefixSet returns the ST NCM prefixes as a classifier set.
func (d *Data) PrefixSet() fiscal.STPrefixSet {
	return fiscal.STPrefixSet(d.STPrefixes)
}

// Params materializes the projection constants, starting from the engine
// defaults and overriding any rate present in the data set. Unparsable
// values are rejected, not coerced: a broken rate table must never silently
// project with wrong constants.
func (d *Data) Params() (fiscal.Params, error) {
	p := fiscal.DefaultParams()
	if d.Rates == nil {
		return p, nil
	}

	r := d.Rates
	if r.HomeUF != "" {
		p.HomeUF = r.HomeUF
	}
	for _, f := range []struct {
		name string
		raw  string
		dst  *sdecimal.Decimal
	}{
		{"mva", r.MVA, &p.MVA},
		{"internal_rate", r.InternalRate, &p.InternalRate},
		{"interstate_rate", r.InterstateRate, &p.InterstateRate},
		{"resale_margin", r.ResaleMargin, &p.ResaleMargin},
		{"icms_share", r.ICMSShare, &p.ICMSShare},
	} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.FromString(f.raw)
		if err != nil {
			return fiscal.Params{}, fmt.Errorf("invalid rate %s=%q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	return p, nil
}
