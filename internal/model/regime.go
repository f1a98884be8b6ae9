package model

import "github.com/shopspring/decimal"

// AnnexI is the Simples Nacional bracket label for commerce (retail resale).
// It is currently the only annex with projection semantics implemented.
const AnnexI = "Anexo I"

// RegimeConfig holds the tenant's Simples Nacional tax regime parameters.
// One logical instance per deployment; read once at the start of an assembly
// so a mid-batch update never affects an in-flight invoice.
type RegimeConfig struct {
	// RBT12 is the trailing-twelve-month gross revenue used as the bracket
	// variable for the progressive rate table.
	RBT12 decimal.Decimal `json:"rbt12"`

	// Annex selects the Simples Nacional rate table.
	Annex string `json:"annex"`
}

// DefaultRegimeConfig returns the configuration used when none was supplied:
// first-bracket revenue on Anexo I.
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		RBT12: decimal.NewFromInt(180000),
		Annex: AnnexI,
	}
}

// OrDefault returns the config itself when usable, or the default config when
// the revenue is unset. A zero RBT12 is not a valid bracket input and callers
// must not let it reach the rate formula.
func (c RegimeConfig) OrDefault() RegimeConfig {
	if c.RBT12.IsZero() && c.Annex == "" {
		return DefaultRegimeConfig()
	}
	return c
}
