package fiscal

import (
	"github.com/shopspring/decimal"

	dec "github.com/fiscalhub/nfe-analyzer/internal/decimal"
	"github.com/fiscalhub/nfe-analyzer/internal/model"
)

// simplesBracket is one row of the Simples Nacional Anexo I progressive
// table: effective rate = (rbt12×nominal − deduction) / rbt12.
type simplesBracket struct {
	upper     decimal.Decimal // inclusive upper bound of RBT12, zero = no bound
	nominal   decimal.Decimal
	deduction decimal.Decimal
}

// Anexo I (comércio) brackets. The first bracket has no deduction, so the
// formula collapses to the flat nominal rate.
var anexoIBrackets = []simplesBracket{
	{upper: decimal.NewFromInt(180000), nominal: decimal.RequireFromString("0.04"), deduction: decimal.Zero},
	{upper: decimal.NewFromInt(360000), nominal: decimal.RequireFromString("0.073"), deduction: decimal.NewFromInt(5940)},
	{upper: decimal.NewFromInt(720000), nominal: decimal.RequireFromString("0.095"), deduction: decimal.NewFromInt(13860)},
	{upper: decimal.NewFromInt(1800000), nominal: decimal.RequireFromString("0.107"), deduction: decimal.NewFromInt(22500)},
	{upper: decimal.NewFromInt(3600000), nominal: decimal.RequireFromString("0.143"), deduction: decimal.NewFromInt(87300)},
	{nominal: decimal.RequireFromString("0.19"), deduction: decimal.NewFromInt(378000)},
}

// BracketInfo is a read-only view of one Anexo I bracket, for display.
type BracketInfo struct {
	Upper     decimal.Decimal `json:"upper"` // zero means unbounded
	Nominal   decimal.Decimal `json:"nominal"`
	Deduction decimal.Decimal `json:"deduction"`
}

// AnexoIBrackets returns the progressive table rows in ascending order.
func AnexoIBrackets() []BracketInfo {
	out := make([]BracketInfo, 0, len(anexoIBrackets))
	for _, b := range anexoIBrackets {
		out = append(out, BracketInfo{Upper: b.upper, Nominal: b.nominal, Deduction: b.deduction})
	}
	return out
}

// SimplesRate computes the effective Simples Nacional rate for a trailing
// twelve month gross revenue. RBT12 must be positive: zero would divide by
// zero in the marginal formula and is rejected as a configuration error
// instead of silently producing NaN.
func SimplesRate(rbt12 decimal.Decimal) (decimal.Decimal, error) {
	if !rbt12.IsPositive() {
		return decimal.Zero, model.NewConfigError(model.ZeroRevenue, "rbt12", "must be greater than zero")
	}

	for _, b := range anexoIBrackets {
		if !b.upper.IsZero() && rbt12.GreaterThan(b.upper) {
			continue
		}
		return dec.RateDiv(rbt12.Mul(b.nominal).Sub(b.deduction), rbt12), nil
	}
	// unreachable: the last bracket is unbounded
	return decimal.Zero, nil
}
