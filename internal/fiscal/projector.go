package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/fiscalhub/nfe-analyzer/internal/model"
)

// Params holds the jurisdiction constants used by the tax projections.
// The rates are fixed illustrative stand-ins for a real state-pair fiscal
// table and should be supplied from configuration in production use.
type Params struct {
	// HomeUF is the receiving state; purchases from any other UF are
	// interstate and trigger the purchase-side projection.
	HomeUF string

	// MVA is the presumed added-value margin for the ST antecipação base.
	MVA decimal.Decimal

	// InternalRate is the home state's internal ICMS rate.
	InternalRate decimal.Decimal

	// InterstateRate is the interstate ICMS credit rate.
	InterstateRate decimal.Decimal

	// ResaleMargin estimates the resale price from the purchase total.
	ResaleMargin decimal.Decimal

	// ICMSShare is the ICMS portion of the composite Simples rate, excluded
	// from the sale projection on ST lines because already settled upstream.
	ICMSShare decimal.Decimal
}

// DefaultParams returns the deployment defaults: São Paulo home state with
// the illustrative rate constants.
func DefaultParams() Params {
	return Params{
		HomeUF:         "SP",
		MVA:            decimal.RequireFromString("0.40"),
		InternalRate:   decimal.RequireFromString("0.18"),
		InterstateRate: decimal.RequireFromString("0.12"),
		ResaleMargin:   decimal.RequireFromString("0.30"),
		ICMSShare:      decimal.RequireFromString("0.335"),
	}
}

// ProjectPurchase computes the purchase-side projected liability for a line
// and the alert the rule fired, if any. Intrastate purchases carry no
// purchase-side projection.
//
// Interstate ST lines without withholding owe the antecipação:
// total × ((1+MVA)×internal − interstate). Interstate ST lines already
// withheld owe nothing. Interstate non-ST lines owe the DIFAL rate
// differential: total × (internal − interstate).
func ProjectPurchase(lineTotal decimal.Decimal, isST bool, declaredST decimal.Decimal, issuerUF string, p Params) (decimal.Decimal, model.AlertCode, bool) {
	if issuerUF == p.HomeUF {
		return decimal.Zero, "", false
	}

	if isST {
		if declaredST.IsZero() {
			one := decimal.NewFromInt(1)
			rate := one.Add(p.MVA).Mul(p.InternalRate).Sub(p.InterstateRate)
			return lineTotal.Mul(rate), model.AlertSTOwed, true
		}
		return decimal.Zero, model.AlertSTSettled, true
	}

	rate := p.InternalRate.Sub(p.InterstateRate)
	return lineTotal.Mul(rate), model.AlertDIFAL, true
}

// ProjectSale computes the projected Simples Nacional DAS liability on the
// estimated resale of a line. effectiveRate comes from SimplesRate; for ST
// lines the ICMS parcel is excluded from the composite rate.
func ProjectSale(lineTotal decimal.Decimal, isST bool, effectiveRate decimal.Decimal, p Params) decimal.Decimal {
	one := decimal.NewFromInt(1)
	resale := lineTotal.Mul(one.Add(p.ResaleMargin))

	rate := effectiveRate
	if isST {
		rate = effectiveRate.Mul(one.Sub(p.ICMSShare))
	}
	return resale.Mul(rate)
}
