// Package model defines the core value objects for NFe fiscal analysis.
package model

import (
	"github.com/shopspring/decimal"
)

// Invoice is the canonical representation of a parsed NFe document.
// All monetary fields default to zero when absent in the source XML.
type Invoice struct {
	Number     string `json:"number"`
	IssueDate  string `json:"issue_date"`
	IssuerCNPJ string `json:"issuer_cnpj"`
	IssuerName string `json:"issuer_name"`
	IssuerUF   string `json:"issuer_uf"`

	TotalValue decimal.Decimal `json:"total_value"`

	// Aggregate tax totals from the ICMSTot block
	TotalICMS      decimal.Decimal `json:"total_icms"`
	TotalICMSST    decimal.Decimal `json:"total_icms_st"`
	TotalIPI       decimal.Decimal `json:"total_ipi"`
	TotalPIS       decimal.Decimal `json:"total_pis"`
	TotalCOFINS    decimal.Decimal `json:"total_cofins"`
	TotalFreight   decimal.Decimal `json:"total_freight"`
	TotalInsurance decimal.Decimal `json:"total_insurance"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	TotalOther     decimal.Decimal `json:"total_other"`

	Products []Product `json:"products"`
}

// Product is a single product line from the <det> block.
type Product struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	NCM         string `json:"ncm"`
	CEST        string `json:"cest,omitempty"`
	CFOP        string `json:"cfop"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`

	// Per-line tax values from the active tax sub-block variant
	ICMSValue   decimal.Decimal `json:"icms_value"`
	ICMSSTValue decimal.Decimal `json:"icms_st_value"`
	IPIValue    decimal.Decimal `json:"ipi_value"`
	PISValue    decimal.Decimal `json:"pis_value"`
	COFINSValue decimal.Decimal `json:"cofins_value"`
}

// ClassifiedProduct is a product line annotated with the ST classification
// and the projected purchase- and sale-side tax liabilities.
// Once assembled the record is treated as immutable by consumers.
type ClassifiedProduct struct {
	Product

	IsST                 bool            `json:"is_st"`
	ProjectedPurchaseTax decimal.Decimal `json:"projected_purchase_tax"`
	ProjectedSaleTax     decimal.Decimal `json:"projected_sale_tax"`

	// Alerts in rule-firing order; TaxAlert is their rendered form
	Alerts   AlertList `json:"alerts,omitempty"`
	TaxAlert string    `json:"tax_alert,omitempty"`
}

// AnnotatedInvoice is the output of the assembler: the parsed invoice plus
// classified lines and per-invoice projected tax aggregates. Aggregates only
// include lines that classified successfully.
type AnnotatedInvoice struct {
	*Invoice

	Lines []ClassifiedProduct `json:"lines"`

	TotalPurchaseTax  decimal.Decimal `json:"total_purchase_related_tax"`
	TotalSaleTax      decimal.Decimal `json:"total_sale_related_tax"`
	TotalProjectedTax decimal.Decimal `json:"total_projected_tax"`
}

// Inconsistencies returns the lines that need fiscal review: any line with a
// fired alert, a still-missing CEST, or a positive projected purchase tax.
func (a *AnnotatedInvoice) Inconsistencies() []ClassifiedProduct {
	var out []ClassifiedProduct
	for _, l := range a.Lines {
		if len(l.Alerts) > 0 || l.CEST == "" || l.ProjectedPurchaseTax.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}
