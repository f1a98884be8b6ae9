// Package nfelib provides a public API for NFe fiscal analysis.
//
// This package exposes the core types for parsing Brazilian NFe XML
// documents and deriving the fiscal risk/tax-liability profile of each
// product line: ICMS-ST classification, CEST backfill, ST antecipação and
// DIFAL purchase projections, and Simples Nacional sale projections.
//
// Example usage:
//
//	analyzer, err := nfelib.NewAnalyzer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := analyzer.AnalyzeBytes(ctx, xmlContent)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Invoice.TotalProjectedTax)
package nfelib

import "github.com/fiscalhub/nfe-analyzer/internal/model"

// Re-export core types for public API
type (
	Invoice           = model.Invoice
	Product           = model.Product
	ClassifiedProduct = model.ClassifiedProduct
	AnnotatedInvoice  = model.AnnotatedInvoice
	RegimeConfig      = model.RegimeConfig
	AlertCode         = model.AlertCode
	AlertList         = model.AlertList
)

// Re-export alert codes
const (
	AlertSTOwed      = model.AlertSTOwed
	AlertSTSettled   = model.AlertSTSettled
	AlertDIFAL       = model.AlertDIFAL
	AlertMissingCEST = model.AlertMissingCEST
)

// Re-export error types
type (
	ParseError  = model.ParseError
	LineError   = model.LineError
	ConfigError = model.ConfigError
)

// Re-export error kinds
const (
	InvalidStructure     = model.InvalidStructure
	MissingRequiredField = model.MissingRequiredField
	ZeroRevenue          = model.ZeroRevenue
)

// DefaultRegimeConfig returns the default Simples Nacional configuration.
func DefaultRegimeConfig() RegimeConfig {
	return model.DefaultRegimeConfig()
}
