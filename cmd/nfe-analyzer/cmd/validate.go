package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fiscalhub/nfe-analyzer/pkg/nfelib"
)

var strictValidation bool

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate NFe documents",
	Long: `Validate one or more NFe XML documents structurally, without running
the fiscal classification.

Checks performed:
  - Recognized root element (nfeProc or NFe)
  - Required fields present (invoice number, product lines)
  - Issuer identification (CNPJ, UF)
  - NCM present on every product line
  - Declared total vs sum of line totals

Examples:
  nfe-analyzer validate nota.xml
  nfe-analyzer validate notas/*.xml --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no XML files found to validate")
	}

	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := validateFile(analyzer, file)
		results = append(results, result)

		if !result.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("  ⚠ %s\n", w)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}

	return nil
}

func validateFile(analyzer *nfelib.Analyzer, filePath string) *ValidationResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := &ValidationResult{
		File:     filePath,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	f, err := os.Open(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}
	defer f.Close()

	inv, err := analyzer.ParseXML(ctx, f)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("parse error: %v", err))
		return result
	}

	if inv.IssuerCNPJ == "" {
		result.warn(strictValidation, "missing issuer CNPJ")
	}
	if inv.IssuerUF == "" {
		// the UF drives the interstate check, so its absence is always an error
		result.Valid = false
		result.Errors = append(result.Errors, "missing issuer UF")
	}
	if inv.IssueDate == "" {
		result.warn(strictValidation, "missing issue date")
	}

	lineSum := decimal.Zero
	for i, p := range inv.Products {
		if p.NCM == "" {
			result.warn(strictValidation, fmt.Sprintf("line %d: missing NCM", i+1))
		}
		if p.Total.IsZero() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: total is zero", i+1))
		}
		lineSum = lineSum.Add(p.Total)
	}

	if inv.TotalValue.IsZero() {
		result.Warnings = append(result.Warnings, "declared total is zero or missing")
	} else if !lineSum.Equal(inv.TotalValue) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("total mismatch: lines sum to %s but declared total is %s",
				lineSum, inv.TotalValue))
	}

	return result
}

func (r *ValidationResult) warn(strict bool, msg string) {
	if strict {
		r.Valid = false
		r.Errors = append(r.Errors, msg)
	} else {
		r.Warnings = append(r.Warnings, msg)
	}
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
