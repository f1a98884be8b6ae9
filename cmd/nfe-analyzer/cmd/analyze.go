package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscalhub/nfe-analyzer/internal/model"
	"github.com/fiscalhub/nfe-analyzer/pkg/nfelib"
)

var (
	outputFile string
	timeout    time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze NFe documents",
	Long: `Analyze one or more NFe XML documents: classify each product line
(CEST, ICMS-ST) and project purchase and resale taxes.

Arguments may be files, glob patterns or directories. Directories are
walked recursively; only .xml files are considered.

Examples:
  nfe-analyzer analyze nota.xml
  nfe-analyzer analyze notas/*.xml -o results.json
  nfe-analyzer analyze notas/ -f table --rbt12 360000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Analysis timeout per file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no XML files found to analyze")
	}

	printVerbose("Found %d files to analyze\n", len(files))

	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	results := make([]*AnalyzeResult, 0, len(files))
	for _, file := range files {
		printVerbose("Analyzing: %s\n", file)

		result := analyzeFile(analyzer, file)
		results = append(results, result)

		if result.Error != "" {
			printVerbose("  Error: %s\n", result.Error)
		} else {
			printVerbose("  Lines: %d, projected tax: %s\n",
				len(result.Invoice.Lines), result.Invoice.TotalProjectedTax)
		}
	}

	return outputResults(results)
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isXMLFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
		} else {
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				if !info.IsDir() && isXMLFile(match) {
					files = append(files, match)
				}
			}
		}
	}

	return files, nil
}

func isXMLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}

func analyzeFile(analyzer *nfelib.Analyzer, filePath string) *AnalyzeResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := &AnalyzeResult{
		File: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	analysis, err := analyzer.AnalyzeBytes(ctx, data)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Invoice = analysis.Invoice
	for _, le := range analysis.LineErrors {
		result.LineErrors = append(result.LineErrors,
			fmt.Sprintf("line %d (%s): %s", le.Index+1, le.Code, le.Message))
	}

	return result
}

func outputResults(results []*AnalyzeResult) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return outputTable(writer, results)
	case "csv":
		return outputCSV(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w *os.File, results []*AnalyzeResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputTable(w *os.File, results []*AnalyzeResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNUMBER\tISSUER UF\tTOTAL\tPURCHASE TAX\tSALE TAX\tALERTS")
	fmt.Fprintln(tw, "----\t------\t---------\t-----\t------------\t--------\t------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\n", r.File, r.Error)
			continue
		}

		inv := r.Invoice
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.File,
			inv.Number,
			inv.IssuerUF,
			inv.TotalValue.String(),
			inv.TotalPurchaseTax.String(),
			inv.TotalSaleTax.String(),
			len(inv.Inconsistencies()),
		)
	}

	return tw.Flush()
}

func outputCSV(w *os.File, results []*AnalyzeResult) error {
	fmt.Fprintln(w, "file,number,issuer_cnpj,issuer_uf,line,product,ncm,cest,is_st,line_total,purchase_tax,sale_tax,alerts,error")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s,,,,,,,,,,,,,%s\n", r.File, escapeCSV(r.Error))
			continue
		}

		inv := r.Invoice
		for i, line := range inv.Lines {
			fmt.Fprintf(w, "%s,%s,%s,%s,%d,%s,%s,%s,%t,%s,%s,%s,%s,\n",
				r.File,
				inv.Number,
				inv.IssuerCNPJ,
				inv.IssuerUF,
				i+1,
				escapeCSV(line.Description),
				line.NCM,
				line.CEST,
				line.IsST,
				line.Total.String(),
				line.ProjectedPurchaseTax.String(),
				line.ProjectedSaleTax.String(),
				escapeCSV(line.TaxAlert),
			)
		}
	}

	return nil
}

func escapeCSV(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") || strings.Contains(s, "\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}

// AnalyzeResult holds the result of analyzing a single file
type AnalyzeResult struct {
	File       string                  `json:"file"`
	Invoice    *model.AnnotatedInvoice `json:"invoice,omitempty"`
	LineErrors []string                `json:"line_errors,omitempty"`
	Error      string                  `json:"error,omitempty"`
}
