package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fiscalhub/nfe-analyzer/internal/fiscal"
)

var showBrackets bool

var rateCmd = &cobra.Command{
	Use:   "rate [rbt12...]",
	Short: "Show the effective Simples Nacional rate",
	Long: `Compute the effective Simples Nacional (Anexo I) rate for one or more
trailing twelve month revenue levels. With no arguments, the configured
regime revenue is used.

Examples:
  nfe-analyzer rate
  nfe-analyzer rate 180000 360000 720000
  nfe-analyzer rate --brackets`,
	RunE: runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)

	rateCmd.Flags().BoolVar(&showBrackets, "brackets", false, "Print the full Anexo I bracket table")
}

func runRate(cmd *cobra.Command, args []string) error {
	if showBrackets {
		return printBrackets()
	}

	revenues := make([]decimal.Decimal, 0, len(args))
	if len(args) == 0 {
		revenues = append(revenues, regimeFromFlags().RBT12)
	}
	for _, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid revenue %q: %w", arg, err)
		}
		revenues = append(revenues, decimal.NewFromFloat(value))
	}

	type rateRow struct {
		RBT12         decimal.Decimal `json:"rbt12"`
		EffectiveRate decimal.Decimal `json:"effective_rate"`
	}

	rows := make([]rateRow, 0, len(revenues))
	for _, rbt12 := range revenues {
		rate, err := fiscal.SimplesRate(rbt12)
		if err != nil {
			return err
		}
		rows = append(rows, rateRow{RBT12: rbt12, EffectiveRate: rate})
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RBT12\tEFFECTIVE RATE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s%%\n", row.RBT12, row.EffectiveRate.Mul(decimal.NewFromInt(100)))
	}
	return tw.Flush()
}

func printBrackets() error {
	brackets := fiscal.AnexoIBrackets()

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(brackets)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UPPER BOUND\tNOMINAL RATE\tDEDUCTION")
	for _, b := range brackets {
		upper := b.Upper.String()
		if b.Upper.IsZero() {
			upper = "-"
		}
		fmt.Fprintf(tw, "%s\t%s%%\t%s\n", upper, b.Nominal.Mul(decimal.NewFromInt(100)), b.Deduction)
	}
	return tw.Flush()
}
