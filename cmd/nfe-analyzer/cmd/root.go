package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fiscalhub/nfe-analyzer/internal/config"
	"github.com/fiscalhub/nfe-analyzer/internal/model"
	"github.com/fiscalhub/nfe-analyzer/internal/reference"
	"github.com/fiscalhub/nfe-analyzer/pkg/nfelib"
)

var (
	version = "1.0.0"

	// Global flags
	configFile    string
	verbose       bool
	outputFormat  string
	referenceFile string
	rbt12Flag     float64
	annexFlag     string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nfe-analyzer",
	Short: "Classify Brazilian NFe documents and project Simples Nacional taxes",
	Long: `NFe Analyzer is a CLI tool for fiscal classification of Brazilian
electronic invoices (NF-e, layout 4.00).

For each product line it:
  - resolves the CEST code from the NCM when the document omits it
  - decides whether the item falls under ICMS-ST (tax substitution)
  - projects the purchase-side tax (ST antecipação or DIFAL)
  - projects the resale tax under the Simples Nacional regime

Examples:
  # Analyze a single document
  nfe-analyzer analyze nota.xml

  # Analyze a directory of documents, table output
  nfe-analyzer analyze notas/ -f table

  # Structural validation only
  nfe-analyzer validate *.xml

  # Inspect the effective Simples Nacional rate for a revenue level
  nfe-analyzer rate 360000

  # Start the HTTP API
  nfe-analyzer serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml, env: NFE_*)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&referenceFile, "reference", "", "YAML reference data file (CEST table, ST prefixes, rates)")
	rootCmd.PersistentFlags().Float64Var(&rbt12Flag, "rbt12", 0, "Trailing 12-month gross revenue for the Simples bracket")
	rootCmd.PersistentFlags().StringVar(&annexFlag, "annex", "", "Simples Nacional annex (default: Anexo I)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional; real environment wins over it
	_ = godotenv.Load()

	loaded, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if verbose {
		cfg.Log.Level = "debug"
	}
	logger = cfg.ConfigureLogging()

	if referenceFile == "" {
		referenceFile = cfg.Reference.File
	}
}

// regimeFromFlags resolves the regime config with flags taking precedence
// over the config file.
func regimeFromFlags() model.RegimeConfig {
	regime := model.RegimeConfig{
		RBT12: decimal.NewFromFloat(cfg.Regime.RBT12),
		Annex: cfg.Regime.Annex,
	}
	if rbt12Flag > 0 {
		regime.RBT12 = decimal.NewFromFloat(rbt12Flag)
	}
	if annexFlag != "" {
		regime.Annex = annexFlag
	}
	return regime.OrDefault()
}

func loadReferenceData() (*reference.Data, error) {
	if referenceFile == "" {
		return reference.Default(), nil
	}
	logger.WithField("file", referenceFile).Debug("loading reference data")
	return reference.Load(referenceFile)
}

func newAnalyzer() (*nfelib.Analyzer, error) {
	data, err := loadReferenceData()
	if err != nil {
		return nil, err
	}
	return nfelib.NewAnalyzer(
		nfelib.WithReferenceData(data),
		nfelib.WithRegime(regimeFromFlags()),
		nfelib.WithLogger(logger),
	)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
