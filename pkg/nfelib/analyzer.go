package nfelib

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/fiscalhub/nfe-analyzer/internal/fiscal"
	"github.com/fiscalhub/nfe-analyzer/internal/model"
	"github.com/fiscalhub/nfe-analyzer/internal/parser/nfe"
	"github.com/fiscalhub/nfe-analyzer/internal/reference"
)

// Analyzer combines the NFe parser and the fiscal assembler behind one
// entry point. It is immutable after construction and safe for concurrent
// use; the regime config is applied per call.
type Analyzer struct {
	parser    *nfe.Parser
	assembler *fiscal.Assembler
	regime    model.RegimeConfig
}

// AnalyzerOption configures an Analyzer
type AnalyzerOption func(*analyzerOptions)

type analyzerOptions struct {
	data   *reference.Data
	regime model.RegimeConfig
	logger *logrus.Logger
}

// WithReferenceData supplies a loaded reference data set instead of the
// built-in defaults.
func WithReferenceData(d *reference.Data) AnalyzerOption {
	return func(o *analyzerOptions) { o.data = d }
}

// WithRegime sets the regime config used when AnalyzeBytes is called
// without an explicit one.
func WithRegime(r RegimeConfig) AnalyzerOption {
	return func(o *analyzerOptions) { o.regime = r }
}

// WithLogger sets the logger for the assembler's line-failure side channel.
func WithLogger(l *logrus.Logger) AnalyzerOption {
	return func(o *analyzerOptions) { o.logger = l }
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	o := &analyzerOptions{
		data:   reference.Default(),
		regime: model.DefaultRegimeConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	params, err := o.data.Params()
	if err != nil {
		return nil, err
	}

	assemblerOpts := []fiscal.Option{
		fiscal.WithPrefixes(o.data.PrefixSet()),
		fiscal.WithParams(params),
	}
	if o.logger != nil {
		assemblerOpts = append(assemblerOpts, fiscal.WithLogger(o.logger))
	}

	return &Analyzer{
		parser:    nfe.NewParser(),
		assembler: fiscal.NewAssembler(o.data.CESTTable(), assemblerOpts...),
		regime:    o.regime,
	}, nil
}

// Result is the outcome of analyzing one NFe document.
type Result = fiscal.Result

// Analyze parses and classifies NFe XML from a reader.
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewParseError(model.InvalidStructure, "content", "failed to read input", err)
	}
	return a.AnalyzeBytes(ctx, content)
}

// AnalyzeBytes parses and classifies NFe XML using the analyzer's regime.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, content []byte) (*Result, error) {
	return a.AnalyzeWithRegime(ctx, content, a.regime)
}

// AnalyzeWithRegime parses and classifies NFe XML with an explicit regime
// config, overriding the analyzer default for this call only.
func (a *Analyzer) AnalyzeWithRegime(ctx context.Context, content []byte, regime RegimeConfig) (*Result, error) {
	inv, err := a.parser.ParseBytes(ctx, content)
	if err != nil {
		return nil, err
	}
	return a.assembler.Assemble(inv, regime)
}

// ParseXML parses NFe XML into the canonical invoice without classifying.
func (a *Analyzer) ParseXML(ctx context.Context, r io.Reader) (*Invoice, error) {
	return a.parser.Parse(ctx, r)
}
