package fiscal

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fiscalhub/nfe-analyzer/internal/model"
)

// Assembler orchestrates CEST resolution, ST classification and tax
// projection over a parsed invoice's product lines. It holds no cross-call
// state; independent callers may assemble concurrently.
type Assembler struct {
	cest     *CESTTable
	prefixes STPrefixSet
	params   Params
	logger   *logrus.Logger
}

// Option configures an Assembler
type Option func(*Assembler)

// WithPrefixes overrides the default ST NCM prefix set.
func WithPrefixes(p STPrefixSet) Option {
	return func(a *Assembler) { a.prefixes = p }
}

// WithParams overrides the default fiscal constants.
func WithParams(p Params) Option {
	return func(a *Assembler) { a.params = p }
}

// WithLogger sets the logger used for the line-failure side channel.
func WithLogger(l *logrus.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler creates an assembler over the given CEST reference table.
func NewAssembler(cest *CESTTable, opts ...Option) *Assembler {
	a := &Assembler{
		cest:     cest,
		prefixes: DefaultSTPrefixes(),
		params:   DefaultParams(),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of assembling one invoice: the annotated invoice
// built from the lines that classified successfully, plus one error per
// skipped line. Partial success is the expected steady state.
type Result struct {
	Invoice    *model.AnnotatedInvoice `json:"invoice"`
	LineErrors []*model.LineError      `json:"line_errors,omitempty"`
}

// Assemble classifies and projects every product line of the invoice.
//
// The regime config is read once here; a concurrent regime update never
// affects an in-flight assembly. A line failure is logged, reported in
// Result.LineErrors and excluded from the annotated output and from the
// aggregate totals. The whole batch fails only on an unusable regime
// config (zero RBT12).
func (a *Assembler) Assemble(inv *model.Invoice, regime model.RegimeConfig) (*Result, error) {
	regime = regime.OrDefault()
	effectiveRate, err := SimplesRate(regime.RBT12)
	if err != nil {
		return nil, err
	}

	annotated := &model.AnnotatedInvoice{
		Invoice: inv,
		Lines:   make([]model.ClassifiedProduct, 0, len(inv.Products)),
	}
	var lineErrors []*model.LineError

	for i, line := range inv.Products {
		classified, lerr := a.assembleLine(line, inv.IssuerUF, effectiveRate)
		if lerr != nil {
			lerr.Index = i
			lineErrors = append(lineErrors, lerr)
			a.logger.WithFields(logrus.Fields{
				"invoice": inv.Number,
				"line":    i,
				"code":    line.Code,
				"ncm":     line.NCM,
			}).WithError(lerr).Warn("skipping product line")
			continue
		}

		annotated.Lines = append(annotated.Lines, *classified)
		annotated.TotalPurchaseTax = annotated.TotalPurchaseTax.Add(classified.ProjectedPurchaseTax)
		annotated.TotalSaleTax = annotated.TotalSaleTax.Add(classified.ProjectedSaleTax)
	}

	annotated.TotalProjectedTax = annotated.TotalPurchaseTax.Add(annotated.TotalSaleTax)
	return &Result{Invoice: annotated, LineErrors: lineErrors}, nil
}

// assembleLine runs the per-line rule sequence: CEST backfill, ST
// classification, purchase projection, sale projection. Alerts accumulate
// in rule-firing order; the missing-CEST marker is always last.
func (a *Assembler) assembleLine(line model.Product, issuerUF string, effectiveRate decimal.Decimal) (*model.ClassifiedProduct, *model.LineError) {
	ncm, err := NormalizeNCM(line.NCM)
	if err != nil {
		return nil, model.NewLineError(0, line.Code, line.NCM, "invalid NCM", err)
	}

	out := &model.ClassifiedProduct{Product: line}

	if out.CEST == "" {
		if cest, ok := a.cest.Resolve(ncm); ok {
			out.CEST = cest
		}
	}

	out.IsST = IsST(ncm, out.CEST, a.prefixes)

	purchase, alert, fired := ProjectPurchase(line.Total, out.IsST, line.ICMSSTValue, issuerUF, a.params)
	if fired {
		out.Alerts = append(out.Alerts, alert)
	}
	out.ProjectedPurchaseTax = purchase

	out.ProjectedSaleTax = ProjectSale(line.Total, out.IsST, effectiveRate, a.params)

	if out.CEST == "" && out.IsST {
		out.Alerts = append(out.Alerts, model.AlertMissingCEST)
	}

	out.TaxAlert = out.Alerts.Join()
	return out, nil
}
