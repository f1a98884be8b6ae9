// Package nfe parses Brazilian NFe XML documents into the canonical
// invoice model. The parser is a pure transform: it performs no I/O beyond
// reading the supplied content and returns either a fully populated invoice
// or a ParseError, never a partial document.
package nfe

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/fiscalhub/nfe-analyzer/internal/decimal"
	"github.com/fiscalhub/nfe-analyzer/internal/model"
)

// Parser parses NFe XML into model.Invoice
type Parser struct{}

// NewParser creates a new NFe parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads and parses NFe XML content
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*model.Invoice, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewParseError(model.InvalidStructure, "content", "failed to read content", err)
	}
	return p.ParseBytes(ctx, content)
}

// ParseBytes parses NFe XML content into an Invoice. Accepts both the
// <nfeProc> distribution wrapper and a bare <NFe> root.
func (p *Parser) ParseBytes(_ context.Context, content []byte) (*model.Invoice, error) {
	var inf infNFe

	switch {
	case bytes.Contains(content, []byte("<nfeProc")):
		var doc procDocument
		if err := unmarshal(content, &doc); err != nil {
			return nil, model.NewParseError(model.InvalidStructure, "nfeProc", "failed to parse XML", err)
		}
		inf = doc.NFe.InfNFe

	case bytes.Contains(content, []byte("<NFe")):
		var doc nfeDocument
		if err := unmarshal(content, &doc); err != nil {
			return nil, model.NewParseError(model.InvalidStructure, "NFe", "failed to parse XML", err)
		}
		inf = doc.InfNFe

	default:
		return nil, model.NewParseError(model.InvalidStructure, "root", "no recognized NFe root element", nil)
	}

	return convertInvoice(&inf)
}

// unmarshal decodes XML tolerating latin-1 encoded documents, which older
// emitter software still produces.
func unmarshal(content []byte, v interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.CharsetReader = charsetReader
	return dec.Decode(v)
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin1", "windows-1252":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	default:
		return input, nil
	}
}

func convertInvoice(inf *infNFe) (*model.Invoice, error) {
	if inf.Ide.NNF == "" {
		return nil, model.NewParseError(model.MissingRequiredField, "nNF", "invoice number is required", nil)
	}
	if len(inf.Det) == 0 {
		return nil, model.NewParseError(model.MissingRequiredField, "det", "invoice has no product lines", nil)
	}

	issueDate := inf.Ide.DhEmi
	if issueDate == "" {
		issueDate = inf.Ide.DEmi
	}

	tot := inf.Total.ICMSTot
	result := &model.Invoice{
		Number:     inf.Ide.NNF,
		IssueDate:  issueDate,
		IssuerCNPJ: inf.Emit.CNPJ,
		IssuerName: inf.Emit.XNome,
		IssuerUF:   inf.Emit.Ender.UF,

		TotalValue:     decimal.ParseAmount(tot.VNF),
		TotalICMS:      decimal.ParseAmount(tot.VICMS),
		TotalICMSST:    decimal.ParseAmount(tot.VST),
		TotalIPI:       decimal.ParseAmount(tot.VIPI),
		TotalPIS:       decimal.ParseAmount(tot.VPIS),
		TotalCOFINS:    decimal.ParseAmount(tot.VCOFINS),
		TotalFreight:   decimal.ParseAmount(tot.VFrete),
		TotalInsurance: decimal.ParseAmount(tot.VSeg),
		TotalDiscount:  decimal.ParseAmount(tot.VDesc),
		TotalOther:     decimal.ParseAmount(tot.VOutro),
	}

	result.Products = make([]model.Product, 0, len(inf.Det))
	for _, d := range inf.Det {
		result.Products = append(result.Products, convertLine(&d))
	}

	return result, nil
}

func convertLine(d *det) model.Product {
	line := model.Product{
		Code:        d.Prod.CProd,
		Description: d.Prod.XProd,
		NCM:         d.Prod.NCM,
		CEST:        d.Prod.CEST,
		CFOP:        d.Prod.CFOP,
		Quantity:    decimal.ParseAmount(d.Prod.QCom),
		UnitPrice:   decimal.ParseAmount(d.Prod.VUnCom),
		Total:       decimal.ParseAmount(d.Prod.VProd),
	}

	if icms := d.Imposto.ICMS.active(); icms != nil {
		line.ICMSValue = decimal.ParseAmount(icms.VICMS)
		line.ICMSSTValue = decimal.ParseAmount(icms.VICMSST)
	}
	if ipi := d.Imposto.IPI.active(); ipi != nil {
		line.IPIValue = decimal.ParseAmount(ipi.VIPI)
	}
	if pis := d.Imposto.PIS.active(); pis != nil {
		line.PISValue = decimal.ParseAmount(pis.VPIS)
	}
	if cofins := d.Imposto.COFINS.active(); cofins != nil {
		line.COFINSValue = decimal.ParseAmount(cofins.VCOFINS)
	}

	return line
}
