package nfelib_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/nfe-analyzer/pkg/nfelib"
)

const interstateNFe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc versao="4.00">
<NFe>
  <infNFe>
    <ide><nNF>1234</nNF><dhEmi>2025-03-10T09:41:21-03:00</dhEmi></ide>
    <emit>
      <CNPJ>12345678000195</CNPJ>
      <xNome>Distribuidora ABC Ltda</xNome>
      <enderEmit><UF>RJ</UF></enderEmit>
    </emit>
    <det nItem="1">
      <prod>
        <cProd>P001</cProd>
        <xProd>Dipirona 500mg</xProd>
        <NCM>30049099</NCM>
        <CFOP>6102</CFOP>
        <qCom>10.0000</qCom>
        <vUnCom>10.0000</vUnCom>
        <vProd>100.00</vProd>
      </prod>
      <imposto>
        <ICMS><ICMSSN102><vICMS>0.00</vICMS></ICMSSN102></ICMS>
      </imposto>
    </det>
    <total><ICMSTot><vNF>100.00</vNF></ICMSTot></total>
  </infNFe>
</NFe>
</nfeProc>`

func TestAnalyzer_EndToEnd(t *testing.T) {
	analyzer, err := nfelib.NewAnalyzer(
		nfelib.WithRegime(nfelib.RegimeConfig{
			RBT12: decimal.NewFromInt(180000),
			Annex: "Anexo I",
		}),
	)
	require.NoError(t, err)

	result, err := analyzer.AnalyzeBytes(context.Background(), []byte(interstateNFe))
	require.NoError(t, err)
	require.Empty(t, result.LineErrors)
	require.Len(t, result.Invoice.Lines, 1)

	line := result.Invoice.Lines[0]
	assert.True(t, line.IsST)
	assert.Equal(t, "1300200", line.CEST)
	assert.True(t, line.ProjectedPurchaseTax.Equal(decimal.RequireFromString("13.2")),
		"got %s", line.ProjectedPurchaseTax)
	assert.Contains(t, line.TaxAlert, "ST a recolher")
	assert.True(t, line.ProjectedSaleTax.Equal(decimal.RequireFromString("3.458")),
		"got %s", line.ProjectedSaleTax)
}

func TestAnalyzer_ParseXML(t *testing.T) {
	analyzer, err := nfelib.NewAnalyzer()
	require.NoError(t, err)

	inv, err := analyzer.ParseXML(context.Background(), strings.NewReader(interstateNFe))
	require.NoError(t, err)
	assert.Equal(t, "1234", inv.Number)
	assert.Equal(t, "RJ", inv.IssuerUF)
}

func TestAnalyzer_InvalidDocument(t *testing.T) {
	analyzer, err := nfelib.NewAnalyzer()
	require.NoError(t, err)

	_, err = analyzer.AnalyzeBytes(context.Background(), []byte(`<Invoice/>`))
	require.Error(t, err)

	var parseErr *nfelib.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, nfelib.InvalidStructure, parseErr.Kind)
}

func TestAnalyzer_AnalyzeWithRegimeOverride(t *testing.T) {
	analyzer, err := nfelib.NewAnalyzer()
	require.NoError(t, err)

	// second bracket: effective rate above 0.04, so sale tax exceeds the
	// default-regime projection
	result, err := analyzer.AnalyzeWithRegime(context.Background(), []byte(interstateNFe),
		nfelib.RegimeConfig{RBT12: decimal.NewFromInt(360000), Annex: "Anexo I"})
	require.NoError(t, err)

	line := result.Invoice.Lines[0]
	assert.True(t, line.ProjectedSaleTax.GreaterThan(decimal.RequireFromString("3.458")))
}
