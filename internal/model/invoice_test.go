package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/nfe-analyzer/internal/model"
)

func TestInvoice_Creation(t *testing.T) {
	inv := model.Invoice{
		Number:     "1234",
		IssueDate:  "2025-03-10T09:41:21-03:00",
		IssuerCNPJ: "12345678000195",
		IssuerName: "Distribuidora ABC Ltda",
		IssuerUF:   "RJ",
		TotalValue: decimal.NewFromFloat(1500.50),
		Products: []model.Product{
			{Code: "P001", NCM: "30049099", Total: decimal.NewFromFloat(1500.50)},
		},
	}

	assert.Equal(t, "1234", inv.Number)
	assert.Equal(t, "RJ", inv.IssuerUF)
	require.Len(t, inv.Products, 1)
	assert.Equal(t, "30049099", inv.Products[0].NCM)
	// absent monetary fields are zero, never unset
	assert.True(t, inv.TotalICMSST.IsZero())
	assert.True(t, inv.Products[0].ICMSSTValue.IsZero())
}

func TestAlertList_Join(t *testing.T) {
	var alerts model.AlertList
	assert.Equal(t, "", alerts.Join())

	alerts = append(alerts, model.AlertSTOwed, model.AlertMissingCEST)
	joined := alerts.Join()
	assert.Contains(t, joined, "ST a recolher")
	assert.Contains(t, joined, "CEST não informado")
	assert.Equal(t, "ST a recolher (compra interestadual sem retenção) | CEST não informado", joined)
}

func TestAlertList_Without(t *testing.T) {
	alerts := model.AlertList{model.AlertSTOwed, model.AlertMissingCEST}

	filtered := alerts.Without(model.AlertMissingCEST)
	assert.Equal(t, model.AlertList{model.AlertSTOwed}, filtered)
	assert.False(t, filtered.Has(model.AlertMissingCEST))

	// original list is untouched
	assert.True(t, alerts.Has(model.AlertMissingCEST))
}

func TestDefaultRegimeConfig(t *testing.T) {
	cfg := model.DefaultRegimeConfig()
	assert.True(t, cfg.RBT12.Equal(decimal.NewFromInt(180000)))
	assert.Equal(t, model.AnnexI, cfg.Annex)
}

func TestRegimeConfig_OrDefault(t *testing.T) {
	var empty model.RegimeConfig
	assert.True(t, empty.OrDefault().RBT12.Equal(decimal.NewFromInt(180000)))

	custom := model.RegimeConfig{RBT12: decimal.NewFromInt(500000), Annex: model.AnnexI}
	assert.True(t, custom.OrDefault().RBT12.Equal(decimal.NewFromInt(500000)))
}

func TestAnnotatedInvoice_Inconsistencies(t *testing.T) {
	inv := &model.AnnotatedInvoice{
		Invoice: &model.Invoice{Number: "42"},
		Lines: []model.ClassifiedProduct{
			{
				Product: model.Product{Code: "OK", CEST: "1300200"},
			},
			{
				Product: model.Product{Code: "NOCEST"},
			},
			{
				Product:              model.Product{Code: "TAXED", CEST: "1300200"},
				ProjectedPurchaseTax: decimal.NewFromFloat(13.2),
				Alerts:               model.AlertList{model.AlertSTOwed},
			},
		},
	}

	items := inv.Inconsistencies()
	require.Len(t, items, 2)
	assert.Equal(t, "NOCEST", items[0].Code)
	assert.Equal(t, "TAXED", items[1].Code)
}

func TestParseError(t *testing.T) {
	err := model.NewParseError(model.InvalidStructure, "root", "no recognized NFe root element", nil)
	assert.Contains(t, err.Error(), "invalid_structure")
	assert.Contains(t, err.Error(), "root")
}

func TestLineError_Unwrap(t *testing.T) {
	cause := assert.AnError
	err := model.NewLineError(2, "P002", "ABC123", "invalid NCM", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "line 2")
}

func TestConfigError(t *testing.T) {
	err := model.NewConfigError(model.ZeroRevenue, "rbt12", "must be greater than zero")
	assert.Contains(t, err.Error(), "rbt12")
	assert.Contains(t, err.Error(), "zero_revenue")
}
