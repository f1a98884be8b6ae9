package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/nfe-analyzer/internal/model"
	"github.com/fiscalhub/nfe-analyzer/internal/server"
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

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	analyzer, err := nfelib.NewAnalyzer()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	config := &server.Config{
		Address: ":8080",
		Debug:   false,
	}
	return server.NewServer(config, analyzer, nfelib.DefaultRegimeConfig(), logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte(interstateNFe)))
	req.Header.Set("Content-Type", "application/xml")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response server.AnalyzeResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	require.NotNil(t, response.Invoice)
	assert.Equal(t, "1234", response.Invoice.Number)
	require.Len(t, response.Invoice.Lines, 1)

	line := response.Invoice.Lines[0]
	assert.True(t, line.IsST)
	assert.Equal(t, "13.2", line.ProjectedPurchaseTax.String())
	assert.Contains(t, line.TaxAlert, "ST a recolher")
	assert.Empty(t, response.LineErrors)
}

func TestAnalyzeEndpoint_EmptyBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpoint_InvalidDocument(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte(`<Invoice/>`)))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotEmpty(t, response["error"])
}

func TestParseEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", bytes.NewReader([]byte(interstateNFe)))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response server.ParseResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	require.NotNil(t, response.Invoice)
	assert.Equal(t, "1234", response.Invoice.Number)
	assert.Equal(t, "RJ", response.Invoice.IssuerUF)
	require.Len(t, response.Invoice.Products, 1)
	assert.Equal(t, "30049099", response.Invoice.Products[0].NCM)
}

func TestRegimeEndpoints(t *testing.T) {
	srv := newTestServer(t)

	// default regime
	req := httptest.NewRequest(http.MethodGet, "/api/v1/regime", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var regime model.RegimeConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regime))
	assert.Equal(t, model.AnnexI, regime.Annex)
	assert.Equal(t, "180000", regime.RBT12.String())

	// update and read back
	body := []byte(`{"rbt12": 360000, "annex": "Anexo I"}`)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/regime", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/regime", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regime))
	assert.Equal(t, "360000", regime.RBT12.String())
}

func TestRegimeUpdate_RejectsNonPositiveRevenue(t *testing.T) {
	srv := newTestServer(t)

	body := []byte(`{"rbt12": -100}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/regime", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSimplesRateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := []byte(`{"rbt12": 180000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simples-rate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response server.SimplesRateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "0.04", response.EffectiveRate.String())
}

func TestSimplesRateEndpoint_RejectsZeroRevenue(t *testing.T) {
	srv := newTestServer(t)

	body := []byte(`{"rbt12": -1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simples-rate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUploadEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", "nota.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte(interstateNFe))
	require.NoError(t, err)

	part, err = mw.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)

	part, err = mw.CreateFormFile("file", "broken.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte(`<Invoice/>`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response server.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Processed, 1)
	assert.Equal(t, "nota.xml", response.Processed[0].File)
	require.Len(t, response.Rejected, 2)
	assert.Equal(t, "scan.pdf", response.Rejected[0].File)
	assert.Equal(t, "broken.xml", response.Rejected[1].File)
}

func TestUploadEndpoint_NoFiles(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
