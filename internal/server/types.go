package server

import (
	"github.com/shopspring/decimal"

	"github.com/fiscalhub/nfe-analyzer/internal/model"
)

// AnalyzeResponse is the response for the analyze endpoint
type AnalyzeResponse struct {
	Invoice         *model.AnnotatedInvoice `json:"invoice"`
	LineErrors      []LineErrorOutput       `json:"line_errors,omitempty"`
	Inconsistencies int                     `json:"inconsistencies_count"`
}

// LineErrorOutput holds a reported line failure for API responses
type LineErrorOutput struct {
	Index   int    `json:"index"`
	Code    string `json:"code,omitempty"`
	NCM     string `json:"ncm,omitempty"`
	Message string `json:"message"`
}

// ParseResponse is the response for the parse endpoint
type ParseResponse struct {
	Invoice *model.Invoice `json:"invoice"`
}

// UploadResponse is the response for the multipart upload endpoint
type UploadResponse struct {
	Processed []ProcessedFile `json:"processed"`
	Rejected  []RejectedFile  `json:"rejected,omitempty"`
}

// ProcessedFile is one successfully analyzed upload
type ProcessedFile struct {
	File     string          `json:"file"`
	Analysis AnalyzeResponse `json:"analysis"`
}

// RejectedFile is one upload that could not be analyzed
type RejectedFile struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// RegimeUpdateRequest is the request body for regime updates
type RegimeUpdateRequest struct {
	RBT12 float64 `json:"rbt12" binding:"required"`
	Annex string  `json:"annex"`
}

// SimplesRateRequest is the request body for rate inspection
type SimplesRateRequest struct {
	RBT12 float64 `json:"rbt12" binding:"required"`
}

// SimplesRateResponse reports the effective Simples Nacional rate
type SimplesRateResponse struct {
	RBT12         float64         `json:"rbt12"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}
