package entity

import "time"

// OCRRun is the audit row persisted for every completed pipeline invocation.
type OCRRun struct {
	ID               string       `json:"id"`
	RequestID        string       `json:"request_id"`
	DocumentType     DocumentType `json:"document_type"`
	Success          bool         `json:"success"`
	Confidence       int          `json:"confidence"`
	ProcessingTimeMS int64        `json:"processing_time_ms"`
	ValidationErrors int          `json:"validation_errors"`
	FraudIndicators  int          `json:"fraud_indicators"`
	ErrorMessage     string       `json:"error_message,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
