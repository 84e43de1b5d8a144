package ocr

import (
	"ProjectOCR/internal/entity"
)

// ImageSource locates the document image for a processing call. Exactly one
// of URI or Data is expected; Data wins when both are set.
type ImageSource struct {
	URI  string
	Data []byte
}

func (s ImageSource) IsEmpty() bool {
	return s.URI == "" && len(s.Data) == 0
}

// ProcessingOptions mirror the caller-facing switches of the pipeline.
// Nil pointers mean "enabled" so that zero-value requests keep the default
// behaviour of validating and fraud-checking every document.
type ProcessingOptions struct {
	EnableValidation     *bool `json:"enable_validation"`
	EnableFraudDetection *bool `json:"enable_fraud_detection"`
	TimeoutMS            int64 `json:"timeout_ms" validate:"omitempty,min=0,max=120000"`
}

func (o ProcessingOptions) ValidationEnabled() bool {
	return o.EnableValidation == nil || *o.EnableValidation
}

func (o ProcessingOptions) FraudDetectionEnabled() bool {
	return o.EnableFraudDetection == nil || *o.EnableFraudDetection
}

type ProcessImageRequest struct {
	ImageBase64 string            `json:"image_base64" validate:"omitempty,base64"`
	ImageURI    string            `json:"image_uri" validate:"omitempty,max=2048"`
	Options     ProcessingOptions `json:"options"`
}

type CaptureOptions struct {
	EnableGalleryImport    *bool  `json:"enable_gallery_import"`
	ScannerMode            string `json:"scanner_mode" validate:"omitempty,oneof=base base_with_filter full"`
	AutoDetectDocumentType bool   `json:"auto_detect_document_type"`
}

func (o CaptureOptions) GalleryImportEnabled() bool {
	return o.EnableGalleryImport == nil || *o.EnableGalleryImport
}

func (o CaptureOptions) Mode() entity.ScannerMode {
	switch entity.ScannerMode(o.ScannerMode) {
	case entity.ScannerModeBase, entity.ScannerModeBaseWithFilter, entity.ScannerModeFull:
		return entity.ScannerMode(o.ScannerMode)
	default:
		return entity.ScannerModeFull
	}
}

type CaptureRequest struct {
	Camera  CaptureOptions    `json:"camera"`
	Options ProcessingOptions `json:"options"`
}

// ChequeOCRResult is the processing envelope: success implies Data is set
// and Error empty; failure implies the reverse. Validation findings ride
// along as data, never as an error.
type ChequeOCRResult struct {
	Success          bool               `json:"success"`
	Data             *entity.ChequeData `json:"data,omitempty"`
	Error            string             `json:"error,omitempty"`
	ValidationErrors []string           `json:"validationErrors,omitempty"`
}

type ENachOCRResult struct {
	Success          bool              `json:"success"`
	Data             *entity.ENachData `json:"data,omitempty"`
	Error            string            `json:"error,omitempty"`
	ValidationErrors []string          `json:"validationErrors,omitempty"`
}

// DocumentOCRResult is the auto-detect envelope. Exactly one of Cheque or
// ENach is populated, matching DocumentType (unknown falls back to cheque).
type DocumentOCRResult struct {
	DocumentType entity.DocumentType `json:"documentType"`
	Cheque       *ChequeOCRResult    `json:"cheque,omitempty"`
	ENach        *ENachOCRResult     `json:"enach,omitempty"`
}

// DocumentCaptureResult pairs the raw scan with the recognition output.
// ProcessingTime here covers the whole capture flow, unlike the field-level
// processingTime which only covers the extraction call.
type DocumentCaptureResult struct {
	ScanResult           *entity.DocumentScanResult `json:"scanResult"`
	RecognizedText       *entity.RecognizedText     `json:"mlKitResult"`
	DetectedDocumentType entity.DocumentType        `json:"detectedDocumentType,omitempty"`
	ArchivedPageURL      string                     `json:"archivedPageUrl,omitempty"`
	ProcessingTime       int64                      `json:"processingTime"`
}

type ChequeCaptureOutcome struct {
	CaptureResult *DocumentCaptureResult `json:"captureResult"`
	OCRResult     ChequeOCRResult        `json:"ocrResult"`
}

type ENachCaptureOutcome struct {
	CaptureResult *DocumentCaptureResult `json:"captureResult"`
	OCRResult     ENachOCRResult         `json:"ocrResult"`
}

type DocumentCaptureOutcome struct {
	CaptureResult *DocumentCaptureResult `json:"captureResult"`
	DocumentType  entity.DocumentType    `json:"documentType"`
	OCRResult     DocumentOCRResult      `json:"ocrResult"`
}

type RecognizeTextResponse struct {
	Data entity.RecognizedText `json:"data"`
}

// LiveDetectResult is pushed back on the live-detection websocket for every
// received frame.
type LiveDetectResult struct {
	DocumentType entity.DocumentType `json:"documentType"`
	FullText     string              `json:"fullText,omitempty"`
	TextBlocks   int                 `json:"textBlocks"`
	Error        string              `json:"error,omitempty"`
}
