package ocrService

import (
	"errors"
	"fmt"
	"time"

	"ProjectOCR/internal/api/ocr"
	"ProjectOCR/internal/entity"
	contextPkg "ProjectOCR/pkg/context"
	"ProjectOCR/pkg/docscan"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// CaptureDocument drives the scanner bridge and the recognition collaborator
// for one scan session. Unlike the process calls it returns errors directly;
// capture is a precondition, not a data-producing step.
func (s *ocrService) CaptureDocument(c context.Context, camera ocr.CaptureOptions) (*ocr.DocumentCaptureResult, error) {
	start := time.Now()

	result, _, err := s.captureAndRecognize(c, camera, camera.AutoDetectDocumentType)
	if err != nil {
		return nil, err
	}

	result.ProcessingTime = time.Since(start).Milliseconds()
	return result, nil
}

func (s *ocrService) CaptureCheque(c context.Context, camera ocr.CaptureOptions, opts ocr.ProcessingOptions) (*ocr.ChequeCaptureOutcome, error) {
	requestID := contextPkg.GetRequestID(c)
	start := time.Now()

	capture, pageData, err := s.captureAndRecognize(c, camera, true)
	if err != nil {
		return nil, err
	}

	if capture.DetectedDocumentType != entity.DocumentTypeCheque {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"detected":   capture.DetectedDocumentType,
		}).Warn("Captured document does not look like a cheque, processing anyway")
	}

	ocrResult := s.ProcessCheque(c, ocr.ImageSource{Data: pageData}, opts)
	capture.ProcessingTime = time.Since(start).Milliseconds()

	return &ocr.ChequeCaptureOutcome{
		CaptureResult: capture,
		OCRResult:     ocrResult,
	}, nil
}

func (s *ocrService) CaptureENach(c context.Context, camera ocr.CaptureOptions, opts ocr.ProcessingOptions) (*ocr.ENachCaptureOutcome, error) {
	requestID := contextPkg.GetRequestID(c)
	start := time.Now()

	capture, pageData, err := s.captureAndRecognize(c, camera, true)
	if err != nil {
		return nil, err
	}

	if capture.DetectedDocumentType != entity.DocumentTypeENach {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"detected":   capture.DetectedDocumentType,
		}).Warn("Captured document does not look like an e-NACH mandate, processing anyway")
	}

	ocrResult := s.ProcessENach(c, ocr.ImageSource{Data: pageData}, opts)
	capture.ProcessingTime = time.Since(start).Milliseconds()

	return &ocr.ENachCaptureOutcome{
		CaptureResult: capture,
		OCRResult:     ocrResult,
	}, nil
}

// CaptureAny routes the captured page to the pipeline matching the detected
// document type; unknown falls back to cheque processing.
func (s *ocrService) CaptureAny(c context.Context, camera ocr.CaptureOptions, opts ocr.ProcessingOptions) (*ocr.DocumentCaptureOutcome, error) {
	requestID := contextPkg.GetRequestID(c)
	start := time.Now()

	capture, pageData, err := s.captureAndRecognize(c, camera, true)
	if err != nil {
		return nil, err
	}

	src := ocr.ImageSource{Data: pageData}
	outcome := &ocr.DocumentCaptureOutcome{
		CaptureResult: capture,
		DocumentType:  capture.DetectedDocumentType,
	}

	switch capture.DetectedDocumentType {
	case entity.DocumentTypeENach:
		result := s.ProcessENach(c, src, opts)
		outcome.OCRResult = ocr.DocumentOCRResult{DocumentType: entity.DocumentTypeENach, ENach: &result}
	case entity.DocumentTypeCheque:
		result := s.ProcessCheque(c, src, opts)
		outcome.OCRResult = ocr.DocumentOCRResult{DocumentType: entity.DocumentTypeCheque, Cheque: &result}
	default:
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Document type not detected during capture, defaulting to cheque processing")

		result := s.ProcessCheque(c, src, opts)
		outcome.OCRResult = ocr.DocumentOCRResult{DocumentType: entity.DocumentTypeUnknown, Cheque: &result}
	}

	capture.ProcessingTime = time.Since(start).Milliseconds()
	return outcome, nil
}

// captureAndRecognize runs one scan session, reads page 0, recognizes its
// text and optionally guesses the document type with the rich detector
// profile. The raw page bytes are returned so downstream processing does not
// re-read the locator.
func (s *ocrService) captureAndRecognize(c context.Context, camera ocr.CaptureOptions, detectType bool) (*ocr.DocumentCaptureResult, []byte, error) {
	requestID := contextPkg.GetRequestID(c)

	if s.scanner == nil {
		return nil, nil, ocr.ErrCaptureUnavailable
	}
	if err := s.recognitionReady(); err != nil {
		return nil, nil, err
	}

	scanResult, err := s.scanner.OpenScanner(docscan.ScanOptions{
		EnableGalleryImport: camera.GalleryImportEnabled(),
		ScannerMode:         camera.Mode(),
	})
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeUnknown, stageCapturing, err)
		return nil, nil, mapCaptureError(err)
	}

	if !scanResult.Success || len(scanResult.Pages) == 0 {
		return nil, nil, ocr.ErrNoPagesCaptured
	}

	// Multi-page capture is out of scope; only page 0 flows downstream.
	pageData, err := s.resolveImage(c, ocr.ImageSource{URI: scanResult.Pages[0].ImageURI})
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeUnknown, stageCapturing, err)
		return nil, nil, err
	}

	archivedURL := s.archivePage(requestID, scanResult, pageData)

	recognized, err := s.mlkit.RecognizeFrame(pageData)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeUnknown, stageRecognizing, err)
		return nil, nil, ocr.ErrRecognitionFailed
	}

	capture := &ocr.DocumentCaptureResult{
		ScanResult:      scanResult,
		RecognizedText:  recognized,
		ArchivedPageURL: archivedURL,
	}

	if detectType {
		capture.DetectedDocumentType = s.richDetector.Detect(recognized.FullText)
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"detected":   capture.DetectedDocumentType,
		}).Info("Document type detected from capture")
	}

	return capture, pageData, nil
}

// archivePage uploads the captured page to object storage for the audit
// trail, rewrites the page locator to the durable URL and returns a presigned
// URL for retrieval. Upload failures are logged and ignored; the in-memory
// bytes keep the pipeline going.
func (s *ocrService) archivePage(requestID string, scanResult *entity.DocumentScanResult, pageData []byte) string {
	if s.s3Client == nil {
		return ""
	}

	fileName := fmt.Sprintf("captures/%s.jpg", requestID)
	url, err := s.s3Client.UploadBytes(pageData, fileName, "image/jpeg")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to archive captured page")
		return ""
	}

	scanResult.Pages[0].ImageURI = url

	presigned, err := s.s3Client.PresignUrl(url)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to presign archived page")
		return url
	}

	return presigned
}

func mapCaptureError(err error) error {
	switch {
	case errors.Is(err, docscan.ErrCancelled):
		return ocr.ErrCaptureCancelled
	case errors.Is(err, docscan.ErrUnavailable):
		return ocr.ErrCaptureUnavailable
	default:
		return err
	}
}
