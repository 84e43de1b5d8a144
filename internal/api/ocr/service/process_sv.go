package ocrService

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"

	"ProjectOCR/internal/api/ocr"
	"ProjectOCR/internal/entity"
	contextPkg "ProjectOCR/pkg/context"
	"ProjectOCR/pkg/imaging"
	"ProjectOCR/pkg/redis"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// pipelineStage names the step being executed when a failure occurs, for
// logs and the audit trail.
type pipelineStage string

const (
	stageCapturing     pipelineStage = "capturing"
	stageRecognizing   pipelineStage = "recognizing"
	stageExtracting    pipelineStage = "extracting"
	stageParsing       pipelineStage = "parsing"
	stageValidating    pipelineStage = "validating"
	stageFraudChecking pipelineStage = "fraud_checking"
)

func (s *ocrService) ProcessCheque(c context.Context, src ocr.ImageSource, opts ocr.ProcessingOptions) ocr.ChequeOCRResult {
	requestID := contextPkg.GetRequestID(c)

	if err := s.extractionReady(); err != nil {
		return ocr.ChequeOCRResult{Success: false, Error: err.Error()}
	}

	imageData, err := s.resolveImage(c, src)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeCheque, stageExtracting, err)
		return ocr.ChequeOCRResult{Success: false, Error: err.Error()}
	}

	payload, err := s.normalizer.Normalize(imageData, s.maxImageDimension)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeCheque, stageExtracting, err)
		return ocr.ChequeOCRResult{Success: false, Error: mapImagingError(err).Error()}
	}

	cacheKey := resultCacheKey(entity.DocumentTypeCheque, payload.Base64Data)
	var cached ocr.ChequeOCRResult
	if s.cacheGet(c, cacheKey, &cached) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"cache_key":  cacheKey,
		}).Debug("Returning cached cheque result")
		return cached
	}

	start := time.Now()

	aiCtx, cancel := s.aiCallContext(c, opts)
	defer cancel()

	raw, err := s.extractRawFields(aiCtx, payload, entity.DocumentTypeCheque)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeCheque, stageExtracting, err)
		s.saveRun(c, requestID, entity.DocumentTypeCheque, false, 0, time.Since(start).Milliseconds(), 0, 0, err.Error())
		return ocr.ChequeOCRResult{Success: false, Error: err.Error()}
	}

	data, err := parseChequeResponse(raw)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeCheque, stageParsing, err)
		s.saveRun(c, requestID, entity.DocumentTypeCheque, false, 50, time.Since(start).Milliseconds(), 0, 0, err.Error())
		return ocr.ChequeOCRResult{Success: false, Error: ocr.ErrResponseParse.Error()}
	}

	data.ProcessingTime = time.Since(start).Milliseconds()
	data.Confidence = calculateConfidence(raw, chequeSchemaKeys)

	var validationErrors []string
	if opts.ValidationEnabled() {
		validationErrors = ValidateChequeData(data)
	}

	if opts.FraudDetectionEnabled() {
		data.FraudIndicators = append(data.FraudIndicators, DetectChequeFraud(data)...)
	}

	result := ocr.ChequeOCRResult{
		Success:          true,
		Data:             data,
		ValidationErrors: validationErrors,
	}

	s.saveRun(c, requestID, entity.DocumentTypeCheque, true, data.Confidence, data.ProcessingTime, len(validationErrors), len(data.FraudIndicators), "")
	s.cacheSet(c, cacheKey, result)

	s.log.WithFields(logrus.Fields{
		"request_id":        requestID,
		"confidence":        data.Confidence,
		"processing_ms":     data.ProcessingTime,
		"validation_errors": len(validationErrors),
		"fraud_indicators":  len(data.FraudIndicators),
	}).Info("Cheque processed")

	return result
}

func (s *ocrService) ProcessENach(c context.Context, src ocr.ImageSource, opts ocr.ProcessingOptions) ocr.ENachOCRResult {
	requestID := contextPkg.GetRequestID(c)

	if err := s.extractionReady(); err != nil {
		return ocr.ENachOCRResult{Success: false, Error: err.Error()}
	}

	imageData, err := s.resolveImage(c, src)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeENach, stageExtracting, err)
		return ocr.ENachOCRResult{Success: false, Error: err.Error()}
	}

	payload, err := s.normalizer.Normalize(imageData, s.maxImageDimension)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeENach, stageExtracting, err)
		return ocr.ENachOCRResult{Success: false, Error: mapImagingError(err).Error()}
	}

	cacheKey := resultCacheKey(entity.DocumentTypeENach, payload.Base64Data)
	var cached ocr.ENachOCRResult
	if s.cacheGet(c, cacheKey, &cached) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"cache_key":  cacheKey,
		}).Debug("Returning cached e-NACH result")
		return cached
	}

	start := time.Now()

	aiCtx, cancel := s.aiCallContext(c, opts)
	defer cancel()

	raw, err := s.extractRawFields(aiCtx, payload, entity.DocumentTypeENach)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeENach, stageExtracting, err)
		s.saveRun(c, requestID, entity.DocumentTypeENach, false, 0, time.Since(start).Milliseconds(), 0, 0, err.Error())
		return ocr.ENachOCRResult{Success: false, Error: err.Error()}
	}

	data, err := parseENachResponse(raw)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeENach, stageParsing, err)
		s.saveRun(c, requestID, entity.DocumentTypeENach, false, 50, time.Since(start).Milliseconds(), 0, 0, err.Error())
		return ocr.ENachOCRResult{Success: false, Error: ocr.ErrResponseParse.Error()}
	}

	data.ProcessingTime = time.Since(start).Milliseconds()
	data.Confidence = calculateConfidence(raw, enachSchemaKeys)

	var validationErrors []string
	if opts.ValidationEnabled() {
		validationErrors = ValidateENachData(data)
	}

	result := ocr.ENachOCRResult{
		Success:          true,
		Data:             data,
		ValidationErrors: validationErrors,
	}

	s.saveRun(c, requestID, entity.DocumentTypeENach, true, data.Confidence, data.ProcessingTime, len(validationErrors), 0, "")
	s.cacheSet(c, cacheKey, result)

	s.log.WithFields(logrus.Fields{
		"request_id":        requestID,
		"confidence":        data.Confidence,
		"processing_ms":     data.ProcessingTime,
		"validation_errors": len(validationErrors),
	}).Info("e-NACH mandate processed")

	return result
}

// ProcessDocument recognizes the text first, guesses the document type with
// the reduced detector profile, then delegates to the typed pipeline. An
// unknown guess falls back to cheque processing instead of failing.
func (s *ocrService) ProcessDocument(c context.Context, src ocr.ImageSource, opts ocr.ProcessingOptions) ocr.DocumentOCRResult {
	requestID := contextPkg.GetRequestID(c)

	if s.mlkit == nil || s.normalizer == nil || s.gemini == nil {
		return ocr.DocumentOCRResult{
			DocumentType: entity.DocumentTypeUnknown,
			Cheque:       &ocr.ChequeOCRResult{Success: false, Error: ocr.ErrNotInitialized.Error()},
		}
	}

	imageData, err := s.resolveImage(c, src)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeUnknown, stageRecognizing, err)
		return ocr.DocumentOCRResult{
			DocumentType: entity.DocumentTypeUnknown,
			Cheque:       &ocr.ChequeOCRResult{Success: false, Error: err.Error()},
		}
	}

	recognized, err := s.mlkit.RecognizeFrame(imageData)
	if err != nil {
		s.logStageFailure(requestID, entity.DocumentTypeUnknown, stageRecognizing, err)
		return ocr.DocumentOCRResult{
			DocumentType: entity.DocumentTypeUnknown,
			Cheque:       &ocr.ChequeOCRResult{Success: false, Error: ocr.ErrRecognitionFailed.Error()},
		}
	}

	detected := s.reducedDetector.Detect(recognized.FullText)
	docSrc := ocr.ImageSource{Data: imageData}

	switch detected {
	case entity.DocumentTypeENach:
		result := s.ProcessENach(c, docSrc, opts)
		return ocr.DocumentOCRResult{DocumentType: entity.DocumentTypeENach, ENach: &result}
	case entity.DocumentTypeCheque:
		result := s.ProcessCheque(c, docSrc, opts)
		return ocr.DocumentOCRResult{DocumentType: entity.DocumentTypeCheque, Cheque: &result}
	default:
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Document type not detected, defaulting to cheque processing")

		result := s.ProcessCheque(c, docSrc, opts)
		return ocr.DocumentOCRResult{DocumentType: entity.DocumentTypeUnknown, Cheque: &result}
	}
}

func (s *ocrService) RecognizeText(c context.Context, src ocr.ImageSource) (*entity.RecognizedText, error) {
	requestID := contextPkg.GetRequestID(c)

	if err := s.recognitionReady(); err != nil {
		return nil, err
	}

	imageData, err := s.resolveImage(c, src)
	if err != nil {
		return nil, err
	}

	recognized, err := s.mlkit.RecognizeFrame(imageData)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Text recognition failed")
		return nil, ocr.ErrRecognitionFailed
	}

	return recognized, nil
}

// DetectFrame serves the live-detection websocket: one frame in, one
// document-type guess out. Errors ride back in the payload so the stream
// survives bad frames.
func (s *ocrService) DetectFrame(frame []byte) ocr.LiveDetectResult {
	if err := s.recognitionReady(); err != nil {
		return ocr.LiveDetectResult{
			DocumentType: entity.DocumentTypeUnknown,
			Error:        err.Error(),
		}
	}

	recognized, err := s.mlkit.RecognizeFrame(frame)
	if err != nil {
		return ocr.LiveDetectResult{
			DocumentType: entity.DocumentTypeUnknown,
			Error:        ocr.ErrRecognitionFailed.Error(),
		}
	}

	return ocr.LiveDetectResult{
		DocumentType: s.reducedDetector.Detect(recognized.FullText),
		FullText:     recognized.FullText,
		TextBlocks:   len(recognized.TextBlocks),
	}
}

// resolveImage turns an ImageSource into raw bytes. Inline data wins; S3 and
// HTTP locators go through the object store client; everything else is read
// from the local filesystem.
func (s *ocrService) resolveImage(c context.Context, src ocr.ImageSource) ([]byte, error) {
	if len(src.Data) > 0 {
		return src.Data, nil
	}

	if src.URI == "" {
		return nil, ocr.ErrMissingImage
	}

	if strings.HasPrefix(src.URI, "s3://") || strings.HasPrefix(src.URI, "http://") || strings.HasPrefix(src.URI, "https://") {
		if s.s3Client == nil {
			return nil, ocr.ErrMissingImage
		}
		return s.s3Client.DownloadByURL(src.URI)
	}

	data, err := os.ReadFile(strings.TrimPrefix(src.URI, "file://"))
	if err != nil {
		return nil, ocr.ErrImageDecode
	}

	return data, nil
}

// extractionReady and recognitionReady guard the nil-collaborator case: a
// service wired without its mandatory collaborators fails fast instead of
// panicking mid-request.
func (s *ocrService) extractionReady() error {
	if s.normalizer == nil || s.gemini == nil {
		return ocr.ErrNotInitialized
	}
	return nil
}

func (s *ocrService) recognitionReady() error {
	if s.mlkit == nil {
		return ocr.ErrNotInitialized
	}
	return nil
}

// VerifyExtractionBackend re-checks the region pin and round-trips the
// placeholder payload through the extraction backend. Runs once at startup,
// before the server accepts traffic.
func (s *ocrService) VerifyExtractionBackend(c context.Context) error {
	if err := s.extractionReady(); err != nil {
		return err
	}

	if !s.gemini.ValidateRegionalCompliance() {
		return ocr.ErrRegionalCompliance
	}

	if _, err := s.gemini.AnalyzeImage(c, s.normalizer.ProbePayload(), ""); err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Extraction backend connectivity check failed")
	}

	return nil
}

func (s *ocrService) aiCallContext(c context.Context, opts ocr.ProcessingOptions) (context.Context, context.CancelFunc) {
	timeout := s.defaultAITimeout
	if opts.TimeoutMS > 0 {
		timeout = time.Duration(opts.TimeoutMS) * time.Millisecond
	}
	return context.WithTimeout(c, timeout)
}

func mapImagingError(err error) error {
	switch {
	case errors.Is(err, imaging.ErrDecodeFailed):
		return ocr.ErrImageDecode
	case errors.Is(err, imaging.ErrTooLarge):
		return ocr.ErrImageTooLarge
	default:
		return err
	}
}

func resultCacheKey(docType entity.DocumentType, base64Data string) string {
	sum := sha256.Sum256([]byte(base64Data))
	return "ocr:" + string(docType) + ":" + hex.EncodeToString(sum[:])
}

func (s *ocrService) cacheGet(c context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	err := s.cache.GetJSON(c, key, dest)
	if err == nil {
		return true
	}

	if !errors.Is(err, redis.ErrCacheMiss) {
		// Unreadable entries are dropped so the next run repopulates the key.
		s.log.WithFields(logrus.Fields{
			"cache_key": key,
			"error":     err.Error(),
		}).Warn("Dropping unreadable cache entry")

		if delErr := s.cache.Delete(c, key); delErr != nil {
			s.log.WithFields(logrus.Fields{
				"cache_key": key,
				"error":     delErr.Error(),
			}).Warn("Failed to drop cache entry")
		}
	}

	return false
}

func (s *ocrService) cacheSet(c context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(c, key, value, s.cacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"cache_key": key,
			"error":     err.Error(),
		}).Warn("Failed to cache OCR result")
	}
}

// saveRun writes the audit row. Persistence is best effort: a database
// failure is logged and never surfaces to the caller.
func (s *ocrService) saveRun(c context.Context, requestID string, docType entity.DocumentType, success bool, confidence int, processingMS int64, validationErrors, fraudIndicators int, errMsg string) {
	if s.repo == nil || s.utils == nil {
		return
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to open repository client for audit row")
		return
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to generate audit row ID")
		return
	}

	run := entity.OCRRun{
		ID:               id,
		RequestID:        requestID,
		DocumentType:     docType,
		Success:          success,
		Confidence:       confidence,
		ProcessingTimeMS: processingMS,
		ValidationErrors: validationErrors,
		FraudIndicators:  fraudIndicators,
		ErrorMessage:     errMsg,
	}

	if err := client.Runs.SaveRun(c, run); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to persist audit row")
	}
}

func (s *ocrService) logStageFailure(requestID string, docType entity.DocumentType, stage pipelineStage, err error) {
	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"document_type": docType,
		"stage":         stage,
		"error":         err.Error(),
	}).Error("Pipeline stage failed")
}
