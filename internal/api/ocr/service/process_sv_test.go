package ocrService

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ProjectOCR/internal/api/ocr"
	"ProjectOCR/internal/entity"
	"ProjectOCR/pkg/docscan"
	"ProjectOCR/pkg/redis"
	"ProjectOCR/pkg/utils"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGemini struct {
	response        string
	err             error
	regionViolation bool
	prompts         []string
}

func (f *fakeGemini) AnalyzeImage(_ context.Context, _ entity.NormalizedImage, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGemini) ValidateRegionalCompliance() bool { return !f.regionViolation }
func (f *fakeGemini) Close()                           {}

type fakeMLKit struct {
	result *entity.RecognizedText
	err    error
}

func (f *fakeMLKit) RecognizeFrame(_ []byte) (*entity.RecognizedText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeMLKit) IsConnected() bool { return true }
func (f *fakeMLKit) Reconnect() error  { return nil }
func (f *fakeMLKit) CloseConnection()  {}

type fakeScanner struct {
	result *entity.DocumentScanResult
	err    error
}

func (f *fakeScanner) OpenScanner(_ docscan.ScanOptions) (*entity.DocumentScanResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeScanner) IsConnected() bool { return true }
func (f *fakeScanner) Reconnect() error  { return nil }
func (f *fakeScanner) CloseConnection()  {}

type fakeNormalizer struct{}

func (f *fakeNormalizer) Normalize(imageData []byte, _ int) (entity.NormalizedImage, error) {
	return entity.NormalizedImage{
		MIMEType:   "image/jpeg",
		Base64Data: base64.StdEncoding.EncodeToString(imageData),
		Width:      100,
		Height:     100,
	}, nil
}

func (f *fakeNormalizer) ProbePayload() entity.NormalizedImage {
	return entity.NormalizedImage{MIMEType: "image/png", Degraded: true}
}

type fakeCache struct {
	entries map[string]string
	saved   map[string]string
	deleted []string
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := jsoniter.MarshalToString(value)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[key] = payload
	return nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	val, ok := f.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return jsoniter.UnmarshalFromString(val, dest)
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeS3 struct {
	objectURL string
	presigned string
	uploads   map[string][]byte
}

func (f *fakeS3) UploadBytes(data []byte, fileName string, _ string) (string, error) {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[fileName] = data
	return f.objectURL, nil
}

func (f *fakeS3) DownloadByURL(_ string) ([]byte, error) {
	return nil, errors.New("object not stored")
}

func (f *fakeS3) PresignUrl(_ string) (string, error) {
	if f.presigned == "" {
		return "", errors.New("presign unavailable")
	}
	return f.presigned, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(gemini *fakeGemini, mlkit *fakeMLKit, scanner *fakeScanner) IOCRService {
	return NewOCRService(testLogger(), nil, gemini, mlkit, scanner, &fakeNormalizer{}, nil, nil, utils.New())
}

func boolPtr(v bool) *bool { return &v }

func TestProcessChequeSuccess(t *testing.T) {
	gemini := &fakeGemini{response: wrappedChequeResponse}
	svc := newTestService(gemini, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Empty(t, result.Error)

	assert.Equal(t, "HDFC Bank", result.Data.BankName)
	assert.Equal(t, "HDFC0001234", result.Data.IFSCCode)
	assert.Equal(t, 38, result.Data.Confidence)
	assert.GreaterOrEqual(t, result.Data.ProcessingTime, int64(0))

	// All required cheque fields are populated, so the validator is quiet.
	assert.Empty(t, result.ValidationErrors)

	// The model said nothing about a signature, which the fraud engine flags.
	assert.Equal(t, []string{"No signature detected"}, result.Data.FraudIndicators)

	require.Len(t, gemini.prompts, 1)
	assert.Equal(t, chequePrompt, gemini.prompts[0])
}

func TestProcessChequeParseFailure(t *testing.T) {
	svc := newTestService(&fakeGemini{response: "sorry, no data"}, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})

	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, ocr.ErrResponseParse.Error(), result.Error)
}

func TestProcessChequeExtractionFailure(t *testing.T) {
	svc := newTestService(&fakeGemini{err: errors.New("model unreachable")}, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})

	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Contains(t, result.Error, "model unreachable")
}

func TestProcessChequeMissingImage(t *testing.T) {
	svc := newTestService(&fakeGemini{response: wrappedChequeResponse}, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{}, ocr.ProcessingOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, ocr.ErrMissingImage.Error(), result.Error)
}

func TestProcessChequeSwitchesOff(t *testing.T) {
	svc := newTestService(&fakeGemini{response: `{"bank_name":"HDFC Bank"}`}, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{
		EnableValidation:     boolPtr(false),
		EnableFraudDetection: boolPtr(false),
	})

	require.True(t, result.Success)
	assert.Empty(t, result.ValidationErrors)
	assert.Empty(t, result.Data.FraudIndicators)
}

func TestProcessENachSuccess(t *testing.T) {
	gemini := &fakeGemini{response: `{"utilityName":"Power Co","accountHolderName":"Jane Doe","bankName":"ICICI Bank","accountNumber":"9876543210","ifscCode":"ICIC0000042","maxAmount":"5000","frequency":"Monthly"}`}
	svc := newTestService(gemini, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessENach(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Empty(t, result.ValidationErrors)
	assert.Equal(t, "Power Co", result.Data.UtilityName)

	require.Len(t, gemini.prompts, 1)
	assert.Equal(t, enachPrompt, gemini.prompts[0])
}

func TestProcessENachValidationFindings(t *testing.T) {
	svc := newTestService(&fakeGemini{response: `{"bankName":"ICICI Bank"}`}, &fakeMLKit{}, &fakeScanner{})

	result := svc.ProcessENach(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{})

	// Findings are data inside a successful envelope, never an error.
	require.True(t, result.Success)
	assert.Contains(t, result.ValidationErrors, "Account number is required")
	assert.Contains(t, result.ValidationErrors, "Maximum amount is required")
}

func TestProcessDocumentRoutesByDetectedType(t *testing.T) {
	tests := []struct {
		name       string
		fullText   string
		response   string
		wantType   entity.DocumentType
		wantCheque bool
	}{
		{
			name:       "cheque text routes to cheque pipeline",
			fullText:   "pay to John, rupees 500, account no 12",
			response:   wrappedChequeResponse,
			wantType:   entity.DocumentTypeCheque,
			wantCheque: true,
		},
		{
			name:       "mandate text routes to enach pipeline",
			fullText:   "mandate registration",
			response:   `{"bankName":"ICICI Bank"}`,
			wantType:   entity.DocumentTypeENach,
			wantCheque: false,
		},
		{
			name:       "unknown text falls back to cheque pipeline",
			fullText:   "grocery list",
			response:   wrappedChequeResponse,
			wantType:   entity.DocumentTypeUnknown,
			wantCheque: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: tt.fullText}}
			svc := newTestService(&fakeGemini{response: tt.response}, mlkit, &fakeScanner{})

			result := svc.ProcessDocument(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{})

			assert.Equal(t, tt.wantType, result.DocumentType)
			if tt.wantCheque {
				require.NotNil(t, result.Cheque)
				assert.Nil(t, result.ENach)
				assert.True(t, result.Cheque.Success)
			} else {
				require.NotNil(t, result.ENach)
				assert.Nil(t, result.Cheque)
				assert.True(t, result.ENach.Success)
			}
		})
	}
}

func TestProcessDocumentRecognitionFailure(t *testing.T) {
	mlkit := &fakeMLKit{err: errors.New("bridge down")}
	svc := newTestService(&fakeGemini{response: wrappedChequeResponse}, mlkit, &fakeScanner{})

	result := svc.ProcessDocument(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{})

	assert.Equal(t, entity.DocumentTypeUnknown, result.DocumentType)
	require.NotNil(t, result.Cheque)
	assert.False(t, result.Cheque.Success)
	assert.Equal(t, ocr.ErrRecognitionFailed.Error(), result.Cheque.Error)
}

func TestRecognizeText(t *testing.T) {
	mlkit := &fakeMLKit{result: &entity.RecognizedText{
		FullText:   "pay to John",
		TextBlocks: []entity.TextBlock{{Text: "pay to John"}},
	}}
	svc := newTestService(&fakeGemini{}, mlkit, &fakeScanner{})

	recognized, err := svc.RecognizeText(context.Background(), ocr.ImageSource{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "pay to John", recognized.FullText)

	mlkit.err = errors.New("bridge down")
	_, err = svc.RecognizeText(context.Background(), ocr.ImageSource{Data: []byte("x")})
	assert.ErrorIs(t, err, ocr.ErrRecognitionFailed)
}

func TestDetectFrame(t *testing.T) {
	mlkit := &fakeMLKit{result: &entity.RecognizedText{
		FullText:   "mandate",
		TextBlocks: []entity.TextBlock{{Text: "mandate"}},
	}}
	svc := newTestService(&fakeGemini{}, mlkit, &fakeScanner{})

	result := svc.DetectFrame([]byte("frame"))
	assert.Equal(t, entity.DocumentTypeENach, result.DocumentType)
	assert.Equal(t, 1, result.TextBlocks)
	assert.Empty(t, result.Error)

	mlkit.err = errors.New("bridge down")
	result = svc.DetectFrame([]byte("frame"))
	assert.Equal(t, entity.DocumentTypeUnknown, result.DocumentType)
	assert.NotEmpty(t, result.Error)
}

func writeScanPage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page0.jpg")
	require.NoError(t, os.WriteFile(path, []byte("captured-page-bytes"), 0o600))
	return path
}

func TestCaptureDocument(t *testing.T) {
	scanner := &fakeScanner{result: &entity.DocumentScanResult{
		Success: true,
		Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
	}}
	mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: "cheque bank ifsc micr"}}
	svc := newTestService(&fakeGemini{}, mlkit, scanner)

	result, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{AutoDetectDocumentType: true})
	require.NoError(t, err)

	assert.True(t, result.ScanResult.Success)
	assert.Equal(t, "cheque bank ifsc micr", result.RecognizedText.FullText)
	assert.Equal(t, entity.DocumentTypeCheque, result.DetectedDocumentType)
	assert.GreaterOrEqual(t, result.ProcessingTime, int64(0))
}

func TestCaptureDocumentNoDetectionRequested(t *testing.T) {
	scanner := &fakeScanner{result: &entity.DocumentScanResult{
		Success: true,
		Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
	}}
	mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: "cheque bank ifsc micr"}}
	svc := newTestService(&fakeGemini{}, mlkit, scanner)

	result, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentType(""), result.DetectedDocumentType)
}

func TestCaptureErrors(t *testing.T) {
	t.Run("user cancelled", func(t *testing.T) {
		svc := newTestService(&fakeGemini{}, &fakeMLKit{}, &fakeScanner{err: docscan.ErrCancelled})
		_, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{})
		assert.ErrorIs(t, err, ocr.ErrCaptureCancelled)
	})

	t.Run("scanner unavailable", func(t *testing.T) {
		svc := newTestService(&fakeGemini{}, &fakeMLKit{}, &fakeScanner{err: docscan.ErrUnavailable})
		_, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{})
		assert.ErrorIs(t, err, ocr.ErrCaptureUnavailable)
	})

	t.Run("no pages captured", func(t *testing.T) {
		svc := newTestService(&fakeGemini{}, &fakeMLKit{}, &fakeScanner{result: &entity.DocumentScanResult{Success: true}})
		_, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{})
		assert.ErrorIs(t, err, ocr.ErrNoPagesCaptured)
	})
}

func TestCaptureCheque(t *testing.T) {
	scanner := &fakeScanner{result: &entity.DocumentScanResult{
		Success: true,
		Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
	}}
	mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: "cheque bank ifsc micr"}}
	svc := newTestService(&fakeGemini{response: wrappedChequeResponse}, mlkit, scanner)

	outcome, err := svc.CaptureCheque(context.Background(), ocr.CaptureOptions{}, ocr.ProcessingOptions{})
	require.NoError(t, err)

	assert.Equal(t, entity.DocumentTypeCheque, outcome.CaptureResult.DetectedDocumentType)
	require.True(t, outcome.OCRResult.Success)
	assert.Equal(t, "HDFC Bank", outcome.OCRResult.Data.BankName)
}

func TestPipelineNotInitialized(t *testing.T) {
	svc := NewOCRService(testLogger(), nil, nil, nil, nil, nil, nil, nil, utils.New())

	t.Run("process cheque", func(t *testing.T) {
		result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{})
		assert.False(t, result.Success)
		assert.Equal(t, ocr.ErrNotInitialized.Error(), result.Error)
	})

	t.Run("process enach", func(t *testing.T) {
		result := svc.ProcessENach(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{})
		assert.False(t, result.Success)
		assert.Equal(t, ocr.ErrNotInitialized.Error(), result.Error)
	})

	t.Run("process document", func(t *testing.T) {
		result := svc.ProcessDocument(context.Background(), ocr.ImageSource{Data: []byte("x")}, ocr.ProcessingOptions{})
		assert.Equal(t, entity.DocumentTypeUnknown, result.DocumentType)
		require.NotNil(t, result.Cheque)
		assert.False(t, result.Cheque.Success)
		assert.Equal(t, ocr.ErrNotInitialized.Error(), result.Cheque.Error)
	})

	t.Run("recognize text", func(t *testing.T) {
		_, err := svc.RecognizeText(context.Background(), ocr.ImageSource{Data: []byte("x")})
		assert.ErrorIs(t, err, ocr.ErrNotInitialized)
	})

	t.Run("detect frame", func(t *testing.T) {
		result := svc.DetectFrame([]byte("frame"))
		assert.Equal(t, entity.DocumentTypeUnknown, result.DocumentType)
		assert.Equal(t, ocr.ErrNotInitialized.Error(), result.Error)
	})

	t.Run("capture without recognizer", func(t *testing.T) {
		scanner := &fakeScanner{result: &entity.DocumentScanResult{
			Success: true,
			Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
		}}
		partial := NewOCRService(testLogger(), nil, nil, nil, scanner, nil, nil, nil, utils.New())

		_, err := partial.CaptureDocument(context.Background(), ocr.CaptureOptions{})
		assert.ErrorIs(t, err, ocr.ErrNotInitialized)
	})
}

func TestVerifyExtractionBackend(t *testing.T) {
	t.Run("compliant backend passes", func(t *testing.T) {
		gemini := &fakeGemini{response: "{}"}
		svc := newTestService(gemini, &fakeMLKit{}, &fakeScanner{})

		require.NoError(t, svc.VerifyExtractionBackend(context.Background()))
		assert.Len(t, gemini.prompts, 1)
	})

	t.Run("region violation fails", func(t *testing.T) {
		svc := newTestService(&fakeGemini{regionViolation: true}, &fakeMLKit{}, &fakeScanner{})
		assert.ErrorIs(t, svc.VerifyExtractionBackend(context.Background()), ocr.ErrRegionalCompliance)
	})

	t.Run("unreachable backend is tolerated", func(t *testing.T) {
		svc := newTestService(&fakeGemini{err: errors.New("backend down")}, &fakeMLKit{}, &fakeScanner{})
		assert.NoError(t, svc.VerifyExtractionBackend(context.Background()))
	})

	t.Run("missing collaborators fail", func(t *testing.T) {
		svc := NewOCRService(testLogger(), nil, nil, nil, nil, nil, nil, nil, utils.New())
		assert.ErrorIs(t, svc.VerifyExtractionBackend(context.Background()), ocr.ErrNotInitialized)
	})
}

func TestProcessChequeCacheHit(t *testing.T) {
	key := resultCacheKey(entity.DocumentTypeCheque, base64.StdEncoding.EncodeToString([]byte("image-bytes")))
	cached, err := jsoniter.MarshalToString(ocr.ChequeOCRResult{
		Success: true,
		Data:    &entity.ChequeData{BankName: "Cached Bank"},
	})
	require.NoError(t, err)

	cache := &fakeCache{entries: map[string]string{key: cached}}
	gemini := &fakeGemini{response: wrappedChequeResponse}
	svc := NewOCRService(testLogger(), nil, gemini, &fakeMLKit{}, &fakeScanner{}, &fakeNormalizer{}, cache, nil, utils.New())

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})

	require.True(t, result.Success)
	assert.Equal(t, "Cached Bank", result.Data.BankName)
	assert.Empty(t, gemini.prompts)
	assert.Empty(t, cache.deleted)
}

func TestProcessChequeDropsUnreadableCacheEntry(t *testing.T) {
	key := resultCacheKey(entity.DocumentTypeCheque, base64.StdEncoding.EncodeToString([]byte("image-bytes")))
	cache := &fakeCache{entries: map[string]string{key: "{corrupted"}}
	svc := NewOCRService(testLogger(), nil, &fakeGemini{response: wrappedChequeResponse}, &fakeMLKit{}, &fakeScanner{}, &fakeNormalizer{}, cache, nil, utils.New())

	result := svc.ProcessCheque(context.Background(), ocr.ImageSource{Data: []byte("image-bytes")}, ocr.ProcessingOptions{})

	require.True(t, result.Success)
	assert.Equal(t, "HDFC Bank", result.Data.BankName)
	assert.Equal(t, []string{key}, cache.deleted)
	assert.Contains(t, cache.saved, key)
}

func TestCaptureDocumentArchivesPage(t *testing.T) {
	scanner := &fakeScanner{result: &entity.DocumentScanResult{
		Success: true,
		Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
	}}
	mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: "cheque bank ifsc micr"}}
	store := &fakeS3{
		objectURL: "https://bucket.s3.ap-south-1.amazonaws.com/captures/page.jpg",
		presigned: "https://bucket.s3.ap-south-1.amazonaws.com/captures/page.jpg?X-Amz-Signature=abc",
	}
	svc := NewOCRService(testLogger(), nil, &fakeGemini{}, mlkit, scanner, &fakeNormalizer{}, nil, store, utils.New())

	result, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{})
	require.NoError(t, err)

	assert.Equal(t, store.objectURL, result.ScanResult.Pages[0].ImageURI)
	assert.Equal(t, store.presigned, result.ArchivedPageURL)
	assert.Len(t, store.uploads, 1)
}

func TestCaptureDocumentPresignFailureKeepsObjectURL(t *testing.T) {
	scanner := &fakeScanner{result: &entity.DocumentScanResult{
		Success: true,
		Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
	}}
	mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: "cheque bank ifsc micr"}}
	store := &fakeS3{objectURL: "https://bucket.s3.ap-south-1.amazonaws.com/captures/page.jpg"}
	svc := NewOCRService(testLogger(), nil, &fakeGemini{}, mlkit, scanner, &fakeNormalizer{}, nil, store, utils.New())

	result, err := svc.CaptureDocument(context.Background(), ocr.CaptureOptions{})
	require.NoError(t, err)
	assert.Equal(t, store.objectURL, result.ArchivedPageURL)
}

func TestCaptureAnyFallsBackToCheque(t *testing.T) {
	scanner := &fakeScanner{result: &entity.DocumentScanResult{
		Success: true,
		Pages:   []entity.ScanPage{{ImageURI: writeScanPage(t)}},
	}}
	mlkit := &fakeMLKit{result: &entity.RecognizedText{FullText: "unrecognizable scribbles"}}
	svc := newTestService(&fakeGemini{response: wrappedChequeResponse}, mlkit, scanner)

	outcome, err := svc.CaptureAny(context.Background(), ocr.CaptureOptions{}, ocr.ProcessingOptions{})
	require.NoError(t, err)

	assert.Equal(t, entity.DocumentTypeUnknown, outcome.DocumentType)
	require.NotNil(t, outcome.OCRResult.Cheque)
	assert.True(t, outcome.OCRResult.Cheque.Success)
}
