package ocrService

import (
	"time"

	"ProjectOCR/internal/api/ocr"
	ocrRepository "ProjectOCR/internal/api/ocr/repository"
	"ProjectOCR/internal/entity"
	"ProjectOCR/pkg/docscan"
	"ProjectOCR/pkg/gemini"
	"ProjectOCR/pkg/imaging"
	"ProjectOCR/pkg/mlkit"
	"ProjectOCR/pkg/redis"
	"ProjectOCR/pkg/s3"
	"ProjectOCR/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IOCRService interface {
	ProcessCheque(c context.Context, src ocr.ImageSource, opts ocr.ProcessingOptions) ocr.ChequeOCRResult
	ProcessENach(c context.Context, src ocr.ImageSource, opts ocr.ProcessingOptions) ocr.ENachOCRResult
	ProcessDocument(c context.Context, src ocr.ImageSource, opts ocr.ProcessingOptions) ocr.DocumentOCRResult
	RecognizeText(c context.Context, src ocr.ImageSource) (*entity.RecognizedText, error)
	DetectFrame(frame []byte) ocr.LiveDetectResult
	CaptureDocument(c context.Context, camera ocr.CaptureOptions) (*ocr.DocumentCaptureResult, error)
	CaptureCheque(c context.Context, camera ocr.CaptureOptions, opts ocr.ProcessingOptions) (*ocr.ChequeCaptureOutcome, error)
	CaptureENach(c context.Context, camera ocr.CaptureOptions, opts ocr.ProcessingOptions) (*ocr.ENachCaptureOutcome, error)
	CaptureAny(c context.Context, camera ocr.CaptureOptions, opts ocr.ProcessingOptions) (*ocr.DocumentCaptureOutcome, error)
	RunByID(c context.Context, id string) (entity.OCRRun, error)
	RecentRuns(c context.Context, limit int) ([]entity.OCRRun, error)
	VerifyExtractionBackend(c context.Context) error
}

type ocrService struct {
	log        *logrus.Logger
	repo       ocrRepository.Repository
	gemini     gemini.IGemini
	mlkit      mlkit.IMLKit
	scanner    docscan.IDocScan
	normalizer imaging.INormalizer
	cache      redis.IRedis
	s3Client   s3.ItfS3
	utils      utils.IUtils

	richDetector    DocumentTypeDetector
	reducedDetector DocumentTypeDetector

	maxImageDimension int
	defaultAITimeout  time.Duration
	cacheTTL          time.Duration
}

func NewOCRService(
	log *logrus.Logger,
	repo ocrRepository.Repository,
	geminiClient gemini.IGemini,
	mlkitClient mlkit.IMLKit,
	scannerClient docscan.IDocScan,
	normalizer imaging.INormalizer,
	cache redis.IRedis,
	s3Client s3.ItfS3,
	utils utils.IUtils,
) IOCRService {
	return &ocrService{
		log:               log,
		repo:              repo,
		gemini:            geminiClient,
		mlkit:             mlkitClient,
		scanner:           scannerClient,
		normalizer:        normalizer,
		cache:             cache,
		s3Client:          s3Client,
		utils:             utils,
		richDetector:      NewRichDetector(),
		reducedDetector:   NewReducedDetector(),
		maxImageDimension: 1024,
		defaultAITimeout:  30 * time.Second,
		cacheTTL:          10 * time.Minute,
	}
}
