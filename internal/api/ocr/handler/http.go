package ocrHandler

import (
	ocrService "ProjectOCR/internal/api/ocr/service"
	"ProjectOCR/internal/middleware"
	"ProjectOCR/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type OCRHandler struct {
	log        *logrus.Logger
	validator  *validator.Validate
	middleware middleware.Middleware
	ocrService ocrService.IOCRService
	utils      utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ocrService ocrService.IOCRService,
	utils utils.IUtils,
) *OCRHandler {
	return &OCRHandler{
		log:        log,
		validator:  validate,
		middleware: middleware,
		ocrService: ocrService,
		utils:      utils,
	}
}

func (h *OCRHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	ocr := srv.Group("/ocr")

	ocr.Post("/cheque", h.middleware.NewTokenMiddleware, h.middleware.NewRateLimiter, h.ProcessCheque)
	ocr.Post("/enach", h.middleware.NewTokenMiddleware, h.middleware.NewRateLimiter, h.ProcessENach)
	ocr.Post("/document", h.middleware.NewTokenMiddleware, h.middleware.NewRateLimiter, h.ProcessDocument)
	ocr.Post("/recognize", h.middleware.NewTokenMiddleware, h.middleware.NewRateLimiter, h.RecognizeText)

	runs := ocr.Group("/runs")
	runs.Get("/", h.middleware.NewTokenMiddleware, h.ListRuns)
	runs.Get("/:id", h.middleware.NewTokenMiddleware, h.GetRun)

	capture := ocr.Group("/capture")
	capture.Post("/cheque", h.middleware.NewTokenMiddleware, h.CaptureCheque)
	capture.Post("/enach", h.middleware.NewTokenMiddleware, h.CaptureENach)
	capture.Post("/document", h.middleware.NewTokenMiddleware, h.CaptureDocument)

	detect := ocr.Group("/detect")
	detect.Use("/ws", wsMiddleware)
	detect.Get("/ws", websocket.New(h.handleDetectWebSocket))
}
