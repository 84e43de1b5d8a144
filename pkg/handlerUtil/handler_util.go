package handlerUtil

import (
	"errors"

	"ProjectOCR/internal/api/ocr"
	"ProjectOCR/pkg/log"
	"ProjectOCR/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	// OCR domain errors
	if errors.Is(err, ocr.ErrMissingImage) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No image supplied")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image supplied",
			"code":  "MISSING_IMAGE",
		})
	}

	if errors.Is(err, ocr.ErrImageDecode) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Image could not be decoded")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image could not be decoded",
			"code":  "IMAGE_DECODE_ERROR",
		})
	}

	if errors.Is(err, ocr.ErrImageTooLarge) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Image exceeds the maximum size")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image exceeds the maximum size",
			"code":  "IMAGE_TOO_LARGE",
		})
	}

	if errors.Is(err, ocr.ErrCaptureCancelled) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Document capture cancelled")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Document capture cancelled by user",
			"code":  "CAPTURE_CANCELLED",
		})
	}

	if errors.Is(err, ocr.ErrCaptureUnavailable) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Document scanner unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Document scanner unavailable",
			"code":  "CAPTURE_UNAVAILABLE",
		})
	}

	if errors.Is(err, ocr.ErrNoPagesCaptured) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No pages captured")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No pages captured",
			"code":  "NO_PAGES_CAPTURED",
		})
	}

	if errors.Is(err, ocr.ErrResponseParse) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Failed to parse model response")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to parse model response",
			"code":  "RESPONSE_PARSE_ERROR",
		})
	}

	if errors.Is(err, ocr.ErrRecognitionFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Text recognition failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Text recognition failed",
			"code":  "RECOGNITION_FAILED",
		})
	}

	if errors.Is(err, ocr.ErrNotInitialized) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Pipeline not initialized")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "OCR pipeline not initialized",
			"code":  "NOT_INITIALIZED",
		})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
