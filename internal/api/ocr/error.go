package ocr

import (
	"ProjectOCR/pkg/response"
	"net/http"
)

var (
	ErrImageDecode        = response.NewError(http.StatusBadRequest, "image could not be decoded")
	ErrImageTooLarge      = response.NewError(http.StatusBadRequest, "image exceeds the maximum size")
	ErrMissingImage       = response.NewError(http.StatusBadRequest, "no image supplied")
	ErrCaptureCancelled   = response.NewError(http.StatusConflict, "document capture cancelled by user")
	ErrCaptureUnavailable = response.NewError(http.StatusServiceUnavailable, "document scanner unavailable")
	ErrNoPagesCaptured    = response.NewError(http.StatusBadRequest, "no pages captured")
	ErrResponseParse      = response.NewError(http.StatusBadGateway, "failed to parse model response")
	ErrRecognitionFailed  = response.NewError(http.StatusBadGateway, "text recognition failed")
	ErrRegionalCompliance = response.NewError(http.StatusInternalServerError, "regional compliance validation failed")
	ErrNotInitialized     = response.NewError(http.StatusServiceUnavailable, "ocr pipeline not initialized")
	ErrRunNotFound        = response.NewError(http.StatusNotFound, "ocr run not found")
)
