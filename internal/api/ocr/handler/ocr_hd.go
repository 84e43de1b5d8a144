package ocrHandler

import (
	"encoding/base64"
	"time"

	"ProjectOCR/internal/api/ocr"
	contextPkg "ProjectOCR/pkg/context"
	"ProjectOCR/pkg/handlerUtil"
	"ProjectOCR/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const processRequestTimeout = 60 * time.Second

// imageSourceFromRequest builds the ImageSource from either a multipart
// "image" file or the JSON body fields. The multipart file wins when both
// are supplied.
func (h *OCRHandler) imageSourceFromRequest(ctx *fiber.Ctx, req *ocr.ProcessImageRequest) (ocr.ImageSource, error) {
	file, err := ctx.FormFile("image")
	if err == nil && file != nil {
		if err := h.utils.ValidateImageFile(file); err != nil {
			return ocr.ImageSource{}, err
		}

		fileContent, err := file.Open()
		if err != nil {
			return ocr.ImageSource{}, err
		}
		defer fileContent.Close()

		data, err := h.utils.ReadFileBytes(fileContent)
		if err != nil {
			return ocr.ImageSource{}, err
		}

		return ocr.ImageSource{Data: data}, nil
	}

	if err := ctx.BodyParser(req); err != nil {
		return ocr.ImageSource{}, err
	}

	if err := h.validator.Struct(req); err != nil {
		return ocr.ImageSource{}, err
	}

	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return ocr.ImageSource{}, ocr.ErrImageDecode
		}
		return ocr.ImageSource{Data: data}, nil
	}

	return ocr.ImageSource{URI: req.ImageURI}, nil
}

func (h *OCRHandler) ProcessCheque(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), processRequestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing cheque OCR request")

	var req ocr.ProcessImageRequest
	src, err := h.imageSourceFromRequest(ctx, &req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request")
	}

	if src.IsEmpty() {
		return errHandler.Handle(ctx, requestID, ocr.ErrMissingImage, ctx.Path(), "parse_request")
	}

	result := h.ocrService.ProcessCheque(c, src, req.Options)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *OCRHandler) ProcessENach(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), processRequestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing e-NACH OCR request")

	var req ocr.ProcessImageRequest
	src, err := h.imageSourceFromRequest(ctx, &req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request")
	}

	if src.IsEmpty() {
		return errHandler.Handle(ctx, requestID, ocr.ErrMissingImage, ctx.Path(), "parse_request")
	}

	result := h.ocrService.ProcessENach(c, src, req.Options)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *OCRHandler) ProcessDocument(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), processRequestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing auto-detect OCR request")

	var req ocr.ProcessImageRequest
	src, err := h.imageSourceFromRequest(ctx, &req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request")
	}

	if src.IsEmpty() {
		return errHandler.Handle(ctx, requestID, ocr.ErrMissingImage, ctx.Path(), "parse_request")
	}

	result := h.ocrService.ProcessDocument(c, src, req.Options)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *OCRHandler) RecognizeText(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), processRequestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing text recognition request")

	var req ocr.ProcessImageRequest
	src, err := h.imageSourceFromRequest(ctx, &req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request")
	}

	if src.IsEmpty() {
		return errHandler.Handle(ctx, requestID, ocr.ErrMissingImage, ctx.Path(), "parse_request")
	}

	recognized, err := h.ocrService.RecognizeText(c, src)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "recognize_text")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, ocr.RecognizeTextResponse{Data: *recognized})
	}
}
