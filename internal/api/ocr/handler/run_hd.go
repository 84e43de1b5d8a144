package ocrHandler

import (
	"time"

	contextPkg "ProjectOCR/pkg/context"
	"ProjectOCR/pkg/handlerUtil"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const runQueryTimeout = 10 * time.Second

// ListRuns returns the most recent processing runs from the audit trail.
func (h *OCRHandler) ListRuns(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), runQueryTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	runs, err := h.ocrService.RecentRuns(c, ctx.QueryInt("limit"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_runs")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{"data": runs})
}

func (h *OCRHandler) GetRun(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), runQueryTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	run, err := h.ocrService.RunByID(c, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_run")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{"data": run})
}
