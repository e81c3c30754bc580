package handlers

import (
	"fmt"
	"time"

	"monitor/internal/app"
	exportController "monitor/internal/controllers/exports"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ExportHandler struct {
	Handler
	controller *exportController.ExportController
}

func NewExportHandler(app app.App, router fiber.Router) *ExportHandler {
	log := logger.New("handlers").File("export_handler")
	return &ExportHandler{
		controller: app.ExportController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ExportHandler) Register() {
	exports := h.router.Group("/exports")
	exports.Get("/cases", h.cases)
	exports.Get("/equality-body/:body", h.equalityBody)
	exports.Get("/feedback-survey", h.feedbackSurvey)
}

func setCSVHeaders(c *fiber.Ctx, name string) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

func (h *ExportHandler) cases(c *fiber.Ctx) error {
	setCSVHeaders(c, "cases")
	if err := h.controller.WriteCaseExport(c.Context(), c.Response().BodyWriter()); err != nil {
		return respondError(c, err)
	}
	return nil
}

func (h *ExportHandler) equalityBody(c *fiber.Ctx) error {
	body := c.Params("body")
	if body != EnforcementBodyEHRC && body != EnforcementBodyECNI {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "unknown enforcement body"})
	}

	setCSVHeaders(c, body+"_cases")
	if err := h.controller.WriteEqualityBodyExport(c.Context(), c.Response().BodyWriter(), body); err != nil {
		return respondError(c, err)
	}
	return nil
}

func (h *ExportHandler) feedbackSurvey(c *fiber.Ctx) error {
	setCSVHeaders(c, "feedback_survey")
	if err := h.controller.WriteFeedbackSurveyExport(c.Context(), c.Response().BodyWriter()); err != nil {
		return respondError(c, err)
	}
	return nil
}
