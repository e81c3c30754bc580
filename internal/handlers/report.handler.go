package handlers

import (
	"monitor/internal/app"
	reportController "monitor/internal/controllers/reports"
	"monitor/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	Handler
	controller *reportController.ReportController
}

func NewReportHandler(app app.App, router fiber.Router) *ReportHandler {
	log := logger.New("handlers").File("report_handler")
	return &ReportHandler{
		controller: app.ReportController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReportHandler) Register() {
	cases := h.router.Group("/cases/:caseId")
	cases.Post("/report", h.create)
	cases.Get("/report", h.get)
	cases.Post("/report/notes", h.updateNotes)
	cases.Post("/report/publish", h.publish)
	cases.Get("/report/published", h.listPublished)
}

func (h *ReportHandler) create(c *fiber.Ctx) error {
	report, err := h.controller.Create(c.Context(), userIDFromLocals(c), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "report": report})
}

func (h *ReportHandler) get(c *fiber.Ctx) error {
	report, err := h.controller.Get(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "report": report})
}

func (h *ReportHandler) updateNotes(c *fiber.Ctx) error {
	var request struct {
		Version int    `json:"version" form:"version"`
		Notes   string `json:"notes"   form:"notes"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	report, err := h.controller.UpdateNotes(c.Context(), userIDFromLocals(c), c.Params("caseId"), request.Version, request.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "report": report})
}

func (h *ReportHandler) publish(c *fiber.Ctx) error {
	published, err := h.controller.Publish(c.Context(), userIDFromLocals(c), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "published": published})
}

func (h *ReportHandler) listPublished(c *fiber.Ctx) error {
	published, err := h.controller.GetPublished(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "published": published})
}
