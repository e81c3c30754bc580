package handlers

import (
	"monitor/internal/app"
	caseController "monitor/internal/controllers/cases"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CaseHandler struct {
	Handler
	controller *caseController.CaseController
}

func NewCaseHandler(app app.App, router fiber.Router) *CaseHandler {
	log := logger.New("handlers").File("case_handler")
	return &CaseHandler{
		controller: app.CaseController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CaseHandler) Register() {
	cases := h.router.Group("/cases")

	cases.Get("/", h.list)
	cases.Post("/", h.create)
	cases.Get("/:id", h.get)
	cases.Get("/:id/history", h.history)
	cases.Post("/:id/notes", h.addNote)
	cases.Post("/:id/edit-case-details", h.updateDetails)
	cases.Post("/:id/edit-report-correspondence", h.updateReportCorrespondence)
	cases.Post("/:id/edit-12-week-correspondence", h.updateTwelveWeekCorrespondence)
	cases.Post("/:id/edit-no-psb-response", h.updateNoContact)
	cases.Post("/:id/edit-review-changes", h.updateReviewChanges)
	cases.Post("/:id/edit-case-close", h.updateClose)
	cases.Post("/:id/edit-compliance", h.updateCompliance)
	cases.Post("/:id/deactivate", h.deactivate)
	cases.Post("/:id/reactivate", h.reactivate)
}

func (h *CaseHandler) list(c *fiber.Ctx) error {
	var (
		cases []*Case
		err   error
	)
	if status := c.Query("status"); status != "" {
		cases, err = h.controller.ListByStatus(c.Context(), status)
	} else if auditorID := c.Query("auditor"); auditorID != "" {
		cases, err = h.controller.ListByAuditor(c.Context(), auditorID)
	} else {
		cases, err = h.controller.List(c.Context())
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "cases": cases})
}

func (h *CaseHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var request CreateCaseRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse create request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}

	allowDuplicates := c.Query("allow_duplicate_cases") == "true"
	result, err := h.controller.Create(c.Context(), userIDFromLocals(c), request, allowDuplicates)
	if err != nil {
		return respondError(c, err)
	}
	if len(result.Duplicates) > 0 {
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"message": "duplicates", "duplicates": result.Duplicates})
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "case": result.Case})
}

func (h *CaseHandler) get(c *fiber.Ctx) error {
	found, err := h.controller.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "success",
		"case":     found,
		"qaStatus": services.QAStatus(found),
		"nextPage": services.NextPageLink(found),
		"metrics":  services.ComputeAuditMetrics(found.Audit),
	})
}

func (h *CaseHandler) history(c *fiber.Ctx) error {
	history, err := h.controller.GetHistory(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "history": history})
}

func (h *CaseHandler) addNote(c *fiber.Ctx) error {
	var request struct {
		Note string `json:"note" form:"note"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if err := h.controller.AddNote(c.Context(), userIDFromLocals(c), c.Params("id"), request.Note); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *CaseHandler) updateDetails(c *fiber.Ctx) error {
	var request UpdateCaseDetailsRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateDetails(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) updateReportCorrespondence(c *fiber.Ctx) error {
	var request ReportCorrespondenceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateReportCorrespondence(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) updateTwelveWeekCorrespondence(c *fiber.Ctx) error {
	var request TwelveWeekCorrespondenceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateTwelveWeekCorrespondence(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) updateNoContact(c *fiber.Ctx) error {
	var request NoContactRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateNoContact(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) updateReviewChanges(c *fiber.Ctx) error {
	var request ReviewChangesRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateReviewChanges(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) updateClose(c *fiber.Ctx) error {
	var request CaseCloseRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateClose(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) updateCompliance(c *fiber.Ctx) error {
	var request ComplianceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateCompliance(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "compliance": updated})
}

type deactivateRequest struct {
	Version int    `json:"version" form:"version"`
	Note    string `json:"note"    form:"note"`
}

func (h *CaseHandler) deactivate(c *fiber.Ctx) error {
	var request deactivateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.Deactivate(c.Context(), userIDFromLocals(c), c.Params("id"), request.Version, request.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *CaseHandler) reactivate(c *fiber.Ctx) error {
	var request deactivateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.Reactivate(c.Context(), userIDFromLocals(c), c.Params("id"), request.Version)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}
