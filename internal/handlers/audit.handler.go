package handlers

import (
	"time"

	"monitor/internal/app"
	auditController "monitor/internal/controllers/audits"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	Handler
	controller *auditController.AuditController
}

func NewAuditHandler(app app.App, router fiber.Router) *AuditHandler {
	log := logger.New("handlers").File("audit_handler")
	return &AuditHandler{
		controller: app.AuditController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuditHandler) Register() {
	cases := h.router.Group("/cases/:caseId")
	cases.Post("/audit", h.startTest)
	cases.Get("/audit", h.getForCase)

	audits := h.router.Group("/audits/:id")
	audits.Get("/", h.get)
	audits.Post("/metadata", h.updateMetadata)
	audits.Post("/pages", h.addPage)
	audits.Post("/pages/:pageId/remove", h.removePage)
	audits.Post("/pages/:pageId/checks", h.updatePageChecks)
	audits.Post("/pages/:pageId/retest", h.updatePageRetest)
	audits.Post("/statement-checks", h.updateStatementChecks)
	audits.Post("/statement-issues", h.addCustomStatementIssue)
	audits.Post("/statement-pages", h.addStatementPage)
	audits.Post("/start-retest", h.startRetest)
}

type startTestRequest struct {
	DateOfTest time.Time `json:"dateOfTest" form:"date_of_test"`
}

func (h *AuditHandler) startTest(c *fiber.Ctx) error {
	log := h.log.Function("startTest")

	var request startTestRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse start test request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if request.DateOfTest.IsZero() {
		request.DateOfTest = time.Now()
	}

	audit, err := h.controller.StartTest(c.Context(), userIDFromLocals(c), c.Params("caseId"), request.DateOfTest)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "audit": audit})
}

func (h *AuditHandler) getForCase(c *fiber.Ctx) error {
	audit, err := h.controller.GetForCase(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "success",
		"audit":   audit,
		"metrics": services.ComputeAuditMetrics(audit),
	})
}

func (h *AuditHandler) get(c *fiber.Ctx) error {
	audit, err := h.controller.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "audit": audit})
}

type auditMetadataRequest struct {
	Version         int     `json:"version"         form:"version"`
	ScreenSizeNotes *string `json:"screenSizeNotes" form:"screen_size_notes"`
	AuditNotes      *string `json:"auditNotes"      form:"audit_notes"`
	RetestNotes     *string `json:"retestNotes"     form:"retest_notes"`
}

func (h *AuditHandler) updateMetadata(c *fiber.Ctx) error {
	var request auditMetadataRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}

	audit, err := h.controller.UpdateMetadata(c.Context(), userIDFromLocals(c), c.Params("id"), request.Version,
		func(a *Audit) error {
			if request.ScreenSizeNotes != nil {
				a.ScreenSizeNotes = *request.ScreenSizeNotes
			}
			if request.AuditNotes != nil {
				a.AuditNotes = *request.AuditNotes
			}
			if request.RetestNotes != nil {
				a.RetestNotes = *request.RetestNotes
			}
			return nil
		})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "audit": audit})
}

type addPageRequest struct {
	PageType string `json:"pageType" form:"page_type"`
	Name     string `json:"name"     form:"name"`
	URL      string `json:"url"      form:"url"`
}

func (h *AuditHandler) addPage(c *fiber.Ctx) error {
	var request addPageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if request.PageType == "" {
		request.PageType = PageTypeExtra
	}

	page, err := h.controller.AddPage(c.Context(), userIDFromLocals(c), c.Params("id"),
		request.PageType, request.Name, request.URL)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "page": page})
}

func (h *AuditHandler) removePage(c *fiber.Ctx) error {
	var request struct {
		Version int `json:"version" form:"version"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if err := h.controller.RemovePage(c.Context(), userIDFromLocals(c), c.Params("pageId"), request.Version); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AuditHandler) updatePageChecks(c *fiber.Ctx) error {
	var request PageChecksRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	err := h.controller.UpdatePageChecks(c.Context(), userIDFromLocals(c), c.Params("id"), c.Params("pageId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AuditHandler) updatePageRetest(c *fiber.Ctx) error {
	var request PageRetestRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	err := h.controller.UpdatePageRetest(c.Context(), userIDFromLocals(c), c.Params("id"), c.Params("pageId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AuditHandler) updateStatementChecks(c *fiber.Ctx) error {
	var request StatementChecksRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if err := h.controller.UpdateStatementChecks(c.Context(), userIDFromLocals(c), c.Params("id"), request); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AuditHandler) addCustomStatementIssue(c *fiber.Ctx) error {
	var request struct {
		ReportComment string `json:"reportComment" form:"report_comment"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	result, err := h.controller.AddCustomStatementIssue(c.Context(), userIDFromLocals(c), c.Params("id"), request.ReportComment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "result": result})
}

func (h *AuditHandler) addStatementPage(c *fiber.Ctx) error {
	var request struct {
		URL       string `json:"url"       form:"url"`
		BackupURL string `json:"backupUrl" form:"backup_url"`
		Stage     string `json:"stage"     form:"stage"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	page, err := h.controller.AddStatementPage(c.Context(), userIDFromLocals(c), c.Params("id"),
		request.URL, request.BackupURL, request.Stage)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "statementPage": page})
}

type startRetestRequest struct {
	Version    int       `json:"version"    form:"version"`
	RetestDate time.Time `json:"retestDate" form:"retest_date"`
}

func (h *AuditHandler) startRetest(c *fiber.Ctx) error {
	var request startRetestRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if request.RetestDate.IsZero() {
		request.RetestDate = time.Now()
	}

	audit, err := h.controller.StartRetest(c.Context(), userIDFromLocals(c), c.Params("id"), request.Version, request.RetestDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "audit": audit})
}
