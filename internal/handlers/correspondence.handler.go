package handlers

import (
	"monitor/internal/app"
	correspondenceController "monitor/internal/controllers/correspondence"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CorrespondenceHandler struct {
	Handler
	controller *correspondenceController.CorrespondenceController
}

func NewCorrespondenceHandler(app app.App, router fiber.Router) *CorrespondenceHandler {
	log := logger.New("handlers").File("correspondence_handler")
	return &CorrespondenceHandler{
		controller: app.CorrespondenceController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CorrespondenceHandler) Register() {
	cases := h.router.Group("/cases/:caseId")

	cases.Get("/contacts", h.listContacts)
	cases.Post("/contacts", h.addContact)
	cases.Get("/zendesk-tickets", h.listZendeskTickets)
	cases.Post("/zendesk-tickets", h.addZendeskTicket)
	cases.Get("/equality-body-correspondence", h.listEqualityBody)
	cases.Post("/equality-body-correspondence", h.addEqualityBody)
	cases.Get("/retests", h.listRetests)
	cases.Post("/retests", h.createRetest)

	h.router.Post("/contacts/:id", h.updateContact)
	h.router.Post("/contacts/:id/remove", h.removeContact)
	h.router.Post("/equality-body-correspondence/:id", h.updateEqualityBody)
	h.router.Get("/retests/:id", h.getRetest)
	h.router.Post("/retests/:id", h.updateRetest)
	h.router.Post("/retests/:id/results/:resultId", h.updateRetestCheckResult)
}

func (h *CorrespondenceHandler) listContacts(c *fiber.Ctx) error {
	contacts, err := h.controller.GetContacts(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "contacts": contacts})
}

func (h *CorrespondenceHandler) addContact(c *fiber.Ctx) error {
	var request ContactRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	contact, err := h.controller.AddContact(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "contact": contact})
}

func (h *CorrespondenceHandler) updateContact(c *fiber.Ctx) error {
	var request ContactRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	contact, err := h.controller.UpdateContact(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "contact": contact})
}

func (h *CorrespondenceHandler) removeContact(c *fiber.Ctx) error {
	var request struct {
		Version int `json:"version" form:"version"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	if err := h.controller.RemoveContact(c.Context(), userIDFromLocals(c), c.Params("id"), request.Version); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *CorrespondenceHandler) listZendeskTickets(c *fiber.Ctx) error {
	tickets, err := h.controller.GetZendeskTickets(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "tickets": tickets})
}

func (h *CorrespondenceHandler) addZendeskTicket(c *fiber.Ctx) error {
	var request ZendeskTicketRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	ticket, err := h.controller.AddZendeskTicket(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "ticket": ticket})
}

func (h *CorrespondenceHandler) listEqualityBody(c *fiber.Ctx) error {
	items, err := h.controller.GetEqualityBodyCorrespondence(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "correspondence": items})
}

func (h *CorrespondenceHandler) addEqualityBody(c *fiber.Ctx) error {
	var request EqualityBodyCorrespondenceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	item, err := h.controller.AddEqualityBodyCorrespondence(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "correspondence": item})
}

func (h *CorrespondenceHandler) updateEqualityBody(c *fiber.Ctx) error {
	var request EqualityBodyCorrespondenceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	item, err := h.controller.UpdateEqualityBodyCorrespondence(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "correspondence": item})
}

func (h *CorrespondenceHandler) listRetests(c *fiber.Ctx) error {
	retests, err := h.controller.GetRetests(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "retests": retests})
}

func (h *CorrespondenceHandler) createRetest(c *fiber.Ctx) error {
	var request RetestRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	retest, err := h.controller.CreateRetest(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "retest": retest})
}

func (h *CorrespondenceHandler) getRetest(c *fiber.Ctx) error {
	retest, err := h.controller.GetRetest(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "retest": retest})
}

func (h *CorrespondenceHandler) updateRetest(c *fiber.Ctx) error {
	var request RetestRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	retest, err := h.controller.UpdateRetest(c.Context(), userIDFromLocals(c), c.Params("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "retest": retest})
}

func (h *CorrespondenceHandler) updateRetestCheckResult(c *fiber.Ctx) error {
	var request struct {
		RetestState string `json:"retestState" form:"retest_state"`
		RetestNotes string `json:"retestNotes" form:"retest_notes"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	err := h.controller.UpdateRetestCheckResult(c.Context(), userIDFromLocals(c),
		c.Params("id"), c.Params("resultId"), request.RetestState, request.RetestNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}
