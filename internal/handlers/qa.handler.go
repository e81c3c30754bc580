package handlers

import (
	"monitor/internal/app"
	qaController "monitor/internal/controllers/qa"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

type QAHandler struct {
	Handler
	controller *qaController.QAController
}

func NewQAHandler(app app.App, router fiber.Router) *QAHandler {
	log := logger.New("handlers").File("qa_handler")
	return &QAHandler{
		controller: app.QAController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *QAHandler) Register() {
	cases := h.router.Group("/cases/:caseId")
	cases.Post("/edit-qa-process", h.updateReview)
	cases.Get("/comments", h.listComments)
	cases.Post("/comments", h.addComment)
	cases.Post("/comments/mark-read", h.markCommentsRead)
	cases.Post("/reminders", h.createReminder)

	tasks := h.router.Group("/tasks")
	tasks.Get("/", h.listTasks)
	tasks.Get("/unread-count", h.unreadCount)
	tasks.Post("/:id/mark-read", h.markTaskRead)
}

func (h *QAHandler) updateReview(c *fiber.Ctx) error {
	var request QAReviewRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	updated, err := h.controller.UpdateReview(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "case": updated})
}

func (h *QAHandler) listComments(c *fiber.Ctx) error {
	comments, err := h.controller.GetComments(c.Context(), c.Params("caseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "comments": comments})
}

func (h *QAHandler) addComment(c *fiber.Ctx) error {
	var request CommentRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	comment, err := h.controller.AddComment(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "comment": comment})
}

func (h *QAHandler) markCommentsRead(c *fiber.Ctx) error {
	if err := h.controller.MarkCommentsRead(c.Context(), userIDFromLocals(c), c.Params("caseId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *QAHandler) createReminder(c *fiber.Ctx) error {
	var request TaskRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request"})
	}
	task, err := h.controller.CreateReminder(c.Context(), userIDFromLocals(c), c.Params("caseId"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "task": task})
}

func (h *QAHandler) listTasks(c *fiber.Ctx) error {
	tasks, err := h.controller.GetTasks(c.Context(), userIDFromLocals(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "tasks": tasks})
}

func (h *QAHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.controller.CountUnreadTasks(c.Context(), userIDFromLocals(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success", "count": count})
}

func (h *QAHandler) markTaskRead(c *fiber.Ctx) error {
	if err := h.controller.MarkTaskRead(c.Context(), userIDFromLocals(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "success"})
}
