package handlers

import (
	"monitor/internal/app"
	userController "monitor/internal/controllers/users"
	"monitor/internal/handlers/middleware"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	controller *userController.UserController
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		controller: app.UserController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")
	users.Post("/login", h.login)

	authed := users.Group("", h.middleware.Authenticated())
	authed.Get("/", h.getUser)
	authed.Get("/list", h.listUsers)
	authed.Post("/logout", h.logout)
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *UserHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var request loginRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse login request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse login request"})
	}

	user, sessionID, err := h.controller.Login(c.Context(), request.Email, request.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "error", "error": "invalid credentials"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sessionID,
		HTTPOnly: true,
		SameSite: "Strict",
	})
	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(User)
	if !ok || user.ID == "" {
		h.log.Function("getUser").ErrMsg("no user found in locals")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.controller.ListActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to list users"})
	}
	return c.JSON(fiber.Map{"message": "success", "users": users})
}

func (h *UserHandler) logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(middleware.SessionCookie)
	if sessionID != "" {
		if err := h.controller.Logout(sessionID); err != nil {
			h.log.Function("logout").Er("failed to drop session", err)
		}
		c.ClearCookie(middleware.SessionCookie)
	}
	return c.JSON(fiber.Map{"message": "success"})
}
