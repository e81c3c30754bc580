package middleware

import (
	"monitor/config"
	userController "monitor/internal/controllers/users"
	"monitor/internal/database"
	"monitor/internal/events"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

const SessionCookie = "session_id"

type Middleware struct {
	db             database.DB
	config         config.Config
	userRepo       repositories.UserRepository
	userController *userController.UserController
	log            logger.Logger
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	userRepo repositories.UserRepository,
	userController *userController.UserController,
) Middleware {
	return Middleware{
		db:             db,
		config:         config,
		userRepo:       userRepo,
		userController: userController,
		log:            logger.New("middleware"),
	}
}

// Authenticated resolves the session cookie to a user and stores it in
// locals; requests without a valid session get a 401.
func (m Middleware) Authenticated() fiber.Handler {
	log := m.log.Function("Authenticated")

	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookie)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "error", "error": "not signed in"})
		}

		user, err := m.userController.Authenticate(c.Context(), sessionID)
		if err != nil {
			log.Debug("session rejected", "error", err)
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "error", "error": "session expired"})
		}

		c.Locals("user", *user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// RequireQAAuditor guards the QA-only routes. Runs after Authenticated.
func (m Middleware) RequireQAAuditor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(User)
		if !ok || !user.IsQAAuditor {
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"message": "error", "error": "QA auditor access required"})
		}
		return c.Next()
	}
}

// RequireAdmin guards platform administration.
func (m Middleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(User)
		if !ok || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"message": "error", "error": "admin access required"})
		}
		return c.Next()
	}
}
