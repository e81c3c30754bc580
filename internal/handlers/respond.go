package handlers

import (
	"errors"

	reportController "monitor/internal/controllers/reports"
	"monitor/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// respondError maps domain errors onto status codes. Stale versions
// come back as 409 so the form can re-render with the fresh row.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "error", "error": "not found"})
	case errors.Is(err, repositories.ErrStaleVersion):
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"message": "error", "error": "the record changed while you were editing; reload and try again"})
	case errors.Is(err, reportController.ErrReportNotReady):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": "error", "error": "report has not been reviewed and approved"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": err.Error()})
	}
}

func userIDFromLocals(c *fiber.Ctx) string {
	userID, _ := c.Locals("userID").(string)
	return userID
}
