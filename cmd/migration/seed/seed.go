package seed

import (
	"monitor/config"
	userController "monitor/internal/controllers/users"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

// Seed loads development fixtures: a few users, a starter WCAG catalogue
// and the statement check catalogue. Safe to run repeatedly.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	if err := seedUsers(db, log); err != nil {
		return err
	}
	if err := seedWcagDefinitions(db, log); err != nil {
		return err
	}
	if err := seedStatementChecks(db, log); err != nil {
		return err
	}

	return nil
}

func seedUsers(db *gorm.DB, log logger.Logger) error {
	users := []User{
		{
			FirstName:   "Helen",
			LastName:    "Baxter",
			Email:       stringPtr("helen.baxter@example.com"),
			IsAdmin:     true,
			IsQAAuditor: true,
			Active:      true,
		}, {
			FirstName:   "Priya",
			LastName:    "Shah",
			Email:       stringPtr("priya.shah@example.com"),
			IsQAAuditor: true,
			Active:      true,
		}, {
			FirstName: "Marcus",
			LastName:  "Webb",
			Email:     stringPtr("marcus.webb@example.com"),
			Active:    true,
		},
	}

	for _, user := range users {
		var existing User
		if err := db.First(&existing, "email = ?", *user.Email).Error; err == nil {
			continue
		}

		hash, err := userController.HashPassword("password")
		if err != nil {
			return log.Err("failed to hash seed password", err)
		}
		user.Password = hash

		log.Info("Seeding user", "email", *user.Email)
		if err := db.Create(&user).Error; err != nil {
			log.Er("failed to create user", err, "email", *user.Email)
		}
	}
	return nil
}

func seedWcagDefinitions(db *gorm.DB, log logger.Logger) error {
	var count int64
	if err := db.Model(&WcagDefinition{}).Count(&count).Error; err != nil {
		return log.Err("failed to count wcag definitions", err)
	}
	if count > 0 {
		return nil
	}

	definitions := []WcagDefinition{
		{
			Type:        WcagTypeAxe,
			Name:        "Image alt text",
			Description: "Images must have an alt attribute describing their content or be marked decorative.",
			URLOnW3:     "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
		}, {
			Type:        WcagTypeAxe,
			Name:        "Colour contrast",
			Description: "Text must have a contrast ratio of at least 4.5:1 against its background.",
			URLOnW3:     "https://www.w3.org/WAI/WCAG21/Understanding/contrast-minimum.html",
		}, {
			Type:        WcagTypeManual,
			Name:        "Keyboard navigation",
			Description: "All functionality must be operable through a keyboard interface.",
			URLOnW3:     "https://www.w3.org/WAI/WCAG21/Understanding/keyboard.html",
		}, {
			Type:        WcagTypeManual,
			Name:        "Focus visible",
			Description: "The keyboard focus indicator must be visible on every focusable element.",
			URLOnW3:     "https://www.w3.org/WAI/WCAG21/Understanding/focus-visible.html",
		}, {
			Type:        WcagTypePDF,
			Name:        "PDF tagged structure",
			Description: "PDF documents must carry a tagged structure tree for assistive technology.",
			URLOnW3:     "https://www.w3.org/WAI/WCAG21/Understanding/info-and-relationships.html",
		},
	}

	log.Info("Seeding WCAG catalogue", "count", len(definitions))
	for _, definition := range definitions {
		if err := db.Create(&definition).Error; err != nil {
			return log.Err("failed to create wcag definition", err, "name", definition.Name)
		}
	}
	return nil
}

func seedStatementChecks(db *gorm.DB, log logger.Logger) error {
	var count int64
	if err := db.Model(&StatementCheck{}).Count(&count).Error; err != nil {
		return log.Err("failed to count statement checks", err)
	}
	if count > 0 {
		return nil
	}

	checks := []StatementCheck{
		{
			Type:     StatementCheckOverview,
			Label:    "Statement exists and is linked from every page",
			Position: 1,
		}, {
			Type:     StatementCheckWebsite,
			Label:    "Statement names the website it covers",
			Position: 2,
		}, {
			Type:     StatementCheckCompliance,
			Label:    "Compliance status is one of the three permitted wordings",
			Position: 3,
		}, {
			Type:     StatementCheckNonAccessible,
			Label:    "Non-accessible content is listed with WCAG references",
			Position: 4,
		}, {
			Type:     StatementCheckPreparation,
			Label:    "Preparation date and last review date are present",
			Position: 5,
		}, {
			Type:     StatementCheckFeedback,
			Label:    "A feedback and contact route is provided",
			Position: 6,
		},
	}

	log.Info("Seeding statement check catalogue", "count", len(checks))
	for _, check := range checks {
		if err := db.Create(&check).Error; err != nil {
			return log.Err("failed to create statement check", err, "label", check.Label)
		}
	}
	return nil
}
