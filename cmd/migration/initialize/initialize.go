package initialize

import (
	"monitor/config"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"gorm.io/gorm"
)

// InitializeTables brings the schema up to date and guarantees the rows
// the application assumes exist: the platform settings singleton and the
// stock email templates.
func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := db.AutoMigrate(
		&User{},
		&Case{},
		&CaseCompliance{},
		&CaseHistory{},
		&Contact{},
		&ZendeskTicket{},
		&EqualityBodyCorrespondence{},
		&Retest{},
		&RetestPage{},
		&RetestCheckResult{},
		&Audit{},
		&Page{},
		&WcagDefinition{},
		&CheckResult{},
		&StatementCheck{},
		&StatementCheckResult{},
		&StatementPage{},
		&Report{},
		&S3Report{},
		&EmailTemplate{},
		&PlatformSettings{},
		&Task{},
		&Comment{},
		&EventHistory{},
	); err != nil {
		return log.Err("failed to migrate schema", err)
	}

	if err := ensurePlatformSettings(db, log); err != nil {
		return err
	}

	if err := ensureEmailTemplates(db, log); err != nil {
		return err
	}

	log.Info("Table initialization complete")
	return nil
}

func ensurePlatformSettings(db *gorm.DB, log logger.Logger) error {
	var count int64
	if err := db.Model(&PlatformSettings{}).Count(&count).Error; err != nil {
		return log.Err("failed to count platform settings", err)
	}
	if count > 0 {
		return nil
	}

	log.Info("Creating platform settings singleton")
	if err := db.Create(&PlatformSettings{}).Error; err != nil {
		return log.Err("failed to create platform settings", err)
	}
	return nil
}

func ensureEmailTemplates(db *gorm.DB, log logger.Logger) error {
	templates := []EmailTemplate{
		{
			Slug:     "equality-body-retest-email",
			Name:     "Equality body retest email",
			Subject:  "Accessibility retest outcome for {{ .OrganisationName }}",
			Template: "Please find the retest outcome for case {{ .CaseIdentifier }} attached.",
		},
		{
			Slug:     "outstanding-issues-initial",
			Name:     "Outstanding issues: initial",
			Subject:  "Accessibility issues found on {{ .Domain }}",
			Template: "Our audit of {{ .HomePageURL }} found accessibility issues that need your attention.",
		},
		{
			Slug:     "outstanding-issues-12-week",
			Name:     "Outstanding issues: 12-week update",
			Subject:  "12-week update requested for {{ .Domain }}",
			Template: "Twelve weeks have passed since we sent your accessibility report. Please send us an update.",
		},
	}

	for _, template := range templates {
		var existing EmailTemplate
		if err := db.First(&existing, "slug = ?", template.Slug).Error; err == nil {
			continue
		}
		log.Info("Creating email template", "slug", template.Slug)
		if err := db.Create(&template).Error; err != nil {
			return log.Err("failed to create email template", err, "slug", template.Slug)
		}
	}
	return nil
}
