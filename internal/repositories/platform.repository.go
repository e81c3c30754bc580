package repositories

import (
	"context"
	"errors"

	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"gorm.io/gorm"
)

type PlatformRepository interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, caseID string) (*Report, error)
	UpdateReport(ctx context.Context, report *Report, expectedVersion int) error

	CreateS3Report(ctx context.Context, report *S3Report) error
	GetS3Reports(ctx context.Context, caseID string) ([]*S3Report, error)
	GetLatestPublished(ctx context.Context, caseID string) (*S3Report, error)
	ClearLatestPublished(ctx context.Context, caseID string) error

	GetEmailTemplate(ctx context.Context, slug string) (*EmailTemplate, error)
	GetEmailTemplates(ctx context.Context) ([]*EmailTemplate, error)
	SaveEmailTemplate(ctx context.Context, template *EmailTemplate) error

	GetSettings(ctx context.Context) (*PlatformSettings, error)
	UpdateSettings(ctx context.Context, settings *PlatformSettings, expectedVersion int) error
}

type platformRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPlatform(db database.DB) PlatformRepository {
	return &platformRepository{
		db:  db,
		log: logger.New("platformRepository"),
	}
}

func (r *platformRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *platformRepository) CreateReport(ctx context.Context, report *Report) error {
	log := r.log.Function("CreateReport")

	if err := r.getDB(ctx).Create(report).Error; err != nil {
		return log.Err("failed to create report", err, "caseID", report.CaseID)
	}
	return nil
}

func (r *platformRepository) GetReport(ctx context.Context, caseID string) (*Report, error) {
	log := r.log.Function("GetReport")

	var report Report
	if err := r.getDB(ctx).First(&report, "case_id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get report", err, "caseID", caseID)
	}
	return &report, nil
}

func (r *platformRepository) UpdateReport(ctx context.Context, report *Report, expectedVersion int) error {
	log := r.log.Function("UpdateReport")

	result := r.getDB(ctx).Model(&Report{}).
		Where("id = ? AND version = ?", report.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_id").
		Updates(report)
	if result.Error != nil {
		return log.Err("failed to update report", result.Error, "reportID", report.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *platformRepository) CreateS3Report(ctx context.Context, report *S3Report) error {
	log := r.log.Function("CreateS3Report")

	if err := r.getDB(ctx).Create(report).Error; err != nil {
		return log.Err("failed to create s3 report", err, "caseID", report.CaseID)
	}
	return nil
}

func (r *platformRepository) GetS3Reports(ctx context.Context, caseID string) ([]*S3Report, error) {
	log := r.log.Function("GetS3Reports")

	var reports []*S3Report
	if err := r.getDB(ctx).
		Where("case_id = ?", caseID).
		Order("version DESC").
		Find(&reports).Error; err != nil {
		return nil, log.Err("failed to get s3 reports", err, "caseID", caseID)
	}
	return reports, nil
}

func (r *platformRepository) GetLatestPublished(ctx context.Context, caseID string) (*S3Report, error) {
	log := r.log.Function("GetLatestPublished")

	var report S3Report
	if err := r.getDB(ctx).
		Where("case_id = ? AND latest_published = ?", caseID, true).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get latest published report", err, "caseID", caseID)
	}
	return &report, nil
}

// ClearLatestPublished drops the flag from every copy for the case so a
// fresh publish can claim it.
func (r *platformRepository) ClearLatestPublished(ctx context.Context, caseID string) error {
	log := r.log.Function("ClearLatestPublished")

	if err := r.getDB(ctx).Model(&S3Report{}).
		Where("case_id = ?", caseID).
		Update("latest_published", false).Error; err != nil {
		return log.Err("failed to clear latest published flag", err, "caseID", caseID)
	}
	return nil
}

func (r *platformRepository) GetEmailTemplate(ctx context.Context, slug string) (*EmailTemplate, error) {
	log := r.log.Function("GetEmailTemplate")

	var template EmailTemplate
	if err := r.getDB(ctx).First(&template, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get email template", err, "slug", slug)
	}
	return &template, nil
}

func (r *platformRepository) GetEmailTemplates(ctx context.Context) ([]*EmailTemplate, error) {
	log := r.log.Function("GetEmailTemplates")

	var templates []*EmailTemplate
	if err := r.getDB(ctx).Order("slug").Find(&templates).Error; err != nil {
		return nil, log.Err("failed to get email templates", err)
	}
	return templates, nil
}

func (r *platformRepository) SaveEmailTemplate(ctx context.Context, template *EmailTemplate) error {
	log := r.log.Function("SaveEmailTemplate")

	if err := r.getDB(ctx).Save(template).Error; err != nil {
		return log.Err("failed to save email template", err, "slug", template.Slug)
	}
	return nil
}

func (r *platformRepository) GetSettings(ctx context.Context) (*PlatformSettings, error) {
	log := r.log.Function("GetSettings")

	var settings PlatformSettings
	if err := r.getDB(ctx).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get platform settings", err)
	}
	return &settings, nil
}

func (r *platformRepository) UpdateSettings(ctx context.Context, settings *PlatformSettings, expectedVersion int) error {
	log := r.log.Function("UpdateSettings")

	result := r.getDB(ctx).Model(&PlatformSettings{}).
		Where("id = ? AND version = ?", settings.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(settings)
	if result.Error != nil {
		return log.Err("failed to update platform settings", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}
