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

type AuditRepository interface {
	Create(ctx context.Context, audit *Audit) error
	GetByID(ctx context.Context, id string) (*Audit, error)
	GetByCaseID(ctx context.Context, caseID string) (*Audit, error)
	Update(ctx context.Context, audit *Audit, expectedVersion int) error

	CreatePages(ctx context.Context, pages []Page) error
	GetPage(ctx context.Context, id string) (*Page, error)
	GetPages(ctx context.Context, auditID string) ([]*Page, error)
	UpdatePage(ctx context.Context, page *Page, expectedVersion int) error

	CreateCheckResults(ctx context.Context, results []CheckResult) error
	GetCheckResult(ctx context.Context, id string) (*CheckResult, error)
	GetCheckResults(ctx context.Context, auditID string) ([]*CheckResult, error)
	GetPageCheckResults(ctx context.Context, auditID, pageID string) ([]*CheckResult, error)
	UpdateCheckResult(ctx context.Context, result *CheckResult, expectedVersion int) error

	CreateStatementCheckResults(ctx context.Context, results []StatementCheckResult) error
	GetStatementCheckResult(ctx context.Context, id string) (*StatementCheckResult, error)
	GetStatementCheckResults(ctx context.Context, auditID string) ([]*StatementCheckResult, error)
	UpdateStatementCheckResult(ctx context.Context, result *StatementCheckResult, expectedVersion int) error

	CreateStatementPage(ctx context.Context, page *StatementPage) error
	GetStatementPages(ctx context.Context, auditID string) ([]*StatementPage, error)
	SaveStatementPage(ctx context.Context, page *StatementPage) error
}

type auditRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAudit(db database.DB) AuditRepository {
	return &auditRepository{
		db:  db,
		log: logger.New("auditRepository"),
	}
}

func (r *auditRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *auditRepository) Create(ctx context.Context, audit *Audit) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(audit).Error; err != nil {
		return log.Err("failed to create audit", err, "caseID", audit.CaseID)
	}
	return nil
}

func (r *auditRepository) GetByID(ctx context.Context, id string) (*Audit, error) {
	log := r.log.Function("GetByID")

	var audit Audit
	if err := r.getDB(ctx).
		Preload("Pages", "is_deleted = ?", false).
		Preload("CheckResults").
		Preload("CheckResults.WcagDefinition").
		Preload("StatementCheckResults", "is_deleted = ?", false).
		Preload("StatementCheckResults.StatementCheck").
		Preload("StatementPages", "is_deleted = ?", false).
		First(&audit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get audit by id", err, "id", id)
	}
	return &audit, nil
}

func (r *auditRepository) GetByCaseID(ctx context.Context, caseID string) (*Audit, error) {
	log := r.log.Function("GetByCaseID")

	var audit Audit
	if err := r.getDB(ctx).
		Where("case_id = ? AND is_deleted = ?", caseID, false).
		First(&audit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get audit by case id", err, "caseID", caseID)
	}
	return &audit, nil
}

func (r *auditRepository) Update(ctx context.Context, audit *Audit, expectedVersion int) error {
	log := r.log.Function("Update")

	result := r.getDB(ctx).Model(&Audit{}).
		Where("id = ? AND version = ?", audit.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_id").
		Updates(audit)
	if result.Error != nil {
		return log.Err("failed to update audit", result.Error, "auditID", audit.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *auditRepository) CreatePages(ctx context.Context, pages []Page) error {
	log := r.log.Function("CreatePages")

	if len(pages) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Create(&pages).Error; err != nil {
		return log.Err("failed to create pages", err, "count", len(pages))
	}
	return nil
}

func (r *auditRepository) GetPage(ctx context.Context, id string) (*Page, error) {
	log := r.log.Function("GetPage")

	var page Page
	if err := r.getDB(ctx).First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get page", err, "id", id)
	}
	return &page, nil
}

func (r *auditRepository) GetPages(ctx context.Context, auditID string) ([]*Page, error) {
	log := r.log.Function("GetPages")

	var pages []*Page
	if err := r.getDB(ctx).
		Where("audit_id = ? AND is_deleted = ?", auditID, false).
		Order("created_at").Find(&pages).Error; err != nil {
		return nil, log.Err("failed to get pages", err, "auditID", auditID)
	}
	return pages, nil
}

func (r *auditRepository) UpdatePage(ctx context.Context, page *Page, expectedVersion int) error {
	log := r.log.Function("UpdatePage")

	result := r.getDB(ctx).Model(&Page{}).
		Where("id = ? AND version = ?", page.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "audit_id").
		Updates(page)
	if result.Error != nil {
		return log.Err("failed to update page", result.Error, "pageID", page.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *auditRepository) CreateCheckResults(ctx context.Context, results []CheckResult) error {
	log := r.log.Function("CreateCheckResults")

	if len(results) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Create(&results).Error; err != nil {
		return log.Err("failed to create check results", err, "count", len(results))
	}
	return nil
}

func (r *auditRepository) GetCheckResult(ctx context.Context, id string) (*CheckResult, error) {
	log := r.log.Function("GetCheckResult")

	var result CheckResult
	if err := r.getDB(ctx).First(&result, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get check result", err, "id", id)
	}
	return &result, nil
}

func (r *auditRepository) GetCheckResults(ctx context.Context, auditID string) ([]*CheckResult, error) {
	log := r.log.Function("GetCheckResults")

	var results []*CheckResult
	if err := r.getDB(ctx).
		Where("audit_id = ?", auditID).
		Find(&results).Error; err != nil {
		return nil, log.Err("failed to get check results", err, "auditID", auditID)
	}
	return results, nil
}

func (r *auditRepository) GetPageCheckResults(ctx context.Context, auditID, pageID string) ([]*CheckResult, error) {
	log := r.log.Function("GetPageCheckResults")

	var results []*CheckResult
	if err := r.getDB(ctx).
		Preload("WcagDefinition").
		Where("audit_id = ? AND page_id = ?", auditID, pageID).
		Find(&results).Error; err != nil {
		return nil, log.Err("failed to get page check results", err, "auditID", auditID, "pageID", pageID)
	}
	return results, nil
}

func (r *auditRepository) UpdateCheckResult(ctx context.Context, result *CheckResult, expectedVersion int) error {
	log := r.log.Function("UpdateCheckResult")

	res := r.getDB(ctx).Model(&CheckResult{}).
		Where("id = ? AND version = ?", result.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "audit_id", "page_id", "wcag_definition_id").
		Updates(result)
	if res.Error != nil {
		return log.Err("failed to update check result", res.Error, "checkResultID", result.ID)
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *auditRepository) CreateStatementCheckResults(ctx context.Context, results []StatementCheckResult) error {
	log := r.log.Function("CreateStatementCheckResults")

	if len(results) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Create(&results).Error; err != nil {
		return log.Err("failed to create statement check results", err, "count", len(results))
	}
	return nil
}

func (r *auditRepository) GetStatementCheckResult(ctx context.Context, id string) (*StatementCheckResult, error) {
	log := r.log.Function("GetStatementCheckResult")

	var result StatementCheckResult
	if err := r.getDB(ctx).First(&result, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get statement check result", err, "id", id)
	}
	return &result, nil
}

func (r *auditRepository) GetStatementCheckResults(ctx context.Context, auditID string) ([]*StatementCheckResult, error) {
	log := r.log.Function("GetStatementCheckResults")

	var results []*StatementCheckResult
	if err := r.getDB(ctx).
		Preload("StatementCheck").
		Where("audit_id = ? AND is_deleted = ?", auditID, false).
		Find(&results).Error; err != nil {
		return nil, log.Err("failed to get statement check results", err, "auditID", auditID)
	}
	return results, nil
}

func (r *auditRepository) UpdateStatementCheckResult(ctx context.Context, result *StatementCheckResult, expectedVersion int) error {
	log := r.log.Function("UpdateStatementCheckResult")

	res := r.getDB(ctx).Model(&StatementCheckResult{}).
		Where("id = ? AND version = ?", result.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "audit_id", "statement_check_id").
		Updates(result)
	if res.Error != nil {
		return log.Err("failed to update statement check result", res.Error, "id", result.ID)
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *auditRepository) CreateStatementPage(ctx context.Context, page *StatementPage) error {
	log := r.log.Function("CreateStatementPage")

	if err := r.getDB(ctx).Create(page).Error; err != nil {
		return log.Err("failed to create statement page", err, "auditID", page.AuditID)
	}
	return nil
}

func (r *auditRepository) GetStatementPages(ctx context.Context, auditID string) ([]*StatementPage, error) {
	log := r.log.Function("GetStatementPages")

	var pages []*StatementPage
	if err := r.getDB(ctx).
		Where("audit_id = ? AND is_deleted = ?", auditID, false).
		Order("created_at").Find(&pages).Error; err != nil {
		return nil, log.Err("failed to get statement pages", err, "auditID", auditID)
	}
	return pages, nil
}

func (r *auditRepository) SaveStatementPage(ctx context.Context, page *StatementPage) error {
	log := r.log.Function("SaveStatementPage")

	if err := r.getDB(ctx).Save(page).Error; err != nil {
		return log.Err("failed to save statement page", err, "id", page.ID)
	}
	return nil
}
