package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"gorm.io/gorm"
)

const CASE_CACHE_EXPIRY = 1 * time.Hour

type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id string) (*Case, error)
	GetForUpdate(ctx context.Context, id string) (*Case, error)
	GetByCaseNumber(ctx context.Context, caseNumber int) (*Case, error)
	Update(ctx context.Context, c *Case, expectedVersion int) error
	GetAll(ctx context.Context) ([]*Case, error)
	GetByStatus(ctx context.Context, status string) ([]*Case, error)
	GetByAuditor(ctx context.Context, auditorID string) ([]*Case, error)
	GetByReviewer(ctx context.Context, reviewerID string) ([]*Case, error)
	FindDuplicates(ctx context.Context, homePageURL, organisationName string) ([]*Case, error)
	GetCompliance(ctx context.Context, caseID string) (*CaseCompliance, error)
	CreateCompliance(ctx context.Context, compliance *CaseCompliance) error
	UpdateCompliance(ctx context.Context, compliance *CaseCompliance, expectedVersion int) error
	AddHistory(ctx context.Context, history *CaseHistory) error
	GetHistory(ctx context.Context, caseID string) ([]*CaseHistory, error)
	InvalidateCache(caseID string)
}

type caseRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCase(db database.DB) CaseRepository {
	return &caseRepository{
		db:  db,
		log: logger.New("caseRepository"),
	}
}

func (r *caseRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// Create allocates the next case number under the caller's transaction
// and inserts the row.
func (r *caseRepository) Create(ctx context.Context, c *Case) error {
	log := r.log.Function("Create")

	var maxNumber int
	if err := r.getDB(ctx).Model(&Case{}).
		Select("COALESCE(MAX(case_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		return log.Err("failed to allocate case number", err)
	}
	c.CaseNumber = maxNumber + 1

	if err := r.getDB(ctx).Create(c).Error; err != nil {
		return log.Err("failed to create case", err, "caseNumber", c.CaseNumber)
	}

	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	log := r.log.Function("GetByID")

	var c Case
	if found, err := database.NewCacheBuilder(r.db.Cache.Case, id).WithContext(ctx).Get(&c); err == nil && found {
		return &c, nil
	}

	if err := r.preloaded(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get case by id", err, "id", id)
	}

	if err := r.addToCache(ctx, &c); err != nil {
		log.Warn("failed to add case to cache", "caseID", id, "error", err)
	}

	return &c, nil
}

// GetForUpdate re-reads the row bypassing the cache, for a write that
// will compare-and-swap on the version column. Audit and Report ride
// along because the status engine reads them. Callers must be inside a
// transaction.
func (r *caseRepository) GetForUpdate(ctx context.Context, id string) (*Case, error) {
	log := r.log.Function("GetForUpdate")

	var c Case
	if err := r.getDB(ctx).
		Preload("Audit").
		Preload("Report").
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get case for update", err, "id", id)
	}
	return &c, nil
}

func (r *caseRepository) GetByCaseNumber(ctx context.Context, caseNumber int) (*Case, error) {
	log := r.log.Function("GetByCaseNumber")

	var c Case
	if err := r.preloaded(ctx).First(&c, "case_number = ?", caseNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get case by number", err, "caseNumber", caseNumber)
	}
	return &c, nil
}

// Update compare-and-swaps on the version column; zero rows affected
// means another writer committed first.
func (r *caseRepository) Update(ctx context.Context, c *Case, expectedVersion int) error {
	log := r.log.Function("Update")

	result := r.getDB(ctx).Model(&Case{}).
		Where("id = ? AND version = ?", c.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_number").
		Updates(c)
	if result.Error != nil {
		return log.Err("failed to update case", result.Error, "caseID", c.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}

	r.InvalidateCache(c.ID)
	return nil
}

func (r *caseRepository) GetAll(ctx context.Context) ([]*Case, error) {
	log := r.log.Function("GetAll")

	var cases []*Case
	if err := r.getDB(ctx).Order("case_number DESC").Find(&cases).Error; err != nil {
		return nil, log.Err("failed to get all cases", err)
	}
	return cases, nil
}

func (r *caseRepository) GetByStatus(ctx context.Context, status string) ([]*Case, error) {
	log := r.log.Function("GetByStatus")

	var cases []*Case
	if err := r.getDB(ctx).Where("status = ?", status).Order("case_number DESC").Find(&cases).Error; err != nil {
		return nil, log.Err("failed to get cases by status", err, "status", status)
	}
	return cases, nil
}

func (r *caseRepository) GetByAuditor(ctx context.Context, auditorID string) ([]*Case, error) {
	log := r.log.Function("GetByAuditor")

	var cases []*Case
	if err := r.getDB(ctx).Where("auditor_id = ?", auditorID).Order("case_number DESC").Find(&cases).Error; err != nil {
		return nil, log.Err("failed to get cases by auditor", err, "auditorID", auditorID)
	}
	return cases, nil
}

func (r *caseRepository) GetByReviewer(ctx context.Context, reviewerID string) ([]*Case, error) {
	log := r.log.Function("GetByReviewer")

	var cases []*Case
	if err := r.getDB(ctx).Where("reviewer_id = ?", reviewerID).Order("case_number DESC").Find(&cases).Error; err != nil {
		return nil, log.Err("failed to get cases by reviewer", err, "reviewerID", reviewerID)
	}
	return cases, nil
}

// FindDuplicates surfaces candidate duplicates by home page URL and by
// case-insensitive organisation-name substring.
func (r *caseRepository) FindDuplicates(ctx context.Context, homePageURL, organisationName string) ([]*Case, error) {
	log := r.log.Function("FindDuplicates")

	domain := DomainOf(homePageURL)
	name := "%" + strings.ToLower(strings.TrimSpace(organisationName)) + "%"

	var cases []*Case
	query := r.getDB(ctx).Where("LOWER(organisation_name) LIKE ?", name)
	if domain != "" {
		query = query.Or("domain = ?", domain)
	}
	if err := query.Order("case_number").Find(&cases).Error; err != nil {
		return nil, log.Err("failed to find duplicate candidates", err, "domain", domain)
	}
	return cases, nil
}

func (r *caseRepository) GetCompliance(ctx context.Context, caseID string) (*CaseCompliance, error) {
	log := r.log.Function("GetCompliance")

	var compliance CaseCompliance
	if err := r.getDB(ctx).First(&compliance, "case_id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get case compliance", err, "caseID", caseID)
	}
	return &compliance, nil
}

func (r *caseRepository) CreateCompliance(ctx context.Context, compliance *CaseCompliance) error {
	log := r.log.Function("CreateCompliance")

	if err := r.getDB(ctx).Create(compliance).Error; err != nil {
		return log.Err("failed to create case compliance", err, "caseID", compliance.CaseID)
	}
	return nil
}

func (r *caseRepository) UpdateCompliance(ctx context.Context, compliance *CaseCompliance, expectedVersion int) error {
	log := r.log.Function("UpdateCompliance")

	result := r.getDB(ctx).Model(&CaseCompliance{}).
		Where("id = ? AND version = ?", compliance.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "case_id").
		Updates(compliance)
	if result.Error != nil {
		return log.Err("failed to update case compliance", result.Error, "caseID", compliance.CaseID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}

	r.InvalidateCache(compliance.CaseID)
	return nil
}

func (r *caseRepository) AddHistory(ctx context.Context, history *CaseHistory) error {
	log := r.log.Function("AddHistory")

	if err := r.getDB(ctx).Create(history).Error; err != nil {
		return log.Err("failed to add case history", err, "caseID", history.CaseID)
	}
	return nil
}

func (r *caseRepository) GetHistory(ctx context.Context, caseID string) ([]*CaseHistory, error) {
	log := r.log.Function("GetHistory")

	var history []*CaseHistory
	if err := r.getDB(ctx).Where("case_id = ?", caseID).Order("created_at DESC").Find(&history).Error; err != nil {
		return nil, log.Err("failed to get case history", err, "caseID", caseID)
	}
	return history, nil
}

func (r *caseRepository) InvalidateCache(caseID string) {
	if err := database.NewCacheBuilder(r.db.Cache.Case, caseID).Delete(); err != nil {
		r.log.Function("InvalidateCache").
			Warn("failed to remove case from cache", "caseID", caseID, "error", err)
	}
}

func (r *caseRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).
		Preload("Audit").
		Preload("Audit.Pages").
		Preload("Audit.CheckResults").
		Preload("Audit.StatementCheckResults").
		Preload("Report").
		Preload("Compliance").
		Preload("Contacts", "is_deleted = ?", false)
}

func (r *caseRepository) addToCache(ctx context.Context, c *Case) error {
	return database.NewCacheBuilder(r.db.Cache.Case, c.ID).
		WithStruct(c).
		WithTTL(CASE_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}
