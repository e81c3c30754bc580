package repositories

import (
	"context"
	"time"

	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"gorm.io/gorm"
)

// CatalogueRepository serves the shared WCAG and statement-check
// catalogues. Both are read-only from the case flow; the administrative
// editor updates them under the same version discipline.
type CatalogueRepository interface {
	GetWcagDefinitionsValidAt(ctx context.Context, date time.Time) ([]*WcagDefinition, error)
	GetWcagDefinition(ctx context.Context, id string) (*WcagDefinition, error)
	CreateWcagDefinition(ctx context.Context, definition *WcagDefinition) error
	UpdateWcagDefinition(ctx context.Context, definition *WcagDefinition, expectedVersion int) error

	GetStatementChecksValidAt(ctx context.Context, date time.Time) ([]*StatementCheck, error)
	CreateStatementCheck(ctx context.Context, check *StatementCheck) error
	UpdateStatementCheck(ctx context.Context, check *StatementCheck, expectedVersion int) error
}

type catalogueRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCatalogue(db database.DB) CatalogueRepository {
	return &catalogueRepository{
		db:  db,
		log: logger.New("catalogueRepository"),
	}
}

func (r *catalogueRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *catalogueRepository) GetWcagDefinitionsValidAt(ctx context.Context, date time.Time) ([]*WcagDefinition, error) {
	log := r.log.Function("GetWcagDefinitionsValidAt")

	var definitions []*WcagDefinition
	if err := r.getDB(ctx).
		Where("(date_start IS NULL OR date_start <= ?) AND (date_end IS NULL OR date_end >= ?)", date, date).
		Order("type, name").
		Find(&definitions).Error; err != nil {
		return nil, log.Err("failed to get wcag definitions", err, "date", date)
	}
	return definitions, nil
}

func (r *catalogueRepository) GetWcagDefinition(ctx context.Context, id string) (*WcagDefinition, error) {
	log := r.log.Function("GetWcagDefinition")

	var definition WcagDefinition
	if err := r.getDB(ctx).First(&definition, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get wcag definition", err, "id", id)
	}
	return &definition, nil
}

func (r *catalogueRepository) CreateWcagDefinition(ctx context.Context, definition *WcagDefinition) error {
	log := r.log.Function("CreateWcagDefinition")

	if err := r.getDB(ctx).Create(definition).Error; err != nil {
		return log.Err("failed to create wcag definition", err, "name", definition.Name)
	}
	return nil
}

func (r *catalogueRepository) UpdateWcagDefinition(ctx context.Context, definition *WcagDefinition, expectedVersion int) error {
	log := r.log.Function("UpdateWcagDefinition")

	result := r.getDB(ctx).Model(&WcagDefinition{}).
		Where("id = ? AND version = ?", definition.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(definition)
	if result.Error != nil {
		return log.Err("failed to update wcag definition", result.Error, "id", definition.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *catalogueRepository) GetStatementChecksValidAt(ctx context.Context, date time.Time) ([]*StatementCheck, error) {
	log := r.log.Function("GetStatementChecksValidAt")

	var checks []*StatementCheck
	if err := r.getDB(ctx).
		Where("(date_start IS NULL OR date_start <= ?) AND (date_end IS NULL OR date_end >= ?)", date, date).
		Order("type, position").
		Find(&checks).Error; err != nil {
		return nil, log.Err("failed to get statement checks", err, "date", date)
	}
	return checks, nil
}

func (r *catalogueRepository) CreateStatementCheck(ctx context.Context, check *StatementCheck) error {
	log := r.log.Function("CreateStatementCheck")

	if err := r.getDB(ctx).Create(check).Error; err != nil {
		return log.Err("failed to create statement check", err, "label", check.Label)
	}
	return nil
}

func (r *catalogueRepository) UpdateStatementCheck(ctx context.Context, check *StatementCheck, expectedVersion int) error {
	log := r.log.Function("UpdateStatementCheck")

	result := r.getDB(ctx).Model(&StatementCheck{}).
		Where("id = ? AND version = ?", check.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(check)
	if result.Error != nil {
		return log.Err("failed to update statement check", result.Error, "id", check.ID)
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}
