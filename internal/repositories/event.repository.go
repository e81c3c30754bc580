package repositories

import (
	"context"

	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/services"

	"gorm.io/gorm"
)

// EventRepository appends to and reads the entity audit log. Rows are
// insert-only; there is no update or delete path.
type EventRepository interface {
	Append(ctx context.Context, event *EventHistory) error
	GetForTarget(ctx context.Context, contentType, objectID string) ([]*EventHistory, error)
	GetForCase(ctx context.Context, caseID string) ([]*EventHistory, error)
}

type eventRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEvent(db database.DB) EventRepository {
	return &eventRepository{
		db:  db,
		log: logger.New("eventRepository"),
	}
}

func (r *eventRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *eventRepository) Append(ctx context.Context, event *EventHistory) error {
	log := r.log.Function("Append")

	if err := r.getDB(ctx).Create(event).Error; err != nil {
		return log.Err("failed to append event history", err,
			"contentType", event.ContentType, "objectID", event.ObjectID)
	}
	return nil
}

func (r *eventRepository) GetForTarget(ctx context.Context, contentType, objectID string) ([]*EventHistory, error) {
	log := r.log.Function("GetForTarget")

	var events []*EventHistory
	if err := r.getDB(ctx).
		Preload("CreatedBy").
		Where("content_type = ? AND object_id = ?", contentType, objectID).
		Order("created_at").
		Find(&events).Error; err != nil {
		return nil, log.Err("failed to get event history for target", err,
			"contentType", contentType, "objectID", objectID)
	}
	return events, nil
}

func (r *eventRepository) GetForCase(ctx context.Context, caseID string) ([]*EventHistory, error) {
	log := r.log.Function("GetForCase")

	var events []*EventHistory
	if err := r.getDB(ctx).
		Preload("CreatedBy").
		Where("case_id = ?", caseID).
		Order("created_at").
		Find(&events).Error; err != nil {
		return nil, log.Err("failed to get event history for case", err, "caseID", caseID)
	}
	return events, nil
}
