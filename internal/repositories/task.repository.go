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

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	GetForUser(ctx context.Context, userID string) ([]*Task, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkCommentTasksRead(ctx context.Context, caseID, userID string) error

	CreateComment(ctx context.Context, comment *Comment) error
	GetComments(ctx context.Context, caseID string) ([]*Comment, error)
}

type taskRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTask(db database.DB) TaskRepository {
	return &taskRepository{
		db:  db,
		log: logger.New("taskRepository"),
	}
}

func (r *taskRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(task).Error; err != nil {
		return log.Err("failed to create task", err, "type", task.Type, "userID", task.UserID)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*Task, error) {
	log := r.log.Function("GetByID")

	var task Task
	if err := r.getDB(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get task", err, "id", id)
	}
	return &task, nil
}

func (r *taskRepository) GetForUser(ctx context.Context, userID string) ([]*Task, error) {
	log := r.log.Function("GetForUser")

	var tasks []*Task
	if err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("read, date").
		Find(&tasks).Error; err != nil {
		return nil, log.Err("failed to get tasks for user", err, "userID", userID)
	}
	return tasks, nil
}

func (r *taskRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	log := r.log.Function("CountUnread")

	var count int64
	if err := r.getDB(ctx).Model(&Task{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, log.Err("failed to count unread tasks", err, "userID", userID)
	}
	return count, nil
}

func (r *taskRepository) MarkRead(ctx context.Context, id string) error {
	log := r.log.Function("MarkRead")

	if err := r.getDB(ctx).Model(&Task{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		return log.Err("failed to mark task read", err, "id", id)
	}
	return nil
}

// MarkCommentTasksRead clears qa_comment tasks on the case owned by the
// requesting user only.
func (r *taskRepository) MarkCommentTasksRead(ctx context.Context, caseID, userID string) error {
	log := r.log.Function("MarkCommentTasksRead")

	if err := r.getDB(ctx).Model(&Task{}).
		Where("base_case_id = ? AND user_id = ? AND type = ?", caseID, userID, TaskTypeQAComment).
		Update("read", true).Error; err != nil {
		return log.Err("failed to mark comment tasks read", err, "caseID", caseID, "userID", userID)
	}
	return nil
}

func (r *taskRepository) CreateComment(ctx context.Context, comment *Comment) error {
	log := r.log.Function("CreateComment")

	if err := r.getDB(ctx).Create(comment).Error; err != nil {
		return log.Err("failed to create comment", err, "caseID", comment.CaseID)
	}
	return nil
}

func (r *taskRepository) GetComments(ctx context.Context, caseID string) ([]*Comment, error) {
	log := r.log.Function("GetComments")

	var comments []*Comment
	if err := r.getDB(ctx).
		Preload("User").
		Where("case_id = ? AND hidden = ?", caseID, false).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, log.Err("failed to get comments", err, "caseID", caseID)
	}
	return comments, nil
}
