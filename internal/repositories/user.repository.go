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

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetActive(ctx context.Context) ([]*User, error)
	GetQAAuditors(ctx context.Context) ([]*User, error)
	Save(ctx context.Context, user *User) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUser(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "email", user.Email)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if err := r.getDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get user by id", err, "id", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	log := r.log.Function("GetByEmail")

	var user User
	if err := r.getDB(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get user by email", err, "email", email)
	}
	return &user, nil
}

func (r *userRepository) GetActive(ctx context.Context) ([]*User, error) {
	log := r.log.Function("GetActive")

	var users []*User
	if err := r.getDB(ctx).
		Where("active = ?", true).
		Order("first_name, last_name").
		Find(&users).Error; err != nil {
		return nil, log.Err("failed to get active users", err)
	}
	return users, nil
}

func (r *userRepository) GetQAAuditors(ctx context.Context) ([]*User, error) {
	log := r.log.Function("GetQAAuditors")

	var users []*User
	if err := r.getDB(ctx).
		Where("is_qa_auditor = ? AND active = ?", true, true).
		Order("first_name, last_name").
		Find(&users).Error; err != nil {
		return nil, log.Err("failed to get qa auditors", err)
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, user *User) error {
	log := r.log.Function("Save")

	if err := r.getDB(ctx).Save(user).Error; err != nil {
		return log.Err("failed to save user", err, "id", user.ID)
	}
	return nil
}
