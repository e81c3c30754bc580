package userController

import (
	"context"
	"time"

	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionExpiry = 12 * time.Hour

type UserController struct {
	db       database.DB
	userRepo repositories.UserRepository
	config   config.Config
	log      logger.Logger
}

func New(db database.DB, userRepo repositories.UserRepository, config config.Config) *UserController {
	return &UserController{
		db:       db,
		userRepo: userRepo,
		config:   config,
		log:      logger.New("UserController"),
	}
}

// Login verifies the password and opens a cache-backed session. Only
// emails on the allowed domains may sign in.
func (uc *UserController) Login(ctx context.Context, email, password string) (*User, string, error) {
	log := uc.log.Function("Login")

	if !uc.config.EmailAllowed(email) {
		return nil, "", log.Error("email domain not allowed", "email", email)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", log.Err("login failed", err, "email", email)
	}
	if !user.Active {
		return nil, "", log.Error("account is deactivated", "email", email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", log.Error("invalid credentials", "email", email)
	}

	sessionID := uuid.NewString()
	err = database.NewCacheBuilder(uc.db.Cache.General, sessionKey(sessionID)).
		WithStruct(user.ID).
		WithTTL(sessionExpiry).
		WithContext(ctx).
		Set()
	if err != nil {
		return nil, "", log.Err("failed to store session", err)
	}

	return user, sessionID, nil
}

// Authenticate resolves a session ID back to its user.
func (uc *UserController) Authenticate(ctx context.Context, sessionID string) (*User, error) {
	log := uc.log.Function("Authenticate")

	var userID string
	found, err := database.NewCacheBuilder(uc.db.Cache.General, sessionKey(sessionID)).
		WithContext(ctx).
		Get(&userID)
	if err != nil || !found {
		return nil, log.Error("session not found")
	}

	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserController) Logout(sessionID string) error {
	return database.NewCacheBuilder(uc.db.Cache.General, sessionKey(sessionID)).Delete()
}

func (uc *UserController) ListActive(ctx context.Context) ([]*User, error) {
	return uc.userRepo.GetActive(ctx)
}

func (uc *UserController) ListQAAuditors(ctx context.Context) ([]*User, error) {
	return uc.userRepo.GetQAAuditors(ctx)
}

// HashPassword is used by seeding and account administration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
