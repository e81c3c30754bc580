package app

import (
	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/events"
	"monitor/internal/handlers/middleware"
	"monitor/internal/logger"
	"monitor/internal/repositories"
	"monitor/internal/services"
	"monitor/internal/websockets"

	auditController "monitor/internal/controllers/audits"
	caseController "monitor/internal/controllers/cases"
	correspondenceController "monitor/internal/controllers/correspondence"
	exportController "monitor/internal/controllers/exports"
	qaController "monitor/internal/controllers/qa"
	reportController "monitor/internal/controllers/reports"
	userController "monitor/internal/controllers/users"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService  *services.TransactionService
	EventLogger         *services.EventLogger
	NotificationService *services.NotificationService

	// Repositories
	UserRepo           repositories.UserRepository
	CaseRepo           repositories.CaseRepository
	AuditRepo          repositories.AuditRepository
	CatalogueRepo      repositories.CatalogueRepository
	CorrespondenceRepo repositories.CorrespondenceRepository
	TaskRepo           repositories.TaskRepository
	EventRepo          repositories.EventRepository
	PlatformRepo       repositories.PlatformRepository

	// Controllers
	UserController           *userController.UserController
	CaseController           *caseController.CaseController
	AuditController          *auditController.AuditController
	CorrespondenceController *correspondenceController.CorrespondenceController
	QAController             *qaController.QAController
	ReportController         *reportController.ReportController
	ExportController         *exportController.ExportController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	// Initialize services
	transactionService := services.NewTransactionService(db)
	eventLogger := services.NewEventLogger(db)
	notificationService := services.NewNotificationService(eventBus)

	// Initialize repositories
	userRepo := repositories.NewUser(db)
	caseRepo := repositories.NewCase(db)
	auditRepo := repositories.NewAudit(db)
	catalogueRepo := repositories.NewCatalogue(db)
	correspondenceRepo := repositories.NewCorrespondence(db)
	taskRepo := repositories.NewTask(db)
	eventRepo := repositories.NewEvent(db)
	platformRepo := repositories.NewPlatform(db)

	// Initialize controllers with repositories and services
	userController := userController.New(db, userRepo, config)
	middleware := middleware.New(db, eventBus, config, userRepo, userController)

	caseController := caseController.New(caseRepo, userRepo, auditRepo, platformRepo, transactionService, eventLogger)
	auditController := auditController.New(auditRepo, caseRepo, catalogueRepo, platformRepo, transactionService, eventLogger)
	correspondenceController := correspondenceController.New(correspondenceRepo, caseRepo, auditRepo, transactionService, eventLogger)
	qaController := qaController.New(caseRepo, taskRepo, userRepo, transactionService, eventLogger, notificationService)
	reportController := reportController.New(platformRepo, caseRepo, auditRepo, transactionService, eventLogger)
	exportController := exportController.New(caseRepo)

	websocket, err := websockets.New(db, eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:            db,
		Config:              config,
		Middleware:          middleware,
		EventBus:            eventBus,
		Websocket:           websocket,
		TransactionService:  transactionService,
		EventLogger:         eventLogger,
		NotificationService: notificationService,

		UserRepo:           userRepo,
		CaseRepo:           caseRepo,
		AuditRepo:          auditRepo,
		CatalogueRepo:      catalogueRepo,
		CorrespondenceRepo: correspondenceRepo,
		TaskRepo:           taskRepo,
		EventRepo:          eventRepo,
		PlatformRepo:       platformRepo,

		UserController:           userController,
		CaseController:           caseController,
		AuditController:          auditController,
		CorrespondenceController: correspondenceController,
		QAController:             qaController,
		ReportController:         reportController,
		ExportController:         exportController,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config.Environment == "" {
		return log.ErrMsg("config is empty")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.TransactionService,
		a.EventLogger,
		a.NotificationService,
		a.UserRepo,
		a.CaseRepo,
		a.AuditRepo,
		a.CatalogueRepo,
		a.CorrespondenceRepo,
		a.TaskRepo,
		a.EventRepo,
		a.PlatformRepo,
		a.UserController,
		a.CaseController,
		a.AuditController,
		a.CorrespondenceController,
		a.QAController,
		a.ReportController,
		a.ExportController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
