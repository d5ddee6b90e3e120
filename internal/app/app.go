package app

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"time"

	"dentwork_backend/database"
	"dentwork_backend/internal/auth"
	"dentwork_backend/internal/config"
	"dentwork_backend/internal/email"
	"dentwork_backend/internal/handlers"
	"dentwork_backend/internal/logger"
	"dentwork_backend/internal/middleware"
	"dentwork_backend/internal/models"
	"dentwork_backend/internal/repositories"
	"dentwork_backend/internal/routes"
	"dentwork_backend/internal/services"
	"dentwork_backend/internal/validator"
	"dentwork_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("AutoMigrate failed", "error", err)
	}

	if err := seedFirstAdmin(repositories.NewAccountRepository(gormDB), cfg); err != nil {
		// Без первого админа сервер не запускаем
		logger.Fatal("Failed to seed first admin", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ginRouter := SetupRouter(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает все зависимости и возвращает готовый *gin.Engine.
// ctx управляет временем жизни фоновых воркеров.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	mailQueue := setupMail(ctx, cfg)

	accountRepo := repositories.NewAccountRepository(gormDB)
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	authService := services.NewAuthService(accountRepo, tokens, mailQueue, cfg.App.BaseURL)

	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	appHandlers := &handlers.AppHandlers{
		AuthHandler: handlers.NewAuthHandler(baseHandler, authService),
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestIDMiddleware())
	ginRouter.Use(middleware.LoggingMiddleware())
	ginRouter.Use(middleware.CORSMiddleware())

	routes.RegisterRoutes(ginRouter, appHandlers, middleware.AuthMiddleware(tokens))

	return ginRouter
}

// setupMail поднимает SMTP провайдер и фоновую очередь отправки.
// Доступность SMTP проверяется асинхронно: проблемы с почтой не должны
// мешать старту сервера и обработке запросов.
func setupMail(ctx context.Context, cfg *config.Config) services.MailQueue {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, password reset emails will not be sent")
		return nil
	}

	provider, err := email.NewSMTPProvider(&email.Config{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		logger.Fatal("Failed to initialize email provider", "error", err)
	}

	go func() {
		if err := provider.Verify(); err != nil {
			logger.Warn("SMTP verification failed", "error", err.Error())
		} else {
			logger.Info("SMTP connection verified")
		}
	}()

	mailWorker := workers.NewMailWorker(provider, 64)
	mailWorker.Start(ctx)
	return mailWorker
}

// seedFirstAdmin создает первого администратора из конфига.
// Админы исключены из self-service регистрации: первый аккаунт
// появляется только так, остальных создают уже существующие админы.
func seedFirstAdmin(repo repositories.AccountRepository, cfg *config.Config) error {
	adminEmail := cfg.FirstAdmin.Email
	adminPassword := cfg.FirstAdmin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("first_admin email or password is not set. Skipping admin seeding.")
		return nil
	}

	_, err := repo.FindByEmail(models.RoleAdmin, adminEmail)
	if err == nil {
		logger.Info("Admin already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		return fmt.Errorf("failed to check for admin: %w", err)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.Admin{
		Email:        adminEmail,
		PasswordHash: hash,
		RoleLabel:    "Admin",
	}

	if err := repo.CreateAdmin(newAdmin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Info("First admin created", "email", adminEmail)
	return nil
}
