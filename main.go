package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/bp-assistant/internal/bot"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/handlers"
	"github.com/vladimiradmaev/bp-assistant/internal/bot/state"
	"github.com/vladimiradmaev/bp-assistant/internal/config"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
	"github.com/vladimiradmaev/bp-assistant/internal/services"
)

func main() {
	// .env is optional, environment variables may be set directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Starting BP Assistant Bot...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established and migrations completed")

	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize image storage: %v", err)
	}

	aiService, err := services.NewAIService(cfg.GeminiAPIKey, cfg.OpenAIAPIKey)
	if err != nil {
		logger.Fatalf("Failed to initialize AI service: %v", err)
	}
	logger.Infof("AI provider: %s", aiService.Provider())

	userService := services.NewUserService(db)
	readingService := services.NewReadingService(db)
	captureService := services.NewCaptureService(storageService, aiService, readingService)
	profileService := services.NewProfileService(db)
	reminderService := services.NewReminderService(db)
	logger.Info("Services initialized successfully")

	var stateManager state.StateManager
	if cfg.Redis.Enabled {
		redisManager, err := state.NewRedisManager(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisManager.Close()
		stateManager = redisManager
		logger.Info("Using Redis state manager")
	} else {
		stateManager = state.NewManager()
		logger.Info("Using in-memory state manager")
	}

	deps := handlers.Dependencies{
		UserService: userService,
		CaptureSvc:  captureService,
		ReadingSvc:  readingService,
		ProfileSvc:  profileService,
		ReminderSvc: reminderService,
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, deps, stateManager)
	if err != nil {
		logger.Fatalf("Failed to create bot: %v", err)
	}

	if err := reminderService.Start(ctx, telegramBot); err != nil {
		logger.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer reminderService.Stop()

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	if err := telegramBot.Start(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Bot stopped with error: %v", err)
	}
	logger.Info("Shutdown complete")
}
