package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ai-planner-bot/ai"
	"ai-planner-bot/bot"
	"ai-planner-bot/config"
	"ai-planner-bot/logging"
	"ai-planner-bot/planner"
	"ai-planner-bot/storage"
)

func main() {
	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("api_id", cfg.APIID),
		zap.String("api_hash", maskString(cfg.APIHash)),
		zap.String("bot_token", maskString(cfg.Token)),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_fake_ai", cfg.UseFakeAI))

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	backend := ai.New(cfg, logger)
	tasks := planner.NewTaskManager(store)
	reminders := planner.NewReminderGenerator()

	tgBot, err := bot.NewTelegramBot(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	router := tgBot.Router()
	router.SetErrorHandler(bot.NewErrorHandler(logger, tgBot))

	onboarding := bot.NewOnboardingManager(store, tgBot, logger)

	// Command handlers.
	router.RegisterHandler(bot.NewStartHandler(tgBot, logger))
	router.RegisterHandler(bot.NewHelpHandler(tgBot, logger))
	router.RegisterHandler(bot.NewOnboardingHandler(onboarding))
	router.RegisterHandler(bot.NewCancelHandler(onboarding))
	router.RegisterHandler(bot.NewProfileHandler(store, tgBot, logger))
	router.RegisterHandler(bot.NewPlanHandler(store, backend, tgBot, logger))
	router.RegisterHandler(bot.NewTasksHandler(store, tasks, backend, tgBot, logger))
	router.RegisterHandler(bot.NewDoneHandler(store, tasks, reminders, tgBot, logger))
	router.RegisterHandler(bot.NewProgressHandler(tasks, tgBot, logger))

	// Plain-text handlers: the onboarding dialog claims messages for
	// users mid-dialog, everything else is echoed back.
	router.RegisterMessageHandler(onboarding)
	router.RegisterMessageHandler(bot.NewEchoHandler(tgBot, logger))

	if err := tgBot.Start(); err != nil {
		logger.Fatal("failed to start bot", zap.Error(err))
	}

	scheduler := bot.NewReminderScheduler(store, tasks, backend, tgBot, logger)
	scheduler.Start()

	logger.Info("bot is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	scheduler.Stop()
	if err := tgBot.Stop(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}

// maskString masks sensitive information for logging
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
