package ai

import (
	"context"

	"go.uber.org/zap"

	"ai-planner-bot/config"
	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

// Interface is the contract every AI backend fulfills. The bot only
// talks to this interface, so backends can be swapped through config.
type Interface interface {
	// GenerateResponse produces a conversational reply to a free-form
	// message, adapted to the user's communication style.
	GenerateResponse(ctx context.Context, userID int64, prompt string, st style.Style) (string, error)

	// GeneratePlan builds a 5-year plan from the user's onboarding data.
	GeneratePlan(ctx context.Context, rec *storage.UserRecord) (*storage.Plan, error)

	// GenerateDailyTasks produces the task list for one day of a plan.
	GenerateDailyTasks(ctx context.Context, plan *storage.Plan, day int) ([]string, error)

	// ModelName identifies the backend in logs and the cost ledger.
	ModelName() string
}

// New selects a backend from config. The fake backend is the default
// for development; the Claude backend is used when USE_FAKE_AI=false
// and falls back to the fake one if it cannot be initialized.
func New(cfg *config.BotConfig, logger *zap.Logger) Interface {
	if cfg.UseFakeAI {
		logger.Info("using fake AI backend")
		return NewFakeAI()
	}

	claude, err := NewClaude(cfg, logger)
	if err != nil {
		logger.Warn("failed to initialize Claude backend, falling back to fake AI", zap.Error(err))
		return NewFakeAI()
	}

	logger.Info("using Claude backend", zap.String("model", claude.ModelName()))
	return claude
}
