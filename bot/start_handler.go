package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// startMessage is the fixed welcome reply to /start.
const startMessage = "Hello, I'm your AI planner bot!"

// StartHandler implements CommandHandler for the /start command
type StartHandler struct {
	sender messageSender
	logger *zap.Logger
}

// NewStartHandler creates a new StartHandler instance
func NewStartHandler(sender messageSender, logger *zap.Logger) *StartHandler {
	return &StartHandler{
		sender: sender,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *StartHandler) Command() string {
	return "start"
}

// Handle processes the /start command and sends the welcome message
func (h *StartHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Info("processing /start",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.String("username", cmdCtx.Username))

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.sender.SendMessage(timeoutCtx, cmdCtx.ChatID, startMessage); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	return nil
}
