package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EchoHandler implements MessageHandler for plain text messages. It
// sends the received text back unchanged. Registered last so stateful
// handlers (onboarding) get the message first.
type EchoHandler struct {
	sender messageSender
	logger *zap.Logger
}

// NewEchoHandler creates a new EchoHandler instance
func NewEchoHandler(sender messageSender, logger *zap.Logger) *EchoHandler {
	return &EchoHandler{
		sender: sender,
		logger: logger,
	}
}

// Match accepts every text message that reaches it.
func (h *EchoHandler) Match(cmdCtx *CommandContext) bool {
	return cmdCtx.Text != ""
}

// Handle echoes the message text back to the chat byte for byte.
func (h *EchoHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Info("echoing message",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.Int("length", len(cmdCtx.Text)))

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.sender.SendMessage(timeoutCtx, cmdCtx.ChatID, cmdCtx.Text); err != nil {
		return fmt.Errorf("failed to echo message: %w", err)
	}

	return nil
}
