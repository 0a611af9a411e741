package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HelpHandler implements CommandHandler for the /help command
type HelpHandler struct {
	sender messageSender
	logger *zap.Logger
}

// NewHelpHandler creates a new HelpHandler instance
func NewHelpHandler(sender messageSender, logger *zap.Logger) *HelpHandler {
	return &HelpHandler{
		sender: sender,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *HelpHandler) Command() string {
	return "help"
}

// Handle processes the /help command and sends usage information
func (h *HelpHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Info("processing /help", zap.Int64("user_id", cmdCtx.UserID))

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.sender.SendMessage(timeoutCtx, cmdCtx.ChatID, helpMessage()); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	return nil
}

func helpMessage() string {
	return "📖 Я - AI-помощник по планированию. Помогаю строить 5-летние планы развития и веду тебя к цели день за днём.\n\n" +
		"Команды:\n" +
		"/start - приветствие\n" +
		"/onboarding - создать или обновить профиль\n" +
		"/profile - посмотреть профиль\n" +
		"/plan - создать 5-летний план\n" +
		"/tasks - задачи на сегодня\n" +
		"/done <номер> - отметить задачу выполненной\n" +
		"/progress - статистика и серия\n" +
		"/cancel - отменить текущий процесс\n" +
		"/help - это сообщение\n\n" +
		"Любое другое сообщение я отправлю обратно."
}
