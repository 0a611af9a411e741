package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ai-planner-bot/planner"
	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

// DoneHandler implements CommandHandler for the /done command.
type DoneHandler struct {
	store     *storage.Store
	tasks     *planner.TaskManager
	reminders *planner.ReminderGenerator
	sender    messageSender
	logger    *zap.Logger
}

// NewDoneHandler creates a new DoneHandler instance
func NewDoneHandler(store *storage.Store, tasks *planner.TaskManager, reminders *planner.ReminderGenerator, sender messageSender, logger *zap.Logger) *DoneHandler {
	return &DoneHandler{
		store:     store,
		tasks:     tasks,
		reminders: reminders,
		sender:    sender,
		logger:    logger,
	}
}

// Command returns the command string this handler processes
func (h *DoneHandler) Command() string {
	return "done"
}

// Handle marks one of today's tasks as completed.
func (h *DoneHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	number, err := strconv.Atoi(strings.TrimSpace(cmdCtx.Args))
	if err != nil {
		return h.sender.SendMessage(ctx, cmdCtx.ChatID,
			fmt.Sprintf("Укажи номер задачи: /done <1-%d>", planner.TasksPerDay))
	}

	taskID, err := h.tasks.MarkTaskComplete(cmdCtx.UserID, number)
	if err != nil {
		if errors.Is(err, planner.ErrNoPlan) {
			return h.sender.SendMessage(ctx, cmdCtx.ChatID, noPlanMessage)
		}
		return h.sender.SendMessage(ctx, cmdCtx.ChatID,
			fmt.Sprintf("Номер задачи должен быть от 1 до %d", planner.TasksPerDay))
	}

	h.logger.Info("task completed",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.String("task_id", taskID))

	rec, err := h.store.LoadUser(cmdCtx.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user after completion: %w", err)
	}

	streak := rec.Stats.CurrentStreak
	reply := fmt.Sprintf("✅ Задача %d отмечена выполненной!", number)
	if streak > 1 {
		reply += fmt.Sprintf("\n🔥 Серия: %d дней подряд", streak)
	}

	if err := h.sender.SendMessage(ctx, cmdCtx.ChatID, reply); err != nil {
		return err
	}

	// Milestone streaks get a separate celebration message.
	st := rec.CommunicationStyle
	if st.Language == "" {
		st = style.Default()
	}
	if milestone := h.reminders.StreakMilestone(rec.Name, st, streak); milestone != "" {
		return h.sender.SendMessage(ctx, cmdCtx.ChatID, milestone)
	}

	return nil
}
