package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ai-planner-bot/ai"
	"ai-planner-bot/planner"
	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

// noPlanMessage is the reply when a user has no plan yet.
const noPlanMessage = "Сначала создай план с помощью /plan"

// TasksHandler implements CommandHandler for the /tasks command.
type TasksHandler struct {
	store   *storage.Store
	tasks   *planner.TaskManager
	backend ai.Interface
	sender  messageSender
	logger  *zap.Logger
}

// NewTasksHandler creates a new TasksHandler instance
func NewTasksHandler(store *storage.Store, tasks *planner.TaskManager, backend ai.Interface, sender messageSender, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{
		store:   store,
		tasks:   tasks,
		backend: backend,
		sender:  sender,
		logger:  logger,
	}
}

// Command returns the command string this handler processes
func (h *TasksHandler) Command() string {
	return "tasks"
}

// Handle sends today's task list for the user's plan.
func (h *TasksHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	daily, err := h.tasks.DailyTasks(ctx, cmdCtx.UserID, h.backend)
	if err != nil {
		if errors.Is(err, planner.ErrNoPlan) {
			return h.sender.SendMessage(ctx, cmdCtx.ChatID, noPlanMessage)
		}
		return fmt.Errorf("failed to get daily tasks: %w", err)
	}

	h.logger.Info("sending daily tasks",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.Int("day", daily.DayNumber))

	st := style.Default()
	if rec, err := h.store.LoadUser(cmdCtx.UserID); err == nil {
		st = rec.CommunicationStyle
	}

	return h.sender.SendMessage(ctx, cmdCtx.ChatID, formatDailyTasks(daily, st))
}

func formatDailyTasks(daily *planner.DailyTasks, st style.Style) string {
	var sb strings.Builder

	if st.Language == style.LanguageKazakh {
		fmt.Fprintf(&sb, "📅 %d-күн / %d (жыл %d)\n\n", daily.DayNumber, planner.PlanDays, daily.Year)
	} else {
		fmt.Fprintf(&sb, "📅 День %d из %d (год %d)\n\n", daily.DayNumber, planner.PlanDays, daily.Year)
	}

	for _, task := range daily.Tasks {
		mark := "○"
		if task.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%d. %s %s\n", task.Number, mark, task.Text)
	}

	if st.Language == style.LanguageKazakh {
		fmt.Fprintf(&sb, "\nОрындалды: %d/%d\nТапсырманы белгілеу: /done <нөмір>", daily.CompletedCount, daily.TotalTasks)
	} else {
		fmt.Fprintf(&sb, "\nВыполнено: %d/%d\nОтметить задачу: /done <номер>", daily.CompletedCount, daily.TotalTasks)
	}

	return sb.String()
}
