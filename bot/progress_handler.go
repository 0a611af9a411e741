package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ai-planner-bot/planner"
)

// ProgressHandler implements CommandHandler for the /progress command.
type ProgressHandler struct {
	tasks  *planner.TaskManager
	sender messageSender
	logger *zap.Logger
}

// NewProgressHandler creates a new ProgressHandler instance
func NewProgressHandler(tasks *planner.TaskManager, sender messageSender, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		tasks:  tasks,
		sender: sender,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *ProgressHandler) Command() string {
	return "progress"
}

// Handle sends overall progress statistics and a weekly breakdown.
func (h *ProgressHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	stats, err := h.tasks.ProgressStats(cmdCtx.UserID)
	if err != nil {
		if errors.Is(err, planner.ErrNoPlan) {
			return h.sender.SendMessage(ctx, cmdCtx.ChatID, noPlanMessage)
		}
		return fmt.Errorf("failed to get progress stats: %w", err)
	}

	week, err := h.tasks.WeeklySummary(cmdCtx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get weekly summary: %w", err)
	}

	h.logger.Info("sending progress", zap.Int64("user_id", cmdCtx.UserID))
	return h.sender.SendMessage(ctx, cmdCtx.ChatID, formatProgress(stats, week))
}

func formatProgress(stats *planner.ProgressStats, week []planner.DaySummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 Твой прогресс\n\n")
	fmt.Fprintf(&sb, "📅 День %d из %d (%.1f%%)\n", stats.DayNumber, planner.PlanDays, stats.ProgressPercent)
	fmt.Fprintf(&sb, "✅ Выполнено задач: %d\n", stats.TotalTasksCompleted)
	fmt.Fprintf(&sb, "📆 Активных дней: %d\n", stats.DaysActive)
	fmt.Fprintf(&sb, "🔥 Текущая серия: %d\n", stats.CurrentStreak)
	fmt.Fprintf(&sb, "📈 За неделю: %.0f%%\n", stats.RecentCompletionRate)

	sb.WriteString("\nПоследние 7 дней:\n")
	for _, day := range week {
		if day.TotalTasks == 0 {
			fmt.Fprintf(&sb, "%s %s: -\n", day.Date, shortWeekday(day.Weekday))
			continue
		}
		fmt.Fprintf(&sb, "%s %s: %d/%d (%.0f%%)\n",
			day.Date, shortWeekday(day.Weekday), day.CompletedTasks, day.TotalTasks, day.CompletionRate)
	}

	return sb.String()
}

var weekdayNames = map[string]string{
	"Monday":    "Пн",
	"Tuesday":   "Вт",
	"Wednesday": "Ср",
	"Thursday":  "Чт",
	"Friday":    "Пт",
	"Saturday":  "Сб",
	"Sunday":    "Вс",
}

func shortWeekday(weekday string) string {
	if short, ok := weekdayNames[weekday]; ok {
		return short
	}
	return weekday
}
