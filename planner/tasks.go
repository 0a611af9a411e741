package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-planner-bot/storage"
)

const (
	// PlanDays is the length of a full plan in days (5 years).
	PlanDays = 1825
	// DaysPerYear is used to map a day number to its plan year.
	DaysPerYear = 365
	// TasksPerDay is how many tasks a user gets each day.
	TasksPerDay = 4
)

// ErrNoPlan is returned when an operation needs a plan the user has not
// created yet.
var ErrNoPlan = errors.New("no plan created yet")

// TaskGenerator produces the day's tasks from a plan. Satisfied by the
// ai backends.
type TaskGenerator interface {
	GenerateDailyTasks(ctx context.Context, plan *storage.Plan, day int) ([]string, error)
}

// Task is one daily task with its completion state.
type Task struct {
	ID          string
	Number      int
	Text        string
	Completed   bool
	CompletedAt *time.Time
}

// DailyTasks is the materialized task list for one user and one day.
type DailyTasks struct {
	DayNumber      int
	Year           int
	Date           string
	Tasks          []Task
	TotalTasks     int
	CompletedCount int
}

// ProgressStats summarizes a user's progress through their plan.
type ProgressStats struct {
	TotalTasksCompleted  int
	DaysActive           int
	CurrentStreak        int
	DayNumber            int
	ProgressPercent      float64
	RecentCompletionRate float64
}

// DaySummary is one day of a weekly summary.
type DaySummary struct {
	Date           string
	Weekday        string
	TotalTasks     int
	CompletedTasks int
	CompletionRate float64
}

// TaskManager handles daily task materialization, completion tracking
// and progress analytics on top of the user store.
type TaskManager struct {
	store *storage.Store
	now   func() time.Time
}

// NewTaskManager creates a TaskManager backed by the given store.
func NewTaskManager(store *storage.Store) *TaskManager {
	return &TaskManager{store: store, now: time.Now}
}

// CurrentDayNumber calculates the day number within the plan, clamped to
// [1, PlanDays]. Day 1 is the day the plan was created.
func CurrentDayNumber(planCreatedAt, now time.Time) int {
	day := int(now.Sub(planCreatedAt).Hours()/24) + 1
	if day < 1 {
		day = 1
	}
	if day > PlanDays {
		day = PlanDays
	}
	return day
}

// YearForDay maps a day number to its plan year (1-5).
func YearForDay(day int) int {
	year := (day-1)/DaysPerYear + 1
	if year > 5 {
		year = 5
	}
	return year
}

// DailyTasks returns today's tasks for a user, generating them through
// gen and merging in any completion state recorded earlier today.
func (m *TaskManager) DailyTasks(ctx context.Context, userID int64, gen TaskGenerator) (*DailyTasks, error) {
	rec, err := m.store.LoadUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoPlan
		}
		return nil, err
	}
	if rec.Plan == nil {
		return nil, ErrNoPlan
	}

	now := m.now()

	// Older records may predate plan_created_at; backfill so day
	// numbering starts today.
	if rec.PlanCreatedAt == nil {
		created := now
		rec.PlanCreatedAt = &created
		if err := m.store.SaveUser(rec); err != nil {
			return nil, err
		}
	}

	day := CurrentDayNumber(*rec.PlanCreatedAt, now)

	texts, err := gen.GenerateDailyTasks(ctx, rec.Plan, day)
	if err != nil {
		return nil, fmt.Errorf("failed to generate daily tasks: %w", err)
	}

	today := now.Format("2006-01-02")
	tasks := make([]Task, 0, len(texts))
	completed := 0
	for i, text := range texts {
		id := fmt.Sprintf("%s_%d", today, i+1)
		status := rec.DailyTasks[id]
		if status.Completed {
			completed++
		}
		tasks = append(tasks, Task{
			ID:          id,
			Number:      i + 1,
			Text:        text,
			Completed:   status.Completed,
			CompletedAt: status.CompletedAt,
		})
	}

	return &DailyTasks{
		DayNumber:      day,
		Year:           YearForDay(day),
		Date:           today,
		Tasks:          tasks,
		TotalTasks:     len(tasks),
		CompletedCount: completed,
	}, nil
}

// MarkTaskComplete marks today's task with the given number as done and
// updates the user's streak stats.
func (m *TaskManager) MarkTaskComplete(userID int64, taskNumber int) (string, error) {
	if taskNumber < 1 || taskNumber > TasksPerDay {
		return "", fmt.Errorf("task number must be between 1 and %d, got: %d", TasksPerDay, taskNumber)
	}

	rec, err := m.store.LoadUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoPlan
		}
		return "", err
	}
	if rec.Plan == nil {
		return "", ErrNoPlan
	}

	now := m.now()
	taskID := fmt.Sprintf("%s_%d", now.Format("2006-01-02"), taskNumber)

	if rec.DailyTasks == nil {
		rec.DailyTasks = make(map[string]storage.TaskStatus)
	}
	rec.DailyTasks[taskID] = storage.TaskStatus{Completed: true, CompletedAt: &now}

	m.updateStreak(rec, now)

	if err := m.store.SaveUser(rec); err != nil {
		return "", err
	}

	return taskID, nil
}

// ProgressStats returns streak and completion statistics for a user.
func (m *TaskManager) ProgressStats(userID int64) (*ProgressStats, error) {
	rec, err := m.store.LoadUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoPlan
		}
		return nil, err
	}
	if rec.Plan == nil {
		return nil, ErrNoPlan
	}

	now := m.now()

	totalCompleted := 0
	completedDays := make(map[string]bool)
	for id, status := range rec.DailyTasks {
		if !status.Completed {
			continue
		}
		totalCompleted++
		completedDays[taskDate(id)] = true
	}

	dayNumber := 0
	progress := 0.0
	if rec.PlanCreatedAt != nil {
		dayNumber = CurrentDayNumber(*rec.PlanCreatedAt, now)
		progress = float64(dayNumber) / float64(PlanDays) * 100
	}

	return &ProgressStats{
		TotalTasksCompleted:  totalCompleted,
		DaysActive:           len(completedDays),
		CurrentStreak:        calculateStreak(rec, now),
		DayNumber:            dayNumber,
		ProgressPercent:      progress,
		RecentCompletionRate: recentCompletionRate(rec, now),
	}, nil
}

// WeeklySummary returns a per-day breakdown of the last 7 days.
func (m *TaskManager) WeeklySummary(userID int64) ([]DaySummary, error) {
	rec, err := m.store.LoadUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoPlan
		}
		return nil, err
	}
	if rec.Plan == nil {
		return nil, ErrNoPlan
	}

	now := m.now()
	summary := make([]DaySummary, 0, 7)

	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		dateStr := date.Format("2006-01-02")

		total := 0
		completed := 0
		for id, status := range rec.DailyTasks {
			if taskDate(id) != dateStr {
				continue
			}
			total++
			if status.Completed {
				completed++
			}
		}

		rate := 0.0
		if total > 0 {
			rate = float64(completed) / float64(total) * 100
		}

		summary = append(summary, DaySummary{
			Date:           dateStr,
			Weekday:        date.Weekday().String(),
			TotalTasks:     total,
			CompletedTasks: completed,
			CompletionRate: rate,
		})
	}

	return summary, nil
}

func (m *TaskManager) updateStreak(rec *storage.UserRecord, now time.Time) {
	streak := calculateStreak(rec, now)
	rec.Stats.CurrentStreak = streak
	rec.Stats.LastUpdated = now
	if streak > rec.Stats.BestStreak {
		rec.Stats.BestStreak = streak
	}
}

// calculateStreak counts consecutive days ending today that have at
// least one completed task.
func calculateStreak(rec *storage.UserRecord, now time.Time) int {
	completedDates := make(map[string]bool)
	for id, status := range rec.DailyTasks {
		if status.Completed {
			completedDates[taskDate(id)] = true
		}
	}

	streak := 0
	current := now
	for completedDates[current.Format("2006-01-02")] {
		streak++
		current = current.AddDate(0, 0, -1)
	}
	return streak
}

func recentCompletionRate(rec *storage.UserRecord, now time.Time) float64 {
	start := now.AddDate(0, 0, -6).Format("2006-01-02")
	end := now.Format("2006-01-02")

	total := 0
	completed := 0
	for id, status := range rec.DailyTasks {
		date := taskDate(id)
		if date < start || date > end {
			continue
		}
		total++
		if status.Completed {
			completed++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// taskDate extracts the "YYYY-MM-DD" prefix from a task id.
func taskDate(taskID string) string {
	if len(taskID) < 10 {
		return taskID
	}
	return taskID[:10]
}
