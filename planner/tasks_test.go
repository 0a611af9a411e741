package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ai-planner-bot/storage"
)

// stubGenerator is a test TaskGenerator returning fixed task texts.
type stubGenerator struct {
	tasks []string
	err   error
	calls int
}

func (s *stubGenerator) GenerateDailyTasks(ctx context.Context, plan *storage.Plan, day int) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.tasks, nil
}

func testPlan() *storage.Plan {
	return &storage.Plan{
		UserName: "Aliya",
		Goal:     "карьерный рост",
		Language: "russian",
		Years: []storage.PlanYear{
			{Year: 1, Title: "Фундамент", Milestones: []string{"Начало", "Обучение"}},
		},
		CreatedAt: time.Now(),
	}
}

func newManagerWithPlan(t *testing.T, userID int64) (*TaskManager, *storage.Store, time.Time) {
	t.Helper()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -2) // day 3 of the plan

	rec := &storage.UserRecord{
		UserID:        userID,
		Name:          "Aliya",
		Plan:          testPlan(),
		PlanCreatedAt: &created,
	}
	if err := store.SaveUser(rec); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	manager := NewTaskManager(store)
	manager.now = func() time.Time { return now }
	return manager, store, now
}

func TestCurrentDayNumber(t *testing.T) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		created time.Time
		now     time.Time
		want    int
	}{
		{name: "creation day is day 1", created: base, now: base, want: 1},
		{name: "next day is day 2", created: base, now: base.AddDate(0, 0, 1), want: 2},
		{name: "clamped to plan length", created: base, now: base.AddDate(10, 0, 0), want: PlanDays},
		{name: "clock skew clamps to day 1", created: base, now: base.AddDate(0, 0, -3), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentDayNumber(tt.created, tt.now); got != tt.want {
				t.Errorf("expected day %d, got %d", tt.want, got)
			}
		})
	}
}

func TestYearForDay(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{day: 1, want: 1},
		{day: 365, want: 1},
		{day: 366, want: 2},
		{day: 1825, want: 5},
	}

	for _, tt := range tests {
		if got := YearForDay(tt.day); got != tt.want {
			t.Errorf("YearForDay(%d): expected %d, got %d", tt.day, tt.want, got)
		}
	}
}

func TestTaskManager_DailyTasks(t *testing.T) {
	manager, _, now := newManagerWithPlan(t, 42)

	gen := &stubGenerator{tasks: []string{"задача 1", "задача 2", "задача 3", "задача 4"}}

	tasks, err := manager.DailyTasks(context.Background(), 42, gen)
	if err != nil {
		t.Fatalf("failed to get daily tasks: %v", err)
	}

	if tasks.DayNumber != 3 {
		t.Errorf("expected day 3, got: %d", tasks.DayNumber)
	}
	if tasks.Year != 1 {
		t.Errorf("expected year 1, got: %d", tasks.Year)
	}
	if tasks.TotalTasks != 4 {
		t.Errorf("expected 4 tasks, got: %d", tasks.TotalTasks)
	}
	if tasks.CompletedCount != 0 {
		t.Errorf("expected no completed tasks, got: %d", tasks.CompletedCount)
	}

	wantID := fmt.Sprintf("%s_1", now.Format("2006-01-02"))
	if tasks.Tasks[0].ID != wantID {
		t.Errorf("expected first task id %q, got %q", wantID, tasks.Tasks[0].ID)
	}
	if gen.calls != 1 {
		t.Errorf("expected one generator call, got: %d", gen.calls)
	}
}

func TestTaskManager_DailyTasks_NoPlan(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	manager := NewTaskManager(store)

	// Unknown user.
	if _, err := manager.DailyTasks(context.Background(), 1, &stubGenerator{}); !errors.Is(err, ErrNoPlan) {
		t.Errorf("expected ErrNoPlan for unknown user, got: %v", err)
	}

	// Known user without a plan.
	if err := store.SaveUser(&storage.UserRecord{UserID: 2}); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}
	if _, err := manager.DailyTasks(context.Background(), 2, &stubGenerator{}); !errors.Is(err, ErrNoPlan) {
		t.Errorf("expected ErrNoPlan for user without plan, got: %v", err)
	}
}

func TestTaskManager_MarkTaskComplete(t *testing.T) {
	manager, store, now := newManagerWithPlan(t, 42)

	taskID, err := manager.MarkTaskComplete(42, 2)
	if err != nil {
		t.Fatalf("failed to mark task complete: %v", err)
	}

	wantID := fmt.Sprintf("%s_2", now.Format("2006-01-02"))
	if taskID != wantID {
		t.Errorf("expected task id %q, got %q", wantID, taskID)
	}

	rec, err := store.LoadUser(42)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if !rec.DailyTasks[wantID].Completed {
		t.Error("expected task to be marked completed in storage")
	}
	if rec.Stats.CurrentStreak != 1 {
		t.Errorf("expected streak of 1, got: %d", rec.Stats.CurrentStreak)
	}
	if rec.Stats.BestStreak != 1 {
		t.Errorf("expected best streak of 1, got: %d", rec.Stats.BestStreak)
	}

	// Completion survives a re-request of the day's tasks.
	gen := &stubGenerator{tasks: []string{"a", "b", "c", "d"}}
	tasks, err := manager.DailyTasks(context.Background(), 42, gen)
	if err != nil {
		t.Fatalf("failed to get daily tasks: %v", err)
	}
	if tasks.CompletedCount != 1 {
		t.Errorf("expected 1 completed task, got: %d", tasks.CompletedCount)
	}
	if !tasks.Tasks[1].Completed {
		t.Error("expected task 2 to stay completed")
	}
}

func TestTaskManager_MarkTaskComplete_InvalidNumber(t *testing.T) {
	manager, _, _ := newManagerWithPlan(t, 42)

	for _, n := range []int{0, -1, TasksPerDay + 1} {
		if _, err := manager.MarkTaskComplete(42, n); err == nil {
			t.Errorf("expected error for task number %d", n)
		}
	}
}

func TestTaskManager_ProgressStats(t *testing.T) {
	manager, store, now := newManagerWithPlan(t, 42)

	// Complete tasks today and yesterday for a 2-day streak.
	rec, err := store.LoadUser(42)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	yesterday := now.AddDate(0, 0, -1)
	rec.DailyTasks = map[string]storage.TaskStatus{
		now.Format("2006-01-02") + "_1":       {Completed: true, CompletedAt: &now},
		yesterday.Format("2006-01-02") + "_1": {Completed: true, CompletedAt: &yesterday},
		yesterday.Format("2006-01-02") + "_2": {Completed: false},
	}
	if err := store.SaveUser(rec); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	stats, err := manager.ProgressStats(42)
	if err != nil {
		t.Fatalf("failed to get progress stats: %v", err)
	}

	if stats.TotalTasksCompleted != 2 {
		t.Errorf("expected 2 completed tasks, got: %d", stats.TotalTasksCompleted)
	}
	if stats.DaysActive != 2 {
		t.Errorf("expected 2 active days, got: %d", stats.DaysActive)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("expected streak of 2, got: %d", stats.CurrentStreak)
	}
	if stats.DayNumber != 3 {
		t.Errorf("expected day 3, got: %d", stats.DayNumber)
	}

	// 2 of 3 recorded tasks completed in the last 7 days.
	want := float64(2) / 3 * 100
	if diff := stats.RecentCompletionRate - want; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected completion rate %.2f, got: %.2f", want, stats.RecentCompletionRate)
	}
}

func TestTaskManager_WeeklySummary(t *testing.T) {
	manager, store, now := newManagerWithPlan(t, 42)

	rec, err := store.LoadUser(42)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	rec.DailyTasks = map[string]storage.TaskStatus{
		now.Format("2006-01-02") + "_1": {Completed: true, CompletedAt: &now},
		now.Format("2006-01-02") + "_2": {Completed: false},
	}
	if err := store.SaveUser(rec); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	summary, err := manager.WeeklySummary(42)
	if err != nil {
		t.Fatalf("failed to get weekly summary: %v", err)
	}

	if len(summary) != 7 {
		t.Fatalf("expected 7 days, got: %d", len(summary))
	}

	last := summary[6]
	if last.Date != now.Format("2006-01-02") {
		t.Errorf("expected last day to be today, got: %s", last.Date)
	}
	if last.TotalTasks != 2 || last.CompletedTasks != 1 {
		t.Errorf("expected 1/2 tasks today, got: %d/%d", last.CompletedTasks, last.TotalTasks)
	}
	if last.CompletionRate != 50 {
		t.Errorf("expected 50%% completion, got: %.1f", last.CompletionRate)
	}

	// Days without tasks report zero.
	if summary[0].TotalTasks != 0 || summary[0].CompletionRate != 0 {
		t.Errorf("expected empty first day, got: %+v", summary[0])
	}
}
