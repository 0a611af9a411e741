package bot

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ai-planner-bot/planner"
)

func TestProgressHandler_NoPlan(t *testing.T) {
	store := newBotStore(t)
	sender := &mockSender{}
	handler := NewProgressHandler(planner.NewTaskManager(store), sender, zap.NewNop())

	if err := handler.Handle(context.Background(), textCtx(1, "/progress")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := lastMessage(t, sender); got != "Сначала создай план с помощью /plan" {
		t.Errorf("Expected no-plan message, got: %q", got)
	}
}

func TestProgressHandler_SendsStats(t *testing.T) {
	store := newBotStore(t)
	sender := &mockSender{}
	tasks := planner.NewTaskManager(store)
	handler := NewProgressHandler(tasks, sender, zap.NewNop())

	seedPlannedUser(t, store, 10)
	if _, err := tasks.MarkTaskComplete(10, 1); err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}
	if _, err := tasks.MarkTaskComplete(10, 3); err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}

	if err := handler.Handle(context.Background(), textCtx(10, "/progress")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	got := lastMessage(t, sender)
	if !strings.Contains(got, "📊 Твой прогресс") {
		t.Errorf("Expected progress header, got: %q", got)
	}
	if !strings.Contains(got, "День 1 из 1825") {
		t.Errorf("Expected day line, got: %q", got)
	}
	if !strings.Contains(got, "Выполнено задач: 2") {
		t.Errorf("Expected completed counter, got: %q", got)
	}
	if !strings.Contains(got, "Текущая серия: 1") {
		t.Errorf("Expected streak line, got: %q", got)
	}
	if !strings.Contains(got, "Последние 7 дней:") {
		t.Errorf("Expected weekly section, got: %q", got)
	}
	// Six empty days plus today.
	if strings.Count(got, ": -") != 6 {
		t.Errorf("Expected six empty days in the weekly section, got: %q", got)
	}
	if !strings.Contains(got, "2/2 (100%)") {
		t.Errorf("Expected today's completion in the weekly section, got: %q", got)
	}
}
