package bot

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ai-planner-bot/ai"
	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

func TestPlanHandler_RequiresOnboarding(t *testing.T) {
	store := newBotStore(t)
	sender := &mockSender{}
	handler := NewPlanHandler(store, ai.NewFakeAI(), sender, zap.NewNop())

	// Unknown user.
	if err := handler.Handle(context.Background(), textCtx(1, "/plan")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := lastMessage(t, sender); !strings.Contains(got, "/onboarding") {
		t.Errorf("Expected onboarding prompt, got: %q", got)
	}

	// Known user who never finished onboarding.
	if err := store.SaveUser(&storage.UserRecord{UserID: 2}); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	if err := handler.Handle(context.Background(), textCtx(2, "/plan")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := lastMessage(t, sender); !strings.Contains(got, "/onboarding") {
		t.Errorf("Expected onboarding prompt, got: %q", got)
	}
}

func TestPlanHandler_GeneratesAndSavesPlan(t *testing.T) {
	store := newBotStore(t)
	sender := &mockSender{}
	handler := NewPlanHandler(store, ai.NewFakeAI(), sender, zap.NewNop())

	rec := &storage.UserRecord{
		UserID:              10,
		Name:                "Айдар",
		Age:                 25,
		Goals:               "стать архитектором ПО",
		PreferredLanguage:   style.LanguageRussian,
		CommunicationStyle:  style.Default(),
		OnboardingCompleted: true,
	}
	if err := store.SaveUser(rec); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	if err := handler.Handle(context.Background(), textCtx(10, "/plan")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	messages := sender.sent()
	if len(messages) != 2 {
		t.Fatalf("Expected progress message plus plan, got %d messages", len(messages))
	}
	if !strings.Contains(messages[0].text, "Создаю") {
		t.Errorf("Expected generation notice first, got: %q", messages[0].text)
	}
	if !strings.Contains(messages[1].text, "ГОД 1:") || !strings.Contains(messages[1].text, "ГОД 5:") {
		t.Errorf("Expected all plan years in the reply, got: %q", messages[1].text)
	}
	if !strings.Contains(messages[1].text, "/tasks") {
		t.Errorf("Expected /tasks hint in the plan reply, got: %q", messages[1].text)
	}

	saved, err := store.LoadUser(10)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if saved.Plan == nil {
		t.Fatal("Expected plan to be persisted")
	}
	if len(saved.Plan.Years) != 5 {
		t.Errorf("Expected 5 plan years, got: %d", len(saved.Plan.Years))
	}
	if saved.PlanCreatedAt == nil {
		t.Error("Expected plan creation time to be persisted")
	}
}
