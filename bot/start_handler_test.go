package bot

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestStartHandler_Command(t *testing.T) {
	handler := NewStartHandler(&mockSender{}, zap.NewNop())
	if handler.Command() != "start" {
		t.Errorf("Expected command 'start', got: %s", handler.Command())
	}
}

func TestStartHandler_Handle(t *testing.T) {
	sender := &mockSender{}
	handler := NewStartHandler(sender, zap.NewNop())

	cmdCtx := &CommandContext{UserID: 12345, ChatID: 12345, Command: "start"}
	if err := handler.Handle(context.Background(), cmdCtx); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	messages := sender.sent()
	if len(messages) != 1 {
		t.Fatalf("Expected one message, got: %d", len(messages))
	}
	if messages[0].text != "Hello, I'm your AI planner bot!" {
		t.Errorf("Unexpected welcome message: %q", messages[0].text)
	}
	if messages[0].chatID != 12345 {
		t.Errorf("Expected message to chat 12345, got: %d", messages[0].chatID)
	}
}

func TestHelpHandler_Handle(t *testing.T) {
	sender := &mockSender{}
	handler := NewHelpHandler(sender, zap.NewNop())

	if handler.Command() != "help" {
		t.Errorf("Expected command 'help', got: %s", handler.Command())
	}

	cmdCtx := &CommandContext{UserID: 12345, ChatID: 12345, Command: "help"}
	if err := handler.Handle(context.Background(), cmdCtx); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	messages := sender.sent()
	if len(messages) != 1 {
		t.Fatalf("Expected one message, got: %d", len(messages))
	}

	for _, cmd := range []string{"/start", "/onboarding", "/profile", "/plan", "/tasks", "/done", "/progress", "/cancel", "/help"} {
		if !strings.Contains(messages[0].text, cmd) {
			t.Errorf("Expected help text to mention %s", cmd)
		}
	}
}
