package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// mockSender captures outgoing messages for assertions.
type mockSender struct {
	mu       sync.Mutex
	messages []sentMessage
	err      error
}

type sentMessage struct {
	chatID int64
	text   string
}

func (m *mockSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (m *mockSender) sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// MockCommandHandler is a test implementation of CommandHandler
type MockCommandHandler struct {
	command     string
	handleCalls int
	lastContext *CommandContext
	err         error
	panicValue  any
}

func (m *MockCommandHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	m.handleCalls++
	m.lastContext = cmdCtx
	if m.panicValue != nil {
		panic(m.panicValue)
	}
	return m.err
}

func (m *MockCommandHandler) Command() string {
	return m.command
}

// MockMessageHandler is a test implementation of MessageHandler
type MockMessageHandler struct {
	match       bool
	handleCalls int
	lastContext *CommandContext
}

func (m *MockMessageHandler) Match(cmdCtx *CommandContext) bool {
	return m.match
}

func (m *MockMessageHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	m.handleCalls++
	m.lastContext = cmdCtx
	return nil
}

func newUpdate(text string, userID int64) *tg.UpdateNewMessage {
	return &tg.UpdateNewMessage{
		Message: &tg.Message{
			Message: text,
			PeerID:  &tg.PeerUser{UserID: userID},
			FromID:  &tg.PeerUser{UserID: userID},
		},
	}
}

func TestCommandRouter_RegisterHandler(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	handler := &MockCommandHandler{command: "test"}
	router.RegisterHandler(handler)

	if !router.HasHandler("test") {
		t.Error("Expected handler to be registered for 'test' command")
	}

	commands := router.GetRegisteredCommands()
	if len(commands) != 1 || commands[0] != "test" {
		t.Errorf("Expected registered commands to contain 'test', got: %v", commands)
	}
}

func TestCommandRouter_ExtractCommandContext(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	cmdCtx, err := router.extractCommandContext(newUpdate("/start hello world", 12345))
	if err != nil {
		t.Fatalf("Failed to extract command context: %v", err)
	}

	if cmdCtx.Command != "start" {
		t.Errorf("Expected command 'start', got: %s", cmdCtx.Command)
	}
	if cmdCtx.Args != "hello world" {
		t.Errorf("Expected args 'hello world', got: %s", cmdCtx.Args)
	}
	if cmdCtx.UserID != 12345 {
		t.Errorf("Expected UserID 12345, got: %d", cmdCtx.UserID)
	}
	if cmdCtx.ChatID != 12345 {
		t.Errorf("Expected ChatID 12345, got: %d", cmdCtx.ChatID)
	}
	if cmdCtx.Text != "/start hello world" {
		t.Errorf("Expected full text, got: %s", cmdCtx.Text)
	}
}

func TestCommandRouter_RouteCommand(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	handler := &MockCommandHandler{command: "plan"}
	router.RegisterHandler(handler)

	if err := router.RouteUpdate(context.Background(), newUpdate("/plan", 12345)); err != nil {
		t.Fatalf("Failed to route command: %v", err)
	}

	if handler.handleCalls != 1 {
		t.Errorf("Expected handler to be called once, got: %d", handler.handleCalls)
	}
	if handler.lastContext.Command != "plan" {
		t.Errorf("Expected command 'plan', got: %s", handler.lastContext.Command)
	}
}

func TestCommandRouter_UnknownCommandIgnored(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	messageHandler := &MockMessageHandler{match: true}
	router.RegisterMessageHandler(messageHandler)

	// Unknown commands are logged and dropped, never echoed.
	if err := router.RouteUpdate(context.Background(), newUpdate("/unknown", 12345)); err != nil {
		t.Fatalf("Expected no error for unknown command, got: %v", err)
	}

	if messageHandler.handleCalls != 0 {
		t.Errorf("Expected message handlers to be skipped for commands, got %d calls", messageHandler.handleCalls)
	}
}

func TestCommandRouter_MessageHandlerOrder(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	first := &MockMessageHandler{match: false}
	second := &MockMessageHandler{match: true}
	third := &MockMessageHandler{match: true}
	router.RegisterMessageHandler(first)
	router.RegisterMessageHandler(second)
	router.RegisterMessageHandler(third)

	if err := router.RouteUpdate(context.Background(), newUpdate("просто текст", 12345)); err != nil {
		t.Fatalf("Failed to route message: %v", err)
	}

	if first.handleCalls != 0 {
		t.Error("Expected non-matching handler to be skipped")
	}
	if second.handleCalls != 1 {
		t.Errorf("Expected first matching handler to be called once, got: %d", second.handleCalls)
	}
	if third.handleCalls != 0 {
		t.Error("Expected later handlers to be skipped after a match")
	}
	if second.lastContext.Text != "просто текст" {
		t.Errorf("Expected message text, got: %s", second.lastContext.Text)
	}
}

func TestCommandRouter_CommandPrecedence(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	handler := &MockCommandHandler{command: "start"}
	messageHandler := &MockMessageHandler{match: true}
	router.RegisterHandler(handler)
	router.RegisterMessageHandler(messageHandler)

	if err := router.RouteUpdate(context.Background(), newUpdate("/start", 12345)); err != nil {
		t.Fatalf("Failed to route command: %v", err)
	}

	if handler.handleCalls != 1 {
		t.Errorf("Expected command handler to be called, got: %d", handler.handleCalls)
	}
	if messageHandler.handleCalls != 0 {
		t.Error("Expected message handler not to see commands")
	}
}

func TestCommandRouter_HandlerErrorGoesToErrorHandler(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())
	sender := &mockSender{}
	router.SetErrorHandler(NewErrorHandler(zap.NewNop(), sender))

	handler := &MockCommandHandler{command: "plan", err: errors.New("backend unavailable")}
	router.RegisterHandler(handler)

	// The error is absorbed so the polling loop keeps running.
	if err := router.RouteUpdate(context.Background(), newUpdate("/plan", 12345)); err != nil {
		t.Fatalf("Expected error to be handled, got: %v", err)
	}

	messages := sender.sent()
	if len(messages) != 1 {
		t.Fatalf("Expected one error reply, got: %d", len(messages))
	}
	if messages[0].chatID != 12345 {
		t.Errorf("Expected error reply to chat 12345, got: %d", messages[0].chatID)
	}
}

func TestCommandRouter_PanicRecovery(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())
	router.SetErrorHandler(NewErrorHandler(zap.NewNop(), &mockSender{}))

	panicking := &MockCommandHandler{command: "boom", panicValue: "unexpected state"}
	healthy := &MockCommandHandler{command: "start"}
	router.RegisterHandler(panicking)
	router.RegisterHandler(healthy)

	// Must not propagate the panic.
	_ = router.RouteUpdate(context.Background(), newUpdate("/boom", 12345))

	// The router keeps working afterwards.
	if err := router.RouteUpdate(context.Background(), newUpdate("/start", 12345)); err != nil {
		t.Fatalf("Failed to route after panic: %v", err)
	}
	if healthy.handleCalls != 1 {
		t.Errorf("Expected healthy handler to be called after panic, got: %d", healthy.handleCalls)
	}
}

func TestCommandRouter_NonMessageUpdate(t *testing.T) {
	router := NewCommandRouter(zap.NewNop())

	update := &tg.UpdateNewMessage{Message: &tg.MessageEmpty{}}
	if err := router.RouteUpdate(context.Background(), update); err == nil {
		t.Error("Expected error for update without a message")
	}
}
