package bot

import (
	"context"
	"time"

	"github.com/gotd/td/tg"
)

// CommandHandler defines the interface for handling bot commands
type CommandHandler interface {
	// Handle processes a command with the given context
	Handle(ctx context.Context, cmdCtx *CommandContext) error
	// Command returns the command string this handler processes (e.g., "start", "plan")
	Command() string
}

// MessageHandler defines the interface for handling non-command text
// messages. Handlers are consulted in registration order and the first
// one whose Match returns true receives the message.
type MessageHandler interface {
	// Match reports whether this handler wants the message
	Match(cmdCtx *CommandContext) bool
	// Handle processes the message
	Handle(ctx context.Context, cmdCtx *CommandContext) error
}

// messageSender sends a text message to a chat. Implemented by
// TelegramBot; handlers depend on the interface so tests can capture
// outgoing messages.
type messageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// CommandContext provides context information for message processing
type CommandContext struct {
	// Update contains the original Telegram update
	Update *tg.UpdateNewMessage
	// UserID is the ID of the user who sent the message
	UserID int64
	// ChatID is the ID of the chat where the message was sent
	ChatID int64
	// MessageID is the ID of the message
	MessageID int
	// Username is the username of the user (may be empty)
	Username string
	// Text is the full message text
	Text string
	// Command is the command string without the leading slash, empty
	// for plain messages
	Command string
	// Args contains command arguments (text after the command)
	Args string
	// Timestamp is when the message was received
	Timestamp time.Time
}
