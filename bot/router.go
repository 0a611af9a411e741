package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// CommandRouter routes incoming messages to command handlers or, for
// plain text, to the first matching message handler. Commands always
// take precedence over message handlers.
type CommandRouter struct {
	handlers        map[string]CommandHandler
	messageHandlers []MessageHandler
	logger          *zap.Logger
	errorHandler    *ErrorHandler
}

// NewCommandRouter creates a new command router instance
func NewCommandRouter(logger *zap.Logger) *CommandRouter {
	return &CommandRouter{
		handlers: make(map[string]CommandHandler),
		logger:   logger,
	}
}

// SetErrorHandler sets the error handler for the router
func (r *CommandRouter) SetErrorHandler(errorHandler *ErrorHandler) {
	r.errorHandler = errorHandler
}

// RegisterHandler registers a command handler for a specific command
func (r *CommandRouter) RegisterHandler(handler CommandHandler) {
	command := handler.Command()
	r.handlers[command] = handler
	r.logger.Info("registered command handler", zap.String("command", "/"+command))
}

// RegisterMessageHandler appends a message handler. Order matters: the
// first handler whose Match returns true wins.
func (r *CommandRouter) RegisterMessageHandler(handler MessageHandler) {
	r.messageHandlers = append(r.messageHandlers, handler)
}

// RouteUpdate processes an incoming message update. Handler errors and
// panics are passed to the error handler so the polling loop keeps
// running.
func (r *CommandRouter) RouteUpdate(ctx context.Context, update *tg.UpdateNewMessage) error {
	cmdCtx, err := r.extractCommandContext(update)
	if err != nil {
		return fmt.Errorf("failed to extract command context: %w", err)
	}

	defer func() {
		if r.errorHandler != nil {
			r.errorHandler.RecoverFromPanic()
		}
	}()

	if cmdCtx.Command != "" {
		return r.routeCommand(ctx, cmdCtx)
	}
	if cmdCtx.Text != "" {
		return r.routeMessage(ctx, cmdCtx)
	}
	return nil
}

func (r *CommandRouter) routeCommand(ctx context.Context, cmdCtx *CommandContext) error {
	handler, exists := r.handlers[cmdCtx.Command]
	if !exists {
		// Unknown commands are logged and ignored.
		r.logger.Info("no handler for command",
			zap.String("command", "/"+cmdCtx.Command),
			zap.Int64("user_id", cmdCtx.UserID))
		return nil
	}

	r.logger.Info("routing command",
		zap.String("command", "/"+cmdCtx.Command),
		zap.Int64("user_id", cmdCtx.UserID),
		zap.Int64("chat_id", cmdCtx.ChatID))

	if err := handler.Handle(ctx, cmdCtx); err != nil {
		if r.errorHandler != nil {
			r.errorHandler.HandleCommandError(err, cmdCtx)
			return nil
		}
		return fmt.Errorf("handler failed for command /%s: %w", cmdCtx.Command, err)
	}

	return nil
}

func (r *CommandRouter) routeMessage(ctx context.Context, cmdCtx *CommandContext) error {
	for _, handler := range r.messageHandlers {
		if !handler.Match(cmdCtx) {
			continue
		}

		if err := handler.Handle(ctx, cmdCtx); err != nil {
			if r.errorHandler != nil {
				r.errorHandler.HandleCommandError(err, cmdCtx)
				return nil
			}
			return fmt.Errorf("message handler failed: %w", err)
		}
		return nil
	}

	return nil
}

// extractCommandContext extracts command context information from a Telegram update
func (r *CommandRouter) extractCommandContext(update *tg.UpdateNewMessage) (*CommandContext, error) {
	message, ok := update.Message.(*tg.Message)
	if !ok {
		return nil, fmt.Errorf("update does not contain a message")
	}

	cmdCtx := &CommandContext{
		Update:    update,
		MessageID: message.ID,
		Text:      message.Message,
		Timestamp: time.Now(),
	}

	if fromUser, ok := message.FromID.(*tg.PeerUser); ok {
		cmdCtx.UserID = fromUser.UserID
	}

	switch peer := message.PeerID.(type) {
	case *tg.PeerUser:
		cmdCtx.ChatID = peer.UserID
		if cmdCtx.UserID == 0 {
			// Private chats omit FromID; the peer is the sender.
			cmdCtx.UserID = peer.UserID
		}
	case *tg.PeerChat:
		cmdCtx.ChatID = peer.ChatID
	case *tg.PeerChannel:
		cmdCtx.ChatID = peer.ChannelID
	}

	if strings.HasPrefix(cmdCtx.Text, "/") {
		parts := strings.SplitN(cmdCtx.Text[1:], " ", 2)
		cmdCtx.Command = parts[0]
		if len(parts) > 1 {
			cmdCtx.Args = parts[1]
		}
	}

	return cmdCtx, nil
}

// GetRegisteredCommands returns a list of all registered commands
func (r *CommandRouter) GetRegisteredCommands() []string {
	commands := make([]string, 0, len(r.handlers))
	for command := range r.handlers {
		commands = append(commands, command)
	}
	return commands
}

// HasHandler returns true if a handler is registered for the given command
func (r *CommandRouter) HasHandler(command string) bool {
	_, exists := r.handlers[command]
	return exists
}
