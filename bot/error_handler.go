package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrorTypeConfiguration ErrorType = iota
	ErrorTypeNetwork
	ErrorTypeCommand
	ErrorTypeRuntime
)

// String returns the string representation of ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConfiguration:
		return "CONFIGURATION"
	case ErrorTypeNetwork:
		return "NETWORK"
	case ErrorTypeCommand:
		return "COMMAND"
	case ErrorTypeRuntime:
		return "RUNTIME"
	default:
		return "UNKNOWN"
	}
}

// ErrorContext provides context information for error handling
type ErrorContext struct {
	UserID        int64
	ChatID        int64
	Command       string
	CorrelationID string
	Timestamp     time.Time
}

// ErrorHandler provides centralized error management for the bot.
// Handler failures are logged with a correlation ID and answered with
// a user-friendly message; the update loop is never stopped.
type ErrorHandler struct {
	logger *zap.Logger
	sender messageSender
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *zap.Logger, sender messageSender) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		sender: sender,
	}
}

// HandleConfigError handles configuration-related errors. These are
// fatal: the process cannot run without valid configuration.
func (e *ErrorHandler) HandleConfigError(err error) {
	e.logger.Fatal("configuration error",
		zap.String("error_type", ErrorTypeConfiguration.String()),
		zap.Error(err))
}

// HandleCommandError handles command processing errors
func (e *ErrorHandler) HandleCommandError(err error, cmdCtx *CommandContext) {
	errorCtx := &ErrorContext{
		UserID:        cmdCtx.UserID,
		ChatID:        cmdCtx.ChatID,
		Command:       cmdCtx.Command,
		CorrelationID: e.generateCorrelationID(),
		Timestamp:     time.Now(),
	}

	e.logger.Warn("command processing error",
		zap.String("error_type", ErrorTypeCommand.String()),
		zap.String("correlation_id", errorCtx.CorrelationID),
		zap.Int64("user_id", errorCtx.UserID),
		zap.Int64("chat_id", errorCtx.ChatID),
		zap.String("command", errorCtx.Command),
		zap.Error(err))

	if sendErr := e.sendUserErrorMessage(cmdCtx.ChatID, err, errorCtx.CorrelationID); sendErr != nil {
		e.logger.Error("failed to send error message to user",
			zap.String("correlation_id", errorCtx.CorrelationID),
			zap.Int64("chat_id", cmdCtx.ChatID),
			zap.Error(sendErr))
	}
}

// HandleRuntimeError handles unexpected runtime errors. They are
// logged but the application keeps serving other users.
func (e *ErrorHandler) HandleRuntimeError(err error) {
	e.logger.Error("runtime error",
		zap.String("error_type", ErrorTypeRuntime.String()),
		zap.String("correlation_id", e.generateCorrelationID()),
		zap.Error(err))
}

// sendUserErrorMessage sends a user-friendly error message to the chat
func (e *ErrorHandler) sendUserErrorMessage(chatID int64, err error, correlationID string) error {
	if e.sender == nil {
		return fmt.Errorf("bot client is not available")
	}

	userMessage := e.createUserFriendlyMessage(err, correlationID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.sender.SendMessage(ctx, chatID, userMessage)
}

// createUserFriendlyMessage creates a user-friendly error message
func (e *ErrorHandler) createUserFriendlyMessage(err error, correlationID string) string {
	errorMsg := strings.ToLower(err.Error())

	var userMessage string
	switch {
	case strings.Contains(errorMsg, "network") || strings.Contains(errorMsg, "connection"):
		userMessage = "🌐 Проблемы с подключением. Попробуйте ещё раз через минуту."
	case strings.Contains(errorMsg, "timeout"):
		userMessage = "⏱️ Запрос выполнялся слишком долго. Попробуйте ещё раз."
	case strings.Contains(errorMsg, "rate limit") || strings.Contains(errorMsg, "too many"):
		userMessage = "🚦 Слишком много запросов. Подождите немного и попробуйте снова."
	default:
		userMessage = "❌ Что-то пошло не так при обработке запроса. Попробуйте ещё раз."
	}

	// Show only the short prefix of the correlation ID to the user.
	if len(correlationID) >= 8 {
		userMessage += fmt.Sprintf("\n\n🔧 Код ошибки: %s", correlationID[:8])
	}

	return userMessage
}

// generateCorrelationID generates a unique correlation ID for error tracking
func (e *ErrorHandler) generateCorrelationID() string {
	return uuid.New().String()
}

// RecoverFromPanic recovers from panics and logs them as runtime errors
func (e *ErrorHandler) RecoverFromPanic() {
	if r := recover(); r != nil {
		var err error
		if recoveredErr, ok := r.(error); ok {
			err = recoveredErr
		} else {
			err = fmt.Errorf("panic: %v", r)
		}

		e.HandleRuntimeError(fmt.Errorf("recovered from panic: %w", err))
	}
}
