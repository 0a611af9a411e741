package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

// ProfileHandler implements CommandHandler for the /profile command
type ProfileHandler struct {
	store  *storage.Store
	sender messageSender
	logger *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(store *storage.Store, sender messageSender, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		store:  store,
		sender: sender,
		logger: logger,
	}
}

// Command returns the command string this handler processes
func (h *ProfileHandler) Command() string {
	return "profile"
}

// Handle shows the user's saved profile.
func (h *ProfileHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rec, err := h.store.LoadUser(cmdCtx.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load user profile: %w", err)
	}

	if rec == nil || !rec.OnboardingCompleted {
		return h.sender.SendMessage(timeoutCtx, cmdCtx.ChatID,
			"У вас ещё нет профиля. Используйте /onboarding чтобы создать его.\n\n"+
				"Сізде әлі профиль жоқ. Жасау үшін /onboarding пайдаланыңыз.")
	}

	h.logger.Info("user viewed profile", zap.Int64("user_id", cmdCtx.UserID))
	return h.sender.SendMessage(timeoutCtx, cmdCtx.ChatID, formatProfile(rec))
}

func formatProfile(rec *storage.UserRecord) string {
	st := rec.CommunicationStyle

	if st.Language == style.LanguageKazakh {
		header := "📋 Сенің профиліңіз:"
		if st.Formality == style.FormalityFormal {
			header = "📋 Сіздің профиліңіз:"
		}
		return fmt.Sprintf("%s\n\n👤 Аты: %s\n🎂 Жасы: %d\n🎯 Мақсаттар: %s\n🌐 Тілі: %s\n💬 Қарым-қатынас стилі: %s\n\nПрофильді өзгерту үшін /onboarding пайдаланыңыз",
			header, rec.Name, rec.Age, rec.Goals, rec.PreferredLanguage, st.Formality)
	}

	header := "📋 Твой профиль:"
	if st.Formality == style.FormalityFormal {
		header = "📋 Ваш профиль:"
	}
	return fmt.Sprintf("%s\n\n👤 Имя: %s\n🎂 Возраст: %d\n🎯 Цели: %s\n🌐 Предпочитаемый язык: %s\n💬 Стиль общения: %s\n\nДля обновления профиля используйте /onboarding",
		header, rec.Name, rec.Age, rec.Goals, rec.PreferredLanguage, st.Formality)
}
