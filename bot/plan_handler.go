package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ai-planner-bot/ai"
	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

// PlanHandler implements CommandHandler for the /plan command. It asks
// the AI backend for a 5-year plan and stores it on the user record.
type PlanHandler struct {
	store   *storage.Store
	backend ai.Interface
	sender  messageSender
	logger  *zap.Logger
}

// NewPlanHandler creates a new PlanHandler instance
func NewPlanHandler(store *storage.Store, backend ai.Interface, sender messageSender, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		store:   store,
		backend: backend,
		sender:  sender,
		logger:  logger,
	}
}

// Command returns the command string this handler processes
func (h *PlanHandler) Command() string {
	return "plan"
}

// Handle generates and saves a plan for an onboarded user.
func (h *PlanHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	rec, err := h.store.LoadUser(cmdCtx.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return h.sender.SendMessage(ctx, cmdCtx.ChatID,
				"Сначала пройдите онбординг: /onboarding")
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !rec.OnboardingCompleted {
		return h.sender.SendMessage(ctx, cmdCtx.ChatID,
			"Сначала пройдите онбординг: /onboarding")
	}

	if err := h.sender.SendMessage(ctx, cmdCtx.ChatID, generatingMessage(rec.CommunicationStyle)); err != nil {
		return err
	}

	h.logger.Info("generating plan",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.String("model", h.backend.ModelName()))

	plan, err := h.backend.GeneratePlan(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	created := plan.CreatedAt
	rec.Plan = plan
	rec.PlanCreatedAt = &created
	if err := h.store.SaveUser(rec); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	h.logger.Info("plan saved", zap.Int64("user_id", cmdCtx.UserID))
	return h.sender.SendMessage(ctx, cmdCtx.ChatID, formatPlan(plan))
}

func generatingMessage(st style.Style) string {
	if st.Language == style.LanguageKazakh {
		return "⏳ Жоспарыңды құрып жатырмын, сәл күте тұр..."
	}
	if st.Formality == style.FormalityFormal {
		return "⏳ Создаю ваш план, это займёт несколько секунд..."
	}
	return "⏳ Создаю твой план, это займёт несколько секунд..."
}

func formatPlan(plan *storage.Plan) string {
	var sb strings.Builder

	if plan.Language == style.LanguageKazakh {
		fmt.Fprintf(&sb, "🗺 %s, сенің 5 жылдық жоспарың:\n🎯 Мақсат: %s\n", plan.UserName, plan.Goal)
		for _, year := range plan.Years {
			fmt.Fprintf(&sb, "\n%d ЖЫЛ: %s\n", year.Year, year.Title)
			if year.Description != "" {
				sb.WriteString(year.Description + "\n")
			}
			for _, ms := range year.Milestones {
				fmt.Fprintf(&sb, "• %s\n", ms)
			}
		}
		sb.WriteString("\nКүнделікті тапсырмалар: /tasks")
		return sb.String()
	}

	fmt.Fprintf(&sb, "🗺 %s, твой план на 5 лет:\n🎯 Цель: %s\n", plan.UserName, plan.Goal)
	for _, year := range plan.Years {
		fmt.Fprintf(&sb, "\nГОД %d: %s\n", year.Year, year.Title)
		if year.Description != "" {
			sb.WriteString(year.Description + "\n")
		}
		for _, ms := range year.Milestones {
			fmt.Fprintf(&sb, "• %s\n", ms)
		}
	}
	sb.WriteString("\nЗадачи на сегодня: /tasks")
	return sb.String()
}
