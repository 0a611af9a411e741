package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

type onboardingStep int

const (
	stepConfirmUpdate onboardingStep = iota
	stepName
	stepAge
	stepGoals
	stepLanguage
)

// onboardingSession holds the state of one user's onboarding dialog.
type onboardingSession struct {
	step     onboardingStep
	username string
	name     string
	age      int
	goals    string
	style    style.Style
	messages []string
}

// OnboardingManager runs the onboarding dialog: name, age, goals and
// preferred language, with per-answer validation. Sessions live in
// memory; the finished profile is persisted to the user store.
type OnboardingManager struct {
	store  *storage.Store
	sender messageSender
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*onboardingSession
}

// NewOnboardingManager creates the manager.
func NewOnboardingManager(store *storage.Store, sender messageSender, logger *zap.Logger) *OnboardingManager {
	return &OnboardingManager{
		store:    store,
		sender:   sender,
		logger:   logger,
		sessions: make(map[int64]*onboardingSession),
	}
}

// Begin starts or restarts onboarding for the user.
func (m *OnboardingManager) Begin(ctx context.Context, cmdCtx *CommandContext) error {
	m.logger.Info("user started onboarding",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.String("username", cmdCtx.Username))

	rec, err := m.store.LoadUser(cmdCtx.UserID)
	if err == nil && rec.OnboardingCompleted {
		m.setSession(cmdCtx.UserID, &onboardingSession{
			step:     stepConfirmUpdate,
			username: cmdCtx.Username,
			style:    rec.CommunicationStyle,
		})
		return m.sender.SendMessage(ctx, cmdCtx.ChatID,
			"У вас уже есть профиль. Хотите обновить его?\n"+
				"Введите 'да' для обновления или /cancel для отмены.")
	}

	initialStyle := style.Detect(cmdCtx.Text)

	if err := m.sender.SendMessage(ctx, cmdCtx.ChatID, onboardingWelcome(initialStyle)); err != nil {
		return err
	}
	if err := m.sender.SendMessage(ctx, cmdCtx.ChatID, nameQuestion(initialStyle)); err != nil {
		return err
	}

	m.setSession(cmdCtx.UserID, &onboardingSession{
		step:     stepName,
		username: cmdCtx.Username,
		style:    initialStyle,
	})
	return nil
}

// Cancel aborts an active onboarding session.
func (m *OnboardingManager) Cancel(ctx context.Context, cmdCtx *CommandContext) error {
	m.mu.Lock()
	_, active := m.sessions[cmdCtx.UserID]
	delete(m.sessions, cmdCtx.UserID)
	m.mu.Unlock()

	if !active {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID,
			"Нет активного процесса для отмены.\nБелсенді процесс жоқ.")
	}

	m.logger.Info("user cancelled onboarding", zap.Int64("user_id", cmdCtx.UserID))
	return m.sender.SendMessage(ctx, cmdCtx.ChatID,
		"Процесс отменён. Вы можете начать заново с /onboarding\n\n"+
			"Процесс тоқтатылды. /onboarding арқылы қайта бастай аласыз")
}

// InProgress reports whether the user has an active onboarding session.
func (m *OnboardingManager) InProgress(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	return ok
}

// Match claims plain messages from users with an active session.
func (m *OnboardingManager) Match(cmdCtx *CommandContext) bool {
	return m.InProgress(cmdCtx.UserID)
}

// Handle advances the user's onboarding dialog by one step.
func (m *OnboardingManager) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	m.mu.Lock()
	session, ok := m.sessions[cmdCtx.UserID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	switch session.step {
	case stepConfirmUpdate:
		return m.processConfirmation(ctx, cmdCtx, session)
	case stepName:
		return m.processName(ctx, cmdCtx, session)
	case stepAge:
		return m.processAge(ctx, cmdCtx, session)
	case stepGoals:
		return m.processGoals(ctx, cmdCtx, session)
	case stepLanguage:
		return m.processLanguage(ctx, cmdCtx, session)
	}
	return nil
}

var confirmationWords = []string{"да", "yes", "ия", "иә", "ok", "окей"}

func (m *OnboardingManager) processConfirmation(ctx context.Context, cmdCtx *CommandContext, session *onboardingSession) error {
	answer := strings.ToLower(strings.TrimSpace(cmdCtx.Text))

	for _, word := range confirmationWords {
		if answer == word {
			session.step = stepName
			return m.sender.SendMessage(ctx, cmdCtx.ChatID, nameQuestion(session.style))
		}
	}

	m.clearSession(cmdCtx.UserID)
	return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Обновление отменено. Ваш профиль сохранён.")
}

func (m *OnboardingManager) processName(ctx context.Context, cmdCtx *CommandContext, session *onboardingSession) error {
	name := strings.TrimSpace(cmdCtx.Text)

	if len([]rune(name)) < 2 {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Пожалуйста, введите корректное имя (минимум 2 символа)")
	}
	if len([]rune(name)) > 50 {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Имя слишком длинное. Пожалуйста, введите имя покороче.")
	}

	m.logger.Info("onboarding name received", zap.Int64("user_id", cmdCtx.UserID))

	session.name = name
	session.style = style.Detect(cmdCtx.Text)
	session.messages = append(session.messages, cmdCtx.Text)
	session.step = stepAge

	return m.sender.SendMessage(ctx, cmdCtx.ChatID, ageQuestion(session.style, name))
}

func (m *OnboardingManager) processAge(ctx context.Context, cmdCtx *CommandContext, session *onboardingSession) error {
	age, err := strconv.Atoi(strings.TrimSpace(cmdCtx.Text))
	if err != nil {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Пожалуйста, введите возраст числом (например: 25)")
	}
	if age < 10 || age > 100 {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Пожалуйста, введите корректный возраст (от 10 до 100 лет)")
	}

	m.logger.Info("onboarding age received", zap.Int64("user_id", cmdCtx.UserID), zap.Int("age", age))

	session.age = age
	session.messages = append(session.messages, cmdCtx.Text)
	session.step = stepGoals

	return m.sender.SendMessage(ctx, cmdCtx.ChatID, goalsQuestion(session.style))
}

func (m *OnboardingManager) processGoals(ctx context.Context, cmdCtx *CommandContext, session *onboardingSession) error {
	goals := strings.TrimSpace(cmdCtx.Text)

	if len([]rune(goals)) < 10 {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Пожалуйста, опишите свои цели подробнее (минимум 10 символов)")
	}
	if len([]rune(goals)) > 1000 {
		return m.sender.SendMessage(ctx, cmdCtx.ChatID, "Описание слишком длинное. Пожалуйста, сократите до 1000 символов.")
	}

	m.logger.Info("onboarding goals received", zap.Int64("user_id", cmdCtx.UserID))

	session.goals = goals
	session.style = style.Detect(cmdCtx.Text)
	session.messages = append(session.messages, cmdCtx.Text)
	session.step = stepLanguage

	return m.sender.SendMessage(ctx, cmdCtx.ChatID, languageQuestion(session.style))
}

var (
	russianKeywords = []string{"русский", "русск", "rus", "russian", "ру"}
	kazakhKeywords  = []string{"казахский", "казах", "қазақ", "қазақша", "kaz", "kazakh", "каз", "кз"}
)

func (m *OnboardingManager) processLanguage(ctx context.Context, cmdCtx *CommandContext, session *onboardingSession) error {
	input := strings.ToLower(strings.TrimSpace(cmdCtx.Text))

	var preferred string
	switch {
	case containsAnyKeyword(input, russianKeywords):
		preferred = style.LanguageRussian
	case containsAnyKeyword(input, kazakhKeywords):
		preferred = style.LanguageKazakh
	default:
		return m.sender.SendMessage(ctx, cmdCtx.ChatID,
			"Пожалуйста, выберите язык: 'русский' или 'казахский'\n"+
				"Тілді таңдаңыз: 'орыс' немесе 'қазақ'")
	}

	m.logger.Info("onboarding language selected",
		zap.Int64("user_id", cmdCtx.UserID),
		zap.String("language", preferred))

	session.messages = append(session.messages, cmdCtx.Text)

	// The final style comes from everything the user wrote during the
	// dialog, with the language overridden by the explicit choice.
	finalStyle := style.Detect(strings.Join(session.messages, " "))
	finalStyle.Language = preferred

	now := time.Now()
	rec, err := m.store.LoadUser(cmdCtx.UserID)
	if err != nil {
		rec = &storage.UserRecord{UserID: cmdCtx.UserID}
	}
	rec.Username = session.username
	rec.Name = session.name
	rec.Age = session.age
	rec.Goals = session.goals
	rec.PreferredLanguage = preferred
	rec.CommunicationStyle = finalStyle
	rec.OnboardingCompleted = true
	rec.OnboardingDate = &now

	if err := m.store.SaveUser(rec); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}

	m.logger.Info("onboarding completed", zap.Int64("user_id", cmdCtx.UserID))
	m.clearSession(cmdCtx.UserID)

	return m.sender.SendMessage(ctx, cmdCtx.ChatID, completionMessage(finalStyle, session.name))
}

func (m *OnboardingManager) setSession(userID int64, session *onboardingSession) {
	m.mu.Lock()
	m.sessions[userID] = session
	m.mu.Unlock()
}

func (m *OnboardingManager) clearSession(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

type promptKey struct {
	formality string
	language  string
}

func pickPrompt(prompts map[promptKey]string, st style.Style) string {
	if p, ok := prompts[promptKey{st.Formality, st.Language}]; ok {
		return p
	}
	return prompts[promptKey{style.FormalityCasual, style.LanguageRussian}]
}

func onboardingWelcome(st style.Style) string {
	return pickPrompt(map[promptKey]string{
		{style.FormalityFormal, style.LanguageRussian}: "Давайте познакомимся! Я задам вам несколько вопросов, чтобы создать персональный план развития.\n\nВы можете отменить процесс в любой момент командой /cancel",
		{style.FormalityCasual, style.LanguageRussian}: "Давай познакомимся! Задам тебе несколько вопросов, чтобы создать твой персональный план.\n\nМожешь отменить в любой момент командой /cancel",
		{style.FormalityFormal, style.LanguageKazakh}:  "Танысайық! Сізге жеке даму жоспарын құру үшін бірнеше сұрақ қоямын.\n\nКез келген уақытта /cancel командасымен тоқтата аласыз",
		{style.FormalityCasual, style.LanguageKazakh}:  "Танысайық! Саған жеке жоспар жасау үшін бірнеше сұрақ қояйын.\n\n/cancel командасымен тоқтата аласың",
	}, st)
}

func nameQuestion(st style.Style) string {
	return pickPrompt(map[promptKey]string{
		{style.FormalityFormal, style.LanguageRussian}: "Как вас зовут?",
		{style.FormalityCasual, style.LanguageRussian}: "Как тебя зовут?",
		{style.FormalityFormal, style.LanguageKazakh}:  "Сіздің атыңыз кім?",
		{style.FormalityCasual, style.LanguageKazakh}:  "Атың кім?",
	}, st)
}

func ageQuestion(st style.Style, name string) string {
	return pickPrompt(map[promptKey]string{
		{style.FormalityFormal, style.LanguageRussian}: fmt.Sprintf("Приятно познакомиться, %s! Сколько вам лет?", name),
		{style.FormalityCasual, style.LanguageRussian}: fmt.Sprintf("Приятно, %s! Сколько тебе лет?", name),
		{style.FormalityFormal, style.LanguageKazakh}:  fmt.Sprintf("Танысқаныма қуаныштымын, %s! Сіз неше жастасыз?", name),
		{style.FormalityCasual, style.LanguageKazakh}:  fmt.Sprintf("Қуаныштымын, %s! Неше жасың?", name),
	}, st)
}

func goalsQuestion(st style.Style) string {
	return pickPrompt(map[promptKey]string{
		{style.FormalityFormal, style.LanguageRussian}: "Расскажите о своих целях и мечтах. Чего вы хотите достичь в ближайшие 5 лет?\n(Например: карьерный рост, освоение новой профессии, развитие навыков)",
		{style.FormalityCasual, style.LanguageRussian}: "Расскажи о своих целях и мечтах. Чего хочешь достичь за 5 лет?\n(Например: карьера, новая профессия, развитие навыков)",
		{style.FormalityFormal, style.LanguageKazakh}:  "Мақсаттарыңыз бен арман-тілектеріңіз туралы айтып беріңізші. Келесі 5 жылда неге қол жеткізгіңіз келеді?\n(Мысалы: мансаптық өсу, жаңа мамандықты меңгеру, дағдыларды дамыту)",
		{style.FormalityCasual, style.LanguageKazakh}:  "Мақсаттарың мен арман-тілектерің туралы айтып бер. 5 жылда неге жеткің келеді?\n(Мысалы: мансап, жаңа мамандық, дағдыларды дамыту)",
	}, st)
}

func languageQuestion(st style.Style) string {
	return pickPrompt(map[promptKey]string{
		{style.FormalityFormal, style.LanguageRussian}: "На каком языке вам удобнее общаться?\nНапишите: 'русский' или 'казахский'",
		{style.FormalityCasual, style.LanguageRussian}: "На каком языке тебе удобнее?\nНапиши: 'русский' или 'казахский'",
		{style.FormalityFormal, style.LanguageKazakh}:  "Қай тілде сөйлесу ыңғайлы?\n'орыс' немесе 'қазақ' деп жазыңыз",
		{style.FormalityCasual, style.LanguageKazakh}:  "Қай тілде ыңғайлы?\n'орыс' немесе 'қазақ' деп жаз",
	}, st)
}

func completionMessage(st style.Style, name string) string {
	emoji := ""
	if st.EmojiUsage == style.EmojiHigh {
		emoji = "✅ "
	}

	return emoji + pickPrompt(map[promptKey]string{
		{style.FormalityFormal, style.LanguageRussian}: fmt.Sprintf("Отлично, %s! Ваш профиль сохранён.\n\nТеперь я могу создать для вас персональный план развития. Используйте /plan когда будете готовы.\n\nКоманды:\n/profile - просмотр профиля\n/plan - создать план", name),
		{style.FormalityCasual, style.LanguageRussian}: fmt.Sprintf("Супер, %s! Твой профиль сохранён.\n\nТеперь могу создать для тебя план развития. Жми /plan когда будешь готов.\n\nКоманды:\n/profile - твой профиль\n/plan - создать план", name),
		{style.FormalityFormal, style.LanguageKazakh}:  fmt.Sprintf("Керемет, %s! Сіздің профиліңіз сақталды.\n\nЕнді сізге жеке даму жоспарын құра аламын. Дайын болғанда /plan пайдаланыңыз.\n\nКомандалар:\n/profile - профильді көру\n/plan - жоспар құру", name),
		{style.FormalityCasual, style.LanguageKazakh}:  fmt.Sprintf("Супер, %s! Профиліңіз сақталды.\n\nЕнді саған даму жоспарын жасай аламын. Дайын болғанда /plan бас.\n\nКомандалар:\n/profile - профиліңіз\n/plan - жоспар құру", name),
	}, st)
}

// OnboardingHandler adapts OnboardingManager.Begin to CommandHandler.
type OnboardingHandler struct {
	manager *OnboardingManager
}

// NewOnboardingHandler creates the /onboarding command handler.
func NewOnboardingHandler(manager *OnboardingManager) *OnboardingHandler {
	return &OnboardingHandler{manager: manager}
}

func (h *OnboardingHandler) Command() string {
	return "onboarding"
}

func (h *OnboardingHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	return h.manager.Begin(ctx, cmdCtx)
}

// CancelHandler adapts OnboardingManager.Cancel to CommandHandler.
type CancelHandler struct {
	manager *OnboardingManager
}

// NewCancelHandler creates the /cancel command handler.
func NewCancelHandler(manager *OnboardingManager) *CancelHandler {
	return &CancelHandler{manager: manager}
}

func (h *CancelHandler) Command() string {
	return "cancel"
}

func (h *CancelHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	return h.manager.Cancel(ctx, cmdCtx)
}
