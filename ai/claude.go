package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"ai-planner-bot/config"
	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com"
	anthropicAPIVersion = "2023-06-01"

	maxRetries        = 3
	initialRetryDelay = time.Second
	maxRetryDelay     = 10 * time.Second
)

// Claude calls the Anthropic Messages API over HTTP. API failures
// degrade to canned fallback content instead of surfacing errors to
// the user.
type Claude struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	costs      *CostTracker
	logger     *zap.Logger
}

// NewClaude creates the Claude backend. It fails when the API key is
// missing or the cost ledger cannot be opened.
func NewClaude(cfg *config.BotConfig, logger *zap.Logger) (*Claude, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is not set")
	}

	model := cfg.AnthropicModel
	if model == "" {
		model = config.DefaultModel
	}

	costs, err := NewCostTracker(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cost tracker: %w", err)
	}

	return &Claude{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    anthropicBaseURL,
		apiKey:     cfg.AnthropicAPIKey,
		model:      model,
		costs:      costs,
		logger:     logger,
	}, nil
}

// ModelName returns the configured Anthropic model.
func (c *Claude) ModelName() string {
	return c.model
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   tokenUsage     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type tokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerateResponse produces a styled conversational reply.
func (c *Claude) GenerateResponse(ctx context.Context, userID int64, prompt string, st style.Style) (string, error) {
	resp, elapsed, err := c.complete(ctx, messagesRequest{
		Model:     c.model,
		MaxTokens: 500,
		System:    style.SystemPrompt(st),
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		c.logger.Error("Claude API request failed", zap.Int64("user_id", userID), zap.Error(err))
		return errorFallbackResponse(st), nil
	}

	c.trackUsage(resp, userID, "generate_response", elapsed)
	return responseText(resp), nil
}

// GeneratePlan asks Claude for a structured 5-year plan and parses it.
func (c *Claude) GeneratePlan(ctx context.Context, rec *storage.UserRecord) (*storage.Plan, error) {
	name := rec.Name
	if name == "" {
		name = "пользователь"
	}
	goal := rec.Goals
	if goal == "" {
		goal = "личное развитие"
	}

	st := rec.CommunicationStyle
	language := st.Language
	if language == "" {
		language = rec.PreferredLanguage
	}
	if language == "" {
		language = style.LanguageRussian
	}

	var prompt string
	if language == style.LanguageKazakh {
		prompt = kazakhPlanPrompt(name, rec.Age, goal)
	} else {
		prompt = russianPlanPrompt(name, rec.Age, goal)
	}

	system := "Ты - эксперт по планированию карьеры и личного развития. " +
		"Создай реалистичный, достижимый 5-летний план с конкретными этапами. " +
		"Структурируй план по годам с четкими целями и этапами."

	resp, elapsed, err := c.complete(ctx, messagesRequest{
		Model:     c.model,
		MaxTokens: 4000,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		c.logger.Error("Claude plan generation failed", zap.Int64("user_id", rec.UserID), zap.Error(err))
		return fallbackPlan(name, goal, language, st.Formality), nil
	}

	c.trackUsage(resp, rec.UserID, "generate_plan", elapsed)

	return &storage.Plan{
		UserName:  name,
		Goal:      goal,
		Language:  language,
		Formality: st.Formality,
		Years:     ParsePlanText(responseText(resp), language),
		CreatedAt: time.Now(),
	}, nil
}

// GenerateDailyTasks asks Claude for exactly 4 tasks for one plan day.
func (c *Claude) GenerateDailyTasks(ctx context.Context, plan *storage.Plan, day int) ([]string, error) {
	year := (day-1)/365 + 1
	if year > 5 {
		year = 5
	}

	yearFocus := fmt.Sprintf("Год %d", year)
	if year <= len(plan.Years) {
		yearFocus = plan.Years[year-1].Title
	}

	var prompt string
	if plan.Language == style.LanguageKazakh {
		prompt = fmt.Sprintf("%d жыл, %d күн.\nБағыт: %s\n4 практикалық тапсырма жаса (қысқа, нақты, орындалатын).\nТек тапсырмалар тізімін жаз, түсініктемесіз.", year, day, yearFocus)
	} else {
		prompt = fmt.Sprintf("Год %d, день %d.\nФокус: %s\nСоздай 4 практические задачи (краткие, конкретные, выполнимые).\nНапиши только список задач, без объяснений.", year, day, yearFocus)
	}

	resp, elapsed, err := c.complete(ctx, messagesRequest{
		Model:     c.model,
		MaxTokens: 300,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		c.logger.Error("Claude task generation failed", zap.Int("day", day), zap.Error(err))
		return fallbackTasks(plan.Language), nil
	}

	c.trackUsage(resp, 0, "generate_daily_tasks", elapsed)

	tasks := ParseTaskList(responseText(resp))
	for len(tasks) < 4 {
		tasks = append(tasks, extraTasks[len(tasks)%len(extraTasks)])
	}
	return tasks[:4], nil
}

// complete sends one Messages API call with exponential backoff.
// Rate limits, connection errors and 5xx responses are retried; other
// client errors are not.
func (c *Claude) complete(ctx context.Context, req messagesRequest) (*messagesResponse, time.Duration, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	start := time.Now()
	var result messagesResponse

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("anthropic connection failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := fmt.Errorf("anthropic API error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(apiErr)
			}
			c.logger.Warn("retrying Claude API call", zap.Int("status", resp.StatusCode))
			return apiErr
		}

		if err := json.Unmarshal(respBody, &result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialRetryDelay
	bo.MaxInterval = maxRetryDelay

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx)); err != nil {
		return nil, time.Since(start), err
	}

	return &result, time.Since(start), nil
}

func (c *Claude) trackUsage(resp *messagesResponse, userID int64, requestType string, elapsed time.Duration) {
	record, err := c.costs.Track(c.model, resp.Usage.InputTokens, resp.Usage.OutputTokens, userID, requestType, elapsed)
	if err != nil {
		c.logger.Error("failed to persist cost record", zap.Error(err))
		return
	}
	c.logger.Info("Claude API call tracked",
		zap.String("request_type", requestType),
		zap.Int64("user_id", userID),
		zap.Int("input_tokens", record.InputTokens),
		zap.Int("output_tokens", record.OutputTokens),
		zap.Float64("cost_usd", record.Cost),
	)
}

func responseText(resp *messagesResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

var (
	russianYearHeader = regexp.MustCompile(`ГОД\s+\d+:`)
	kazakhYearHeader  = regexp.MustCompile(`\d+\s+ЖЫЛ:`)
)

// ParsePlanText splits a generated plan into its 5 years. Each year
// section starts with "ГОД N:" (Russian) or "N ЖЫЛ:" (Kazakh), followed
// by a title line, a free-text description and dashed milestones.
// Missing years are filled with placeholders so a plan always has 5.
func ParsePlanText(text, language string) []storage.PlanYear {
	header := russianYearHeader
	if language == style.LanguageKazakh {
		header = kazakhYearHeader
	}

	var years []storage.PlanYear
	matches := header.FindAllStringIndex(text, -1)

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		section := strings.TrimSpace(text[m[1]:end])
		years = append(years, parseYearSection(section, i+1))
		if len(years) == 5 {
			break
		}
	}

	for len(years) < 5 {
		n := len(years) + 1
		years = append(years, storage.PlanYear{
			Year:        n,
			Title:       fmt.Sprintf("Год %d", n),
			Description: fmt.Sprintf("Развитие на %d году", n),
			Milestones:  []string{"Этап 1", "Этап 2", "Этап 3"},
		})
	}

	return years
}

func parseYearSection(section string, yearNum int) storage.PlanYear {
	lines := strings.Split(section, "\n")

	title := fmt.Sprintf("Год %d", yearNum)
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		title = strings.TrimSpace(lines[0])
	}

	var description strings.Builder
	var milestones []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*") {
			milestones = append(milestones, strings.TrimLeft(line, "-•* "))
		} else if len(milestones) == 0 {
			if description.Len() > 0 {
				description.WriteByte(' ')
			}
			description.WriteString(line)
		}
	}

	if len(milestones) > 4 {
		milestones = milestones[:4]
	}
	if len(milestones) == 0 {
		milestones = []string{
			fmt.Sprintf("Этап 1 года %d", yearNum),
			fmt.Sprintf("Этап 2 года %d", yearNum),
			fmt.Sprintf("Этап 3 года %d", yearNum),
		}
	}

	return storage.PlanYear{
		Year:        yearNum,
		Title:       title,
		Description: description.String(),
		Milestones:  milestones,
	}
}

// ParseTaskList extracts task lines from a generated list, stripping
// numbering and bullets and dropping anything too short to be a task.
func ParseTaskList(text string) []string {
	var tasks []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "0123456789.-)• \t")
		if utf8.RuneCountInString(line) > 5 {
			tasks = append(tasks, line)
		}
	}
	return tasks
}

var extraTasks = []string{
	"Дополнительная задача на день",
	"Рефлексия и планирование",
}

func fallbackTasks(language string) []string {
	if language == style.LanguageKazakh {
		return []string{
			"Күнделікті тапсырманы орындау",
			"Білімді тереңдету",
			"Практикалық жаттығу",
			"Прогресті талдау",
		}
	}
	return []string{
		"Выполнить ежедневное задание",
		"Углубить знания",
		"Практическое упражнение",
		"Анализ прогресса",
	}
}

func fallbackPlan(name, goal, language, formality string) *storage.Plan {
	var years []storage.PlanYear
	if language == style.LanguageKazakh {
		years = fakeKazakhYears(goal)
	} else {
		years = fakeRussianYears(goal)
	}

	return &storage.Plan{
		UserName:  name,
		Goal:      goal,
		Language:  language,
		Formality: formality,
		Years:     years,
		CreatedAt: time.Now(),
	}
}

func errorFallbackResponse(st style.Style) string {
	if st.Language == style.LanguageKazakh {
		return "Кешіріңіз, қазір жауап бере алмаймын. Кейінірек қайталап көріңіз."
	}
	return "Извините, сейчас не могу ответить. Попробуйте позже."
}

func russianPlanPrompt(name string, age int, goals string) string {
	return fmt.Sprintf(`Создай персональный 5-летний план развития для человека:
- Имя: %s
- Возраст: %d
- Цели: %s

Создай план из 5 лет. Для каждого года укажи:
1. Название года (краткое, мотивирующее)
2. Описание (1-2 предложения)
3. 3-4 ключевых этапа (milestones)

Формат ответа:
ГОД 1: [название]
[описание]
- [этап 1]
- [этап 2]
- [этап 3]

[и так далее для всех 5 лет]

План должен быть реалистичным и достижимым.`, name, age, goals)
}

func kazakhPlanPrompt(name string, age int, goals string) string {
	return fmt.Sprintf(`Адам үшін 5 жылдық жеке даму жоспарын жаса:
- Аты: %s
- Жасы: %d
- Мақсаттары: %s

5 жылдың жоспарын жаса. Әр жыл үшін көрсет:
1. Жылдың атауы (қысқа, ынталандырушы)
2. Сипаттама (1-2 сөйлем)
3. 3-4 негізгі кезең

Жауап форматы:
1 ЖЫЛ: [атауы]
[сипаттама]
- [кезең 1]
- [кезең 2]
- [кезең 3]

[барлық 5 жылға осылай]

Жоспар нақты және қол жетімді болуы керек.`, name, age, goals)
}
