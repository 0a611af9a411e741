package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-planner-bot/storage"
	"ai-planner-bot/style"
)

// FakeAI is a deterministic backend used in development and tests. It
// produces canned responses adapted to the detected style and a fixed
// plan skeleton, with no network calls.
type FakeAI struct {
	now func() time.Time
}

// NewFakeAI creates the fake backend.
func NewFakeAI() *FakeAI {
	return &FakeAI{now: time.Now}
}

// ModelName identifies the fake backend.
func (f *FakeAI) ModelName() string {
	return "FakeAI-Dev"
}

type styleKey struct {
	formality string
	language  string
}

var planRequestResponses = map[styleKey]string{
	{style.FormalityFormal, style.LanguageRussian}: "Конечно, я помогу вам составить персональный план. Для этого мне нужна информация о ваших целях и текущей ситуации. Расскажите, пожалуйста, чего вы хотите достичь?",
	{style.FormalityCasual, style.LanguageRussian}: "Отлично! Давай создадим для тебя план. Расскажи, какие у тебя цели? Чего хочешь добиться?",
	{style.FormalityFormal, style.LanguageKazakh}:  "Әрине, сізге жеке жоспар құруға көмектесемін. Ол үшін мақсаттарыңыз бен ағымдағы жағдайыңыз туралы ақпарат қажет. Не қол жеткізгіңіз келетінін айтып беріңізші.",
	{style.FormalityCasual, style.LanguageKazakh}:  "Керемет! Саған жоспар жасап берейік. Мақсаттарың қандай? Неге жеткің келеді?",
}

var helpResponses = map[styleKey]string{
	{style.FormalityFormal, style.LanguageRussian}: "Я - AI-планировщик, который помогает создавать персональные 5-летние планы развития. Я могу помочь вам с планированием карьеры, образования и личностного роста.",
	{style.FormalityCasual, style.LanguageRussian}: "Я помогаю строить планы на 5 лет! Карьера, учёба, саморазвитие - всё это можем спланировать вместе.",
	{style.FormalityFormal, style.LanguageKazakh}:  "Мен жеке 5 жылдық даму жоспарларын құруға көмектесетін AI-жоспаршымын. Мансап, білім және жеке өсу жоспарлауға көмектесе аламын.",
	{style.FormalityCasual, style.LanguageKazakh}:  "Мен 5 жылға жоспар құруға көмектесемін! Мансап, оқу, өзін-өзі дамыту - бәрін бірге жоспарлай аламыз.",
}

var greetingResponses = map[styleKey]string{
	{style.FormalityFormal, style.LanguageRussian}: "Здравствуйте! Рад помочь вам с планированием. Чем могу быть полезен?",
	{style.FormalityCasual, style.LanguageRussian}: "Привет! Чем могу помочь?",
	{style.FormalityFormal, style.LanguageKazakh}:  "Сәлеметсіз бе! Жоспарлауға көмектесуге қуаныштымын. Немен көмектесе аламын?",
	{style.FormalityCasual, style.LanguageKazakh}:  "Сәлем! Немен көмектесейін?",
}

var generalResponses = map[styleKey]string{
	{style.FormalityFormal, style.LanguageRussian}: "Я понял ваш запрос. Могу помочь с созданием персонального плана развития. Используйте команду /plan для начала.",
	{style.FormalityCasual, style.LanguageRussian}: "Понял! Могу помочь с планами. Жми /plan чтобы начать.",
	{style.FormalityFormal, style.LanguageKazakh}:  "Сұранысыңызды түсіндім. Жеке даму жоспарын құруға көмектесе аламын. Бастау үшін /plan командасын пайдаланыңыз.",
	{style.FormalityCasual, style.LanguageKazakh}:  "Түсінікті! Жоспармен көмектесе аламын. Бастау үшін /plan басыңыз.",
}

// GenerateResponse picks a canned reply by message intent and style.
func (f *FakeAI) GenerateResponse(ctx context.Context, userID int64, prompt string, st style.Style) (string, error) {
	lower := strings.ToLower(prompt)
	key := styleKey{st.Formality, st.Language}

	var response string
	switch {
	case containsAny(lower, "план", "жоспар", "plan", "roadmap"):
		response = lookupResponse(planRequestResponses, key)
	case containsAny(lower, "помощь", "help", "көмек", "көмектес"):
		response = lookupResponse(helpResponses, key)
	case containsAny(lower, "прив", "салам", "сәлем", "hello", "hi"):
		response = lookupResponse(greetingResponses, key)
	default:
		response = lookupResponse(generalResponses, key)
	}

	if st.EmojiUsage == style.EmojiHigh {
		response = "💭 " + response
	}

	return response, nil
}

// GeneratePlan builds a fixed 5-year plan skeleton with the user's goal
// woven into the final year.
func (f *FakeAI) GeneratePlan(ctx context.Context, rec *storage.UserRecord) (*storage.Plan, error) {
	name := rec.Name
	if name == "" {
		name = "друг"
	}
	goal := rec.Goals
	if goal == "" {
		goal = "карьерный рост"
	}

	st := rec.CommunicationStyle
	if st.Language == "" {
		st = style.Default()
	}

	var years []storage.PlanYear
	if st.Language == style.LanguageKazakh {
		years = fakeKazakhYears(goal)
	} else {
		years = fakeRussianYears(goal)
	}

	return &storage.Plan{
		UserName:  name,
		Goal:      goal,
		Language:  st.Language,
		Formality: st.Formality,
		Years:     years,
		CreatedAt: f.now(),
	}, nil
}

// GenerateDailyTasks returns 4 tasks matched to the plan's year and
// style markers.
func (f *FakeAI) GenerateDailyTasks(ctx context.Context, plan *storage.Plan, day int) ([]string, error) {
	year := (day-1)/365 + 1
	if year > 5 {
		year = 5
	}

	var templates []string
	var reflection string
	if plan.Language == style.LanguageKazakh {
		templates = kazakhTaskTemplates[year]
		reflection = "Бүгінгі прогресіңді белгіле!"
		if plan.Formality == style.FormalityFormal {
			reflection = "Рефлексия: бүгінгі прогресті жазу"
		}
	} else {
		templates = russianTaskTemplates[year]
		reflection = "Отметь свой прогресс за день!"
		if plan.Formality == style.FormalityFormal {
			reflection = "Рефлексия: записать сегодняшний прогресс"
		}
	}

	marker := "✓"
	if plan.Formality == style.FormalityFormal {
		marker = "•"
	}

	tasks := make([]string, 0, 4)
	for _, t := range templates {
		tasks = append(tasks, fmt.Sprintf("%s %s", marker, t))
	}
	tasks = append(tasks, fmt.Sprintf("%s %s", marker, reflection))

	return tasks, nil
}

var russianTaskTemplates = map[int][]string{
	1: {
		"Изучить основы выбранного направления (30 минут)",
		"Прочитать главу из профессиональной литературы",
		"Посмотреть обучающее видео по теме",
	},
	2: {
		"Выполнить практическое задание",
		"Поработать над личным проектом (1 час)",
		"Проанализировать чужой код/работу",
	},
	3: {
		"Помочь новичку с вопросом",
		"Написать статью/пост о своём опыте",
		"Изучить продвинутую технику",
	},
	4: {
		"Провести код-ревью или менторинг",
		"Работа над сложным проектом (2 часа)",
		"Выступить с докладом или презентацией",
	},
	5: {
		"Стратегическое планирование",
		"Передача опыта: обучение команды",
		"Работа над масштабным проектом",
	},
}

var kazakhTaskTemplates = map[int][]string{
	1: {
		"Таңдаған бағыттың негіздерін үйрену (30 минут)",
		"Кәсіби әдебиеттен бір тарау оқу",
		"Тақырып бойынша оқу видеосын көру",
	},
	2: {
		"Практикалық тапсырманы орындау",
		"Жеке жоба үстінде жұмыс (1 сағат)",
		"Басқа біреудің кодын/жұмысын талдау",
	},
	3: {
		"Жаңадан бастаушыға көмектесу",
		"Өз тәжірибең туралы мақала/пост жазу",
		"Алдыңғы қатарлы техниканы үйрену",
	},
	4: {
		"Код-ревью немесе менторинг өткізу",
		"Күрделі жоба үстінде жұмыс (2 сағат)",
		"Баяндама немесе презентация жасау",
	},
	5: {
		"Стратегиялық жоспарлау",
		"Тәжірибе беру: командаға оқыту",
		"Ауқымды жоба үстінде жұмыс",
	},
}

func fakeRussianYears(goal string) []storage.PlanYear {
	return []storage.PlanYear{
		{Year: 1, Title: "Фундамент и основы", Description: "Изучение базовых навыков и построение фундамента", Milestones: []string{"Освоение основных инструментов", "Первые практические проекты", "Нетворкинг и поиск менторов"}},
		{Year: 2, Title: "Практика и опыт", Description: "Применение знаний на практике", Milestones: []string{"Работа над реальными проектами", "Развитие профессиональных навыков", "Первые достижения"}},
		{Year: 3, Title: "Рост и развитие", Description: "Углубление экспертизы", Milestones: []string{"Становление экспертом", "Обучение других", "Расширение влияния"}},
		{Year: 4, Title: "Мастерство", Description: "Достижение высокого уровня", Milestones: []string{"Признание в профессии", "Сложные проекты", "Лидерство"}},
		{Year: 5, Title: "Цель достигнута", Description: "Достижение цели: " + goal, Milestones: []string{"Реализация амбиций", "Новые горизонты", "Передача опыта"}},
	}
}

func fakeKazakhYears(goal string) []storage.PlanYear {
	return []storage.PlanYear{
		{Year: 1, Title: "Іргетас және негіздер", Description: "Базалық дағдыларды үйрену және іргетас қалау", Milestones: []string{"Негізгі құралдарды меңгеру", "Алғашқы практикалық жобалар", "Желілік байланыс және менторлар іздеу"}},
		{Year: 2, Title: "Практика және тәжірибе", Description: "Білімді практикада қолдану", Milestones: []string{"Нақты жобалармен жұмыс", "Кәсіби дағдыларды дамыту", "Алғашқы жетістіктер"}},
		{Year: 3, Title: "Өсу және даму", Description: "Экспертизаны тереңдету", Milestones: []string{"Сарапшы болу", "Басқаларды оқыту", "Әсерді кеңейту"}},
		{Year: 4, Title: "Шеберлік", Description: "Жоғары деңгейге жету", Milestones: []string{"Кәсібінде тану", "Күрделі жобалар", "Көшбасшылық"}},
		{Year: 5, Title: "Мақсатқа жету", Description: "Мақсатқа жету: " + goal, Milestones: []string{"Амбицияларды іске асыру", "Жаңа көкжиектер", "Тәжірибені беру"}},
	}
}

func lookupResponse(responses map[styleKey]string, key styleKey) string {
	if r, ok := responses[key]; ok {
		return r
	}
	return responses[styleKey{style.FormalityCasual, style.LanguageRussian}]
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
