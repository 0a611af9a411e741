package style

import "strings"

// Style describes a user's communication style as detected from their
// messages. It drives the tone of AI prompts, reminders and onboarding.
type Style struct {
	Formality  string `json:"formality"`   // "formal" or "casual"
	Language   string `json:"language"`    // "russian" or "kazakh"
	EmojiUsage string `json:"emoji_usage"` // "high" or "low"
	Verbosity  string `json:"verbosity"`   // "brief" or "detailed"
}

const (
	FormalityFormal = "formal"
	FormalityCasual = "casual"

	LanguageRussian = "russian"
	LanguageKazakh  = "kazakh"

	EmojiHigh = "high"
	EmojiLow  = "low"

	VerbosityBrief    = "brief"
	VerbosityDetailed = "detailed"
)

// Default returns the style assumed before any user text has been seen.
func Default() Style {
	return Style{
		Formality:  FormalityCasual,
		Language:   LanguageRussian,
		EmojiUsage: EmojiLow,
		Verbosity:  VerbosityBrief,
	}
}

var formalRussian = []string{
	"здравствуйте", "уважаемый", "благодарю", "пожалуйста",
	"будьте добры", "не могли бы", "разрешите", "извините",
	"позвольте", "спасибо вам", "с уважением",
}

var casualRussian = []string{
	"привет", "прив", "ку", "здарова", "хай", "дарова",
	"спс", "пасиб", "пож", "давай", "ок", "окей",
	"чё", "чего", "ваще", "короче", "типа", "блин",
}

var kazakhMarkers = []string{
	"сәлем", "сәлеметсіз", "салам", "қалайсың", "қалайсыз",
	"рақмет", "көмектес", "көмек", "жоспар", "мақсат",
	"керек", "қажет", "бол", "жасау", "істеу",
	"өтінем", "өтініш", "құрметті", "алға",
}

var russianMarkers = []string{
	"привет", "здравствуйте", "помогите", "помощь", "план",
	"нужно", "надо", "сделать", "помочь", "цель",
	"спасибо", "пожалуйста", "хорошо", "да", "нет",
}

// Letters found only in the Kazakh alphabet. Any of these in a message
// settles the language regardless of marker counts.
var kazakhRunes = []rune{'ә', 'ғ', 'қ', 'ң', 'ө', 'ұ', 'ү', 'һ', 'і'}

// Detect analyzes a message and returns the detected style parameters.
// An empty message yields the default style.
func Detect(text string) Style {
	if text == "" {
		return Default()
	}

	lower := strings.ToLower(text)

	return Style{
		Formality:  detectFormality(lower),
		Language:   detectLanguage(lower),
		EmojiUsage: detectEmojiUsage(text),
		Verbosity:  detectVerbosity(text),
	}
}

func detectFormality(lower string) string {
	formalCount := countMarkers(lower, formalRussian)
	casualCount := countMarkers(lower, casualRussian)

	hasFullPunctuation := strings.Count(lower, ".") > 0 || strings.Count(lower, "!") > 1
	hasLongWords := false
	for _, word := range strings.Fields(lower) {
		if len([]rune(word)) > 12 {
			hasLongWords = true
			break
		}
	}

	switch {
	case formalCount > casualCount:
		return FormalityFormal
	case casualCount > formalCount:
		return FormalityCasual
	case hasFullPunctuation && hasLongWords:
		return FormalityFormal
	default:
		return FormalityCasual
	}
}

func detectLanguage(lower string) string {
	kazakhCount := countMarkers(lower, kazakhMarkers)
	russianCount := countMarkers(lower, russianMarkers)

	if strings.ContainsAny(lower, string(kazakhRunes)) {
		return LanguageKazakh
	}
	if kazakhCount > russianCount {
		return LanguageKazakh
	}
	return LanguageRussian
}

func detectEmojiUsage(text string) string {
	emojiCount := 0
	for _, r := range text {
		if isEmoji(r) {
			emojiCount++
		}
	}

	// High usage: 2 or more emojis, or any emoji in a very short message.
	if emojiCount >= 2 || (emojiCount > 0 && len([]rune(text)) < 20) {
		return EmojiHigh
	}
	return EmojiLow
}

func detectVerbosity(text string) string {
	wordCount := len(strings.Fields(text))
	sentenceCount := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if sentenceCount < 1 {
		sentenceCount = 1
	}

	switch {
	case wordCount < 10:
		return VerbosityBrief
	case wordCount > 20 || sentenceCount > 2:
		return VerbosityDetailed
	default:
		return VerbosityBrief
	}
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols & pictographs
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport & map symbols
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF: // flags
		return true
	case r >= 0x2702 && r <= 0x27B0: // dingbats
		return true
	}
	return false
}

func countMarkers(text string, markers []string) int {
	count := 0
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			count++
		}
	}
	return count
}

// SystemPrompt builds the AI system prompt matching the detected style.
func SystemPrompt(s Style) string {
	if s.Language == LanguageKazakh {
		return kazakhPrompt(s)
	}
	return russianPrompt(s)
}

func russianPrompt(s Style) string {
	var tone string
	if s.Formality == FormalityFormal {
		tone = "Вы - профессиональный AI-ассистент по планированию карьеры. " +
			"Общайтесь уважительно, используйте 'Вы'. " +
			"Давайте структурированные и обоснованные рекомендации."
	} else {
		tone = "Ты - дружелюбный AI-помощник по планированию. " +
			"Общайся на 'ты', будь позитивным и поддерживающим. " +
			"Давай практичные советы простым языком."
	}

	emoji := " Минимизируй использование эмодзи. "
	if s.EmojiUsage == EmojiHigh {
		emoji = " Используй эмодзи для эмоциональности. "
	}

	length := "Давай краткие, ёмкие ответы (2-3 предложения)."
	if s.Verbosity == VerbosityDetailed {
		length = "Давай подробные, развёрнутые ответы (5-7 предложений)."
	}

	return tone + emoji + length
}

func kazakhPrompt(s Style) string {
	var tone string
	if s.Formality == FormalityFormal {
		tone = "Сіз - мансапты жоспарлау бойынша кәсіби AI-ассистентсіз. " +
			"'Сіз' деп құрметпен қарап, құрылымдалған және негізделген ұсыныстар беріңіз."
	} else {
		tone = "Сен - жоспарлау бойынша достық AI-көмекшісің. " +
			"'Сен' деп сөйлес, оң көңіл-күйде және қолдаушы бол. " +
			"Қарапайым тілмен практикалық кеңестер бер."
	}

	emoji := " Эмодзи қолдануды азайт. "
	if s.EmojiUsage == EmojiHigh {
		emoji = " Эмоционалдық болу үшін эмодзи қолдан. "
	}

	length := "Қысқа, нұсқа жауаптар бер (2-3 сөйлем)."
	if s.Verbosity == VerbosityDetailed {
		length = "Толық, кеңейтілген жауаптар бер (5-7 сөйлем)."
	}

	return tone + emoji + length
}
