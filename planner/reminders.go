package planner

import (
	"fmt"
	"math/rand"
	"time"

	"ai-planner-bot/style"
)

// streakMilestones are the streak lengths that earn a celebration message.
var streakMilestones = map[int]bool{7: true, 14: true, 30: true, 50: true, 100: true, 365: true}

// ReminderGenerator produces reminder texts adapted to the user's
// communication style. Greetings are picked at random to keep daily
// messages from reading identically.
type ReminderGenerator struct {
	rng *rand.Rand
}

// NewReminderGenerator creates a generator with a time-seeded source.
func NewReminderGenerator() *ReminderGenerator {
	return &ReminderGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Morning builds the 7 AM reminder.
func (g *ReminderGenerator) Morning(name string, st style.Style, streak int) string {
	if st.Language == style.LanguageKazakh {
		return g.kazakhMorning(name, st, streak)
	}
	return g.russianMorning(name, st, streak)
}

// Afternoon builds the 2 PM check-in with current task progress.
func (g *ReminderGenerator) Afternoon(name string, st style.Style, completed, total int) string {
	if st.Language == style.LanguageKazakh {
		if st.Formality == style.FormalityFormal {
			return fmt.Sprintf("Сәлеметсіз бе, %s! Бүгінгі прогресс: %d/%d тапсырма орындалды.\nТапсырмаларды көру: /tasks", name, completed, total)
		}
		return fmt.Sprintf("Сәлем, %s! Бүгін: %d/%d тапсырма дайын.\nТапсырмалар: /tasks", name, completed, total)
	}

	if st.Formality == style.FormalityFormal {
		return fmt.Sprintf("Добрый день, %s! Ваш прогресс на сегодня: выполнено %d из %d задач.\nПосмотрите задачи: /tasks", name, completed, total)
	}
	return fmt.Sprintf("Привет, %s! Сегодня: %d из %d задач готово.\nЗадачи: /tasks", name, completed, total)
}

// Evening builds the 6 PM summary.
func (g *ReminderGenerator) Evening(name string, st style.Style, completed, total int) string {
	if st.Language == style.LanguageKazakh {
		if completed == total && total > 0 {
			return fmt.Sprintf("Жарайсың, %s! Бүгінгі барлық %d тапсырма орындалды. Ертең кездескенше!", name, total)
		}
		return fmt.Sprintf("%s, бүгін %d/%d тапсырма орындалды. Әлі үлгеруге болады: /tasks", name, completed, total)
	}

	if completed == total && total > 0 {
		if st.Formality == style.FormalityFormal {
			return fmt.Sprintf("Отличная работа, %s! Все %d задач на сегодня выполнены. До завтра!", name, total)
		}
		return fmt.Sprintf("Молодец, %s! Все %d задач на сегодня сделаны. До завтра!", name, total)
	}

	if st.Formality == style.FormalityFormal {
		return fmt.Sprintf("%s, сегодня выполнено %d из %d задач. Ещё есть время закончить: /tasks", name, completed, total)
	}
	return fmt.Sprintf("%s, сегодня готово %d из %d задач. Ещё успеешь доделать: /tasks", name, completed, total)
}

// StreakMilestone returns a celebration message when streak is one of
// the milestone values, and an empty string otherwise.
func (g *ReminderGenerator) StreakMilestone(name string, st style.Style, streak int) string {
	if !streakMilestones[streak] {
		return ""
	}

	if st.Language == style.LanguageKazakh {
		return fmt.Sprintf("🔥 %s, керемет! Қатарынан %d күн! Осылай жалғастыр!", name, streak)
	}
	if st.Formality == style.FormalityFormal {
		return fmt.Sprintf("🔥 %s, поздравляю! %d дней подряд! Продолжайте в том же духе!", name, streak)
	}
	return fmt.Sprintf("🔥 %s, огонь! %d дней подряд! Так держать!", name, streak)
}

func (g *ReminderGenerator) russianMorning(name string, st style.Style, streak int) string {
	var greetings, messages []string
	var ending string

	if st.Formality == style.FormalityFormal {
		greetings = []string{
			fmt.Sprintf("Доброе утро, %s!", name),
			fmt.Sprintf("Здравствуйте, %s!", name),
		}
		messages = []string{
			"Пора начать работу над вашим планом.",
			"Сегодня отличный день для достижения целей.",
			"Не забудьте выполнить задачи на сегодня.",
		}
		ending = "Посмотрите задачи с помощью /tasks"
	} else {
		greetings = []string{
			fmt.Sprintf("Доброе утро, %s!", name),
			fmt.Sprintf("Привет, %s!", name),
			fmt.Sprintf("С добрым утром, %s!", name),
		}
		messages = []string{
			"Время работать над своими целями!",
			"Сегодня будет продуктивный день!",
			"Не забудь про свои задачи!",
		}
		ending = "Смотри задачи: /tasks"
	}

	text := g.pick(greetings) + " " + g.pick(messages)

	if streak > 0 {
		if st.Formality == style.FormalityFormal {
			text += fmt.Sprintf("\nВаша серия: %d дней подряд!", streak)
		} else {
			text += fmt.Sprintf("\nТвоя серия: %d дней подряд!", streak)
		}
	}

	return text + "\n" + ending
}

func (g *ReminderGenerator) kazakhMorning(name string, st style.Style, streak int) string {
	var greetings, messages []string
	var ending string

	if st.Formality == style.FormalityFormal {
		greetings = []string{
			fmt.Sprintf("Қайырлы таң, %s!", name),
			fmt.Sprintf("Сәлеметсіз бе, %s!", name),
		}
		messages = []string{
			"Жоспарыңызбен жұмыс істеуді бастайтын уақыт келді.",
			"Бүгін мақсаттарға жету үшін тамаша күн.",
		}
		ending = "Тапсырмаларды көру: /tasks"
	} else {
		greetings = []string{
			fmt.Sprintf("Қайырлы таң, %s!", name),
			fmt.Sprintf("Сәлем, %s!", name),
		}
		messages = []string{
			"Мақсаттарыңмен жұмыс істейтін уақыт!",
			"Бүгін өнімді күн болады!",
		}
		ending = "Тапсырмалар: /tasks"
	}

	text := g.pick(greetings) + " " + g.pick(messages)

	if streak > 0 {
		text += fmt.Sprintf("\nСерия: қатарынан %d күн!", streak)
	}

	return text + "\n" + ending
}

func (g *ReminderGenerator) pick(variants []string) string {
	return variants[g.rng.Intn(len(variants))]
}
