package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ai-planner-bot/ai"
	"ai-planner-bot/planner"
	"ai-planner-bot/storage"
)

// Reminder slots, in local time.
const (
	morningHour   = 7
	afternoonHour = 14
	eveningHour   = 18
)

// ReminderScheduler sends styled reminders to every user with a plan
// at 07:00, 14:00 and 18:00. Each slot fires at most once per day.
type ReminderScheduler struct {
	store     *storage.Store
	tasks     *planner.TaskManager
	backend   ai.Interface
	reminders *planner.ReminderGenerator
	sender    messageSender
	logger    *zap.Logger

	now   func() time.Time
	stop  chan struct{}
	fired map[string]bool
}

// NewReminderScheduler creates the scheduler.
func NewReminderScheduler(store *storage.Store, tasks *planner.TaskManager, backend ai.Interface, sender messageSender, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		store:     store,
		tasks:     tasks,
		backend:   backend,
		reminders: planner.NewReminderGenerator(),
		sender:    sender,
		logger:    logger,
		now:       time.Now,
		stop:      make(chan struct{}),
		fired:     make(map[string]bool),
	}
}

// Start launches the scheduling loop in a goroutine.
func (s *ReminderScheduler) Start() {
	s.logger.Info("starting reminder scheduler")

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop terminates the scheduling loop.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("stopping reminder scheduler")
	close(s.stop)
}

func (s *ReminderScheduler) tick() {
	now := s.now()
	if now.Minute() != 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch now.Hour() {
	case morningHour:
		s.fireOnce(now, "morning", func() { s.SendMorningReminders(ctx) })
	case afternoonHour:
		s.fireOnce(now, "afternoon", func() { s.SendAfternoonReminders(ctx) })
	case eveningHour:
		s.fireOnce(now, "evening", func() { s.SendEveningReminders(ctx) })
	}
}

func (s *ReminderScheduler) fireOnce(now time.Time, slot string, send func()) {
	key := now.Format("2006-01-02") + " " + slot
	if s.fired[key] {
		return
	}
	s.fired[key] = true
	send()
}

// SendMorningReminders sends the 7 AM reminder with the current streak.
func (s *ReminderScheduler) SendMorningReminders(ctx context.Context) {
	s.logger.Info("sending morning reminders")

	for _, userID := range s.usersWithPlans() {
		rec, err := s.store.LoadUser(userID)
		if err != nil || rec.Plan == nil || !rec.WantsReminders() {
			continue
		}

		streak := 0
		if stats, err := s.tasks.ProgressStats(userID); err == nil {
			streak = stats.CurrentStreak
		}

		reminder := s.reminders.Morning(rec.Name, rec.CommunicationStyle, streak)
		if err := s.sender.SendMessage(ctx, userID, reminder); err != nil {
			s.logger.Error("failed to send morning reminder",
				zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

// SendAfternoonReminders sends the 2 PM check-in with today's progress.
func (s *ReminderScheduler) SendAfternoonReminders(ctx context.Context) {
	s.logger.Info("sending afternoon reminders")

	for _, userID := range s.usersWithPlans() {
		rec, err := s.store.LoadUser(userID)
		if err != nil || rec.Plan == nil || !rec.WantsReminders() {
			continue
		}

		daily, err := s.tasks.DailyTasks(ctx, userID, s.backend)
		if err != nil {
			s.logger.Error("failed to get tasks for afternoon reminder",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}

		reminder := s.reminders.Afternoon(rec.Name, rec.CommunicationStyle, daily.CompletedCount, daily.TotalTasks)
		if err := s.sender.SendMessage(ctx, userID, reminder); err != nil {
			s.logger.Error("failed to send afternoon reminder",
				zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

// SendEveningReminders sends the 6 PM summary plus any streak
// milestone celebration.
func (s *ReminderScheduler) SendEveningReminders(ctx context.Context) {
	s.logger.Info("sending evening reminders")

	for _, userID := range s.usersWithPlans() {
		rec, err := s.store.LoadUser(userID)
		if err != nil || rec.Plan == nil || !rec.WantsReminders() {
			continue
		}

		daily, err := s.tasks.DailyTasks(ctx, userID, s.backend)
		if err != nil {
			s.logger.Error("failed to get tasks for evening reminder",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}

		reminder := s.reminders.Evening(rec.Name, rec.CommunicationStyle, daily.CompletedCount, daily.TotalTasks)
		if err := s.sender.SendMessage(ctx, userID, reminder); err != nil {
			s.logger.Error("failed to send evening reminder",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}

		if stats, err := s.tasks.ProgressStats(userID); err == nil {
			if msg := s.reminders.StreakMilestone(rec.Name, rec.CommunicationStyle, stats.CurrentStreak); msg != "" {
				if err := s.sender.SendMessage(ctx, userID, msg); err != nil {
					s.logger.Error("failed to send milestone message",
						zap.Int64("user_id", userID), zap.Error(err))
				}
			}
		}
	}
}

func (s *ReminderScheduler) usersWithPlans() []int64 {
	ids, err := s.store.UserIDs()
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil
	}

	var withPlans []int64
	for _, id := range ids {
		rec, err := s.store.LoadUser(id)
		if err != nil || rec.Plan == nil {
			continue
		}
		withPlans = append(withPlans, id)
	}
	return withPlans
}
