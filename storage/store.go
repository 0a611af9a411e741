package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-planner-bot/style"
)

// ErrNotFound is returned when no record exists for the requested user.
var ErrNotFound = errors.New("user record not found")

// Plan is a generated multi-year development plan.
type Plan struct {
	UserName  string     `json:"user_name"`
	Goal      string     `json:"goal"`
	Language  string     `json:"language"`
	Formality string     `json:"formality"`
	Years     []PlanYear `json:"years"`
	CreatedAt time.Time  `json:"created_at"`
}

// PlanYear is one year of a plan with its milestones.
type PlanYear struct {
	Year        int      `json:"year"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Milestones  []string `json:"milestones"`
}

// TaskStatus records the completion state of a single daily task.
// Task ids have the form "<YYYY-MM-DD>_<n>".
type TaskStatus struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Stats holds streak information updated on task completion.
type Stats struct {
	CurrentStreak int       `json:"current_streak"`
	BestStreak    int       `json:"best_streak"`
	LastUpdated   time.Time `json:"last_updated"`
}

// UserRecord is everything persisted for one user: profile, plan,
// per-day task completion and streak stats.
type UserRecord struct {
	UserID              int64                 `json:"user_id"`
	Username            string                `json:"username,omitempty"`
	Name                string                `json:"name,omitempty"`
	Age                 int                   `json:"age,omitempty"`
	Goals               string                `json:"goals,omitempty"`
	PreferredLanguage   string                `json:"preferred_language,omitempty"`
	CommunicationStyle  style.Style           `json:"communication_style"`
	OnboardingCompleted bool                  `json:"onboarding_completed"`
	OnboardingDate      *time.Time            `json:"onboarding_date,omitempty"`
	RemindersEnabled    *bool                 `json:"reminders_enabled,omitempty"`
	Plan                *Plan                 `json:"plan,omitempty"`
	PlanCreatedAt       *time.Time            `json:"plan_created_at,omitempty"`
	DailyTasks          map[string]TaskStatus `json:"daily_tasks,omitempty"`
	Stats               Stats                 `json:"stats"`
}

// WantsReminders reports whether reminders should be sent to this user.
// Reminders default to enabled until explicitly switched off.
func (r *UserRecord) WantsReminders() bool {
	return r.RemindersEnabled == nil || *r.RemindersEnabled
}

// Store persists user records as one JSON file per user under a data
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written record behind.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the data directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// SaveUser writes the record for rec.UserID.
func (s *Store) SaveUser(rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	path := s.userPath(rec.UserID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace user record: %w", err)
	}

	return nil
}

// LoadUser reads the record for the given user id. Returns ErrNotFound
// when the user has no record yet.
func (s *Store) LoadUser(userID int64) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}

	var rec UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}
	if rec.DailyTasks == nil {
		rec.DailyTasks = make(map[string]TaskStatus)
	}

	return &rec, nil
}

// DeleteUser removes the record for the given user id. Deleting a
// missing record is not an error.
func (s *Store) DeleteUser(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.userPath(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}

// UserIDs lists the ids of all users with a stored record.
func (s *Store) UserIDs() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var ids []int64
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "user_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		idStr := strings.TrimSuffix(strings.TrimPrefix(name, "user_"), ".json")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *Store) userPath(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("user_%d.json", userID))
}
