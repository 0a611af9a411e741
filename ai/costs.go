package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// modelPricing is USD per million tokens.
type modelPricing struct {
	Input  float64
	Output float64
}

var pricing = map[string]modelPricing{
	"claude-3-5-sonnet-20241022": {Input: 3.00, Output: 15.00},
	"claude-3-opus-20240229":     {Input: 15.00, Output: 75.00},
	"claude-3-sonnet-20240229":   {Input: 3.00, Output: 15.00},
	"claude-3-haiku-20240307":    {Input: 0.25, Output: 1.25},
}

// maxRequestRecords caps the per-request history kept in the ledger.
const maxRequestRecords = 1000

// RequestRecord is one tracked API call.
type RequestRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Model        string    `json:"model"`
	UserID       int64     `json:"user_id"`
	RequestType  string    `json:"request_type"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"total_cost"`
	ElapsedMS    int64     `json:"elapsed_ms"`
}

// PeriodStats aggregates usage over a day or a month.
type PeriodStats struct {
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

type costLedger struct {
	TotalRequests     int                    `json:"total_requests"`
	TotalInputTokens  int                    `json:"total_input_tokens"`
	TotalOutputTokens int                    `json:"total_output_tokens"`
	TotalCost         float64                `json:"total_cost"`
	Requests          []RequestRecord        `json:"requests"`
	DailyStats        map[string]PeriodStats `json:"daily_stats"`
	MonthlyStats      map[string]PeriodStats `json:"monthly_stats"`
}

// CostTracker records token usage and cost per API call in a JSON
// ledger with daily and monthly rollups.
type CostTracker struct {
	path string

	mu     sync.Mutex
	ledger costLedger
	now    func() time.Time
}

// NewCostTracker loads or initializes the ledger at
// <dataDir>/cost_tracking.json.
func NewCostTracker(dataDir string) (*CostTracker, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	t := &CostTracker{
		path: filepath.Join(dataDir, "cost_tracking.json"),
		ledger: costLedger{
			DailyStats:   make(map[string]PeriodStats),
			MonthlyStats: make(map[string]PeriodStats),
		},
		now: time.Now,
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("failed to read cost ledger: %w", err)
	}
	if err := json.Unmarshal(data, &t.ledger); err != nil {
		return nil, fmt.Errorf("failed to parse cost ledger: %w", err)
	}
	if t.ledger.DailyStats == nil {
		t.ledger.DailyStats = make(map[string]PeriodStats)
	}
	if t.ledger.MonthlyStats == nil {
		t.ledger.MonthlyStats = make(map[string]PeriodStats)
	}

	return t, nil
}

// Track records one API call and persists the updated ledger.
func (t *CostTracker) Track(model string, inputTokens, outputTokens int, userID int64, requestType string, elapsed time.Duration) (RequestRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := pricing[model]
	if !ok {
		p = pricing["claude-3-5-sonnet-20241022"]
	}
	cost := float64(inputTokens)/1_000_000*p.Input + float64(outputTokens)/1_000_000*p.Output

	now := t.now()
	record := RequestRecord{
		Timestamp:    now,
		Model:        model,
		UserID:       userID,
		RequestType:  requestType,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		ElapsedMS:    elapsed.Milliseconds(),
	}

	t.ledger.TotalRequests++
	t.ledger.TotalInputTokens += inputTokens
	t.ledger.TotalOutputTokens += outputTokens
	t.ledger.TotalCost += cost

	t.ledger.Requests = append(t.ledger.Requests, record)
	if len(t.ledger.Requests) > maxRequestRecords {
		t.ledger.Requests = t.ledger.Requests[len(t.ledger.Requests)-maxRequestRecords:]
	}

	addToPeriod(t.ledger.DailyStats, now.Format("2006-01-02"), inputTokens, outputTokens, cost)
	addToPeriod(t.ledger.MonthlyStats, now.Format("2006-01"), inputTokens, outputTokens, cost)

	if err := t.save(); err != nil {
		return record, err
	}
	return record, nil
}

// TotalCost returns the cost accumulated across all requests.
func (t *CostTracker) TotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.TotalCost
}

// DailyCost returns the cost for a "YYYY-MM-DD" date, today when empty.
func (t *CostTracker) DailyCost(date string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if date == "" {
		date = t.now().Format("2006-01-02")
	}
	return t.ledger.DailyStats[date].Cost
}

// MonthlyCost returns the cost for a "YYYY-MM" month, the current month
// when empty.
func (t *CostTracker) MonthlyCost(month string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if month == "" {
		month = t.now().Format("2006-01")
	}
	return t.ledger.MonthlyStats[month].Cost
}

// UserCost sums a user's usage over the last days.
func (t *CostTracker) UserCost(userID int64, days int) PeriodStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().AddDate(0, 0, -days)
	var stats PeriodStats
	for _, r := range t.ledger.Requests {
		if r.UserID != userID || r.Timestamp.Before(cutoff) {
			continue
		}
		stats.Requests++
		stats.InputTokens += r.InputTokens
		stats.OutputTokens += r.OutputTokens
		stats.Cost += r.Cost
	}
	return stats
}

func addToPeriod(stats map[string]PeriodStats, key string, inputTokens, outputTokens int, cost float64) {
	s := stats[key]
	s.Requests++
	s.InputTokens += inputTokens
	s.OutputTokens += outputTokens
	s.Cost += cost
	stats[key] = s
}

// save writes the ledger atomically via a temp file rename.
func (t *CostTracker) save() error {
	data, err := json.MarshalIndent(&t.ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cost ledger: %w", err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cost ledger: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("failed to replace cost ledger: %w", err)
	}
	return nil
}
