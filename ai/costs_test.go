package ai

import (
	"testing"
	"time"
)

func TestCostTracker_Track(t *testing.T) {
	tracker, err := NewCostTracker(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cost tracker: %v", err)
	}

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	record, err := tracker.Track("claude-3-5-sonnet-20241022", 1_000_000, 1_000_000, 42, "generate_response", time.Second)
	if err != nil {
		t.Fatalf("failed to track request: %v", err)
	}

	// $3 input + $15 output per million tokens.
	if record.Cost != 18.0 {
		t.Errorf("expected cost 18.0, got: %f", record.Cost)
	}
	if tracker.TotalCost() != 18.0 {
		t.Errorf("expected total cost 18.0, got: %f", tracker.TotalCost())
	}
	if got := tracker.DailyCost("2026-08-23"); got != 18.0 {
		t.Errorf("expected daily cost 18.0, got: %f", got)
	}
	if got := tracker.MonthlyCost("2026-08"); got != 18.0 {
		t.Errorf("expected monthly cost 18.0, got: %f", got)
	}
	if got := tracker.DailyCost("2026-08-22"); got != 0 {
		t.Errorf("expected no cost for other days, got: %f", got)
	}
}

func TestCostTracker_UnknownModelUsesDefaultPricing(t *testing.T) {
	tracker, err := NewCostTracker(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cost tracker: %v", err)
	}

	record, err := tracker.Track("claude-99-future", 1_000_000, 0, 1, "generate_response", 0)
	if err != nil {
		t.Fatalf("failed to track request: %v", err)
	}
	if record.Cost != 3.0 {
		t.Errorf("expected default input pricing of 3.0, got: %f", record.Cost)
	}
}

func TestCostTracker_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewCostTracker(dir)
	if err != nil {
		t.Fatalf("failed to create cost tracker: %v", err)
	}
	if _, err := first.Track("claude-3-5-sonnet-20241022", 100, 100, 42, "generate_plan", 0); err != nil {
		t.Fatalf("failed to track request: %v", err)
	}

	second, err := NewCostTracker(dir)
	if err != nil {
		t.Fatalf("failed to reopen cost tracker: %v", err)
	}

	if second.TotalCost() != first.TotalCost() {
		t.Errorf("expected persisted total cost %f, got: %f", first.TotalCost(), second.TotalCost())
	}
	if second.TotalCost() <= 0 {
		t.Error("expected a positive persisted cost")
	}
}

func TestCostTracker_UserCost(t *testing.T) {
	tracker, err := NewCostTracker(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cost tracker: %v", err)
	}

	if _, err := tracker.Track("claude-3-5-sonnet-20241022", 100, 100, 1, "generate_response", 0); err != nil {
		t.Fatalf("failed to track request: %v", err)
	}
	if _, err := tracker.Track("claude-3-5-sonnet-20241022", 200, 200, 2, "generate_response", 0); err != nil {
		t.Fatalf("failed to track request: %v", err)
	}

	stats := tracker.UserCost(1, 30)
	if stats.Requests != 1 {
		t.Errorf("expected 1 request for user 1, got: %d", stats.Requests)
	}
	if stats.InputTokens != 100 {
		t.Errorf("expected 100 input tokens, got: %d", stats.InputTokens)
	}

	empty := tracker.UserCost(999, 30)
	if empty.Requests != 0 {
		t.Errorf("expected no requests for unknown user, got: %d", empty.Requests)
	}
}
