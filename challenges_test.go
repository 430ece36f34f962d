package main

import (
	"math"
	"testing"
	"time"
)

func TestLatchFlipsOnce(t *testing.T) {
	var l latch
	if l.Set() {
		t.Fatal("fresh latch reads set")
	}
	if !l.Latch() {
		t.Fatal("first Latch must report the flip")
	}
	if l.Latch() {
		t.Fatal("second Latch must not report a flip")
	}
	if !l.Set() {
		t.Fatal("latched latch reads unset")
	}
}

func TestChallengeCompletionFiresOnce(t *testing.T) {
	tracker := NewProgressTracker()

	completed, _ := tracker.Observe(ProgressMetrics{TotalClicks: 50})
	if len(completed) != 0 {
		t.Fatalf("nothing should complete at 50 clicks: %v", completed)
	}

	completed, _ = tracker.Observe(ProgressMetrics{TotalClicks: 150})
	if len(completed) != 1 || completed[0].ID != "c1" {
		t.Fatalf("want c1 at 150 clicks, got %v", completed)
	}

	// Same threshold again: already latched.
	completed, _ = tracker.Observe(ProgressMetrics{TotalClicks: 200})
	if len(completed) != 0 {
		t.Fatalf("c1 completed twice: %v", completed)
	}

	progress, done, ok := tracker.ChallengeProgress("c1")
	if !ok || !done {
		t.Fatal("c1 should read completed")
	}
	if progress != 100 {
		t.Fatalf("completed progress clamps to goal, got %v", progress)
	}
}

func TestChallengeProgressMonotonic(t *testing.T) {
	tracker := NewProgressTracker()

	tracker.Observe(ProgressMetrics{LifetimeEarned: 800})
	// Metric dips (the money challenge reads lifetime earned, but a dip in
	// any observed metric must never walk progress backwards).
	tracker.Observe(ProgressMetrics{LifetimeEarned: 300})

	progress, _, _ := tracker.ChallengeProgress("c4")
	if progress != 800 {
		t.Fatalf("progress regressed: %v, want 800", progress)
	}
}

func TestAchievementUnlocks(t *testing.T) {
	tracker := NewProgressTracker()

	_, unlocked := tracker.Observe(ProgressMetrics{TotalClicks: 1, BestCombo: 12})
	ids := map[string]bool{}
	for _, def := range unlocked {
		ids[def.ID] = true
	}
	if !ids["a1"] || !ids["a2"] {
		t.Fatalf("want a1 and a2, got %v", ids)
	}

	_, unlocked = tracker.Observe(ProgressMetrics{TotalClicks: 2, BestCombo: 12})
	if len(unlocked) != 0 {
		t.Fatalf("achievements unlocked twice: %v", unlocked)
	}
	if !tracker.AchievementUnlocked("a1") {
		t.Fatal("a1 should stay unlocked")
	}
	if tracker.UnlockedCount() != 2 {
		t.Fatalf("unlocked count = %d, want 2", tracker.UnlockedCount())
	}
}

func TestProductionMultiplierDerivation(t *testing.T) {
	tracker := NewProgressTracker()
	if got := tracker.ProductionMultiplier(); got != 1 {
		t.Fatalf("fresh multiplier = %v, want 1", got)
	}

	// c8: +10% production. c11: x1.1 global.
	tracker.Observe(ProgressMetrics{TotalBuildings: 10})
	if got := tracker.ProductionMultiplier(); math.Abs(got-1.1) > 1e-9 {
		t.Fatalf("after c8 = %v, want 1.1", got)
	}

	tracker.Observe(ProgressMetrics{TotalBuildings: 10, OwnedUpgrades: 5})
	want := 1.1 * 1.1
	if got := tracker.ProductionMultiplier(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("after c8+c11 = %v, want %v", got, want)
	}
}

func TestChallengeRewardAppliesInSession(t *testing.T) {
	session, clock := newTestSession(DefaultTuning(), nil, nil)

	// 100 accepted clicks completes First Steps (+5 click power). Pace
	// them slowly enough that the detector never fires.
	for i := 0; i < 100; i++ {
		outcome := session.Click()
		if !outcome.Accepted {
			t.Fatalf("click %d rejected", i)
		}
		clock.Advance(500 * time.Millisecond)
	}

	snap := session.Snapshot()
	if snap.ClickPower != 6 {
		t.Fatalf("click power after First Steps = %v, want 6", snap.ClickPower)
	}
	for _, rec := range snap.Challenges {
		if rec.ID == "c1" && !rec.Completed {
			t.Fatal("c1 not recorded as completed")
		}
	}
}

func TestResetChallengesKeepsAchievements(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Observe(ProgressMetrics{TotalClicks: 150, BestCombo: 10})

	tracker.ResetChallenges()

	if _, done, _ := tracker.ChallengeProgress("c1"); done {
		t.Fatal("challenge completion survived reset")
	}
	if !tracker.AchievementUnlocked("a2") {
		t.Fatal("achievement lost in challenge reset")
	}
}

func TestTrackerRestore(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.restore(
		[]ChallengeProgressRecord{
			{ID: "c1", Progress: 40, Completed: false},
			{ID: "c2", Progress: 99999, Completed: true},
			{ID: "c3", Progress: 50000, Completed: false}, // above goal, not completed
			{ID: "zzz", Progress: 10, Completed: true},    // unknown, dropped
		},
		[]AchievementRecord{
			{ID: "a5", Tier: "silver", Unlocked: true},
			{ID: "nope", Unlocked: true},
		},
	)

	if progress, done, _ := tracker.ChallengeProgress("c1"); progress != 40 || done {
		t.Fatalf("c1 restore: progress %v done %v", progress, done)
	}
	if progress, done, _ := tracker.ChallengeProgress("c2"); !done || progress != 1000 {
		t.Fatalf("c2 restore should clamp to goal: progress %v done %v", progress, done)
	}
	if progress, done, _ := tracker.ChallengeProgress("c3"); done || progress != 10000 {
		t.Fatalf("c3 restore: progress %v done %v", progress, done)
	}
	if !tracker.AchievementUnlocked("a5") {
		t.Fatal("a5 restore lost")
	}
}
