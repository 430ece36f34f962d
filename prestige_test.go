package main

import (
	"math"
	"testing"
	"time"
)

func TestPrestigeUnavailableBelowThreshold(t *testing.T) {
	state := NewPlayerState()
	state.Money = 5e8
	state.LifetimeEarned = 9e8
	state.AllTimeEarned = 9e8
	session, _ := newTestSession(DefaultTuning(), &state, nil)

	if _, err := session.Prestige(); err != ErrPrestigeUnavailable {
		t.Fatalf("prestige below 1e9: got %v, want ErrPrestigeUnavailable", err)
	}
}

func TestPrestigeUsesBestOfLifetimeAndBalance(t *testing.T) {
	// Lifetime below threshold, balance above: the larger value qualifies.
	state := NewPlayerState()
	state.Money = 1.5e9
	state.LifetimeEarned = 2e8
	state.AllTimeEarned = 2e8
	session, _ := newTestSession(DefaultTuning(), &state, nil)

	tokens, err := session.Prestige()
	if err != nil {
		t.Fatalf("prestige: %v", err)
	}
	if tokens != 1 {
		t.Fatalf("tokens = %d, want 1", tokens)
	}
}

func TestPrestigeResetAndRetention(t *testing.T) {
	state := NewPlayerState()
	state.Money = 100
	state.LifetimeEarned = 2.5e9
	state.AllTimeEarned = 3e9
	state.ClickPower = 64
	state.TotalClicks = 50000
	state.Buildings = map[string]int{"cursor": 40, "bank": 3}
	state.Upgrades = []string{"click1", "global1"}
	state.BestCombo = 120
	state.FrenzyActivations = 9
	state.GoldenClicks = 4
	for i := range state.Achievements {
		if state.Achievements[i].ID == "a1" || state.Achievements[i].ID == "a10" {
			state.Achievements[i].Unlocked = true
		}
	}
	for i := range state.Challenges {
		if state.Challenges[i].ID == "c1" {
			state.Challenges[i].Completed = true
			state.Challenges[i].Progress = 100
		}
	}

	session, _ := newTestSession(DefaultTuning(), &state, nil)
	before := session.Snapshot()

	tokens, err := session.Prestige()
	if err != nil {
		t.Fatalf("prestige: %v", err)
	}
	if tokens != 2 {
		t.Fatalf("tokens = %d, want floor(2.5e9/1e9) = 2", tokens)
	}

	level, banked, multiplier := session.PrestigeInfo()
	if level != 1 || banked != 2 {
		t.Fatalf("prestige info = level %d tokens %d, want 1/2", level, banked)
	}
	if math.Abs(multiplier-1.2) > 1e-9 {
		t.Fatalf("multiplier = %v, want 1.2", multiplier)
	}

	after := session.Snapshot()

	// Epoch state re-seeds.
	if after.Money != 0 || after.LifetimeEarned != 0 || after.TotalClicks != 0 {
		t.Fatalf("epoch scalars survived: %+v", after)
	}
	if after.ClickPower != 1 {
		t.Fatalf("click power = %v, want base 1", after.ClickPower)
	}
	if len(after.Buildings) != 0 || len(after.Upgrades) != 0 {
		t.Fatalf("buildings/upgrades survived: %v %v", after.Buildings, after.Upgrades)
	}
	if after.FrenzyActivations != 0 || after.GoldenClicks != 0 {
		t.Fatalf("epoch counters survived: %+v", after)
	}
	for _, rec := range after.Challenges {
		if rec.Completed || rec.Progress != 0 {
			t.Fatalf("challenge %s survived prestige: %+v", rec.ID, rec)
		}
	}

	// Permanent progress survives untouched.
	if after.AllTimeEarned != before.AllTimeEarned {
		t.Fatalf("allTimeEarned changed: %v -> %v", before.AllTimeEarned, after.AllTimeEarned)
	}
	if after.BestCombo != 120 {
		t.Fatalf("best combo lost: %d", after.BestCombo)
	}
	if len(after.Achievements) != len(before.Achievements) {
		t.Fatalf("achievement record count changed")
	}
	for i := range before.Achievements {
		if before.Achievements[i] != after.Achievements[i] {
			t.Fatalf("achievement %s changed across prestige", before.Achievements[i].ID)
		}
	}
}

func TestPrestigeFlushesSave(t *testing.T) {
	saves := make(chan PlayerState, 8)
	manuals := make(chan bool, 8)
	save := func(state PlayerState, manual bool) {
		saves <- state
		manuals <- manual
	}

	state := NewPlayerState()
	state.LifetimeEarned = 1e9
	state.AllTimeEarned = 1e9
	session, _ := newTestSession(DefaultTuning(), &state, save)

	if _, err := session.Prestige(); err != nil {
		t.Fatalf("prestige: %v", err)
	}

	select {
	case snap := <-saves:
		if snap.PrestigeLevel != 1 || snap.PrestigeTokens != 1 {
			t.Fatalf("flushed save has level %d tokens %d", snap.PrestigeLevel, snap.PrestigeTokens)
		}
		if snap.Money != 0 {
			t.Fatalf("flushed save money = %v, want 0", snap.Money)
		}
		if !<-manuals {
			t.Fatal("prestige save must bypass the debounce")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prestige never flushed a save")
	}
}

func TestRepeatedPrestigeAccumulatesTokens(t *testing.T) {
	state := NewPlayerState()
	state.LifetimeEarned = 1e9
	state.AllTimeEarned = 1e9
	session, _ := newTestSession(DefaultTuning(), &state, nil)

	if _, err := session.Prestige(); err != nil {
		t.Fatalf("first prestige: %v", err)
	}
	// Fresh epoch starts at zero; a second prestige needs new earnings.
	if _, err := session.Prestige(); err != ErrPrestigeUnavailable {
		t.Fatalf("second prestige with no earnings: got %v", err)
	}
}
