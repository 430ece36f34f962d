package main

import (
	"math"
	"strings"
	"testing"
	"time"
)

var validatorNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func validState() PlayerState {
	state := NewPlayerState()
	state.Money = 50000
	state.LifetimeEarned = 120000
	state.AllTimeEarned = 120000
	state.TotalClicks = 4000
	state.Buildings = map[string]int{"cursor": 10}
	return state
}

func validRequest() *SaveRequest {
	return &SaveRequest{
		PlayerID:    "player-1",
		DisplayName: "Alice",
		State:       validState(),
	}
}

func TestValidateSaveAcceptsCleanState(t *testing.T) {
	if rej := ValidateSave(validRequest(), nil, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("clean save rejected: %+v", rej)
	}
}

func TestSanitizeIdentity(t *testing.T) {
	tuning := DefaultTuning().Validator
	req := validRequest()
	req.DisplayName = "  " + strings.Repeat("x", 80)
	req.ProjectName = strings.Repeat("p", 200)

	if rej := ValidateSave(req, nil, validatorNow, tuning); rej != nil {
		t.Fatalf("sanitizable identity rejected: %+v", rej)
	}
	if len(req.DisplayName) != tuning.MaxDisplayNameLen {
		t.Fatalf("display name len = %d, want %d", len(req.DisplayName), tuning.MaxDisplayNameLen)
	}
	if len(req.ProjectName) != tuning.MaxProjectNameLen {
		t.Fatalf("project name len = %d, want %d", len(req.ProjectName), tuning.MaxProjectNameLen)
	}

	empty := validRequest()
	empty.DisplayName = "   "
	if rej := ValidateSave(empty, nil, validatorNow, tuning); rej != nil {
		t.Fatalf("blank name rejected: %+v", rej)
	}
	if empty.DisplayName != "Anonymous" {
		t.Fatalf("blank name = %q, want Anonymous", empty.DisplayName)
	}
}

func TestValidateSaveClampsBestCombo(t *testing.T) {
	req := validRequest()
	req.State.BestCombo = 999999

	if rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("oversized combo should clamp, not reject: %+v", rej)
	}
	if req.State.BestCombo != DefaultTuning().Validator.MaxBestCombo {
		t.Fatalf("best combo = %d, want clamp to %d", req.State.BestCombo, DefaultTuning().Validator.MaxBestCombo)
	}
}

func TestValidateSaveProjectURL(t *testing.T) {
	cases := []struct {
		url    string
		reject bool
	}{
		{"", false},
		{"https://example.com/project", false},
		{"http://example.com", false},
		{"ftp://example.com", true},
		{"javascript:alert(1)", true},
		{"not a url", true},
		{"/relative/path", true},
	}
	for _, c := range cases {
		req := validRequest()
		req.ProjectURL = c.url
		rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator)
		if c.reject {
			if rej == nil {
				t.Errorf("url %q accepted, want rejection", c.url)
				continue
			}
			if rej.Reason != RejectInvalidProjectURL || rej.Category != RejectCategoryValidation {
				t.Errorf("url %q: got %s/%s", c.url, rej.Reason, rej.Category)
			}
		} else if rej != nil {
			t.Errorf("url %q rejected: %+v", c.url, rej)
		}
	}
}

func TestValidateSaveMoneyRange(t *testing.T) {
	req := validRequest()
	req.State.Money = float64(1 << 60)

	rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator)
	if rej == nil || rej.Reason != RejectMoneyRange {
		t.Fatalf("money beyond 2^53-1: got %+v", rej)
	}
	if rej.Category != RejectCategoryValidation {
		t.Fatalf("money range category = %s", rej.Category)
	}
}

func TestValidateSavePrestigeRanges(t *testing.T) {
	req := validRequest()
	req.State.PrestigeLevel = 20000
	rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator)
	if rej == nil || rej.Reason != RejectPrestigeLevel {
		t.Fatalf("prestige level 20000: got %+v", rej)
	}

	req = validRequest()
	req.State.PrestigeTokens = 2000000
	rej = ValidateSave(req, nil, validatorNow, DefaultTuning().Validator)
	if rej == nil || rej.Reason != RejectPrestigeTokens {
		t.Fatalf("prestige tokens 2e6: got %+v", rej)
	}
}

func TestValidateSaveEarningsPerClick(t *testing.T) {
	req := validRequest()
	req.State.TotalClicks = 10
	req.State.LifetimeEarned = 1e6 // 100k per click

	rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator)
	if rej == nil || rej.Reason != RejectEarningsPerClick {
		t.Fatalf("implausible earnings per click: got %+v", rej)
	}
	if rej.Category != RejectCategoryAntiCheat {
		t.Fatalf("EPC category = %s, want anti_cheat", rej.Category)
	}
}

func TestValidateSaveEarningsCeilingScalesWithPrestige(t *testing.T) {
	// 100k per click is implausible at prestige 0 but fine at prestige 20
	// (ceiling 10000 * 20).
	req := validRequest()
	req.State.TotalClicks = 10
	req.State.LifetimeEarned = 1e6
	req.State.PrestigeLevel = 20
	req.State.PrestigeTokens = 20

	if rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("prestige-scaled EPC rejected: %+v", rej)
	}
}

func priorSave(state PlayerState, savedAt time.Time) *StoredSave {
	return &StoredSave{
		PlayerID:    "player-1",
		DisplayName: "Alice",
		State:       state,
		CreatedAt:   savedAt.Add(-24 * time.Hour),
		LastSavedAt: savedAt,
	}
}

func TestValidateSaveClickRate(t *testing.T) {
	priorState := validState()
	priorState.TotalClicks = 1000
	prior := priorSave(priorState, validatorNow.Add(-1*time.Hour))

	req := validRequest()
	req.State.TotalClicks = 1000 + 60001 // just over 50k/hour with margin
	req.State.LifetimeEarned = 200000

	rej := ValidateSave(req, prior, validatorNow, DefaultTuning().Validator)
	if rej == nil || rej.Reason != RejectClickRate {
		t.Fatalf("implausible click rate: got %+v", rej)
	}
	if rej.Category != RejectCategoryAntiCheat {
		t.Fatalf("click rate category = %s", rej.Category)
	}

	// A plausible delta over the same window passes.
	ok := validRequest()
	ok.State.TotalClicks = 1000 + 20000
	if rej := ValidateSave(ok, prior, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("plausible click rate rejected: %+v", rej)
	}
}

func TestValidateSaveRacingSavesUseMinimumWindow(t *testing.T) {
	// Two saves in the same second: the rate check assumes a one-second
	// window instead of dividing by zero.
	priorState := validState()
	priorState.TotalClicks = 4000
	prior := priorSave(priorState, validatorNow)

	req := validRequest()
	req.State.TotalClicks = 4005

	if rej := ValidateSave(req, prior, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("5 clicks in a racing save rejected: %+v", rej)
	}

	burst := validRequest()
	burst.State.TotalClicks = 4000 + 100
	if rej := ValidateSave(burst, prior, validatorNow, DefaultTuning().Validator); rej == nil || rej.Reason != RejectClickRate {
		t.Fatalf("100 clicks in one second should reject: got %+v", rej)
	}
}

func TestValidateSavePrestigeRollback(t *testing.T) {
	priorState := validState()
	priorState.PrestigeLevel = 3
	priorState.PrestigeTokens = 7
	prior := priorSave(priorState, validatorNow.Add(-1*time.Hour))

	req := validRequest()
	req.State.PrestigeLevel = 2
	req.State.PrestigeTokens = 7

	rej := ValidateSave(req, prior, validatorNow, DefaultTuning().Validator)
	if rej == nil || rej.Reason != RejectPrestigeRollback {
		t.Fatalf("prestige rollback: got %+v", rej)
	}
	if rej.Category != RejectCategoryAntiCheat {
		t.Fatalf("rollback category = %s", rej.Category)
	}

	// Equal prestige is not a rollback.
	same := validRequest()
	same.State.PrestigeLevel = 3
	same.State.PrestigeTokens = 7
	if rej := ValidateSave(same, prior, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("equal prestige rejected: %+v", rej)
	}
}

func TestValidateSaveRejectsNegativeValues(t *testing.T) {
	// Negative values must reject, never repair: normalization would
	// happily clamp a forged -1 to 0 if it ran before the range gate.
	cases := []struct {
		name   string
		mutate func(*PlayerState)
		reason string
	}{
		{"money -1", func(s *PlayerState) { s.Money = -1 }, RejectMoneyRange},
		{"money large negative", func(s *PlayerState) { s.Money = -1e12 }, RejectMoneyRange},
		{"prestige level -1", func(s *PlayerState) { s.PrestigeLevel = -1 }, RejectPrestigeLevel},
		{"prestige tokens -1", func(s *PlayerState) { s.PrestigeTokens = -1 }, RejectPrestigeTokens},
	}
	for _, c := range cases {
		req := validRequest()
		c.mutate(&req.State)
		rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator)
		if rej == nil {
			t.Errorf("%s: accepted, want %s", c.name, c.reason)
			continue
		}
		if rej.Reason != c.reason || rej.Category != RejectCategoryValidation {
			t.Errorf("%s: got %s/%s, want %s/validation", c.name, rej.Reason, rej.Category, c.reason)
		}
	}

	// Regardless of every other field being pristine.
	req := validRequest()
	req.State = NewPlayerState()
	req.State.Money = -1
	if rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator); rej == nil || rej.Reason != RejectMoneyRange {
		t.Fatalf("money=-1 on an otherwise clean save: got %+v, want rejection", rej)
	}
}

func TestValidateSaveStillRepairsNonRangeCorruption(t *testing.T) {
	// NaN is not a range violation; it is repaired after the range gate,
	// as are unknown catalog keys.
	req := validRequest()
	req.State.LifetimeEarned = math.NaN()
	req.State.Buildings["castle"] = 9

	if rej := ValidateSave(req, nil, validatorNow, DefaultTuning().Validator); rej != nil {
		t.Fatalf("NaN lifetime should normalize, not reject: %+v", rej)
	}
	if req.State.LifetimeEarned != 0 {
		t.Fatalf("lifetimeEarned = %v after validation, want 0", req.State.LifetimeEarned)
	}
	if _, ok := req.State.Buildings["castle"]; ok {
		t.Fatal("unknown building key survived validation")
	}
}

func TestPlayerLockKeyStable(t *testing.T) {
	a := playerLockKey("player-1")
	b := playerLockKey("player-1")
	c := playerLockKey("player-2")
	if a != b {
		t.Fatal("lock key not deterministic")
	}
	if a == c {
		t.Fatal("distinct players share a lock key")
	}
}
