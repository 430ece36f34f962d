package main

/* ======================
   Player State
   ====================== */

// ChallengeProgressRecord is the persisted form of one challenge.
type ChallengeProgressRecord struct {
	ID        string  `json:"id"`
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
}

// AchievementRecord is the persisted form of one achievement. Tier is
// denormalized from the catalog so readers of the raw save (leaderboard,
// review tooling) never need the catalog to render it.
type AchievementRecord struct {
	ID       string `json:"id"`
	Tier     string `json:"tier"`
	Unlocked bool   `json:"unlocked"`
}

// PlayerState is the durable snapshot of one player's progress. It is the
// exact shape stored in the game_saves JSONB column and carried in the
// save/load payloads. Combo state is deliberately absent: streaks are
// ephemeral and die with the session.
//
// LifetimeEarned accumulates everything produced since the last prestige
// and drives building unlocks, money challenges, the prestige gate, the
// validator ratios and the leaderboard. AllTimeEarned never resets and is
// carried for stats only.
type PlayerState struct {
	Money          float64 `json:"money"`
	LifetimeEarned float64 `json:"lifetimeEarned"`
	AllTimeEarned  float64 `json:"allTimeEarned"`
	ClickPower     float64 `json:"clickPower"`
	TotalClicks    int64   `json:"totalClicks"`

	Buildings map[string]int `json:"buildings"`
	Upgrades  []string       `json:"upgrades"`

	Challenges   []ChallengeProgressRecord `json:"challenges"`
	Achievements []AchievementRecord       `json:"achievements"`

	PrestigeLevel  int64 `json:"prestigeLevel"`
	PrestigeTokens int64 `json:"prestigeTokens"`

	FrenzyActivations int64 `json:"frenzyActivations"`
	GoldenClicks      int64 `json:"goldenBonusClicks"`
	BestCombo         int64 `json:"bestCombo"`
}

// NewPlayerState is the state of a brand-new player.
func NewPlayerState() PlayerState {
	state := PlayerState{
		ClickPower: DefaultTuning().Engine.BaseClickPower,
		Buildings:  map[string]int{},
		Upgrades:   []string{},
	}
	state.Challenges = NewProgressTracker().challengeRecords()
	state.Achievements = NewProgressTracker().achievementRecords()
	return state
}

// Normalize coerces corrupted numeric fields and drops out-of-catalog keys
// so a hostile or bit-rotted save cannot smuggle NaN or unknown entries into
// the engine. Range enforcement (rejection rather than repair) is the
// validator's job, not this function's.
func (s *PlayerState) Normalize() {
	s.Money = amountOrZero(s.Money)
	s.LifetimeEarned = amountOrZero(s.LifetimeEarned)
	s.AllTimeEarned = amountOrZero(s.AllTimeEarned)
	if s.AllTimeEarned < s.LifetimeEarned {
		s.AllTimeEarned = s.LifetimeEarned
	}
	s.ClickPower = amountOrZero(s.ClickPower)
	if s.ClickPower == 0 {
		s.ClickPower = DefaultTuning().Engine.BaseClickPower
	}
	if s.TotalClicks < 0 {
		s.TotalClicks = 0
	}
	if s.PrestigeLevel < 0 {
		s.PrestigeLevel = 0
	}
	if s.PrestigeTokens < 0 {
		s.PrestigeTokens = 0
	}
	if s.FrenzyActivations < 0 {
		s.FrenzyActivations = 0
	}
	if s.GoldenClicks < 0 {
		s.GoldenClicks = 0
	}
	if s.BestCombo < 0 {
		s.BestCombo = 0
	}

	buildings := map[string]int{}
	for key, count := range s.Buildings {
		if _, ok := BuildingByKey(key); !ok {
			continue
		}
		if count < 0 {
			count = 0
		}
		buildings[key] = count
	}
	s.Buildings = buildings

	upgrades := make([]string, 0, len(s.Upgrades))
	seen := map[string]bool{}
	for _, def := range AllUpgrades() {
		seen[def.Key] = false
	}
	for _, key := range s.Upgrades {
		owned, known := seen[key]
		if known && !owned {
			seen[key] = true
		}
	}
	for _, def := range AllUpgrades() {
		if seen[def.Key] {
			upgrades = append(upgrades, def.Key)
		}
	}
	s.Upgrades = upgrades
}

// TotalBuildings is the summed count across all building types.
func (s *PlayerState) TotalBuildings() int {
	total := 0
	for _, count := range s.Buildings {
		total += count
	}
	return total
}

func (s *PlayerState) OwnsUpgrade(key string) bool {
	for _, owned := range s.Upgrades {
		if owned == key {
			return true
		}
	}
	return false
}
