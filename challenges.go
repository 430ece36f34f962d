package main

/* ======================
   Progression Tracker
   ====================== */

// latch is a one-way boolean. Every "completed"/"unlocked"/"owned" flag in
// the game goes through one of these so the one-way invariant lives in a
// single place instead of being a convention.
type latch struct {
	set bool
}

// Latch flips the latch and reports whether this call was the one that
// flipped it. Subsequent calls return false forever.
func (l *latch) Latch() bool {
	if l.set {
		return false
	}
	l.set = true
	return true
}

func (l *latch) Set() bool {
	return l.set
}

type ChallengeType int

const (
	ChallengeClicks ChallengeType = iota
	ChallengeMoney
	ChallengeBuildings
	ChallengeUpgrades
	ChallengeProductionRate
)

type RewardKind int

const (
	// RewardClickPower adds a flat amount to click power.
	RewardClickPower RewardKind = iota
	// RewardMoney grants a flat amount of currency.
	RewardMoney
	// RewardProductionBonus adds a percentage to all production.
	RewardProductionBonus
	// RewardGlobalMultiplier multiplies all production.
	RewardGlobalMultiplier
)

type ChallengeDef struct {
	ID          string
	Name        string
	Type        ChallengeType
	Goal        float64
	Reward      RewardKind
	RewardValue float64
}

var challengeDefs = []ChallengeDef{
	{"c1", "First Steps", ChallengeClicks, 100, RewardClickPower, 5},
	{"c2", "Click Master", ChallengeClicks, 1000, RewardClickPower, 10},
	{"c3", "Speed Demon", ChallengeClicks, 10000, RewardClickPower, 25},

	{"c4", "Startup Capital", ChallengeMoney, 1000, RewardMoney, 500},
	{"c5", "Self Funded", ChallengeMoney, 100000, RewardMoney, 10000},
	{"c6", "Angel Investor", ChallengeMoney, 10000000, RewardMoney, 1000000},
	{"c7", "Unicorn Status", ChallengeMoney, 1000000000, RewardMoney, 100000000},

	{"c8", "Small Team", ChallengeBuildings, 10, RewardProductionBonus, 10},
	{"c9", "Growing Company", ChallengeBuildings, 50, RewardProductionBonus, 25},
	{"c10", "Empire Builder", ChallengeBuildings, 200, RewardProductionBonus, 50},

	{"c11", "Tech Adoption", ChallengeUpgrades, 5, RewardGlobalMultiplier, 1.1},
	{"c12", "Innovation Leader", ChallengeUpgrades, 15, RewardGlobalMultiplier, 1.25},
	{"c13", "Optimization Guru", ChallengeUpgrades, 22, RewardGlobalMultiplier, 2},

	{"c14", "Passive Income", ChallengeProductionRate, 100, RewardProductionBonus, 10},
	{"c15", "Automated Empire", ChallengeProductionRate, 10000, RewardProductionBonus, 25},
	{"c16", "Money Printer", ChallengeProductionRate, 1000000, RewardProductionBonus, 50},
}

func AllChallenges() []ChallengeDef {
	return challengeDefs
}

func ChallengeDefByID(id string) (ChallengeDef, bool) {
	for _, def := range challengeDefs {
		if def.ID == id {
			return def, true
		}
	}
	return ChallengeDef{}, false
}

type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

type AchievementDef struct {
	ID      string
	Name    string
	Tier    AchievementTier
	Unlocks func(m ProgressMetrics) bool
}

var achievementDefs = []AchievementDef{
	{"a1", "Hello World", TierBronze, func(m ProgressMetrics) bool { return m.TotalClicks >= 1 }},
	{"a2", "Combo Starter", TierBronze, func(m ProgressMetrics) bool { return m.BestCombo >= 10 }},
	{"a3", "First Hire", TierBronze, func(m ProgressMetrics) bool { return m.TotalBuildings >= 1 }},
	{"a4", "Lucky Find", TierBronze, func(m ProgressMetrics) bool { return m.GoldenClicks >= 1 }},

	{"a5", "Century Club", TierSilver, func(m ProgressMetrics) bool { return m.TotalClicks >= 100 }},
	{"a6", "Combo Master", TierSilver, func(m ProgressMetrics) bool { return m.BestCombo >= 50 }},
	{"a7", "Tech Stack", TierSilver, func(m ProgressMetrics) bool { return m.OwnedUpgrades >= 10 }},
	{"a8", "Frenzy Master", TierSilver, func(m ProgressMetrics) bool { return m.FrenzyActivations >= 5 }},

	{"a9", "Millionaire", TierGold, func(m ProgressMetrics) bool { return m.Money >= 1000000 }},
	{"a10", "Combo Legend", TierGold, func(m ProgressMetrics) bool { return m.BestCombo >= 100 }},
	{"a11", "Fully Upgraded", TierGold, func(m ProgressMetrics) bool { return m.OwnedUpgrades >= int(upgradeCount) }},
	{"a12", "Production Line", TierGold, func(m ProgressMetrics) bool { return m.TotalBuildings >= 100 }},

	{"a13", "Billionaire", TierPlatinum, func(m ProgressMetrics) bool { return m.Money >= 1000000000 }},
	{"a14", "Click Legend", TierPlatinum, func(m ProgressMetrics) bool { return m.TotalClicks >= 100000 }},
	{"a15", "Empire Tycoon", TierPlatinum, func(m ProgressMetrics) bool { return m.TotalBuildings >= 500 }},
	{"a16", "Automation King", TierPlatinum, func(m ProgressMetrics) bool { return m.ProductionRate >= 10000000 }},
}

func AllAchievements() []AchievementDef {
	return achievementDefs
}

// ProgressMetrics is the aggregate snapshot the tracker observes. Challenge
// progress stays monotonic even when a metric dips (spending money lowers
// the balance, never the recorded progress).
type ProgressMetrics struct {
	TotalClicks       int64
	LifetimeEarned    float64
	Money             float64
	TotalBuildings    int
	OwnedUpgrades     int
	ProductionRate    float64
	BestCombo         int64
	FrenzyActivations int64
	GoldenClicks      int64
}

type challengeState struct {
	progress  float64
	completed latch
}

type achievementState struct {
	unlocked latch
}

// ProgressTracker owns challenge and achievement progress for one prestige
// epoch. Detection and reward application are separate steps: Observe only
// reports what crossed its threshold, the caller applies rewards.
type ProgressTracker struct {
	challenges   []challengeState
	achievements []achievementState
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		challenges:   make([]challengeState, len(challengeDefs)),
		achievements: make([]achievementState, len(achievementDefs)),
	}
}

// Observe folds a metrics snapshot into challenge progress and achievement
// checks. It returns the challenges completed and achievements unlocked by
// exactly this snapshot, each at most once ever.
func (t *ProgressTracker) Observe(m ProgressMetrics) (completed []ChallengeDef, unlocked []AchievementDef) {
	for i := range t.challenges {
		def := challengeDefs[i]
		state := &t.challenges[i]
		if state.completed.Set() {
			continue
		}

		value := challengeMetric(def.Type, m)
		if value > state.progress {
			state.progress = value
		}
		if state.progress >= def.Goal {
			if state.completed.Latch() {
				state.progress = def.Goal
				completed = append(completed, def)
			}
		}
	}

	for i := range t.achievements {
		def := achievementDefs[i]
		state := &t.achievements[i]
		if state.unlocked.Set() {
			continue
		}
		if def.Unlocks(m) && state.unlocked.Latch() {
			unlocked = append(unlocked, def)
		}
	}
	return completed, unlocked
}

func challengeMetric(kind ChallengeType, m ProgressMetrics) float64 {
	switch kind {
	case ChallengeClicks:
		return float64(m.TotalClicks)
	case ChallengeMoney:
		return m.LifetimeEarned
	case ChallengeBuildings:
		return float64(m.TotalBuildings)
	case ChallengeUpgrades:
		return float64(m.OwnedUpgrades)
	case ChallengeProductionRate:
		return m.ProductionRate
	default:
		return 0
	}
}

// ProductionMultiplier derives the combined production reward from every
// completed challenge. Deriving it from the latches (instead of mutating a
// stored multiplier on completion) keeps reward application auditable and
// safe to recompute.
func (t *ProgressTracker) ProductionMultiplier() float64 {
	bonusPercent := 0.0
	multiplier := 1.0
	for i := range t.challenges {
		if !t.challenges[i].completed.Set() {
			continue
		}
		def := challengeDefs[i]
		switch def.Reward {
		case RewardProductionBonus:
			bonusPercent += def.RewardValue
		case RewardGlobalMultiplier:
			multiplier *= def.RewardValue
		}
	}
	return (1 + bonusPercent/100) * multiplier
}

func (t *ProgressTracker) ChallengeProgress(id string) (progress float64, done bool, ok bool) {
	for i, def := range challengeDefs {
		if def.ID == id {
			return t.challenges[i].progress, t.challenges[i].completed.Set(), true
		}
	}
	return 0, false, false
}

func (t *ProgressTracker) AchievementUnlocked(id string) bool {
	for i, def := range achievementDefs {
		if def.ID == id {
			return t.achievements[i].unlocked.Set()
		}
	}
	return false
}

func (t *ProgressTracker) UnlockedCount() int {
	total := 0
	for i := range t.achievements {
		if t.achievements[i].unlocked.Set() {
			total++
		}
	}
	return total
}

// ResetChallenges re-seeds challenge progress for a new prestige epoch.
// Achievements survive prestige and are deliberately untouched here.
func (t *ProgressTracker) ResetChallenges() {
	t.challenges = make([]challengeState, len(challengeDefs))
}

// restore rehydrates tracker state from a save. Out-of-catalog ids are
// dropped; progress is clamped to the goal for completed entries.
func (t *ProgressTracker) restore(challenges []ChallengeProgressRecord, achievements []AchievementRecord) {
	for _, rec := range challenges {
		for i, def := range challengeDefs {
			if def.ID != rec.ID {
				continue
			}
			state := &t.challenges[i]
			state.progress = amountOrZero(rec.Progress)
			if rec.Completed {
				state.completed.Latch()
				state.progress = def.Goal
			} else if state.progress > def.Goal {
				state.progress = def.Goal
			}
		}
	}
	for _, rec := range achievements {
		for i, def := range achievementDefs {
			if def.ID == rec.ID && rec.Unlocked {
				t.achievements[i].unlocked.Latch()
			}
		}
	}
}

func (t *ProgressTracker) challengeRecords() []ChallengeProgressRecord {
	records := make([]ChallengeProgressRecord, 0, len(t.challenges))
	for i, def := range challengeDefs {
		records = append(records, ChallengeProgressRecord{
			ID:        def.ID,
			Progress:  t.challenges[i].progress,
			Completed: t.challenges[i].completed.Set(),
		})
	}
	return records
}

func (t *ProgressTracker) achievementRecords() []AchievementRecord {
	records := make([]AchievementRecord, 0, len(t.achievements))
	for i, def := range achievementDefs {
		records = append(records, AchievementRecord{
			ID:       def.ID,
			Tier:     string(def.Tier),
			Unlocked: t.achievements[i].unlocked.Set(),
		})
	}
	return records
}
