package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

/* ======================
   Game Session
   ====================== */

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBuildingLocked      = errors.New("building locked")
	ErrUpgradeOwned        = errors.New("upgrade already owned")
	ErrRequirementNotMet   = errors.New("upgrade requirement not met")
	ErrPrestigeUnavailable = errors.New("prestige threshold not reached")
	ErrNoGoldenBonus       = errors.New("no golden bonus active")
)

type GoldenKind int

const (
	GoldenPayoutBonus GoldenKind = iota
	GoldenPayoutFrenzy
	GoldenPayoutLucky
)

func (k GoldenKind) String() string {
	switch k {
	case GoldenPayoutBonus:
		return "bonus"
	case GoldenPayoutFrenzy:
		return "frenzy"
	case GoldenPayoutLucky:
		return "lucky"
	default:
		return "unknown"
	}
}

// GoldenBonusState is the transient clickable overlay. Clickable exactly
// once, auto-expires if ignored.
type GoldenBonusState struct {
	Kind      GoldenKind
	SpawnedAt time.Time
	ExpiresAt time.Time
}

// SaveFunc receives debounced snapshots. It runs outside the session lock
// and may block on the network; the session never waits for it.
type SaveFunc func(state PlayerState, manual bool)

type SessionConfig struct {
	Clock    Clock
	Events   EventProvider
	Notifier Notifier
	Tuning   Tuning
	Seed     int64
	State    *PlayerState // nil means new player
	Save     SaveFunc
}

// GameSession is the aggregate root for one player's live game. All state
// transitions happen under one mutex; timers are virtual and fire from
// AdvanceTo, so a test or simulation drives the whole session from a
// ManualClock with no real sleeping.
type GameSession struct {
	mu       sync.Mutex
	clock    Clock
	events   EventProvider
	notifier Notifier
	tuning   EngineTuning
	rng      *rand.Rand
	save     SaveFunc

	money          float64
	lifetimeEarned float64
	allTimeEarned  float64
	clickPower     float64
	totalClicks    int64
	buildings      BuildingCounts
	upgrades       UpgradeSet
	tracker        *ProgressTracker
	prestigeLevel  int64
	prestigeTokens int64

	frenzyActivations int64
	goldenClicks      int64
	bestCombo         int64

	combo          *ComboEngine
	frenzySeconds  int
	golden         *GoldenBonusState
	unlocked       [buildingCount]latch
	milestoneFired []latch
	comboNotified  map[int]bool

	nextTick         time.Time
	nextFrenzySecond time.Time
	nextGoldenCheck  time.Time

	dirty   bool
	saveDue time.Time
}

func NewGameSession(cfg SessionConfig) *GameSession {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	events := cfg.Events
	if events == nil {
		events = NewEventProvider()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NopNotifier()
	}
	tuning := cfg.Tuning
	if tuning.Engine.TickPeriodMS == 0 {
		tuning = DefaultTuning()
	}

	now := clock.Now()
	s := &GameSession{
		clock:          clock,
		events:         events,
		notifier:       notifier,
		tuning:         tuning.Engine,
		rng:            rand.New(rand.NewSource(cfg.Seed)),
		save:           cfg.Save,
		clickPower:     tuning.Engine.BaseClickPower,
		tracker:        NewProgressTracker(),
		combo:          NewComboEngine(time.Duration(tuning.Engine.ComboWindowMS)*time.Millisecond, tuning.AutoClick),
		milestoneFired: make([]latch, len(moneyMilestones)),
		comboNotified:  map[int]bool{},

		nextTick:        now.Add(tuning.Engine.TickPeriod()),
		nextGoldenCheck: now.Add(tuning.Engine.GoldenCheckPeriod()),
	}
	if cfg.State != nil {
		s.restore(*cfg.State)
	}
	s.latchUnlocks(now, false)
	return s
}

func (t EngineTuning) TickPeriod() time.Duration {
	return time.Duration(t.TickPeriodMS) * time.Millisecond
}

func (t EngineTuning) GoldenCheckPeriod() time.Duration {
	return time.Duration(t.GoldenCheckSeconds) * time.Second
}

func (t EngineTuning) GoldenLifetime() time.Duration {
	return time.Duration(t.GoldenLifetimeSeconds) * time.Second
}

func (t EngineTuning) SaveDebounce() time.Duration {
	return time.Duration(t.SaveDebounceSeconds) * time.Second
}

func (s *GameSession) restore(state PlayerState) {
	state.Normalize()
	s.money = state.Money
	s.lifetimeEarned = state.LifetimeEarned
	s.allTimeEarned = state.AllTimeEarned
	s.clickPower = state.ClickPower
	s.totalClicks = state.TotalClicks
	s.prestigeLevel = state.PrestigeLevel
	s.prestigeTokens = state.PrestigeTokens
	s.frenzyActivations = state.FrenzyActivations
	s.goldenClicks = state.GoldenClicks
	s.bestCombo = state.BestCombo

	for key, count := range state.Buildings {
		if def, ok := BuildingByKey(key); ok {
			s.buildings.Set(def.ID, count)
		}
	}
	for _, key := range state.Upgrades {
		if def, ok := UpgradeByKey(key); ok {
			s.upgrades.MarkOwned(def.ID)
		}
	}
	s.tracker.restore(state.Challenges, state.Achievements)

	for i, m := range moneyMilestones {
		if s.allTimeEarned >= m.Amount {
			s.milestoneFired[i].Latch()
		}
	}
}

/* ----- player actions ----- */

// ClickOutcome reports how a manual click resolved.
type ClickOutcome struct {
	Accepted   bool
	Flagged    bool
	Earnings   float64
	ComboCount int
	Multiplier float64
}

// Click processes one manual click at the current clock time. The combo
// multiplier used for earnings is the one computed for this click; later
// timer callbacks cannot retroactively change it.
func (s *GameSession) Click() ClickOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.advanceLocked(now)

	s.combo.CheckDecay(now)
	result := s.combo.RegisterClick(now)
	if !result.Accepted {
		if result.Flagged {
			s.notify(NotifyKindDetector, "Suspicious clicking detected, input suspended", now)
		}
		return ClickOutcome{Flagged: result.Flagged, ComboCount: result.ComboCount, Multiplier: result.Multiplier}
	}

	frenzy := 1.0
	if s.frenzySeconds > 0 {
		frenzy = frenzyMultiplier
	}
	earnings := multiplierOrOne(s.clickPower) *
		multiplierOrOne(PrestigeMultiplier(s.prestigeTokens)) *
		frenzy *
		result.Multiplier *
		multiplierOrOne(s.events.Multiplier(now))

	s.earn(earnings)
	s.totalClicks++
	if int64(result.ComboCount) > s.bestCombo {
		s.bestCombo = int64(result.ComboCount)
	}
	for _, milestone := range s.tuning.NotifyComboMilestones {
		if result.ComboCount >= milestone && !s.comboNotified[milestone] {
			s.comboNotified[milestone] = true
			s.notify(NotifyKindCombo, fmt.Sprintf("%dx combo!", milestone), now)
		}
	}

	s.afterMutation(now)
	return ClickOutcome{
		Accepted:   true,
		Earnings:   earnings,
		ComboCount: result.ComboCount,
		Multiplier: result.Multiplier,
	}
}

// BuyBuilding purchases one unit at the current escalated cost.
func (s *GameSession) BuyBuilding(id BuildingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.advanceLocked(now)

	if !s.unlocked[id].Set() {
		return ErrBuildingLocked
	}
	cost := PurchaseCost(BuildingByID(id).BaseCost, s.buildings.Count(id))
	if s.money < cost {
		return ErrInsufficientFunds
	}
	s.money -= cost
	s.buildings.Add(id, 1)
	s.afterMutation(now)
	return nil
}

// BuyUpgrade purchases an upgrade once its requirement is met. Click
// upgrades double click power on purchase; production upgrades take effect
// through the economy model.
func (s *GameSession) BuyUpgrade(id UpgradeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.advanceLocked(now)

	if s.upgrades.Owned(id) {
		return ErrUpgradeOwned
	}
	def := UpgradeByID(id)
	switch def.Kind {
	case UpgradeKindClick:
		if s.totalClicks < int64(def.Requirement) {
			return ErrRequirementNotMet
		}
	case UpgradeKindBuilding:
		if s.buildings.Count(def.Target) < def.Requirement {
			return ErrRequirementNotMet
		}
	}
	if s.money < def.Cost {
		return ErrInsufficientFunds
	}

	s.money -= def.Cost
	s.upgrades.MarkOwned(id)
	if def.Kind == UpgradeKindClick {
		s.clickPower *= multiplierOrOne(def.Multiplier)
	}
	s.afterMutation(now)
	return nil
}

// ClickGoldenBonus consumes the active golden overlay.
func (s *GameSession) ClickGoldenBonus() (GoldenKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.advanceLocked(now)

	if s.golden == nil {
		return 0, ErrNoGoldenBonus
	}
	kind := s.golden.Kind
	s.golden = nil
	s.goldenClicks++

	rate := s.productionRateLocked(now)
	switch kind {
	case GoldenPayoutBonus:
		bonus := math.Max(rate*60*s.tuning.GoldenBonusClickFactor, multiplierOrOne(s.clickPower)*s.tuning.GoldenBonusClickFactor)
		s.earn(bonus)
		s.notify(NotifyKindGolden, "+$"+FormatMoney(bonus), now)
	case GoldenPayoutFrenzy:
		s.startFrenzy(now)
	case GoldenPayoutLucky:
		lucky := math.Max(rate*900, s.money*0.15)
		s.earn(lucky)
		s.notify(NotifyKindGolden, "Lucky! +$"+FormatMoney(lucky), now)
	}

	s.afterMutation(now)
	return kind, nil
}

// Prestige performs the irreversible reset. Permanent progress (prestige
// level, tokens, achievements, best combo, all-time earnings) survives;
// everything else re-seeds. The whole transition happens under the lock, so
// no reader can observe a partial reset.
func (s *GameSession) Prestige() (tokensGained int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.advanceLocked(now)

	value := math.Max(s.lifetimeEarned, s.money)
	if value < s.tuning.PrestigeThreshold {
		return 0, ErrPrestigeUnavailable
	}
	tokensGained = int64(math.Floor(value / s.tuning.PrestigeThreshold))

	s.prestigeLevel++
	s.prestigeTokens += tokensGained

	s.money = 0
	s.lifetimeEarned = 0
	s.clickPower = s.tuning.BaseClickPower
	s.totalClicks = 0
	s.buildings.Reset()
	s.upgrades.Reset()
	s.tracker.ResetChallenges()
	s.combo = NewComboEngine(s.comboWindow(), s.combo.detector)
	s.comboNotified = map[int]bool{}
	s.frenzySeconds = 0
	s.frenzyActivations = 0
	s.goldenClicks = 0
	s.golden = nil
	s.unlocked = [buildingCount]latch{}
	s.latchUnlocks(now, false)

	s.notify(NotifyKindPrestige, fmt.Sprintf("Prestige %d! +%d tokens", s.prestigeLevel, tokensGained), now)
	s.flushSaveLocked(now, true)
	return tokensGained, nil
}

// SaveNow bypasses the debounce window.
func (s *GameSession) SaveNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushSaveLocked(s.clock.Now(), true)
}

/* ----- scheduler ----- */

// AdvanceTo fires every virtual timer due at or before now, in timestamp
// order. The timers are independent; processing them strictly by due time
// keeps behavior identical whether the gap was one tick or an hour.
func (s *GameSession) AdvanceTo(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
}

const (
	timerNone = iota
	timerTick
	timerFrenzy
	timerGoldenCheck
	timerGoldenExpiry
	timerSave
)

func (s *GameSession) advanceLocked(now time.Time) {
	for {
		which, due := s.earliestTimer()
		if which == timerNone || due.After(now) {
			break
		}
		switch which {
		case timerTick:
			s.runProductionTick(due)
		case timerFrenzy:
			s.runFrenzySecond(due)
		case timerGoldenCheck:
			s.runGoldenCheck(due)
		case timerGoldenExpiry:
			s.golden = nil
		case timerSave:
			s.flushSaveLocked(due, false)
		}
	}
	s.combo.CheckDecay(now)
}

func (s *GameSession) earliestTimer() (int, time.Time) {
	which := timerTick
	due := s.nextTick
	consider := func(w int, t time.Time) {
		if !t.IsZero() && t.Before(due) {
			which, due = w, t
		}
	}
	if s.frenzySeconds > 0 {
		consider(timerFrenzy, s.nextFrenzySecond)
	}
	consider(timerGoldenCheck, s.nextGoldenCheck)
	if s.golden != nil {
		consider(timerGoldenExpiry, s.golden.ExpiresAt)
	}
	if s.dirty {
		consider(timerSave, s.saveDue)
	}
	return which, due
}

func (s *GameSession) runProductionTick(due time.Time) {
	s.nextTick = due.Add(s.tuning.TickPeriod())
	rate := s.productionRateLocked(due)
	if rate <= 0 {
		return
	}
	s.earn(rate * s.tuning.TickPeriod().Seconds())
	s.afterMutation(due)
}

func (s *GameSession) runFrenzySecond(due time.Time) {
	s.frenzySeconds--
	if s.frenzySeconds <= 0 {
		s.frenzySeconds = 0
		s.notify(NotifyKindFrenzy, "Frenzy ended", due)
	} else {
		s.nextFrenzySecond = due.Add(time.Second)
	}
}

func (s *GameSession) runGoldenCheck(due time.Time) {
	s.nextGoldenCheck = due.Add(s.tuning.GoldenCheckPeriod())
	if s.golden != nil {
		return
	}
	if s.rng.Float64() >= s.tuning.GoldenSpawnChance {
		return
	}
	kinds := []GoldenKind{GoldenPayoutBonus, GoldenPayoutFrenzy, GoldenPayoutLucky}
	s.golden = &GoldenBonusState{
		Kind:      kinds[s.rng.Intn(len(kinds))],
		SpawnedAt: due,
		ExpiresAt: due.Add(s.tuning.GoldenLifetime()),
	}
}

func (s *GameSession) startFrenzy(now time.Time) {
	if s.frenzySeconds == 0 {
		s.nextFrenzySecond = now.Add(time.Second)
	}
	s.frenzySeconds = s.tuning.FrenzyDurationSeconds
	s.frenzyActivations++
	s.notify(NotifyKindFrenzy, "FRENZY x7!", now)
}

/* ----- bookkeeping ----- */

func (s *GameSession) earn(amount float64) {
	amount = amountOrZero(amount)
	s.money += amount
	s.lifetimeEarned += amount
	s.allTimeEarned += amount
}

// afterMutation runs the reactions every state change shares: building
// unlocks, money milestones, progression observation, and queueing a save.
func (s *GameSession) afterMutation(now time.Time) {
	s.latchUnlocks(now, true)

	for i, m := range moneyMilestones {
		if s.allTimeEarned >= m.Amount && s.milestoneFired[i].Latch() {
			s.notify(NotifyKindMilestone, m.Message, now)
		}
	}

	completed, unlocked := s.tracker.Observe(ProgressMetrics{
		TotalClicks:       s.totalClicks,
		LifetimeEarned:    s.lifetimeEarned,
		Money:             s.money,
		TotalBuildings:    s.buildings.Total(),
		OwnedUpgrades:     s.upgrades.OwnedCount(),
		ProductionRate:    s.productionRateLocked(now),
		BestCombo:         s.bestCombo,
		FrenzyActivations: s.frenzyActivations,
		GoldenClicks:      s.goldenClicks,
	})
	for _, def := range completed {
		s.applyChallengeReward(def)
		s.notify(NotifyKindChallenge, "Challenge complete: "+def.Name, now)
	}
	for _, def := range unlocked {
		s.notify(NotifyKindAchievement, "Achievement unlocked: "+def.Name, now)
	}

	s.markDirty(now)
}

func (s *GameSession) applyChallengeReward(def ChallengeDef) {
	switch def.Reward {
	case RewardClickPower:
		s.clickPower += def.RewardValue
	case RewardMoney:
		s.earn(def.RewardValue)
	}
	// Production rewards are derived from the tracker's completed set and
	// need no mutation here.
}

func (s *GameSession) latchUnlocks(now time.Time, announce bool) {
	for _, def := range AllBuildings() {
		if s.unlocked[def.ID].Set() {
			continue
		}
		if BuildingUnlocked(def.ID, s.lifetimeEarned) && s.unlocked[def.ID].Latch() && announce {
			s.notify(NotifyKindMilestone, "Unlocked: "+def.Name, now)
		}
	}
}

func (s *GameSession) productionRateLocked(now time.Time) float64 {
	return ProductionRate(&s.buildings, &s.upgrades, ProductionModifiers{
		FrenzyActive:        s.frenzySeconds > 0,
		PrestigeMultiplier:  PrestigeMultiplier(s.prestigeTokens),
		ChallengeMultiplier: s.tracker.ProductionMultiplier(),
	})
}

func (s *GameSession) comboWindow() time.Duration {
	return time.Duration(s.tuning.ComboWindowMS) * time.Millisecond
}

func (s *GameSession) notify(kind, message string, at time.Time) {
	s.notifier.Notify(Notification{Kind: kind, Message: message, At: at})
}

/* ----- persistence plumbing ----- */

// markDirty arms the debounce deadline on the first change; changes that
// land while a save is already pending fold into it rather than pushing the
// deadline out, so continuous production cannot starve autosave.
func (s *GameSession) markDirty(now time.Time) {
	if !s.dirty {
		s.dirty = true
		s.saveDue = now.Add(s.tuning.SaveDebounce())
	}
}

func (s *GameSession) flushSaveLocked(now time.Time, manual bool) {
	if s.save == nil {
		s.dirty = false
		return
	}
	if !manual && !s.dirty {
		return
	}
	snapshot := s.snapshotLocked()
	s.dirty = false
	go s.save(snapshot, manual)
}

func (s *GameSession) snapshotLocked() PlayerState {
	state := PlayerState{
		Money:             s.money,
		LifetimeEarned:    s.lifetimeEarned,
		AllTimeEarned:     s.allTimeEarned,
		ClickPower:        s.clickPower,
		TotalClicks:       s.totalClicks,
		Buildings:         map[string]int{},
		Upgrades:          []string{},
		Challenges:        s.tracker.challengeRecords(),
		Achievements:      s.tracker.achievementRecords(),
		PrestigeLevel:     s.prestigeLevel,
		PrestigeTokens:    s.prestigeTokens,
		FrenzyActivations: s.frenzyActivations,
		GoldenClicks:      s.goldenClicks,
		BestCombo:         s.bestCombo,
	}
	for _, def := range AllBuildings() {
		if count := s.buildings.Count(def.ID); count > 0 {
			state.Buildings[def.Key] = count
		}
	}
	for _, def := range AllUpgrades() {
		if s.upgrades.Owned(def.ID) {
			state.Upgrades = append(state.Upgrades, def.Key)
		}
	}
	return state
}

/* ----- read side ----- */

// Snapshot returns the persistable state as of now.
func (s *GameSession) Snapshot() PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(s.clock.Now())
	return s.snapshotLocked()
}

func (s *GameSession) Money() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.money
}

func (s *GameSession) LifetimeEarned() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifetimeEarned
}

func (s *GameSession) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productionRateLocked(s.clock.Now())
}

func (s *GameSession) FrenzyActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frenzySeconds > 0
}

func (s *GameSession) GoldenActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.golden != nil
}

func (s *GameSession) ComboCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combo.Count()
}

func (s *GameSession) BestCombo() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestCombo
}

func (s *GameSession) PrestigeInfo() (level, tokens int64, multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prestigeLevel, s.prestigeTokens, PrestigeMultiplier(s.prestigeTokens)
}

// BuildingCost is the price of the next unit.
func (s *GameSession) BuildingCost(id BuildingID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PurchaseCost(BuildingByID(id).BaseCost, s.buildings.Count(id))
}

func (s *GameSession) BuildingOwned(id BuildingID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildings.Count(id)
}
