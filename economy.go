package main

import (
	"math"
)

/* ======================
   Economy Model
   ====================== */

// costGrowthRate is the per-unit cost escalation for every building.
const costGrowthRate = 1.15

// frenzyMultiplier applies to all earnings (click and passive) while frenzy
// is active.
const frenzyMultiplier = 7.0

// prestigeBonusPerToken is the permanent production bonus each prestige
// token grants.
const prestigeBonusPerToken = 0.1

// PurchaseCost returns the price of the next unit of a building that already
// has count owned: floor(baseCost * 1.15^count). math.Pow keeps the result
// stable at large counts where repeated multiplication would drift.
func PurchaseCost(baseCost float64, count int) float64 {
	if count < 0 {
		count = 0
	}
	cost := math.Floor(baseCost * math.Pow(costGrowthRate, float64(count)))
	if !isFiniteNumber(cost) {
		return math.MaxFloat64
	}
	return cost
}

// PrestigeMultiplier is the permanent bonus from banked prestige tokens.
func PrestigeMultiplier(tokens int64) float64 {
	if tokens < 0 {
		tokens = 0
	}
	return 1 + float64(tokens)*prestigeBonusPerToken
}

// BuildingProduction computes one building's output per second given the
// owned upgrade set and the session-wide modifiers. Corrupted inputs must
// not poison the aggregate, so any non-finite intermediate collapses to 0.
func BuildingProduction(id BuildingID, count int, owned *UpgradeSet, mods ProductionModifiers) float64 {
	def := BuildingByID(id)
	production := def.BaseProduction * float64(count)
	if !isFiniteNumber(production) {
		production = 0
	}

	for _, up := range AllUpgrades() {
		if !owned.Owned(up.ID) {
			continue
		}
		switch up.Kind {
		case UpgradeKindBuilding:
			if up.Target == id {
				production *= multiplierOrOne(up.Multiplier)
			}
		case UpgradeKindGlobal:
			production *= multiplierOrOne(up.Multiplier)
		}
	}

	if mods.FrenzyActive {
		production *= frenzyMultiplier
	}
	production *= multiplierOrOne(mods.PrestigeMultiplier)
	production *= multiplierOrOne(mods.ChallengeMultiplier)

	if !isFiniteNumber(production) {
		return 0
	}
	return production
}

// ProductionModifiers are the session-wide factors applied on top of
// per-building math.
type ProductionModifiers struct {
	FrenzyActive        bool
	PrestigeMultiplier  float64
	ChallengeMultiplier float64
}

// ProductionRate sums production over every building.
func ProductionRate(counts *BuildingCounts, owned *UpgradeSet, mods ProductionModifiers) float64 {
	total := 0.0
	for _, def := range AllBuildings() {
		total += BuildingProduction(def.ID, counts.Count(def.ID), owned, mods)
	}
	if !isFiniteNumber(total) {
		return 0
	}
	return total
}

// BuildingUnlocked reports whether cumulative lifetime earnings have crossed
// the building's threshold. The session latches this one way; the raw check
// is against lifetime earned, never current balance.
func BuildingUnlocked(id BuildingID, lifetimeEarned float64) bool {
	return lifetimeEarned >= BuildingByID(id).UnlockThreshold
}

// BuildingCounts is the owned-count vector, indexed by BuildingID.
type BuildingCounts struct {
	counts [buildingCount]int
}

func (b *BuildingCounts) Count(id BuildingID) int {
	return b.counts[id]
}

func (b *BuildingCounts) Add(id BuildingID, delta int) {
	b.counts[id] += delta
	if b.counts[id] < 0 {
		b.counts[id] = 0
	}
}

func (b *BuildingCounts) Set(id BuildingID, count int) {
	if count < 0 {
		count = 0
	}
	b.counts[id] = count
}

func (b *BuildingCounts) Total() int {
	total := 0
	for _, c := range b.counts {
		total += c
	}
	return total
}

func (b *BuildingCounts) Reset() {
	b.counts = [buildingCount]int{}
}

// UpgradeSet tracks owned upgrades. Ownership is a one-way latch within a
// prestige epoch; only Reset clears it.
type UpgradeSet struct {
	owned [upgradeCount]bool
}

func (u *UpgradeSet) Owned(id UpgradeID) bool {
	return u.owned[id]
}

func (u *UpgradeSet) MarkOwned(id UpgradeID) {
	u.owned[id] = true
}

func (u *UpgradeSet) OwnedCount() int {
	total := 0
	for _, owned := range u.owned {
		if owned {
			total++
		}
	}
	return total
}

func (u *UpgradeSet) Reset() {
	u.owned = [upgradeCount]bool{}
}

/* ======================
   Numeric guards
   ====================== */

func isFiniteNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// multiplierOrOne substitutes 1 for corrupted multiplicative factors so a
// bad save can neither zero nor explode earnings.
func multiplierOrOne(v float64) float64 {
	if !isFiniteNumber(v) || v <= 0 {
		return 1
	}
	return v
}

// amountOrZero coerces corrupted additive amounts to 0.
func amountOrZero(v float64) float64 {
	if !isFiniteNumber(v) || v < 0 {
		return 0
	}
	return v
}
