package main

import (
	"time"
)

/* ======================
   Click / Combo Engine
   ====================== */

// ComboEngine tracks the click streak and runs the client-side auto-clicker
// heuristic. It is ephemeral state: nothing here is persisted, and a save
// load starts from a fresh engine.
//
// This detector is a soft gate only. The authoritative judgment of a save
// happens in the validator at the persistence boundary.
type ComboEngine struct {
	window    time.Duration
	detector  AutoClickTuning
	lastClick time.Time
	count     int

	samples        []time.Time
	suspendedUntil time.Time
}

func NewComboEngine(window time.Duration, detector AutoClickTuning) *ComboEngine {
	return &ComboEngine{
		window:   window,
		detector: detector,
		samples:  make([]time.Time, 0, detector.SampleWindow),
	}
}

// ClickResult reports how a single click was resolved.
type ClickResult struct {
	Accepted   bool
	Flagged    bool // detector fired on this click
	ComboCount int
	Multiplier float64
}

// RegisterClick resolves a click at time t. The returned multiplier is the
// one this click earns with; callers must use it rather than re-reading the
// engine later, since a decay check racing in behind the click must not
// retroactively change the earnings.
func (e *ComboEngine) RegisterClick(t time.Time) ClickResult {
	if t.Before(e.suspendedUntil) {
		return ClickResult{Accepted: false, ComboCount: e.count, Multiplier: comboTier(e.count)}
	}

	e.recordSample(t)
	if e.looksAutomated() {
		e.suspendedUntil = t.Add(time.Duration(e.detector.CooldownSeconds) * time.Second)
		e.samples = e.samples[:0]
		e.count = 0
		e.lastClick = time.Time{}
		return ClickResult{Accepted: false, Flagged: true, ComboCount: 0, Multiplier: 1}
	}

	delta := t.Sub(e.lastClick)
	if !e.lastClick.IsZero() && delta > 0 && delta < e.window {
		e.count++
	} else {
		e.count = 1
	}
	e.lastClick = t

	return ClickResult{Accepted: true, ComboCount: e.count, Multiplier: comboTier(e.count)}
}

// CheckDecay is the timer-side decay path. It uses the same 2000ms boundary
// as the lazy path inside RegisterClick: a gap of exactly the window kills
// the streak in both.
func (e *ComboEngine) CheckDecay(t time.Time) {
	if e.count == 0 {
		return
	}
	if t.Sub(e.lastClick) >= e.window {
		e.count = 0
	}
}

func (e *ComboEngine) Count() int {
	return e.count
}

func (e *ComboEngine) Multiplier() float64 {
	return comboTier(e.count)
}

func (e *ComboEngine) Suspended(t time.Time) bool {
	return t.Before(e.suspendedUntil)
}

// comboTier maps a streak length to its earnings multiplier. Lower bounds
// inclusive, upper bounds exclusive, top tier open-ended.
func comboTier(count int) float64 {
	switch {
	case count >= 100:
		return 10
	case count >= 50:
		return 5
	case count >= 25:
		return 3
	case count >= 10:
		return 2
	default:
		return 1
	}
}

func (e *ComboEngine) recordSample(t time.Time) {
	e.samples = append(e.samples, t)
	if len(e.samples) > e.detector.SampleWindow {
		e.samples = e.samples[len(e.samples)-e.detector.SampleWindow:]
	}
}

// looksAutomated applies the interval heuristic over the most recent
// samples: clicks that are both extremely fast and extremely regular, or
// faster than any human regardless of regularity, get flagged.
func (e *ComboEngine) looksAutomated() bool {
	if len(e.samples) < e.detector.MinSamples {
		return false
	}

	window := e.detector.IntervalWindow
	if window > len(e.samples) {
		window = len(e.samples)
	}
	recent := e.samples[len(e.samples)-window:]

	intervals := make([]float64, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		intervals = append(intervals, float64(recent[i].Sub(recent[i-1]).Microseconds())/1000.0)
	}
	if len(intervals) == 0 {
		return false
	}

	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))

	deviation := 0.0
	for _, iv := range intervals {
		d := iv - mean
		if d < 0 {
			d = -d
		}
		deviation += d
	}
	deviation /= float64(len(intervals))

	if mean < e.detector.HardMeanThresholdMS {
		return true
	}
	return deviation < e.detector.DeviationThreshold && mean < e.detector.MeanThresholdMS
}
