package main

import (
	"time"
)

/* ======================
   Time-Based Events
   ====================== */

// TimeEvent is a recurring wall-clock bonus window.
type TimeEvent struct {
	ID          string
	Name        string
	Description string
	Multiplier  float64
	Active      func(t time.Time) bool
}

var timeEvents = []TimeEvent{
	{
		ID:          "weekend_hustle",
		Name:        "Weekend Hustle Mode!",
		Description: "Real builders work weekends",
		Multiplier:  1.5,
		Active: func(t time.Time) bool {
			day := t.Weekday()
			return day == time.Saturday || day == time.Sunday
		},
	},
	{
		ID:          "late_night_coding",
		Name:        "Late Night Coding Session",
		Description: "Best code is written after midnight",
		Multiplier:  2,
		Active: func(t time.Time) bool {
			return t.Hour() < 6
		},
	},
	{
		ID:          "morning_grind",
		Name:        "5 AM Club Activated",
		Description: "Early bird gets the revenue",
		Multiplier:  1.3,
		Active: func(t time.Time) bool {
			return t.Hour() >= 5 && t.Hour() < 8
		},
	},
	{
		ID:          "launch_day",
		Name:        "Launch Day!",
		Description: "Everyone launches on Wednesday",
		Multiplier:  1.8,
		Active: func(t time.Time) bool {
			return t.Weekday() == time.Wednesday
		},
	},
}

func AllTimeEvents() []TimeEvent {
	return timeEvents
}

// EventProvider reports the currently active time-based earnings bonus.
// Sessions consume only the multiplier; handlers expose the full event so
// clients can show a banner.
type EventProvider interface {
	ActiveEvent(t time.Time) (TimeEvent, bool)
	Multiplier(t time.Time) float64
}

// scheduleProvider resolves events from the catalog. Windows can overlap
// (a Sunday at 01:00 matches two rules); the first match in catalog order
// wins, so bonuses never stack.
type scheduleProvider struct{}

func NewEventProvider() EventProvider {
	return scheduleProvider{}
}

func (scheduleProvider) ActiveEvent(t time.Time) (TimeEvent, bool) {
	for _, ev := range timeEvents {
		if ev.Active(t) {
			return ev, true
		}
	}
	return TimeEvent{}, false
}

func (p scheduleProvider) Multiplier(t time.Time) float64 {
	if ev, ok := p.ActiveEvent(t); ok {
		return ev.Multiplier
	}
	return 1
}

// noEvents is the provider used when deterministic earnings matter more
// than flavor (simulations, most tests).
type noEvents struct{}

func NoEvents() EventProvider {
	return noEvents{}
}

func (noEvents) ActiveEvent(time.Time) (TimeEvent, bool) { return TimeEvent{}, false }

func (noEvents) Multiplier(time.Time) float64 { return 1 }

// fixedEvent pins one event as always active.
type fixedEvent struct {
	event TimeEvent
}

func FixedEvent(ev TimeEvent) EventProvider {
	return fixedEvent{event: ev}
}

func (f fixedEvent) ActiveEvent(time.Time) (TimeEvent, bool) { return f.event, true }

func (f fixedEvent) Multiplier(time.Time) float64 { return multiplierOrOne(f.event.Multiplier) }
