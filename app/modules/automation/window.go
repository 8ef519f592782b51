// Package automation runs the polling scheduler: a fixed-interval loop
// that, inside configured weekly windows, creates week threads and
// publishes rankings. Every check is idempotent, so overlapping ticks
// and restarts inside a window are harmless.
package automation

import (
	"time"

	"github.com/focus-guild/pomo-bot/config"
)

// Window is a weekly civil-time trigger window, evaluated in a guild's
// timezone. [start, start+Width) on the configured weekday.
type Window struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	Width   time.Duration
}

// WindowFromConfig converts the configured window.
func WindowFromConfig(cfg config.WindowConfig) Window {
	return Window{
		Weekday: cfg.Weekday,
		Hour:    cfg.Hour,
		Minute:  cfg.Minute,
		Width:   cfg.Width.Std(),
	}
}

// Contains reports whether the local time t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Weekday() != w.Weekday {
		return false
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), w.Hour, w.Minute, 0, 0, t.Location())
	return !t.Before(start) && t.Before(start.Add(w.Width))
}

// civilDate returns t's wall-clock date as a UTC civil date, so it can
// be compared against stored challenge dates.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
