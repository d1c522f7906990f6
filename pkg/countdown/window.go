// Package countdown evaluates campaign and coupon time windows and drives the
// once-per-second countdown shown next to them.
package countdown

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhasePending Phase = "pending"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

const (
	LabelStartsAt = "Starts at"
	LabelEndedAt  = "Ended at"

	// DeadlineReached replaces the formatted countdown once it hits zero.
	DeadlineReached = "Deadline reached"

	urgentThreshold = 24 * time.Hour
)

type Window struct {
	Phase  Phase     `json:"fase"`
	Target time.Time `json:"alvo"`
	Label  string    `json:"rotulo"`
}

// Evaluate places now relative to [start, end]. An empty or inverted window
// is reported as ended.
func Evaluate(now, start, end time.Time) Window {
	if !end.After(start) {
		return Window{Phase: PhaseEnded, Target: end, Label: LabelEndedAt}
	}
	switch {
	case now.Before(start):
		return Window{Phase: PhasePending, Target: start, Label: LabelStartsAt}
	case now.After(end):
		return Window{Phase: PhaseEnded, Target: end, Label: LabelEndedAt}
	}
	return Window{Phase: PhaseActive, Target: end}
}

// Remaining is the time left until the window's target, floored at zero.
func (w Window) Remaining(now time.Time) time.Duration {
	if d := w.Target.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Format renders d as "{days}d, {HH}h{MM}m{SS}s". Sub-second remainders are
// dropped and anything at or below zero renders as the zero string.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dd, %02dh%02dm%02ds", days, hours, minutes, seconds)
}

// Display is Format with the terminal string once nothing is left.
func Display(remaining time.Duration) string {
	if remaining <= 0 {
		return DeadlineReached
	}
	return Format(remaining)
}

// Urgent reports whether a running countdown is within its last day.
func Urgent(remaining time.Duration) bool {
	return remaining > 0 && remaining <= urgentThreshold
}
