package countdown

import (
	"context"
	"time"
)

// Clock abstracts time so the ticking loop can be driven by tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}

type Tick struct {
	Remaining time.Duration
	Text      string
	Urgent    bool
}

// Timer recomputes a countdown every Interval until the target is reached.
type Timer struct {
	Clock    Clock
	Interval time.Duration
}

func NewTimer() *Timer {
	return &Timer{Clock: SystemClock, Interval: time.Second}
}

// Run emits a tick immediately and then once per interval. onDone is invoked
// exactly once, on the first tick whose remaining time is zero, after which
// Run returns. Cancelling ctx stops the loop without calling onDone. The
// ticker is released on every return path.
func (t *Timer) Run(ctx context.Context, target time.Time, onTick func(Tick), onDone func()) {
	clock := t.Clock
	if clock == nil {
		clock = SystemClock
	}
	interval := t.Interval
	if interval <= 0 {
		interval = time.Second
	}

	emit := func() bool {
		remaining := target.Sub(clock.Now())
		if remaining < 0 {
			remaining = 0
		}
		if onTick != nil {
			onTick(Tick{Remaining: remaining, Text: Display(remaining), Urgent: Urgent(remaining)})
		}
		if remaining == 0 {
			if onDone != nil {
				onDone()
			}
			return true
		}
		return false
	}

	if ctx.Err() != nil {
		return
	}
	if emit() {
		return
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if emit() {
				return
			}
		}
	}
}
