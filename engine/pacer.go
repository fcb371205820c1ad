package engine

import (
	"context"
	"time"
)

// Pacer holds the loop to a fixed tick period with drift correction
// A late tick skips its sleep; once the schedule falls more than two periods behind it is re-anchored
type Pacer struct {
	clock    Clock
	period   time.Duration
	deadline time.Time // Next tick deadline for drift correction
	late     uint64
}

// NewPacer creates a pacer, call Reset before the first Wait
func NewPacer(clock Clock, period time.Duration) *Pacer {
	return &Pacer{clock: clock, period: period}
}

// Period returns the tick period
func (p *Pacer) Period() time.Duration {
	return p.period
}

// Reset anchors the schedule one period from now
func (p *Pacer) Reset() {
	p.deadline = p.clock.Now().Add(p.period)
}

// Late returns the number of ticks that overran their deadline
func (p *Pacer) Late() uint64 {
	return p.late
}

// Wait sleeps until the current deadline and returns the slept duration
// late reports an overrun, in which case no sleep happens and the solve is never aborted
func (p *Pacer) Wait(ctx context.Context) (slept time.Duration, late bool) {
	if p.deadline.IsZero() {
		p.Reset()
	}
	now := p.clock.Now()
	deadline := p.deadline
	p.deadline = deadline.Add(p.period)

	if !now.Before(deadline) {
		p.late++
		if now.Sub(deadline) > 2*p.period {
			p.deadline = now.Add(p.period)
		}
		return 0, true
	}

	slept = deadline.Sub(now)
	p.clock.Sleep(ctx, slept)
	return slept, false
}
