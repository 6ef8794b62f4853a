package game

import (
	"math"
	"time"
)

// Pacer decides which ticks are update ticks for a fixed recompute rate.
// Elapsed time accumulates into a debt; an update fires when the debt reaches
// one interval and the remainder carries over, so the cadence stays locked to
// wall-clock time under a jittery host frame rate.
type Pacer struct {
	interval time.Duration
	owed     time.Duration
}

// NewPacer returns a pacer for rate updates per second
func NewPacer(rate float64) *Pacer {
	p := &Pacer{}
	p.SetRate(rate)
	return p
}

// SetRate changes the update rate. The accumulated debt is kept.
func (p *Pacer) SetRate(rate float64) {
	if !validRate(rate) {
		return
	}
	p.interval = time.Duration(float64(time.Second) / rate)
	if p.interval <= 0 {
		p.interval = 1
	}
}

// Interval returns the time between update ticks
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Owed returns the time carried toward the next update
func (p *Pacer) Owed() time.Duration {
	return p.owed
}

// Advance adds elapsed wall time and reports whether this tick is an update
// tick. Negative elapsed (clock stepped back) counts as zero.
func (p *Pacer) Advance(elapsed time.Duration) bool {
	if p.interval <= 0 {
		return false
	}
	if elapsed > 0 {
		p.owed += elapsed
	}
	update := p.owed >= p.interval
	p.owed %= p.interval
	return update
}

// Reset clears the carried time
func (p *Pacer) Reset() {
	p.owed = 0
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
