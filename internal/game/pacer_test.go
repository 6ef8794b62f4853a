package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacerInterval(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, NewPacer(20).Interval())
	assert.Equal(t, time.Second, NewPacer(1).Interval())

	p := NewPacer(20)
	p.SetRate(0)
	p.SetRate(-1)
	assert.Equal(t, 50*time.Millisecond, p.Interval(), "invalid rates are ignored")
}

func TestPacerCarriesRemainder(t *testing.T) {
	p := NewPacer(20) // 50ms

	assert.False(t, p.Advance(30*time.Millisecond))
	assert.True(t, p.Advance(30*time.Millisecond))
	assert.Equal(t, 10*time.Millisecond, p.Owed(), "remainder carries, not reset")
	assert.False(t, p.Advance(39*time.Millisecond))
	assert.True(t, p.Advance(time.Millisecond))
	assert.Equal(t, time.Duration(0), p.Owed())
}

func TestPacerIgnoresNegativeElapsed(t *testing.T) {
	p := NewPacer(10)
	p.Advance(40 * time.Millisecond)
	assert.False(t, p.Advance(-time.Second))
	assert.Equal(t, 40*time.Millisecond, p.Owed())
}

// countUpdates feeds deltas and counts update ticks.
func countUpdates(rate float64, deltas []time.Duration) int {
	p := NewPacer(rate)
	n := 0
	for _, d := range deltas {
		if p.Advance(d) {
			n++
		}
	}
	return n
}

func TestPacerNoDriftAcrossChunkings(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, rate := range []float64{20, 30, 60, 7} {
		interval := NewPacer(rate).Interval()
		for trial := 0; trial < 20; trial++ {
			var deltas []time.Duration
			var total time.Duration
			for i := 0; i < 500; i++ {
				// Host frames stay shorter than one interval, like a display
				// refreshing faster than the recompute rate.
				d := time.Duration(rng.Int63n(int64(interval)-1)) + 1
				deltas = append(deltas, d)
				total += d
			}
			want := int(total / interval)
			if got := countUpdates(rate, deltas); got != want {
				t.Fatalf("rate %v trial %d: got %d updates over %v, want %d", rate, trial, got, total, want)
			}
		}
	}
}

func TestPacerFixedFrameRate(t *testing.T) {
	// 144Hz display, 20Hz recompute, 10 seconds
	frame := time.Second / 144
	deltas := make([]time.Duration, 1440)
	for i := range deltas {
		deltas[i] = frame
	}
	total := frame * 1440
	assert.Equal(t, int(total/(50*time.Millisecond)), countUpdates(20, deltas))
}
