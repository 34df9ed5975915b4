// Package breaks inserts randomized idle pauses between automation steps.
//
// A break is a uniformly sampled duration in [lo, hi]. Plain breaks sleep
// in one-second ticks so a stop request ends them within a second. Fancy
// breaks split the same sampled total into two to four shorter segments of
// random length, which varies the timing signature without changing the
// total.
package breaks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"scape-bot/internal/clock"
	"scape-bot/internal/progress"
)

// ErrInterrupted is returned when a stop request ends a break early.
var ErrInterrupted = errors.New("break interrupted")

const tick = time.Second

// Stopper reports a cooperative stop request.
type Stopper interface {
	Stopped() bool
}

// Scheduler samples and takes breaks.
type Scheduler struct {
	clock clock.Clock
	rng   *rand.Rand
	sink  progress.Sink
	stop  Stopper
}

// New returns a Scheduler. A nil sink discards break messages.
func New(c clock.Clock, rng *rand.Rand, sink progress.Sink, stop Stopper) *Scheduler {
	if sink == nil {
		sink = progress.Discard{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{clock: c, rng: rng, sink: sink, stop: stop}
}

// Sample returns a uniform duration in [lo, hi]. Reversed bounds are swapped.
func (s *Scheduler) Sample(lo, hi time.Duration) time.Duration {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + time.Duration(s.rng.Int63n(int64(hi-lo)+1))
}

// Segments splits total into 2 to 4 positive parts that sum to total.
func (s *Scheduler) Segments(total time.Duration) []time.Duration {
	n := 2 + s.rng.Intn(3)
	if total < time.Duration(n) {
		return []time.Duration{total}
	}
	cuts := make([]int64, 0, n-1)
	seen := map[int64]bool{}
	for len(cuts) < n-1 {
		c := 1 + s.rng.Int63n(int64(total)-1)
		if !seen[c] {
			seen[c] = true
			cuts = append(cuts, c)
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })
	parts := make([]time.Duration, 0, n)
	prev := int64(0)
	for _, c := range cuts {
		parts = append(parts, time.Duration(c-prev))
		prev = c
	}
	return append(parts, total-time.Duration(prev))
}

// Take sleeps for a sampled duration in [lo, hi] and returns it.
func (s *Scheduler) Take(ctx context.Context, lo, hi time.Duration, fancy bool) (time.Duration, error) {
	total := s.Sample(lo, hi)
	parts := []time.Duration{total}
	if fancy {
		parts = s.Segments(total)
	}
	s.sink.Log("Taking a break...", false)

	left := total
	for i, part := range parts {
		if i > 0 {
			s.sink.Log(fmt.Sprintf("Still on break (%d/%d)...", i+1, len(parts)), false)
		}
		for part > 0 {
			if err := s.interrupted(ctx); err != nil {
				return total - left, err
			}
			d := min(tick, part)
			s.sink.Log(fmt.Sprintf("Taking a break... %d seconds left.", int(math.Ceil(left.Seconds()))), true)
			if err := s.clock.Sleep(ctx, d); err != nil {
				return total - left, err
			}
			part -= d
			left -= d
		}
	}
	s.sink.Log(fmt.Sprintf("Done taking %s break.", progress.FormatDuration(total)), true)
	return total, nil
}

// Maybe takes a break of up to max with the given probability.
func (s *Scheduler) Maybe(ctx context.Context, chance float64, max time.Duration) (bool, error) {
	if chance <= 0 || max <= 0 || s.rng.Float64() >= chance {
		return false, nil
	}
	_, err := s.Take(ctx, min(time.Second, max), max, false)
	return true, err
}

// Pause sleeps for a short uniform duration in [lo, hi] without logging.
func (s *Scheduler) Pause(ctx context.Context, lo, hi time.Duration) error {
	return s.clock.Sleep(ctx, s.Sample(lo, hi))
}

func (s *Scheduler) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.stop != nil && s.stop.Stopped() {
		return ErrInterrupted
	}
	return nil
}
