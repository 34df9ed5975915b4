// Package poll implements the bounded polling loop used to wait for the game
// client to reach a state the program cannot observe directly.
//
// Contract:
//   - The predicate is evaluated immediately, then once per interval.
//   - The loop ends on the first match, when the timeout budget is spent,
//     when the context ends, or when the stopper reports a stop.
//   - The last sleep is clamped to the remaining budget, so a loop with an
//     instantaneous predicate returns within Timeout of being called and
//     never later than Timeout + Interval.
//   - "Not found" is a normal result, not an error. Callers branch on Found.
//
// Example: Timeout 5s, Interval 500ms and a predicate that never matches
// yields exactly 10 attempts (t = 0, 0.5, ..., 4.5s) and returns at 5s.
package poll

import (
	"context"
	"math/rand"
	"time"

	"scape-bot/internal/clock"
)

// Config bounds one polling loop.
type Config struct {
	Timeout  time.Duration
	Interval time.Duration
	// Jitter adds a random extra delay of up to Jitter*Interval to each sleep.
	Jitter float64
}

// Every is shorthand for Config{Timeout: timeout, Interval: interval}.
func Every(interval, timeout time.Duration) Config {
	return Config{Timeout: timeout, Interval: interval}
}

// Stopper reports a cooperative stop request.
type Stopper interface {
	Stopped() bool
}

// Result is the outcome of a polling loop.
type Result[T any] struct {
	Value    T
	Found    bool
	Attempts int
	Elapsed  time.Duration
}

// Poller runs polling loops against a clock.
type Poller struct {
	clock clock.Clock
	rng   *rand.Rand
	stop  Stopper
}

// Option configures a Poller.
type Option func(*Poller)

// WithStopper makes every loop end early once s reports a stop.
func WithStopper(s Stopper) Option {
	return func(p *Poller) { p.stop = s }
}

// WithRand sets the random source used for jitter.
func WithRand(rng *rand.Rand) Option {
	return func(p *Poller) { p.rng = rng }
}

// New returns a Poller on c.
func New(c clock.Clock, opts ...Option) *Poller {
	p := &Poller{clock: c}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p
}

// Clock returns the poller's clock.
func (p *Poller) Clock() clock.Clock {
	return p.clock
}

func (p *Poller) halted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return p.stop != nil && p.stop.Stopped()
}

func (p *Poller) wait(cfg Config) time.Duration {
	d := cfg.Interval
	if d <= 0 {
		d = cfg.Timeout
	}
	if cfg.Jitter > 0 && d > 0 {
		d += time.Duration(p.rng.Float64() * cfg.Jitter * float64(d))
	}
	return d
}

// Until evaluates pred until it matches or cfg.Timeout elapses.
func Until[T any](ctx context.Context, p *Poller, cfg Config, pred func(context.Context) (T, bool)) Result[T] {
	var res Result[T]
	start := p.clock.Now()
	for !p.halted(ctx) {
		res.Attempts++
		if v, ok := pred(ctx); ok {
			res.Value, res.Found = v, true
			break
		}
		remaining := cfg.Timeout - p.clock.Now().Sub(start)
		if remaining <= 0 {
			break
		}
		if err := p.clock.Sleep(ctx, min(p.wait(cfg), remaining)); err != nil {
			break
		}
		if p.clock.Now().Sub(start) >= cfg.Timeout {
			break
		}
	}
	res.Elapsed = p.clock.Now().Sub(start)
	return res
}

// Retry evaluates pred at most attempts times, sleeping interval between
// attempts but not after the last one.
func Retry[T any](ctx context.Context, p *Poller, attempts int, interval time.Duration, pred func(context.Context) (T, bool)) Result[T] {
	var res Result[T]
	start := p.clock.Now()
	for i := 0; i < attempts && !p.halted(ctx); i++ {
		if i > 0 {
			if err := p.clock.Sleep(ctx, interval); err != nil {
				break
			}
		}
		res.Attempts++
		if v, ok := pred(ctx); ok {
			res.Value, res.Found = v, true
			break
		}
	}
	res.Elapsed = p.clock.Now().Sub(start)
	return res
}

// Wait polls a boolean condition. It reports whether cond became true.
func (p *Poller) Wait(ctx context.Context, cfg Config, cond func(context.Context) bool) bool {
	return Until(ctx, p, cfg, func(ctx context.Context) (struct{}, bool) {
		return struct{}{}, cond(ctx)
	}).Found
}

// While sleeps in intervals for as long as cond holds, up to cfg.Timeout.
// It reports whether cond stopped holding before the budget ran out.
func (p *Poller) While(ctx context.Context, cfg Config, cond func(context.Context) bool) bool {
	return p.Wait(ctx, cfg, func(ctx context.Context) bool { return !cond(ctx) })
}
