// Package dispatch - dispatch.go
//
// This file implements the Dispatcher that turns high-level intents ("click
// somewhere inside this slot", "press space") into paced, humanized calls on
// a low-level Input actuator.
//
// Key Responsibilities:
//   - Mouse movement along an eased path to a randomized point in a rect
//   - Left/right clicks with a random after-click delay
//   - Key taps with a random hold, long holds, and modifier-held sections
//   - Input pacing through a token-bucket limiter
//
// Error Handling:
// Actuator failures are logged and swallowed (fire-and-forget model). A bot
// that keeps going after a failed click simply observes the unchanged screen
// on its next poll. Context cancellation stops pending movement between steps.
//
// Thread Safety:
// Not thread-safe. A Dispatcher belongs to one session's main loop.
package dispatch

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"scape-bot/internal/clock"
	"scape-bot/internal/config"
	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
)

// Button is a mouse button.
type Button int

const (
	Left Button = iota
	Right
)

func (b Button) String() string {
	if b == Right {
		return "right"
	}
	return "left"
}

// Common key names understood by every Input backend.
const (
	KeySpace  = "space"
	KeyShift  = "shift"
	KeyEscape = "esc"
	KeyEnter  = "enter"
	KeyUp     = "up"
	KeyDown   = "down"
	KeyLeft   = "left"
	KeyRight  = "right"
)

// Input is the low-level actuator of a game client backend.
type Input interface {
	MoveTo(ctx context.Context, p geometry.Point) error
	Down(ctx context.Context, b Button) error
	Up(ctx context.Context, b Button) error
	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
	// Scroll scrolls the wheel; positive is up (zoom in), negative is down.
	Scroll(ctx context.Context, clicks int) error
	Position(ctx context.Context) (geometry.Point, error)
}

// Speed profiles for mouse paths.
type speed struct {
	steps int
	delay time.Duration
}

var speeds = map[string]speed{
	"slow":   {steps: 40, delay: 12 * time.Millisecond},
	"medium": {steps: 25, delay: 8 * time.Millisecond},
	"fast":   {steps: 12, delay: 4 * time.Millisecond},
}

// Dispatcher paces and humanizes input.
type Dispatcher struct {
	in      Input
	clock   clock.Clock
	rng     *rand.Rand
	limiter *rate.Limiter
	timing  config.TimingConfig
	speed   speed
}

// New creates a Dispatcher over in.
//
// Parameters:
//   - in: backend actuator
//   - timing: click delay, key hold, mouse speed and actions per second
//   - c: time source for every delay (a fake clock makes tests instant)
//   - rng: randomness for target points, jitter and delays
func New(in Input, timing config.TimingConfig, c clock.Clock, rng *rand.Rand) *Dispatcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	limit := rate.Inf
	if timing.ActionsPerSecond > 0 {
		limit = rate.Limit(timing.ActionsPerSecond)
	}
	sp, ok := speeds[timing.MouseSpeed]
	if !ok {
		sp = speeds["medium"]
	}
	return &Dispatcher{
		in:      in,
		clock:   c,
		rng:     rng,
		limiter: rate.NewLimiter(limit, 1),
		timing:  timing,
		speed:   sp,
	}
}

// pace blocks until the limiter grants one action. The reservation is taken
// against the dispatcher clock so fake clocks drive it too.
func (d *Dispatcher) pace(ctx context.Context) bool {
	now := d.clock.Now()
	r := d.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false
	}
	if delay := r.DelayFrom(now); delay > 0 {
		if err := d.clock.Sleep(ctx, delay); err != nil {
			r.CancelAt(now)
			return false
		}
	}
	return ctx.Err() == nil
}

func (d *Dispatcher) uniform(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(d.rng.Int63n(int64(hi-lo)+1))
}

func (d *Dispatcher) sleep(ctx context.Context, dur time.Duration) {
	_ = d.clock.Sleep(ctx, dur)
}

// Position returns the cursor position, or the zero point when the backend
// cannot report it.
func (d *Dispatcher) Position(ctx context.Context) geometry.Point {
	p, err := d.in.Position(ctx)
	if err != nil {
		observability.LogDebug("Position: %v", err)
	}
	return p
}

// MoveTo moves the cursor to p along an ease-in-out path.
func (d *Dispatcher) MoveTo(ctx context.Context, p geometry.Point) {
	if !d.pace(ctx) {
		return
	}
	from, err := d.in.Position(ctx)
	if err != nil {
		observability.LogDebug("MoveTo: cannot read cursor position: %v", err)
		d.move(ctx, p)
		return
	}
	for _, step := range Path(from, p, d.speed.steps) {
		if ctx.Err() != nil {
			return
		}
		if !d.move(ctx, step) {
			return
		}
		d.sleep(ctx, d.speed.delay)
	}
}

func (d *Dispatcher) move(ctx context.Context, p geometry.Point) bool {
	if err := d.in.MoveTo(ctx, p); err != nil {
		observability.LogWarn("MoveTo %s failed: %v", p, err)
		return false
	}
	return true
}

// MoveInto moves to a randomized point inside rect and returns it.
func (d *Dispatcher) MoveInto(ctx context.Context, rect geometry.Rect) geometry.Point {
	target := rect.RandomPoint(d.rng)
	d.MoveTo(ctx, target)
	return target
}

// MoveRel moves by (dx, dy) from the current position, each axis jittered
// by up to ±jx and ±jy pixels.
func (d *Dispatcher) MoveRel(ctx context.Context, dx, dy, jx, jy int) {
	from := d.Position(ctx)
	target := from.Add(dx+d.jitter(jx), dy+d.jitter(jy))
	d.MoveTo(ctx, target)
}

func (d *Dispatcher) jitter(n int) int {
	if n <= 0 {
		return 0
	}
	return d.rng.Intn(2*n+1) - n
}

func (d *Dispatcher) click(ctx context.Context, b Button) {
	if !d.pace(ctx) {
		return
	}
	if err := d.in.Down(ctx, b); err != nil {
		observability.LogWarn("Click %s down failed: %v", b, err)
		return
	}
	d.sleep(ctx, d.uniform(20*time.Millisecond, 60*time.Millisecond))
	if err := d.in.Up(ctx, b); err != nil {
		observability.LogWarn("Click %s up failed: %v", b, err)
	}
	d.sleep(ctx, d.uniform(d.timing.ClickDelayMin, d.timing.ClickDelayMax))
}

// Click left-clicks at the current position.
func (d *Dispatcher) Click(ctx context.Context) { d.click(ctx, Left) }

// RightClick right-clicks at the current position.
func (d *Dispatcher) RightClick(ctx context.Context) { d.click(ctx, Right) }

// ClickIn moves into rect and left-clicks.
func (d *Dispatcher) ClickIn(ctx context.Context, rect geometry.Rect) {
	d.MoveInto(ctx, rect)
	d.Click(ctx)
}

// RightClickIn moves into rect and right-clicks.
func (d *Dispatcher) RightClickIn(ctx context.Context, rect geometry.Rect) {
	d.MoveInto(ctx, rect)
	d.RightClick(ctx)
}

// PressKey taps key with a short random hold.
func (d *Dispatcher) PressKey(ctx context.Context, key string) {
	d.HoldKey(ctx, key, d.uniform(d.timing.KeyHoldMin, d.timing.KeyHoldMax))
}

// HoldKey holds key for dur. The key is released even if ctx ends early.
func (d *Dispatcher) HoldKey(ctx context.Context, key string, dur time.Duration) {
	if !d.pace(ctx) {
		return
	}
	if err := d.in.KeyDown(ctx, key); err != nil {
		observability.LogWarn("KeyDown %q failed: %v", key, err)
		return
	}
	d.sleep(ctx, dur)
	d.release(key)
}

// WithKeyHeld holds key while fn runs, e.g. shift while dropping items.
func (d *Dispatcher) WithKeyHeld(ctx context.Context, key string, fn func()) {
	if !d.pace(ctx) {
		return
	}
	if err := d.in.KeyDown(ctx, key); err != nil {
		observability.LogWarn("KeyDown %q failed: %v", key, err)
		fn()
		return
	}
	defer d.release(key)
	fn()
}

func (d *Dispatcher) release(key string) {
	// Released on a fresh context so a cancelled run never leaves keys stuck.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.in.KeyUp(ctx, key); err != nil {
		observability.LogWarn("KeyUp %q failed: %v", key, err)
	}
}

// Scroll scrolls the wheel by clicks notches, one notch at a time.
func (d *Dispatcher) Scroll(ctx context.Context, clicks int) {
	step := 1
	if clicks < 0 {
		step, clicks = -1, -clicks
	}
	for i := 0; i < clicks; i++ {
		if !d.pace(ctx) {
			return
		}
		if err := d.in.Scroll(ctx, step); err != nil {
			observability.LogWarn("Scroll failed: %v", err)
			return
		}
		d.sleep(ctx, d.uniform(30*time.Millisecond, 80*time.Millisecond))
	}
}
