// Package session - session.go
//
// This file implements the automation session that runs one bot against one
// game client.
//
// Key Responsibilities:
//   - Holding the capability set (screen, input, status feed, OCR, marks, sink)
//   - Validating bot options before the bot is allowed to start
//   - Owning the stop flag, pause state and run timer
//   - Recording every run and its outcome in the run store
//
// Lifecycle:
//
//	New -> Run(ctx, bot, raw) -> [options rejected] -> ErrOptionsRejected
//	                          -> hooks -> bot.Setup -> bot.MainLoop -> outcome
//
// Stop is cooperative. Stop, Pause and Resume may be called from any
// goroutine; the bot observes them at its next loop head, poll attempt or
// break tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"scape-bot/internal/breaks"
	"scape-bot/internal/client"
	"scape-bot/internal/clock"
	"scape-bot/internal/config"
	"scape-bot/internal/dispatch"
	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
	"scape-bot/internal/ocr"
	"scape-bot/internal/options"
	"scape-bot/internal/poll"
	"scape-bot/internal/progress"
	"scape-bot/internal/status"
	"scape-bot/internal/vision"
)

var (
	// ErrOptionsRejected is returned by Run when the bot options fail validation.
	ErrOptionsRejected = errors.New("options rejected")
	// ErrStopped is returned by helpers that notice a stop request.
	ErrStopped = errors.New("session stopped")
	// ErrBusy is returned when Run is called while another run is active.
	ErrBusy = errors.New("session already running")
)

// Status is the run state of a session.
type Status int32

const (
	Stopped Status = iota
	Running
	Paused
	Finished
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Bot is one automation script.
type Bot interface {
	Title() string
	Description() string
	// Options describes the configurable options of the bot.
	Options() *options.Set
	// Apply receives accepted option values before the run starts. It may log
	// a summary of the values through log.
	Apply(v options.Values, log options.Logger) error
	// RunFor is the run duration derived from the applied options.
	RunFor() time.Duration
	Setup(ctx context.Context, s *Session) error
	MainLoop(ctx context.Context, s *Session) error
}

// Hook runs after options are accepted and before bot setup.
type Hook func(ctx context.Context, s *Session) error

// Capabilities are the collaborators a session drives. Screen and Input are
// required; the rest may be nil.
type Capabilities struct {
	Screen client.Screen
	Input  dispatch.Input
	Status status.Source
	OCR    ocr.Engine
	Marks  vision.MarkFinder
	Sink   progress.Sink
}

// Session runs bots.
type Session struct {
	cfg       *config.Config
	caps      Capabilities
	clock     clock.Clock
	rng       *rand.Rand
	store     RunStore
	hooks     []Hook
	templates *vision.Templates
	onStatus  func(Status)

	sink    progress.Sink
	input   *dispatch.Dispatcher
	poller  *poll.Poller
	breaks  *breaks.Scheduler
	reader  *ocr.Reader
	matcher vision.Matcher
	marks   vision.MarkFinder

	active  atomic.Bool
	stop    atomic.Bool
	status  atomic.Int32
	pauseMu sync.Mutex
	resume  chan struct{}

	// Per-run state, written by Run before the bot starts.
	layout  geometry.Layout
	tracker *progress.Tracker
	runFor  time.Duration
	started time.Time
	runID   string
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRand sets the random source for input, polling jitter and breaks.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithStore records runs in store.
func WithStore(store RunStore) Option {
	return func(s *Session) { s.store = store }
}

// WithHook adds a setup hook that runs before every bot setup.
func WithHook(h Hook) Option {
	return func(s *Session) { s.hooks = append(s.hooks, h) }
}

// WithTemplates replaces the template library loaded from the vision config.
func WithTemplates(t *vision.Templates) Option {
	return func(s *Session) { s.templates = t }
}

// WithStatusHook calls fn on every status change.
func WithStatusHook(fn func(Status)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// New creates a session over caps.
func New(cfg *config.Config, caps Capabilities, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: nil config")
	}
	if caps.Screen == nil || caps.Input == nil {
		return nil, errors.New("session: screen and input capabilities are required")
	}
	s := &Session{cfg: cfg, caps: caps}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.store == nil {
		s.store = nopStore{}
	}
	if s.templates == nil {
		s.templates = vision.NewTemplates(cfg.Vision.TemplateDir)
	}
	s.sink = caps.Sink
	if s.sink == nil {
		s.sink = progress.Discard{}
	}
	s.marks = caps.Marks
	if s.marks == nil {
		s.marks = vision.ColorMarks{Tolerance: tolerance(cfg), MinArea: cfg.Vision.MinMarkArea}
	}

	s.input = dispatch.New(caps.Input, cfg.Timing, s.clock, s.rng)
	s.poller = poll.New(s.clock, poll.WithStopper(s), poll.WithRand(s.rng))
	s.breaks = breaks.New(s.clock, s.rng, s.sink, s)
	s.reader = ocr.NewReader(caps.OCR, tolerance(cfg))
	s.matcher = vision.Matcher{ColorTolerance: cfg.Vision.ColorTolerance, PixelTolerance: cfg.Vision.PixelTolerance}
	return s, nil
}

func tolerance(cfg *config.Config) uint8 {
	return uint8(min(max(cfg.Vision.ColorTolerance, 0), 255))
}

// Run validates raw options against the bot, then runs it to completion, a
// stop request or ctx cancellation.
//
// A nil return means the bot finished or was stopped cooperatively. The
// outcome is recorded in the run store either way.
func (s *Session) Run(ctx context.Context, bot Bot, raw map[string]any) error {
	if !s.active.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.active.Store(false)
	s.stop.Store(false)

	vals, ok := bot.Options().Load(raw, s.sink)
	if !ok {
		return ErrOptionsRejected
	}
	if err := bot.Apply(vals, s.sink); err != nil {
		s.sink.Log(err.Error(), false)
		return fmt.Errorf("%w: %v", ErrOptionsRejected, err)
	}
	s.sink.Log("Options set successfully.", false)

	win, err := s.caps.Screen.Window(ctx)
	if err != nil {
		return fmt.Errorf("failed to locate game client: %w", err)
	}
	s.layout = geometry.NewLayout(win)
	s.runFor = bot.RunFor()
	s.started = s.clock.Now()
	s.tracker = progress.NewTracker(s.sink, s.started, s.runFor)
	s.runID = uuid.NewString()

	run := Run{
		ID:      s.runID,
		Bot:     bot.Title(),
		Options: vals.Raw(),
		Started: s.started,
	}
	if err := s.store.StartRun(ctx, run); err != nil {
		observability.LogWarn("Failed to record run start: %v", err)
	}
	observability.LogInfo("Run %s started: %s for %s", s.runID, bot.Title(), s.runFor)

	s.setStatus(Running)
	runErr := s.execute(ctx, bot)

	outcome := OutcomeFinished
	switch {
	case runErr != nil && !errors.Is(runErr, ErrStopped) && !errors.Is(runErr, breaks.ErrInterrupted):
		outcome = OutcomeFailed
		if ctx.Err() != nil {
			outcome = OutcomeCanceled
		}
		s.sink.Log(fmt.Sprintf("Bot error: %v", runErr), false)
		s.setStatus(Stopped)
	case ctx.Err() != nil:
		outcome = OutcomeCanceled
		runErr = ctx.Err()
		s.setStatus(Stopped)
	case s.Stopped():
		outcome = OutcomeStopped
		runErr = nil
		s.setStatus(Stopped)
	default:
		runErr = nil
		s.tracker.Finish()
		s.setStatus(Finished)
	}

	// The run context may already be done; recording must still happen.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	note := ""
	if runErr != nil {
		note = runErr.Error()
	}
	if err := s.store.FinishRun(rctx, s.runID, outcome, s.clock.Now(), s.tracker.Last(), note); err != nil {
		observability.LogWarn("Failed to record run outcome: %v", err)
	}
	observability.LogInfo("Run %s ended: %s", s.runID, outcome)
	return runErr
}

func (s *Session) execute(ctx context.Context, bot Bot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bot panicked: %v", r)
		}
	}()
	for _, h := range s.hooks {
		if err := h(ctx, s); err != nil {
			return fmt.Errorf("setup hook failed: %w", err)
		}
	}
	if err := bot.Setup(ctx, s); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	if s.Stopped() {
		return nil
	}
	return bot.MainLoop(ctx, s)
}

func (s *Session) setStatus(st Status) {
	if Status(s.status.Swap(int32(st))) != st && s.onStatus != nil {
		s.onStatus(st)
	}
}

// Status returns the current run state.
func (s *Session) Status() Status {
	return Status(s.status.Load())
}

// Stop requests a cooperative stop. It also releases a paused bot.
func (s *Session) Stop() {
	s.stop.Store(true)
	s.Resume()
}

// Stopped reports whether a stop was requested.
func (s *Session) Stopped() bool {
	return s.stop.Load()
}

// Pause holds the bot at its next Running check.
func (s *Session) Pause() {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	if s.Status() != Running {
		return
	}
	s.resume = make(chan struct{})
	s.setStatus(Paused)
	s.sink.Log("Paused.", false)
}

// Resume releases a paused bot.
func (s *Session) Resume() {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	if s.resume == nil {
		return
	}
	close(s.resume)
	s.resume = nil
	if s.Status() == Paused {
		s.setStatus(Running)
		s.sink.Log("Resumed.", false)
	}
}

func (s *Session) waitPaused(ctx context.Context) {
	s.pauseMu.Lock()
	ch := s.resume
	s.pauseMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case <-ch:
	case <-ctx.Done():
	}
}

// Running reports whether the main loop should do another pass: no stop
// was requested, ctx is live and the run time has not elapsed. A paused
// session blocks here until resumed or stopped.
func (s *Session) Running(ctx context.Context) bool {
	s.waitPaused(ctx)
	if s.Stopped() || ctx.Err() != nil {
		return false
	}
	return s.clock.Now().Sub(s.started) < s.runFor
}

// Report publishes progress and the remaining time.
func (s *Session) Report() {
	now := s.clock.Now()
	s.tracker.Update(now)
	s.sink.Log(fmt.Sprintf("Time left: %.2fs", s.tracker.Remaining(now).Seconds()), true)
}

// Remaining returns the run time left.
func (s *Session) Remaining() time.Duration {
	return max(s.runFor-s.Elapsed(), 0)
}

// Elapsed returns the time since the run started.
func (s *Session) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.started)
}

// RunID returns the id of the current or last run.
func (s *Session) RunID() string {
	return s.runID
}

// Log writes a status line to the sink.
func (s *Session) Log(msg string) {
	s.sink.Log(msg, false)
}

// Logf formats and writes a status line.
func (s *Session) Logf(format string, args ...any) {
	s.sink.Log(fmt.Sprintf(format, args...), false)
}

// LogOverwrite writes a status line that replaces the previous one.
func (s *Session) LogOverwrite(msg string) {
	s.sink.Log(msg, true)
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Clock returns the session clock.
func (s *Session) Clock() clock.Clock { return s.clock }

// Input returns the action dispatcher.
func (s *Session) Input() *dispatch.Dispatcher { return s.input }

// Poller returns the session poller. Its loops end on Stop.
func (s *Session) Poller() *poll.Poller { return s.poller }

// Breaks returns the break scheduler.
func (s *Session) Breaks() *breaks.Scheduler { return s.breaks }

// Layout returns the client regions located when the run started.
func (s *Session) Layout() geometry.Layout { return s.layout }

// Rand returns the session random source. It is not safe for concurrent use.
func (s *Session) Rand() *rand.Rand { return s.rng }

// Sleep waits d on the session clock. It returns ErrStopped after a stop.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	if err := s.clock.Sleep(ctx, d); err != nil {
		return err
	}
	if s.Stopped() {
		return ErrStopped
	}
	return nil
}

// Nap sleeps a short random delay (100 to 300 ms).
func (s *Session) Nap(ctx context.Context) error {
	return s.breaks.Pause(ctx, 100*time.Millisecond, 300*time.Millisecond)
}

// TakeBreak takes a break of lo to hi.
func (s *Session) TakeBreak(ctx context.Context, lo, hi time.Duration, fancy bool) error {
	_, err := s.breaks.Take(ctx, lo, hi, fancy)
	return err
}

// MaybeBreak potentially takes a break using the configured chance and
// maximum.
func (s *Session) MaybeBreak(ctx context.Context) error {
	_, err := s.breaks.Maybe(ctx, s.cfg.Breaks.Chance, s.cfg.Breaks.Max)
	return err
}

// LogoutAndStop logs msg, logs out of the game and stops the session.
func (s *Session) LogoutAndStop(ctx context.Context, msg string) {
	s.Log(msg)
	s.Logout(ctx)
	s.Stop()
}
