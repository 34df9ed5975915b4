package tui

import (
	"context"
	"image/color"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scape-bot/internal/client/clienttest"
	"scape-bot/internal/config"
	"scape-bot/internal/dispatch/dispatchtest"
	"scape-bot/internal/geometry"
	"scape-bot/internal/options"
	"scape-bot/internal/session"
)

// loopBot reports every few milliseconds until stopped.
type loopBot struct {
	once    sync.Once
	started chan struct{}
}

func (b *loopBot) Title() string       { return "Loop" }
func (b *loopBot) Description() string { return "reports until stopped" }

func (b *loopBot) Options() *options.Set {
	return options.NewBuilder().
		AddSlider("running_time", "How long to run (minutes)?", 1, 60).
		MustBuild()
}

func (b *loopBot) Apply(options.Values, options.Logger) error { return nil }
func (b *loopBot) RunFor() time.Duration                      { return time.Hour }
func (b *loopBot) Setup(context.Context, *session.Session) error {
	return nil
}

func (b *loopBot) MainLoop(ctx context.Context, s *session.Session) error {
	for s.Running(ctx) {
		b.once.Do(func() { close(b.started) })
		s.Report()
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Millisecond):
		}
	}
	return nil
}

// sessionRef lets the runner exist before the session it controls.
type sessionRef struct{ s *session.Session }

func (r *sessionRef) Pause()                 { r.s.Pause() }
func (r *sessionRef) Resume()                { r.s.Resume() }
func (r *sessionRef) Stop()                  { r.s.Stop() }
func (r *sessionRef) Status() session.Status { return r.s.Status() }

func within(t *testing.T, d time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("timed out: %s", what)
	}
}

func TestRunnerPauseResumeWithSession(t *testing.T) {
	ref := &sessionRef{}
	runner := NewRunner("Loop", ref,
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())

	cfg := config.Default()
	cfg.Breaks.Chance = 0
	sess, err := session.New(cfg, session.Capabilities{
		Screen: clienttest.NewScreen(0, 0, geometry.BaseWidth, geometry.BaseHeight, color.RGBA{A: 255}),
		Input:  &dispatchtest.Input{},
		Sink:   runner,
	}, session.WithStatusHook(runner.SetStatus))
	require.NoError(t, err)
	ref.s = sess

	uiDone := make(chan error, 1)
	go func() { uiDone <- runner.Run() }()

	bot := &loopBot{started: make(chan struct{})}
	runDone := make(chan error, 1)
	go func() {
		err := sess.Run(context.Background(), bot, map[string]any{"running_time": 5})
		runner.Done(err)
		runDone <- err
	}()
	select {
	case <-bot.started:
	case <-time.After(5 * time.Second):
		t.Fatal("bot never started")
	}

	runner.program.Send(keyMsg("p"))
	require.Eventually(t, func() bool { return sess.Status() == session.Paused }, 2*time.Second, 5*time.Millisecond)
	within(t, 2*time.Second, "send after pausing", func() { runner.Progress(0.5) })

	runner.program.Send(keyMsg("p"))
	require.Eventually(t, func() bool { return sess.Status() == session.Running }, 2*time.Second, 5*time.Millisecond)

	// Quit while paused releases the bot before stopping it.
	runner.program.Send(keyMsg("p"))
	require.Eventually(t, func() bool { return sess.Status() == session.Paused }, 2*time.Second, 5*time.Millisecond)
	runner.program.Send(keyMsg("q"))

	within(t, 5*time.Second, "run view exit", func() { assert.NoError(t, <-uiDone) })
	within(t, 5*time.Second, "session exit", func() { assert.NoError(t, <-runDone) })
	assert.Equal(t, session.Stopped, sess.Status())
}
