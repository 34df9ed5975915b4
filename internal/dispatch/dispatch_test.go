package dispatch_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scape-bot/internal/clock"
	"scape-bot/internal/config"
	"scape-bot/internal/dispatch"
	"scape-bot/internal/dispatch/dispatchtest"
	"scape-bot/internal/geometry"
)

func timing() config.TimingConfig {
	return config.TimingConfig{
		ActionsPerSecond: 10,
		ClickDelayMin:    100 * time.Millisecond,
		ClickDelayMax:    300 * time.Millisecond,
		KeyHoldMin:       60 * time.Millisecond,
		KeyHoldMax:       140 * time.Millisecond,
		MouseSpeed:       "fast",
	}
}

func newDispatcher(t *testing.T) (*dispatch.Dispatcher, *dispatchtest.Input, *clock.Fake) {
	t.Helper()
	in := &dispatchtest.Input{}
	fc := clock.NewFake(time.Unix(0, 0))
	return dispatch.New(in, timing(), fc, rand.New(rand.NewSource(3))), in, fc
}

func TestClickInLandsInsideRect(t *testing.T) {
	d, in, _ := newDispatcher(t)
	rect := geometry.R(563, 213, 36, 32)
	for i := 0; i < 50; i++ {
		d.ClickIn(context.Background(), rect)
	}
	clicks := in.Clicks()
	require.Len(t, clicks, 50)
	for _, c := range clicks {
		assert.True(t, rect.Contains(c), "click %s outside %s", c, rect)
	}
}

func TestClickSleepsWithinConfiguredDelay(t *testing.T) {
	d, in, fc := newDispatcher(t)
	d.Click(context.Background())

	assert.Equal(t, []string{"down left (0, 0)", "up left (0, 0)"}, in.Events())
	slept := fc.Slept()
	require.NotEmpty(t, slept)
	after := slept[len(slept)-1]
	assert.GreaterOrEqual(t, after, 100*time.Millisecond)
	assert.LessOrEqual(t, after, 300*time.Millisecond)
}

func TestPacingUsesLimiter(t *testing.T) {
	d, _, fc := newDispatcher(t)
	start := fc.Now()
	for i := 0; i < 5; i++ {
		d.PressKey(context.Background(), dispatch.KeySpace)
	}
	// Ten actions per second: five actions need at least 400ms of pacing.
	assert.GreaterOrEqual(t, fc.Now().Sub(start), 400*time.Millisecond)
}

func TestMoveRelAppliesOffsetWithJitter(t *testing.T) {
	d, in, _ := newDispatcher(t)
	for i := 0; i < 20; i++ {
		in.SetPosition(geometry.Pt(100, 400))
		d.MoveRel(context.Background(), 0, -28, 5, 2)
		p, err := in.Position(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 100, p.X, 5)
		assert.InDelta(t, 372, p.Y, 2)
	}
}

func TestWithKeyHeldReleasesKey(t *testing.T) {
	d, in, _ := newDispatcher(t)
	d.WithKeyHeld(context.Background(), dispatch.KeyShift, func() {
		d.Click(context.Background())
	})
	assert.Equal(t, []string{"keydown shift", "down left (0, 0)", "up left (0, 0)", "keyup shift"}, in.Events())
}

func TestHoldKeyReleasesAfterCancel(t *testing.T) {
	d, in, fc := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	fc.OnSleep = func(time.Time) { cancel() }
	d.HoldKey(ctx, dispatch.KeyDown, 2*time.Second)
	assert.Equal(t, []string{"keydown down", "keyup down"}, in.Events())
}

func TestActuatorErrorsAreSwallowed(t *testing.T) {
	d, in, _ := newDispatcher(t)
	in.Err = errors.New("window gone")
	assert.NotPanics(t, func() {
		d.ClickIn(context.Background(), geometry.R(0, 0, 10, 10))
		d.PressKey(context.Background(), "a")
		d.Scroll(context.Background(), -3)
	})
	assert.Empty(t, in.Events())
}

func TestScrollOneNotchAtATime(t *testing.T) {
	d, in, _ := newDispatcher(t)
	d.Scroll(context.Background(), -3)
	assert.Equal(t, []string{"scroll -1", "scroll -1", "scroll -1"}, in.Events())
}

func TestCancelledContextSkipsActions(t *testing.T) {
	d, in, _ := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.ClickIn(ctx, geometry.R(0, 0, 10, 10))
	assert.Empty(t, in.Events())
}

func TestPath(t *testing.T) {
	from, to := geometry.Pt(0, 0), geometry.Pt(100, 50)
	path := dispatch.Path(from, to, 10)
	require.NotEmpty(t, path)
	assert.LessOrEqual(t, len(path), 10)
	assert.Equal(t, to, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		assert.GreaterOrEqual(t, path[i].X, path[i-1].X)
	}

	assert.Equal(t, []geometry.Point{to}, dispatch.Path(to, to, 10))
	assert.Equal(t, []geometry.Point{geometry.Pt(1, 0)}, dispatch.Path(from, geometry.Pt(1, 0), 10))
}

func TestEaseInOutQuad(t *testing.T) {
	assert.Equal(t, 0.0, dispatch.EaseInOutQuad(0))
	assert.Equal(t, 0.5, dispatch.EaseInOutQuad(0.5))
	assert.Equal(t, 1.0, dispatch.EaseInOutQuad(1))
	assert.Less(t, dispatch.EaseInOutQuad(0.25), 0.25)
	assert.Greater(t, dispatch.EaseInOutQuad(0.75), 0.75)
}
