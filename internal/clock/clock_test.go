package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)

	var seen []time.Time
	f.OnSleep = func(now time.Time) { seen = append(seen, now) }

	require.NoError(t, f.Sleep(context.Background(), time.Second))
	require.NoError(t, f.Sleep(context.Background(), 500*time.Millisecond))
	f.Advance(time.Minute)

	assert.Equal(t, start.Add(time.Minute+1500*time.Millisecond), f.Now())
	assert.Equal(t, []time.Duration{time.Second, 500 * time.Millisecond}, f.Slept())
	assert.Equal(t, 1500*time.Millisecond, f.Total())
	assert.Equal(t, []time.Time{start.Add(time.Second), start.Add(1500 * time.Millisecond)}, seen)
}

func TestFakeSleepCanceled(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.Sleep(ctx, time.Second), context.Canceled)
	assert.Empty(t, f.Slept())
	assert.Equal(t, time.Unix(0, 0), f.Now())
}

func TestRealSleep(t *testing.T) {
	var c Real
	require.NoError(t, c.Sleep(context.Background(), time.Millisecond))
	require.NoError(t, c.Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}
