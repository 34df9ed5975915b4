package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scape-bot/internal/session"
)

type fakeCtrl struct {
	status  session.Status
	pauses  int
	resumes int
	stops   int
}

func (f *fakeCtrl) Pause()                 { f.pauses++; f.status = session.Paused }
func (f *fakeCtrl) Resume()                { f.resumes++; f.status = session.Running }
func (f *fakeCtrl) Stop()                  { f.stops++ }
func (f *fakeCtrl) Status() session.Status { return f.status }

func TestTitles(t *testing.T) {
	assert.Equal(t, "Status: running | Fish Fryer", statusTitle(session.Running, "Fish Fryer"))
	assert.Equal(t, "Progress: 0%", progressTitle(0))
	assert.Equal(t, "Progress: 43%", progressTitle(0.426))
	assert.Equal(t, "Progress: 100%", progressTitle(1))
	assert.Equal(t, "Resume", pauseTitle(session.Paused))
	assert.Equal(t, "Pause", pauseTitle(session.Running))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Taking ...", truncate("Taking a break... 12 seconds left.", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestTogglePause(t *testing.T) {
	ctrl := &fakeCtrl{status: session.Running}
	a := New("NMZ", ctrl, nil)

	a.togglePause()
	assert.Equal(t, 1, ctrl.pauses)
	a.togglePause()
	assert.Equal(t, 1, ctrl.resumes)
}

func TestUpdatesBeforeReadyAreKept(t *testing.T) {
	a := New("NMZ", &fakeCtrl{}, nil)
	a.SetStatus(session.Running)
	a.Progress(0.5)
	a.Log("Points are not below threshold.", false)

	assert.Equal(t, session.Running, a.status)
	assert.Equal(t, 0.5, a.fraction)
	assert.Equal(t, "Points are not below threshold.", a.line)
}

func TestExitStopsSession(t *testing.T) {
	ctrl := &fakeCtrl{}
	quit := 0
	a := New("NMZ", ctrl, func() { quit++ })
	a.onExit()
	assert.Equal(t, 1, ctrl.stops)
	assert.Equal(t, 1, quit)
}
