// Package progress reports run progress and user-facing log lines.
//
// A Sink is the one-way channel from an automation session to whatever is
// showing it (terminal, tray, log file). Sessions only ever call two methods:
// Log, optionally overwriting the previous line, and Progress with a fraction
// in [0, 1].
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Sink receives log lines and progress fractions.
type Sink interface {
	Log(msg string, overwrite bool)
	Progress(fraction float64)
}

// Tracker derives a monotonic progress fraction from elapsed time over a
// fixed run duration.
type Tracker struct {
	mu       sync.Mutex
	sink     Sink
	start    time.Time
	duration time.Duration
	last     float64
	done     bool
}

// NewTracker starts tracking a run of the given duration at start.
func NewTracker(sink Sink, start time.Time, duration time.Duration) *Tracker {
	return &Tracker{sink: sink, start: start, duration: duration}
}

// Fraction returns elapsed/duration at now, clamped to [0, 1].
func (t *Tracker) Fraction(now time.Time) float64 {
	if t.duration <= 0 {
		return 1
	}
	f := float64(now.Sub(t.start)) / float64(t.duration)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Remaining returns the run time left at now, never negative.
func (t *Tracker) Remaining(now time.Time) time.Duration {
	r := t.duration - now.Sub(t.start)
	if r < 0 {
		return 0
	}
	return r
}

// Update reports the fraction at now. Reports never go backwards, and
// nothing below 1 is reported after Finish.
func (t *Tracker) Update(now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return t.last
	}
	f := t.Fraction(now)
	if f < t.last {
		f = t.last
	}
	t.last = f
	t.sink.Progress(f)
	return f
}

// Finish reports exactly 1.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = 1
	t.done = true
	t.sink.Progress(1)
}

// Last returns the most recently reported fraction.
func (t *Tracker) Last() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Multi fans out to several sinks.
type Multi []Sink

// Log forwards to every sink.
func (m Multi) Log(msg string, overwrite bool) {
	for _, s := range m {
		s.Log(msg, overwrite)
	}
}

// Progress forwards to every sink.
func (m Multi) Progress(fraction float64) {
	for _, s := range m {
		s.Progress(fraction)
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Log(string, bool) {}
func (Discard) Progress(float64) {}

// Recorder keeps lines and progress values in memory. An overwrite line
// replaces the previous visible line; History keeps every entry.
type Recorder struct {
	mu        sync.Mutex
	lines     []string
	history   []string
	entries   int
	fractions []float64
}

// Log records msg.
func (r *Recorder) Log(msg string, overwrite bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries++
	r.history = append(r.history, msg)
	if overwrite && len(r.lines) > 0 {
		r.lines[len(r.lines)-1] = msg
		return
	}
	r.lines = append(r.lines, msg)
}

// Progress records fraction.
func (r *Recorder) Progress(fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fractions = append(r.fractions, fraction)
}

// Lines returns the visible lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Entries returns how many Log calls were made.
func (r *Recorder) Entries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// History returns every logged line in order, overwritten ones included.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// Fractions returns all reported fractions in order.
func (r *Recorder) Fractions() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.fractions...)
}

// Contains reports whether any visible line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// Logged reports whether any line ever logged contains substr.
func (r *Recorder) Logged(substr string) bool {
	for _, l := range r.History() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// Writer is a plain terminal sink. Overwrite lines replace the previous
// line using ANSI cursor movement.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	wrote bool
}

// NewWriter returns a sink writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Log prints msg.
func (t *Writer) Log(msg string, overwrite bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if overwrite && t.wrote {
		fmt.Fprint(t.w, "\x1b[1A\x1b[2K")
	}
	fmt.Fprintln(t.w, msg)
	t.wrote = true
}

// Progress is not rendered by the plain writer.
func (t *Writer) Progress(float64) {}

// FormatDuration formats a duration into human-readable string
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
