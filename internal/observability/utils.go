package observability

import (
	"time"

	"go.uber.org/zap"
)

// Timer provides performance timing functionality
type Timer struct {
	name      string
	startTime time.Time
}

// NewTimer creates and starts a new timer with given name
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
	}
}

// Elapsed returns the elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Stop logs the elapsed time and returns the duration
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	GetLogger().Debug("timer stopped", zap.String("timer", t.name), zap.Duration("elapsed", elapsed))
	return elapsed
}

// SafeGo runs a function in a goroutine with panic recovery
func SafeGo(fn func()) {
	go func() {
		defer Recover("goroutine")
		fn()
	}()
}

// Recover logs a recovered panic. It must be called directly by a deferred statement.
func Recover(where string) {
	if r := recover(); r != nil {
		GetLogger().Error("panic recovered", zap.String("where", where), zap.Any("panic", r), zap.Stack("stack"))
	}
}
