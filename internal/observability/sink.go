package observability

import (
	"go.uber.org/zap"
)

// Sink writes session log lines and progress reports to a zap logger.
//
// Overwrite lines are logged at debug level so a console running at info
// shows only the lines a user interface would keep.
type Sink struct {
	logger *zap.Logger
}

// NewSink returns a sink over logger, or over the global logger when nil.
func NewSink(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = GetLogger()
	}
	return &Sink{logger: logger}
}

// Log writes msg.
func (s *Sink) Log(msg string, overwrite bool) {
	if overwrite {
		s.logger.Debug(msg, zap.Bool("overwrite", true))
		return
	}
	s.logger.Info(msg)
}

// Progress records the run fraction.
func (s *Sink) Progress(fraction float64) {
	s.logger.Debug("progress", zap.Float64("fraction", fraction))
}
