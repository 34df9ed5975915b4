// Package observability - logger.go
//
// This file implements the process-wide logger.
//
// Logging System:
//   - zap core tee: console encoder on stdout plus a JSON file core
//   - File output rotates through lumberjack (size, backups, age)
//   - Level is an AtomicLevel so the CLI can raise verbosity at runtime
//   - Initialization runs exactly once; later calls are ignored
//
// Convenience Functions:
// LogDebug/LogInfo/LogWarn/LogError(format, v...) format like fmt.Printf and
// write through the global sugared logger. Code that wants structured fields
// calls GetLogger() directly.
//
// Logging Best Practices:
//   - DEBUG: Detailed operation info (pixel counts, coordinates, timing)
//   - INFO: Important events (startup, option changes, run results)
//   - WARN: Non-critical issues (sensor misses, saved options unreadable)
//   - ERROR: Serious problems (backend failures, store errors)
package observability

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"scape-bot/internal/config"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	globalLevel  = zap.NewAtomicLevel()
	once         sync.Once
)

// Initialize sets up the global zap logger writing to consoleWriter and,
// when cfg.LogFile is set, to a rotated JSON log file.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) {
	once.Do(func() {
		if err := globalLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
			globalLevel.SetLevel(zap.InfoLevel)
		}

		cores := []zapcore.Core{zapcore.NewCore(encoder(cfg.Format), consoleWriter, globalLevel)}
		if cfg.LogFile != "" {
			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			})
			cores = append(cores, zapcore.NewCore(encoder("json"), fileWriter, globalLevel))
		}

		opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}
		logger := zap.New(zapcore.NewTee(cores...), opts...)
		if cfg.ServiceName != "" {
			logger = logger.Named(cfg.ServiceName)
		}
		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
	})
}

// InitializeLogger initializes logging with console output on a locked stdout.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stdout))
}

// SetLevel changes the level of the global logger.
func SetLevel(level zapcore.Level) {
	globalLevel.SetLevel(level)
}

// Sync flushes buffered log entries. Errors from syncing a terminal are ignored.
func Sync() {
	if l := globalLogger.Load(); l != nil {
		_ = l.Sync()
	}
}

// ResetForTest clears the global logger so tests can initialize it again.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

// GetLogger returns the global logger, or a no-op logger before Initialize.
func GetLogger() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	if format == "json" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// LogDebug logs debug level messages
func LogDebug(format string, v ...interface{}) {
	GetLogger().Sugar().Debugf(format, v...)
}

// LogInfo logs info level messages
func LogInfo(format string, v ...interface{}) {
	GetLogger().Sugar().Infof(format, v...)
}

// LogWarn logs warning level messages
func LogWarn(format string, v ...interface{}) {
	GetLogger().Sugar().Warnf(format, v...)
}

// LogError logs error level messages
func LogError(format string, v ...interface{}) {
	GetLogger().Sugar().Errorf(format, v...)
}
