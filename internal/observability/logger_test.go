package observability

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"scape-bot/internal/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInitializeWritesConsole(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	out := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "test"}, out)

	LogInfo("hello %s", "world")
	LogDebug("pixels=%d", 42)
	assert.Contains(t, out.String(), "hello world")
	assert.Contains(t, out.String(), "pixels=42")
	assert.Contains(t, out.String(), "test.")
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	first, second := &syncBuffer{}, &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "info"}, first)
	Initialize(config.LoggerConfig{Level: "info"}, second)
	LogWarn("only once")
	assert.Contains(t, first.String(), "only once")
	assert.Empty(t, second.String())
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
	LogError("dropped %d", 1)
}

func TestSinkLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSink(zap.New(core))

	s.Log("Searching for targets...", false)
	s.Log("Time left: 12.00s", true)
	s.Progress(0.5)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
		assert.Equal(t, true, entries[1].ContextMap()["overwrite"])
		assert.Equal(t, 0.5, entries[2].ContextMap()["fraction"])
	}
}

func TestSafeGoRecovers(t *testing.T) {
	done := make(chan struct{})
	SafeGo(func() {
		defer close(done)
		panic("boom")
	})
	<-done
}
