package monitor

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T, buffer int) (*Monitor, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m, err := New(Options{BufferSize: buffer, Logger: zap.New(core)})
	require.NoError(t, err)
	return m, logs
}

func TestMonitor_WritesInOrder(t *testing.T) {
	m, logs := newObserved(t, 64)

	m.Report("route assembled")
	m.Mon("alive")
	m.Count("spots", 3)
	m.Duration("geometry", 250*time.Millisecond)
	m.Heartbeat(true)
	m.Alarm("stitching failed")
	m.Percent("matched", 87.5)
	require.NoError(t, m.Close())

	entries := logs.All()
	require.Len(t, entries, 7)

	// Rejections reported by the assembler must survive the default level
	assert.Equal(t, "route assembled", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	assert.Equal(t, "alive", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)

	assert.Equal(t, "count", entries[2].Message)
	assert.Equal(t, "spots", entries[2].ContextMap()["label"])
	assert.Equal(t, int64(3), entries[2].ContextMap()["count"])

	assert.Equal(t, "duration", entries[3].Message)
	assert.Equal(t, 250*time.Millisecond, entries[3].ContextMap()["elapsed"])

	assert.Equal(t, true, entries[4].ContextMap()["healthy"])

	assert.Equal(t, "stitching failed", entries[5].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[5].Level)

	assert.Equal(t, 87.5, entries[6].ContextMap()["percent"])

	assert.Equal(t, Stats{Written: 7, Dropped: 0}, m.Stats())
}

func TestMonitor_DropsWhenFull(t *testing.T) {
	// No writer goroutine, so the queue never drains
	m := &Monitor{queue: make(chan message, 2)}

	for i := 0; i < 5; i++ {
		m.Report("busy")
	}
	assert.Equal(t, uint64(3), m.Dropped())
	assert.Len(t, m.queue, 2)
}

func TestMonitor_DropsAfterClose(t *testing.T) {
	m, logs := newObserved(t, 8)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "Close should be idempotent")

	m.Report("too late")
	assert.Equal(t, uint64(1), m.Dropped())
	assert.Equal(t, 0, logs.Len())
}

func TestMonitor_CloseWhileReporting(t *testing.T) {
	m, logs := newObserved(t, 4)

	const reporters, perReporter = 8, 200
	var wg sync.WaitGroup
	for i := 0; i < reporters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perReporter; j++ {
				m.Report("busy")
			}
		}()
	}
	require.NoError(t, m.Close())
	wg.Wait()

	stats := m.Stats()
	assert.Equal(t, uint64(reporters*perReporter), stats.Written+stats.Dropped)
	assert.Equal(t, int(stats.Written), logs.Len())
}

func TestMonitor_Quiet(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m, err := New(Options{BufferSize: 8, Logger: zap.New(core), Quiet: []string{"count", "report"}})
	require.NoError(t, err)

	m.Report("muted")
	m.Count("muted", 1)
	m.Mon("kept")
	require.NoError(t, m.Close())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, Stats{Written: 1, Dropped: 0}, m.Stats())

	_, err = New(Options{BufferSize: 8, Logger: zap.New(core), Quiet: []string{"gossip"}})
	assert.Error(t, err)
	assert.Error(t, CheckQuiet([]string{"gossip"}))
	assert.NoError(t, CheckQuiet([]string{"alarm"}))
}

func TestMonitor_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "georef.log")
	opts := DefaultOptions()
	opts.File = path

	m, err := New(opts)
	require.NoError(t, err)
	m.Report("written to disk")
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to disk")
	assert.Contains(t, string(data), `"logger":"georef"`)
}

func TestNew_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.BufferSize = 0
	_, err := New(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Level = "loud"
	_, err = New(opts)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop.Report("ignored") })
}
