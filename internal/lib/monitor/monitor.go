// Package monitor provides the fire-and-forget reporting sink used by the
// network code, and a zap-backed implementation that writes from a
// background goroutine so callers never block.
package monitor

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	prefaberrors "github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink accepts free-form messages. Implementations must not block and may
// drop messages.
type Sink interface {
	Report(msg string)
}

type nopSink struct{}

func (nopSink) Report(string) {}

// Nop discards everything reported to it.
var Nop Sink = nopSink{}

// Options configures a Monitor.
type Options struct {
	Level       string
	BufferSize  int
	Development bool
	Program     string

	// File, when set, sends output to a rotating log file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Quiet lists message kinds to discard: report, mon, count, duration,
	// heartbeat, alarm or percent.
	Quiet []string

	// Logger overrides all output settings above.
	Logger *zap.Logger
}

// DefaultOptions returns options for an info-level JSON logger on stderr.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		BufferSize: 1024,
		Program:    "georef",
		MaxSizeMB:  64,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

type kind int

const (
	kindReport kind = iota
	kindMon
	kindCount
	kindDuration
	kindHeartbeat
	kindAlarm
	kindPercent
	numKinds
)

var kindNames = map[string]kind{
	"report":    kindReport,
	"mon":       kindMon,
	"count":     kindCount,
	"duration":  kindDuration,
	"heartbeat": kindHeartbeat,
	"alarm":     kindAlarm,
	"percent":   kindPercent,
}

// CheckQuiet reports an error for any name that is not a message kind.
func CheckQuiet(names []string) error {
	_, err := parseQuiet(names)
	return err
}

// parseQuiet checks kind names and returns the set of muted kinds.
func parseQuiet(names []string) ([numKinds]bool, error) {
	var quiet [numKinds]bool
	for _, name := range names {
		k, ok := kindNames[name]
		if !ok {
			return quiet, errors.Newf("unknown monitor message kind %q", name)
		}
		quiet[k] = true
	}
	return quiet, nil
}

type message struct {
	kind    kind
	at      time.Time
	text    string
	count   int64
	elapsed time.Duration
	percent float64
	healthy bool
}

// Stats counts what happened to reported messages.
type Stats struct {
	Written uint64
	Dropped uint64
}

// Monitor is an asynchronous Sink. Messages are queued on a bounded buffer
// and written by a single goroutine; when the buffer is full the message is
// dropped and counted. Every reported message ends up either written or
// dropped.
type Monitor struct {
	logger *zap.Logger
	closer io.Closer
	quiet  [numKinds]bool

	queue    chan message
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// mutex orders sends against Close so nothing lands on the queue after
	// the final drain.
	mutex  sync.RWMutex
	closed bool

	written atomic.Uint64
	dropped atomic.Uint64
}

// New creates a Monitor and starts its writer.
func New(opts Options) (*Monitor, error) {
	if opts.BufferSize <= 0 {
		return nil, errors.Newf("monitor buffer size must be positive, got %d", opts.BufferSize)
	}

	quiet, err := parseQuiet(opts.Quiet)
	if err != nil {
		return nil, err
	}

	logger, closer, err := buildLogger(opts)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		logger:   logger,
		closer:   closer,
		quiet:    quiet,
		queue:    make(chan message, opts.BufferSize),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m, nil
}

func buildLogger(opts Options) (*zap.Logger, io.Closer, error) {
	if opts.Logger != nil {
		return opts.Logger, nil, nil
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid monitor level %q", opts.Level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if opts.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opts.Development {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var (
		out    zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
		closer io.Closer
	)
	if opts.File != "" {
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		out = zapcore.AddSync(w)
		closer = w
	}

	logger := zap.New(zapcore.NewCore(encoder, out, level))
	if opts.Program != "" {
		host, _ := os.Hostname()
		logger = logger.Named(opts.Program).With(
			zap.String("host", host),
			zap.Int("pid", os.Getpid()),
		)
	}
	return logger, closer, nil
}

func (m *Monitor) run() {
	defer close(m.done)
	defer func() {
		// Reporting is best-effort; a bad message must not take the process down.
		if r := recover(); r != nil {
			err, _ := prefaberrors.ParseStack(debug.Stack())
			skipFrames := 3
			numFrames := 5
			logging.Errorw(context.Background(), "Monitor writer: recovered from panic",
				"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
		}
	}()

	for {
		select {
		case msg := <-m.queue:
			m.write(msg)
		case <-m.stopChan:
			for {
				select {
				case msg := <-m.queue:
					m.write(msg)
				default:
					_ = m.logger.Sync()
					return
				}
			}
		}
	}
}

func (m *Monitor) write(msg message) {
	at := zap.Time("at", msg.at)
	switch msg.kind {
	case kindReport:
		m.logger.Info(msg.text, at, zap.String("type", "report"))
	case kindMon:
		m.logger.Info(msg.text, at, zap.String("type", "mon"))
	case kindCount:
		m.logger.Info("count", at, zap.String("label", msg.text), zap.Int64("count", msg.count))
	case kindDuration:
		m.logger.Info("duration", at, zap.String("label", msg.text), zap.Duration("elapsed", msg.elapsed))
	case kindHeartbeat:
		m.logger.Info("heartbeat", at, zap.Bool("healthy", msg.healthy))
	case kindAlarm:
		m.logger.Error(msg.text, at, zap.String("type", "alarm"))
	case kindPercent:
		m.logger.Info("percent", at, zap.String("label", msg.text), zap.Float64("percent", msg.percent))
	}
	m.written.Add(1)
}

// dropPending counts whatever is left on the queue as dropped. Only called
// once the writer has stopped.
func (m *Monitor) dropPending() {
	for {
		select {
		case <-m.queue:
			m.dropped.Add(1)
		default:
			return
		}
	}
}

func (m *Monitor) enqueue(msg message) {
	if m.quiet[msg.kind] {
		return
	}
	msg.at = time.Now()

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.closed {
		m.dropped.Add(1)
		return
	}
	select {
	case m.queue <- msg:
	default:
		m.dropped.Add(1)
	}
}

// Report queues an info-level message.
func (m *Monitor) Report(msg string) {
	m.enqueue(message{kind: kindReport, text: msg})
}

// Mon queues a liveness note.
func (m *Monitor) Mon(note string) {
	m.enqueue(message{kind: kindMon, text: note})
}

// Count queues a counter sample.
func (m *Monitor) Count(label string, n int64) {
	m.enqueue(message{kind: kindCount, text: label, count: n})
}

// Duration queues a timing sample.
func (m *Monitor) Duration(label string, d time.Duration) {
	m.enqueue(message{kind: kindDuration, text: label, elapsed: d})
}

// Heartbeat queues a health signal.
func (m *Monitor) Heartbeat(healthy bool) {
	m.enqueue(message{kind: kindHeartbeat, healthy: healthy})
}

// Alarm queues an error-level note.
func (m *Monitor) Alarm(note string) {
	m.enqueue(message{kind: kindAlarm, text: note})
}

// Percent queues a ratio sample, in percent.
func (m *Monitor) Percent(label string, p float64) {
	m.enqueue(message{kind: kindPercent, text: label, percent: p})
}

// Stats returns how many messages were written and dropped so far.
func (m *Monitor) Stats() Stats {
	return Stats{Written: m.written.Load(), Dropped: m.dropped.Load()}
}

// Dropped returns how many messages were discarded.
func (m *Monitor) Dropped() uint64 {
	return m.dropped.Load()
}

// Close drains queued messages and stops the writer. Messages reported after
// Close are dropped. Close is safe to call more than once.
func (m *Monitor) Close() error {
	var err error
	m.stopOnce.Do(func() {
		m.mutex.Lock()
		m.closed = true
		m.mutex.Unlock()

		close(m.stopChan)
		<-m.done
		m.dropPending()
		if m.closer != nil {
			err = m.closer.Close()
		}
	})
	return err
}
