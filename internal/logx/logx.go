// Package logx is the logging ambient stack: a structured logger for the
// coordination thread (github.com/charmbracelet/log) plus a lock-free,
// non-allocating queue the realtime thread may push records into without
// ever blocking or touching the heap (spec §4.C: "flush any RT log
// messages").
package logx

import (
	"io"
	"os"
	"time"

	charm "github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is the coordination-thread-side structured logger. It is safe to
// call from exactly one goroutine at a time (the coordination thread owns
// it, matching the rest of the control plane's single-writer rules).
type Logger struct {
	*charm.Logger
}

// New builds a Logger writing to w with RFC 3339 timestamps enabled at
// info level. strftime is used only by DailyStatsPath.
func New(w io.Writer) *Logger {
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           charm.InfoLevel,
	})
	return &Logger{Logger: l}
}

// Default logs to stderr.
func Default() *Logger { return New(os.Stderr) }

// DailyStatsPath formats a daily log-file name the way the original
// hardware's log_init() did, e.g. "2026-07-31-stats.log".
func DailyStatsPath(dir string, at time.Time) (string, error) {
	p, err := strftime.New("%Y-%m-%d-stats.log")
	if err != nil {
		return "", err
	}
	return dir + string(os.PathSeparator) + p.FormatString(at), nil
}

// RTTag identifies the shape of an RT-queued record without requiring the
// realtime thread to format or allocate a string.
type RTTag uint8

const (
	RTGlitchRejected RTTag = iota
	RTPitchModeEntered
	RTTouchChanged
	RTAllocationExhausted
	RTImportFailed
)

// rtRecord is a fixed-size, zero-allocation payload. All fields are plain
// value types so pushing one onto the ring never touches the heap.
type rtRecord struct {
	tag    RTTag
	deck   int
	a, b   int64
	filled bool
}

// rtQueueCapacity bounds the ring; a full queue causes the realtime thread
// to silently drop the record rather than block (better to lose a log line
// than stall the audio callback).
const rtQueueCapacity = 256

// RTQueue is a single-producer/single-consumer ring buffer: the realtime
// goroutine is the sole producer, the coordination goroutine is the sole
// consumer. head and tail are read and written with atomic loads/stores
// (see Push/Drain): the producer publishes a slot by advancing head after
// filling it, and the consumer frees it by advancing tail after copying it,
// which is what makes this safe without a mutex.
type RTQueue struct {
	buf        [rtQueueCapacity]rtRecord
	head, tail uint32 // atomics; head = next write slot, tail = next read slot
}

// NewRTQueue returns a ready-to-use queue.
func NewRTQueue() *RTQueue { return &RTQueue{} }

// Push is called only from the realtime goroutine. It never allocates and
// never blocks: if the ring is full the record is dropped.
func (q *RTQueue) Push(tag RTTag, deck int, a, b int64) {
	head := loadU32(&q.head)
	tail := loadU32(&q.tail)
	if head-tail >= rtQueueCapacity {
		return // full: drop rather than block the audio thread
	}
	slot := &q.buf[head%rtQueueCapacity]
	*slot = rtRecord{tag: tag, deck: deck, a: a, b: b, filled: true}
	storeU32(&q.head, head+1)
}

// Drain is called once per coordination-thread tick; it logs every pending
// record and returns the count drained.
func (q *RTQueue) Drain(l *Logger) int {
	n := 0
	for {
		tail := loadU32(&q.tail)
		head := loadU32(&q.head)
		if tail == head {
			return n
		}
		rec := q.buf[tail%rtQueueCapacity]
		storeU32(&q.tail, tail+1)
		if !rec.filled {
			continue
		}
		logRTRecord(l, rec)
		n++
	}
}

func logRTRecord(l *Logger, rec rtRecord) {
	switch rec.tag {
	case RTGlitchRejected:
		l.Debug("encoder glitch rejected", "deck", rec.deck, "angle_raw", rec.a, "wrapped", rec.b)
	case RTPitchModeEntered:
		l.Debug("pitch mode entered", "deck", rec.deck, "mode", rec.a)
	case RTTouchChanged:
		l.Debug("touch state changed", "deck", rec.deck, "touched", rec.a != 0)
	case RTAllocationExhausted:
		l.Warn("track allocation exhausted", "deck", rec.deck, "blocks", rec.a)
	case RTImportFailed:
		l.Warn("import failed", "deck", rec.deck, "status", rec.a)
	}
}
