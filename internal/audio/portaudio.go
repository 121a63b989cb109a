package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/lodsb/turntable-core/internal/logx"
	"golang.org/x/sys/unix"
)

// PortAudioBackend is the reference AudioSubsystem: it opens the default
// output stream and does silence-passthrough gain/position bookkeeping
// only, with no resampling or scratch kernel (spec §4.G, §1 Non-goals).
// It exists so the realtime poll loop has a genuine fd to wait on: the
// portaudio callback (which runs on PortAudio's own audio thread, not
// this repo's RT goroutine) writes one byte to a self-pipe to wake the
// poll loop, exactly the "RT thread never allocates/blocks" boundary
// spec.md draws around external subsystems.
type PortAudioBackend struct {
	log *logx.Logger

	stream     *portaudio.Stream
	sampleRate float64

	wakeR, wakeW int

	mu     sync.Mutex
	inputs [2]PlayerInput

	states [2]DeckState

	xruns atomic.Uint64
	load  atomic.Uint64 // bits of a float64, load fraction 0..1
}

// NewPortAudioBackend constructs an unopened backend; call Init to start
// the stream.
func NewPortAudioBackend(sampleRate float64, log *logx.Logger) *PortAudioBackend {
	return &PortAudioBackend{sampleRate: sampleRate, log: log}
}

func (b *PortAudioBackend) Init() bool {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK); err != nil {
		b.warn("self-pipe creation failed: %v", err)
		return false
	}
	b.wakeR, b.wakeW = fds[0], fds[1]

	if err := portaudio.Initialize(); err != nil {
		b.warn("portaudio init failed: %v", err)
		return false
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, b.sampleRate, 0, b.callback)
	if err != nil {
		b.warn("opening default output stream failed: %v", err)
		return false
	}
	if err := stream.Start(); err != nil {
		b.warn("starting output stream failed: %v", err)
		return false
	}
	b.stream = stream
	return true
}

func (b *PortAudioBackend) warn(format string, args ...any) {
	if b.log != nil {
		b.log.Warnf(format, args...)
	}
}

// callback runs on PortAudio's own thread. It performs silence
// passthrough only — no DSP — and advances each deck's reported
// position purely from the block size, then pokes the self-pipe so the
// control plane's poll loop wakes up once per block.
func (b *PortAudioBackend) callback(out [][]float32) {
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = 0
		}
	}

	blockSeconds := 0.0
	if len(out) > 0 && len(out[0]) > 0 && b.sampleRate > 0 {
		blockSeconds = float64(len(out[0])) / b.sampleRate
	}

	b.mu.Lock()
	for d := range b.states {
		in := b.inputs[d]
		if in.JustPlay && !in.Stopped {
			b.states[d].Position += blockSeconds
			b.states[d].MotorSpeed = in.PitchNote * in.PitchFader
		} else if in.Touched {
			b.states[d].Position = in.TargetPosition
			b.states[d].MotorSpeed = 0
		} else {
			b.states[d].MotorSpeed = 0
		}
	}
	b.mu.Unlock()

	b.load.Store(math.Float64bits(0))
	buf := [1]byte{1}
	_, _ = unix.Write(b.wakeW, buf[:])
}

func (b *PortAudioBackend) Input(d Deck) *PlayerInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &b.inputs[d]
}

func (b *PortAudioBackend) DeckState(d Deck) DeckState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[d]
}

func (b *PortAudioBackend) Stats() DSPStats {
	return DSPStats{
		Load:  math.Float64frombits(b.load.Load()),
		Xruns: b.xruns.Load(),
	}
}

func (b *PortAudioBackend) PollFDs() []int {
	if b.wakeR == 0 {
		return nil
	}
	return []int{b.wakeR}
}

// Handle drains the self-pipe. The actual per-deck bookkeeping already
// happened inside callback; this just clears the wake byte(s).
func (b *PortAudioBackend) Handle() {
	var buf [64]byte
	for {
		n, err := unix.Read(b.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (b *PortAudioBackend) Close() error {
	var firstErr error
	if b.stream != nil {
		if err := b.stream.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stopping output stream: %w", err)
		}
		if err := b.stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing output stream: %w", err)
		}
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("terminating portaudio: %w", err)
	}
	if b.wakeR != 0 {
		_ = unix.Close(b.wakeR)
	}
	if b.wakeW != 0 {
		_ = unix.Close(b.wakeW)
	}
	return firstErr
}
