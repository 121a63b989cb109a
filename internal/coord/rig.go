// Package coord implements the two long-lived threads of spec §4.C: the
// non-realtime coordination thread ("rig"), driven by poll() over a wake
// pipe and each importing track's file descriptor, and the realtime
// thread, elevated to SCHED_FIFO and polling the audio subsystem.
package coord

import (
	"context"
	"sync"

	"github.com/lodsb/turntable-core/internal/logx"
	"github.com/lodsb/turntable-core/internal/rtrole"
	"github.com/lodsb/turntable-core/internal/status"
	"github.com/lodsb/turntable-core/internal/track"
	"golang.org/x/sys/unix"
)

const (
	eventWake byte = 0x00
	eventQuit byte = 0x01

	// maxPollEntries caps the poll set size: the wake pipe plus up to
	// three concurrently-importing tracks (spec §4.C "capped to a small
	// constant, e.g. 4 entries").
	maxPollEntries = 4
)

// Rig is the coordination thread's state: the wake pipe, the process-wide
// mutex, and the list of tracks currently importing.
type Rig struct {
	mu sync.Mutex

	wakeR, wakeW int
	importing    []*track.Track

	log  *logx.Logger
	sink status.Sink
}

// NewRig creates and arms the wake pipe. Returns an error if the pipe or
// its non-blocking flag could not be set up.
func NewRig(log *logx.Logger, sink status.Sink) (*Rig, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	return &Rig{wakeR: fds[0], wakeW: fds[1], log: log, sink: sink}, nil
}

// Close releases the wake pipe's file descriptors.
func (r *Rig) Close() error {
	err1 := unix.Close(r.wakeR)
	err2 := unix.Close(r.wakeW)
	if err1 != nil {
		return err1
	}
	return err2
}

// PostTrack registers t as importing and wakes the rig so it adds the new
// fd to its poll set on the next iteration (spec §4.C rig::post_track).
func (r *Rig) PostTrack(ctx context.Context, t *track.Track) error {
	rtrole.AssertNotRealtime(ctx)
	r.mu.Lock()
	r.importing = append(r.importing, t)
	r.mu.Unlock()
	return r.postEvent(ctx, eventWake)
}

// removeTrack drops t from the importing list once its import has
// finished (called with the lock held, from within Run's loop body).
func (r *Rig) removeTrack(t *track.Track) {
	for i, cur := range r.importing {
		if cur == t {
			r.importing = append(r.importing[:i], r.importing[i+1:]...)
			return
		}
	}
}

// Quit asks the rig to exit its Run loop from any other thread.
func (r *Rig) Quit(ctx context.Context) error {
	return r.postEvent(ctx, eventQuit)
}

// postEvent writes a single event byte to the wake pipe. No caller, Quit
// and PostTrack included, may run on the realtime thread; it panics if ctx
// carries the realtime role.
func (r *Rig) postEvent(ctx context.Context, b byte) error {
	rtrole.AssertNotRealtime(ctx)
	_, err := unix.Write(r.wakeW, []byte{b})
	return err
}

// Run is the coordination thread's main loop: assemble the poll set,
// release the lock, block in poll() with no timeout, then drain the wake
// pipe, flush the realtime log queue, and pump every importing track.
// Returns when EVENT_QUIT is observed.
func (r *Rig) Run(ctx context.Context, rtQueue *logx.RTQueue) error {
	r.mu.Lock()
	for {
		pfds := make([]unix.PollFd, 1, maxPollEntries)
		pfds[0] = unix.PollFd{Fd: int32(r.wakeR), Events: unix.POLLIN}

		for _, t := range r.importing {
			if len(pfds) >= maxPollEntries {
				break
			}
			f, ok := t.PollFD()
			if !ok {
				continue
			}
			pfds = append(pfds, unix.PollFd{Fd: int32(f.Fd()), Events: unix.POLLIN})
		}
		tracked := append([]*track.Track(nil), r.importing...)
		r.mu.Unlock()

		if _, err := unix.Poll(pfds, -1); err != nil {
			if err == unix.EINTR {
				r.mu.Lock()
				continue
			}
			return err
		}

		if pfds[0].Revents != 0 {
			quit, err := r.drainWake()
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}

		r.mu.Lock()
		if rtQueue != nil && r.log != nil {
			rtQueue.Drain(r.log)
		}
		for idx, t := range tracked {
			if idx+1 >= len(pfds) {
				break // this track wasn't included in this round's poll set
			}
			if pfds[idx+1].Revents == 0 {
				continue
			}
			t.Handle(ctx, r.sink)
			if !t.Importing() {
				r.removeTrack(t)
			}
		}
	}
}

// drainWake reads every pending event byte and reports whether EVENT_QUIT
// was among them.
func (r *Rig) drainWake() (quit bool, err error) {
	var buf [1]byte
	for {
		n, rerr := unix.Read(r.wakeR, buf[:])
		if rerr != nil {
			if rerr == unix.EAGAIN {
				return quit, nil
			}
			return quit, rerr
		}
		if n == 0 {
			return quit, nil
		}
		switch buf[0] {
		case eventWake:
		case eventQuit:
			quit = true
		}
	}
}
