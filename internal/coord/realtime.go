package coord

import (
	"context"
	"runtime"

	"github.com/lodsb/turntable-core/internal/rtrole"
	"golang.org/x/sys/unix"
)

// AudioHandler is polled by the realtime thread once per wakeup; it must
// never allocate or block beyond its own poll() wait (spec §4.C "Realtime
// thread").
type AudioHandler interface {
	// PollFDs returns the file descriptors the realtime thread should
	// include in its poll set for this handler.
	PollFDs() []uintptr
	// Handle services whatever fd became readable.
	Handle(ctx context.Context)
}

// Realtime runs the elevated-priority polling loop over one or more
// AudioHandlers (the audio device plus any controller backends).
type Realtime struct {
	handlers []AudioHandler
	priority int
	finished chan struct{}

	// barrier is posted once the thread has raised its priority (or
	// given up trying), so Start() can block until that has happened
	// (spec §5 "both are started via a barrier semaphore").
	barrier chan error
}

// NewRealtime constructs a realtime loop targeting the given SCHED_FIFO
// priority (0 disables priority elevation, useful off Linux or in tests).
func NewRealtime(priority int, handlers ...AudioHandler) *Realtime {
	return &Realtime{
		handlers: handlers,
		priority: priority,
		finished: make(chan struct{}),
		barrier:  make(chan error, 1),
	}
}

// Start launches the realtime goroutine on a locked OS thread and blocks
// until it has raised its scheduling priority (or reports failure).
func (rt *Realtime) Start(ctx context.Context) error {
	go rt.run(ctx)
	return <-rt.barrier
}

// Stop requests the loop exit; it does not join, since the loop may be
// parked in poll() -- callers should also ensure the audio device's fds
// close or become readable so the poll() returns.
func (rt *Realtime) Stop() {
	close(rt.finished)
}

func (rt *Realtime) run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx = rtrole.WithRealtime(ctx)

	if rt.priority != 0 {
		if err := raisePriority(rt.priority); err != nil {
			rt.barrier <- err
			return
		}
	}
	rt.barrier <- nil

	for {
		select {
		case <-rt.finished:
			return
		default:
		}

		pfds := rt.pollSet()
		if len(pfds) == 0 {
			return
		}
		if _, err := unix.Poll(pfds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}

		for _, h := range rt.handlers {
			h.Handle(ctx)
		}
	}
}

func (rt *Realtime) pollSet() []unix.PollFd {
	var pfds []unix.PollFd
	for _, h := range rt.handlers {
		for _, fd := range h.PollFDs() {
			pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		}
	}
	return pfds
}

// raisePriority elevates the calling OS thread to SCHED_FIFO at the given
// priority (spec §4.C "elevated scheduling priority (SCHED_FIFO-
// equivalent)").
func raisePriority(priority int) error {
	return unix.SchedSetscheduler(0, unix.SCHED_FIFO, &unix.SchedParam{Priority: int32(priority)})
}
