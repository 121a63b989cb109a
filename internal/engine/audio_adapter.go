package engine

import (
	"context"

	"github.com/lodsb/turntable-core/internal/audio"
)

// AudioHandlerAdapter adapts an audio.AudioSubsystem to coord.AudioHandler
// so the realtime goroutine can poll and service it without this package
// or coord depending on each other's concrete types (spec §4.C "dispatches
// ... engine.audio_handle for the audio device").
type AudioHandlerAdapter struct {
	AU audio.AudioSubsystem
}

func (a AudioHandlerAdapter) PollFDs() []uintptr {
	fds := a.AU.PollFDs()
	out := make([]uintptr, len(fds))
	for i, fd := range fds {
		out[i] = uintptr(fd)
	}
	return out
}

func (a AudioHandlerAdapter) Handle(ctx context.Context) {
	a.AU.Handle()
}
