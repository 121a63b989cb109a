package engine

import (
	"time"

	"github.com/lodsb/turntable-core/internal/audio"
)

// fallbackTick emits the synthetic input profile spec §4.G prescribes
// when no co-processor is present, so bring-up/desktop builds keep
// producing audio: "scratch.touched = true, beat.crossfader = 0,
// scratch.crossfader = 0.5, beat.just_play = true, beat pitch reset", and
// scratch.target_position advances by wall-clock delta each tick.
func (e *Engine) fallbackTick() {
	if e.au == nil {
		return
	}
	now := time.Now()
	delta := now.Sub(e.lastPollAt).Seconds()
	e.lastPollAt = now

	scratchIn := e.au.Input(audio.Scratch)
	beatIn := e.au.Input(audio.Beat)

	scratchIn.Touched = true
	scratchIn.TargetPosition += delta
	beatIn.Crossfader = 0
	scratchIn.Crossfader = 0.5
	beatIn.JustPlay = true
	beatIn.PitchNote = 1.0
}
