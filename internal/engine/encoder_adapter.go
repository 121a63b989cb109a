package engine

import (
	"github.com/lodsb/turntable-core/internal/audio"
	"github.com/lodsb/turntable-core/internal/scratchenc"
	"github.com/lodsb/turntable-core/internal/settings"
)

// scratchencInputsFrom assembles one tick's scratchenc.Inputs from the
// cached PIC snapshot, the scratch deck's live PlayerInput and the audio
// subsystem's reported deck state.
func scratchencInputsFrom(e *Engine, angleRaw uint16, scratchIn *audio.PlayerInput, state audio.DeckState) scratchenc.Inputs {
	in := scratchenc.Inputs{
		AngleRaw:   angleRaw,
		CapTouched: e.lastPIC.CapTouched,
		PitchMode:  scratchenc.PitchMode(e.Input.PitchMode()),
		Stopped:    scratchIn.Stopped,
		Audio: scratchenc.AudioFeedback{
			ScratchPosition: state.Position,
			MotorSpeed:      state.MotorSpeed,
		},
	}
	return in.WithTouched(scratchIn.Touched)
}

func encoderConfig(s settings.Settings) scratchenc.Config {
	return scratchenc.Config{
		PlatterEnabled: s.PlatterEnabled,
		PlatterSpeed:   s.PlatterSpeed,
		JogReverse:     s.JogReverse,
	}
}

func tickScratchEncoder(state *scratchenc.State, in scratchenc.Inputs, cfg scratchenc.Config) scratchenc.Update {
	return scratchenc.Tick(state, in, cfg)
}

// applyScratchUpdate writes a scratchenc.Update's fields into the relevant
// deck's live PlayerInput record (spec §3 "write-once-per-poll"; §4.D's
// pitch updates apply to whichever deck pitch_mode currently targets).
func applyScratchUpdate(e *Engine, upd scratchenc.Update) {
	if e.au == nil {
		return
	}
	scratchIn := e.au.Input(audio.Scratch)
	beatIn := e.au.Input(audio.Beat)

	if upd.TargetPositionSet {
		scratchIn.TargetPosition = upd.TargetPosition
	}
	if upd.TouchedSet {
		scratchIn.Touched = upd.Touched
	}
	if upd.ScratchPitchNoteSet {
		scratchIn.PitchNote = upd.ScratchPitchNote
	}
	if upd.BeatPitchNoteSet {
		beatIn.PitchNote = upd.BeatPitchNote
	}
}
