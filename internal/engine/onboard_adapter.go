package engine

import (
	"context"

	"github.com/lodsb/turntable-core/internal/buttons"
)

// onboardBootTrackPath is the boot-confirmation chime (spec §4.E.2, spec
// §9 Design Notes: "Treat the path as a compile-time configurable").
const onboardBootTrackPath = "/var/os-version.mp3"

// applyOnboardAction translates one resolved buttons.OnboardAction into
// the facade calls and latch updates spec §4.E.2 describes.
func applyOnboardAction(ctx context.Context, e *Engine, action buttons.OnboardAction) {
	switch action {
	case buttons.ActionNone, buttons.ActionUnknown:

	case buttons.ActionBootChime:
		if e.registry != nil {
			if t, err := e.registry.AcquireByImport(ctx, e.Settings.Importer, onboardBootTrackPath, e.Settings.SampleRate); err == nil {
				e.Decks[0].Current = t
				if e.rig != nil {
					_ = e.rig.PostTrack(ctx, t)
				}
			}
		}

	case buttons.ActionScratchPrevFile:
		e.PrevFile(1)
	case buttons.ActionScratchNextFile:
		e.NextFile(1)
	case buttons.ActionPitchModeJog:
		e.Input.SetPitchMode(2)
	case buttons.ActionBeatPrevFile:
		e.PrevFile(0)
	case buttons.ActionBeatNextFile:
		e.NextFile(0)
	case buttons.ActionPitchModeBeat:
		e.Input.SetPitchMode(1)
	case buttons.ActionShiftLatch:
		e.Input.SetShifted(true)
	case buttons.ActionPitchModeOff:
		e.Input.SetPitchMode(0)

	case buttons.ActionScratchPrevFolder:
		e.PrevFolder(1)
	case buttons.ActionScratchNextFolder:
		e.NextFolder(1)
	case buttons.ActionScratchRandomFile:
		e.RandomFile(1)
	case buttons.ActionBeatPrevFolder:
		e.PrevFolder(0)
	case buttons.ActionBeatNextFolder:
		e.NextFolder(0)
	case buttons.ActionBeatRandomFile:
		e.RandomFile(0)
	case buttons.ActionRecordBeat:
		if e.Decks[1].Nav.FilesPresent {
			e.Record(0)
		}
	}
}
