package engine

import "github.com/lodsb/turntable-core/internal/audio"

// volumeStep is how much VolUp/VolDown nudge a deck's volume_knob per
// dispatch (spec leaves the magnitude to the implementation; action
// signatures only are in scope per spec §4.F).
const volumeStep = 0.05

// The methods below implement mapping.Facade: spec §4.F "Action handlers
// are the integration points with the engine facade ... out of scope
// beyond their signatures." File/folder navigation itself depends on an
// external filesystem listing this core does not own, so these mutate the
// deck's Nav cursor and leave the actual file resolution to whatever
// collaborator owns nav_state.files_present.

func (e *Engine) NextFile(deck int) {
	d := e.Decks[deck]
	if !d.Nav.FilesPresent {
		return
	}
	d.Nav.FileIndex++
}

func (e *Engine) PrevFile(deck int) {
	d := e.Decks[deck]
	if !d.Nav.FilesPresent {
		return
	}
	d.Nav.FileIndex--
}

func (e *Engine) RandomFile(deck int) {
	d := e.Decks[deck]
	if !d.Nav.FilesPresent {
		return
	}
	// Concrete random selection is owned by the external file-listing
	// collaborator; this just marks that a reselection was requested.
	d.Nav.FileIndex = -1
}

func (e *Engine) PrevFolder(deck int) {
	d := e.Decks[deck]
	if !d.Nav.FilesPresent {
		return
	}
	d.Nav.FolderIndex--
	d.Nav.FileIndex = 0
}

func (e *Engine) NextFolder(deck int) {
	d := e.Decks[deck]
	if !d.Nav.FilesPresent {
		return
	}
	d.Nav.FolderIndex++
	d.Nav.FileIndex = 0
}

func (e *Engine) SetPitchMode(mode int) {
	e.Input.SetPitchMode(mode)
}

func (e *Engine) VolUp(deck int) {
	e.adjustVolume(deck, volumeStep)
}

func (e *Engine) VolDown(deck int) {
	e.adjustVolume(deck, -volumeStep)
}

func (e *Engine) adjustVolume(deck int, delta float64) {
	if e.au == nil {
		return
	}
	in := e.au.Input(audio.Deck(deck))
	v := in.VolumeKnob + delta
	if v < 0 {
		v = 0
	}
	if v > e.Settings.MaxVolume {
		v = e.Settings.MaxVolume
	}
	in.VolumeKnob = v
}

// Record starts an in-memory recording track on the given deck (spec
// §4.E.2 "record to beat deck", §4.B "acquire_for_recording").
func (e *Engine) Record(deck int) {
	if e.registry == nil {
		return
	}
	t := e.registry.AcquireForRecording(e.Settings.SampleRate)
	e.Decks[deck].Current = t
}

// LoopErase is an engine-facade integration point whose audio-side effect
// (erasing the currently captured loop) lives in the external DSP kernel;
// the core only needs to route the dispatch (spec §1 Non-goals).
func (e *Engine) LoopErase(deck int) {}
