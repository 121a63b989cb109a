package mapping

// Facade is the integration surface action handlers call into; the engine
// package provides the concrete implementation (spec §4.F: "action handlers
// are the integration points with the engine facade").
type Facade interface {
	NextFile(deck int)
	PrevFile(deck int)
	RandomFile(deck int)
	SetPitchMode(mode int)
	VolUp(deck int)
	VolDown(deck int)
	Record(deck int)
	LoopErase(deck int)
}

// Settings is the subset of the settings record dispatch needs.
type Settings interface {
	DebounceTime() int
	HoldTime() int
}

// InputState is the process-wide shift/pitch-mode latch dispatch can read
// or mutate; kept as an interface so mapping never imports the engine
// package (avoiding an import cycle) while still letting handlers flip
// pitch_mode.
type InputState interface {
	PitchMode() int
	SetPitchMode(mode int)
}

// Dispatch applies the action identified by entry.Action. midi is reserved
// for MIDI-sourced dispatch and unused by the GPIO path (spec §4.F's
// dispatch_event(mapping, midi=None, ...) signature).
func Dispatch(entry *Entry, midi any, facade Facade, settings Settings, state InputState) {
	switch entry.Action {
	case ActionNothing, ActionGND:
		// GND entries are never dispatched; NOTHING is the explicit no-op
		// an entry is rewritten to by MaskI2CConflicts.
	case ActionRecord:
		facade.Record(entry.DeckNo)
	case ActionLoopErase:
		facade.LoopErase(entry.DeckNo)
	case ActionNextFile:
		facade.NextFile(entry.DeckNo)
	case ActionPrevFile:
		facade.PrevFile(entry.DeckNo)
	case ActionRandomFile:
		facade.RandomFile(entry.DeckNo)
	case ActionJogPitch:
		state.SetPitchMode(2)
	case ActionVolUp:
		facade.VolUp(entry.DeckNo)
	case ActionVolDown:
		facade.VolDown(entry.DeckNo)
	case ActionVolUpHold:
		facade.VolUp(entry.DeckNo)
	case ActionVolDownHold:
		facade.VolDown(entry.DeckNo)
	}
}
