package engine

import (
	"github.com/lodsb/turntable-core/internal/scratchenc"
	"github.com/lodsb/turntable-core/internal/track"
)

// Nav is the navigation cursor spec §3 attaches to each deck: "current
// folder cursor, file cursor, files-present flag".
type Nav struct {
	FolderIndex int
	FileIndex   int
	FilesPresent bool
}

// Cues is the opaque external-sidecar cue record (spec §3: "a cues record
// loaded from an external sidecar"); the sidecar format itself is an
// external collaborator (spec §1 Non-goals), so only the load state is
// tracked here.
type Cues struct {
	Loaded bool
	Points []float64
}

// DeckState is one of the two instances spec §3 "Deck state" describes.
// Only the scratch deck (audio.Scratch) carries a non-nil Encoder.
type DeckState struct {
	Current *track.Track
	Nav     Nav
	Cues    Cues
	Encoder *scratchenc.State
}

func newDeckState() *DeckState {
	return &DeckState{}
}
