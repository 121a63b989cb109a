package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// PortAudioBackend needs a real default output device to open a stream,
// so it is exercised end-to-end only on hardware; what's testable here
// is the contract shape itself.

func TestDeckConstantsMatchSpecOrdering(t *testing.T) {
	assert.Equal(t, Deck(0), Beat)
	assert.Equal(t, Deck(1), Scratch)
}

func TestPlayerInputZeroValueIsSilent(t *testing.T) {
	var in PlayerInput
	assert.False(t, in.Touched)
	assert.False(t, in.JustPlay)
	assert.Equal(t, 0.0, in.Crossfader)
}

func TestPortAudioBackendPollFDsEmptyBeforeInit(t *testing.T) {
	b := NewPortAudioBackend(48000, nil)
	assert.Nil(t, b.PollFDs())
}

func TestPortAudioBackendCloseBeforeInitIsSafe(t *testing.T) {
	b := NewPortAudioBackend(48000, nil)
	// Close must tolerate a backend that never successfully opened a
	// stream (Init failing on a machine with no audio device, or never
	// having been called at all).
	_ = b.Close()
}
