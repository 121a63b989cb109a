package engine

// InputState is the process-wide latch spec §3 "Input state" describes:
// shifted (momentary) and pitch_mode. It implements mapping.InputState so
// GPIO dispatch can read/mutate it without mapping importing engine.
type InputState struct {
	shifted   bool
	pitchMode int
}

func (s *InputState) Shifted() bool { return s.shifted }

// SetShifted latches or releases the momentary shift modifier (spec
// GLOSSARY "Shift").
func (s *InputState) SetShifted(v bool) { s.shifted = v }

func (s *InputState) PitchMode() int { return s.pitchMode }

func (s *InputState) SetPitchMode(mode int) { s.pitchMode = mode }
