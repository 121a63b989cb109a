// Package scratchenc implements the encoder tracking engine: the wrap-aware
// angular integrator that turns a noisy, wrapping 12-bit rotary sensor into
// the scratch deck's target position and pitch signal (spec §4.D). It is
// pure and allocation-free so it can be driven directly from hardware or
// from a property-based test without any thread or device dependency.
package scratchenc


// AngleUninitialised is the sentinel stored in State.Angle before the first
// sample has been accepted.
const AngleUninitialised = 0xFFFF

// wrapTicks is how many encoder ticks correspond to one full revolution.
const wrapTicks = 4096

// glitchThreshold is the minimum jump (in encoder ticks) away from the
// previous wrapped sample that is treated as a spurious spike rather than
// real motion.
const glitchThreshold = 100

// maxConsecutiveGlitches bounds how many spikes in a row may be rejected
// before the engine is forced to accept a sample, keeping it responsive
// under sustained noise.
const maxConsecutiveGlitches = 1

// PitchMode mirrors the process-wide input-state latch (spec §3).
type PitchMode int

const (
	PitchModeOff   PitchMode = 0
	PitchModeBeat  PitchMode = 1 // pitch applied to the beat deck
	PitchModeJog   PitchMode = 2 // pitch applied to the scratch deck
)

// State is the per-scratch-deck encoder tracking record from spec §3.
type State struct {
	AngleRaw uint16 // last raw sample, 0..4095
	Angle    uint16 // last accepted value, or AngleUninitialised
	Offset   int32  // accumulated wraps * 4096, plus re-sync bias

	oldPitchMode PitchMode
	numGlitches  int
}

// NewState returns a freshly seeded encoder state (angle uninitialised).
func NewState() *State {
	return &State{Angle: AngleUninitialised}
}

// Config is the subset of settings the encoder engine needs each tick.
type Config struct {
	PlatterEnabled bool
	PlatterSpeed   int // encoder ticks per second of audio; must be > 0 when used
	JogReverse     bool
}

// AudioFeedback is what the audio subsystem reports back for re-sync.
type AudioFeedback struct {
	ScratchPosition float64 // seconds
	MotorSpeed      float64 // 0 when stopped
}

// Inputs bundles everything the engine reads this tick besides its own
// State and Config.
type Inputs struct {
	AngleRaw   uint16
	CapTouched bool
	PitchMode  PitchMode
	Stopped    bool // scratch deck's player_input.stopped, for resync-on-exit
	Audio      AudioFeedback

	touchedBefore bool // set via WithTouched; the deck's current touched flag
}

// Update is what changed this tick. At most one of {BeatPitchNote,
// ScratchPitchNote} is set: the one for the deck pitch mode targets, and
// neither outside pitch mode (spec §3, pitch_mode enum).
type Update struct {
	Accepted  bool // false if the sample was rejected as a glitch
	Seeded    bool // true on the very first tick (diff intentionally skipped)

	TargetPosition    float64
	TargetPositionSet bool
	Touched           bool
	TouchedSet        bool

	BeatPitchNote     float64
	BeatPitchNoteSet  bool
	ScratchPitchNote    float64
	ScratchPitchNoteSet bool
}

// Tick runs one coordination-loop iteration of the encoder engine, mutating
// s in place and returning what downstream PlayerInput fields should change.
func Tick(s *State, in Inputs, cfg Config) Update {
	angleRaw := in.AngleRaw
	if cfg.JogReverse {
		angleRaw = 4095 - angleRaw
	}
	s.AngleRaw = angleRaw

	if s.Angle == AngleUninitialised {
		s.Angle = angleRaw
		return Update{Seeded: true}
	}

	crossedZero, wrappedAngle := wrapDetect(s.Angle, angleRaw)

	if absInt(int(angleRaw)-wrappedAngle) > glitchThreshold && s.numGlitches < maxConsecutiveGlitches {
		s.numGlitches++
		return Update{Accepted: false}
	}
	s.numGlitches = 0
	s.Angle = angleRaw

	var upd Update
	upd.Accepted = true

	if in.PitchMode != PitchModeOff {
		upd = tickPitchMode(s, in, upd, crossedZero)
	} else {
		upd = tickNormalMode(s, in, cfg, upd, crossedZero)
	}

	s.oldPitchMode = in.PitchMode
	return upd
}

// wrapDetect computes crossed_zero and wrapped_angle exactly as spec §4.D
// defines them, from the previously accepted angle and the new raw sample.
func wrapDetect(prevAngle, angleRaw uint16) (crossedZero int, wrappedAngle int) {
	switch {
	case angleRaw < 1024 && prevAngle >= 3072:
		return 1, int(prevAngle) - wrapTicks
	case angleRaw >= 3072 && prevAngle < 1024:
		return -1, int(prevAngle) + wrapTicks
	default:
		return 0, int(prevAngle)
	}
}

func tickPitchMode(s *State, in Inputs, upd Update, crossedZero int) Update {
	if s.oldPitchMode == PitchModeOff {
		// Entering pitch mode: capture the current platter position as
		// the unison reference and zero out the relevant deck's pitch.
		if in.PitchMode == PitchModeBeat {
			upd.BeatPitchNote = 1.0
			upd.BeatPitchNoteSet = true
		} else {
			upd.ScratchPitchNote = 1.0
			upd.ScratchPitchNoteSet = true
		}
		s.Offset = -int32(s.Angle)
		upd.Touched = false
		upd.TouchedSet = true
	}

	applyWrap(s, crossedZero)

	pitch := float64(int32(s.Angle)+s.Offset)/16384.0 + 1.0
	if in.PitchMode == PitchModeBeat {
		upd.BeatPitchNote = pitch
		upd.BeatPitchNoteSet = true
	} else {
		upd.ScratchPitchNote = pitch
		upd.ScratchPitchNoteSet = true
	}
	return upd
}

func tickNormalMode(s *State, in Inputs, cfg Config, upd Update, crossedZero int) Update {
	if !cfg.PlatterEnabled {
		upd.Touched = true
		upd.TouchedSet = true
	} else {
		justLeftPitchMode := s.oldPitchMode != PitchModeOff && !in.Stopped
		if in.CapTouched || in.Audio.MotorSpeed == 0 {
			if !in.TouchedBefore() || justLeftPitchMode {
				s.Offset = int32(in.Audio.ScratchPosition*float64(cfg.PlatterSpeed)) - int32(s.Angle)
				upd.TargetPosition = in.Audio.ScratchPosition
				upd.TargetPositionSet = true
				upd.Touched = true
				upd.TouchedSet = true
			}
		} else {
			upd.Touched = false
			upd.TouchedSet = true
		}
	}

	applyWrap(s, crossedZero)

	if cfg.PlatterSpeed != 0 {
		upd.TargetPosition = float64(int32(s.Angle)+s.Offset) / float64(cfg.PlatterSpeed)
		upd.TargetPositionSet = true
	}
	return upd
}

func applyWrap(s *State, crossedZero int) {
	switch {
	case crossedZero > 0:
		s.Offset += wrapTicks
	case crossedZero < 0:
		s.Offset -= wrapTicks
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TouchedBefore reports the caller's current (pre-tick) `touched` flag. It
// is implemented as a method on Inputs so the zero value (false) is the
// conservative "not yet touched" default when a caller doesn't track it;
// callers that do track it should prefer WithTouched.
func (in Inputs) TouchedBefore() bool { return in.touchedBefore }

// WithTouched returns a copy of in carrying the scratch deck's current
// touched flag, needed to decide whether a re-sync edge has occurred.
func (in Inputs) WithTouched(touched bool) Inputs {
	in.touchedBefore = touched
	return in
}
