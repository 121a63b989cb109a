package buttons

// OnboardState is one of the five states the onboard four-button machine
// cycles through (spec §4.E.2).
type OnboardState int

const (
	StateNone OnboardState = iota
	StatePressing
	StateActingInstant
	StateActingHeld
	StateWaiting
)

// waitingTicks bounds the Waiting state: it returns to None on the
// (waitingTicks+1)th consecutive all-released tick.
const waitingTicks = 20

// OnboardAction is the single action an instant or held gesture resolves
// to, or ActionNone/ActionUnknown when nothing matched.
type OnboardAction int

const (
	ActionNone OnboardAction = iota
	ActionUnknown
	ActionBootChime // first-ever-press: load the boot confirmation track

	ActionScratchPrevFile
	ActionScratchNextFile
	ActionPitchModeJog // pitch_mode = 2
	ActionBeatPrevFile
	ActionBeatNextFile
	ActionPitchModeBeat // pitch_mode = 1
	ActionShiftLatch
	ActionPitchModeOff // leaving pitch mode takes priority over all else

	ActionScratchPrevFolder
	ActionScratchNextFolder
	ActionScratchRandomFile
	ActionBeatPrevFolder
	ActionBeatNextFolder
	ActionBeatRandomFile
	ActionRecordBeat
)

// Onboard is the runtime state of the four onboard buttons.
type Onboard struct {
	State        OnboardState
	TotalButtons [4]bool // OR-accumulated across the Pressing window
	counter      int
	everPressed  bool
}

// NewOnboard returns a fresh machine, starting in StateNone.
func NewOnboard() *Onboard { return &Onboard{} }

func anyPressed(b [4]bool) bool { return b[0] || b[1] || b[2] || b[3] }

// Tick advances the machine by one tick given this tick's four button
// levels and the hold_time (ticks) setting, and returns the single action
// that should fire this tick (ActionNone most ticks).
//
// pitchModeActive reports whether pitch_mode is currently non-zero; per
// spec, ActingInstant's action set is overridden entirely when pitch mode
// is active -- any instant gesture just clears it.
func (o *Onboard) Tick(buttons [4]bool, holdTime int, pitchModeActive bool) OnboardAction {
	switch o.State {
	case StateNone:
		if anyPressed(buttons) {
			if !o.everPressed {
				o.everPressed = true
				o.State = StateWaiting
				o.counter = 0
				return ActionBootChime
			}
			o.State = StatePressing
			o.counter = 0
			o.TotalButtons = [4]bool{}
		}
		return ActionNone

	case StatePressing:
		for i := range buttons {
			o.TotalButtons[i] = o.TotalButtons[i] || buttons[i]
		}
		if !anyPressed(buttons) {
			o.State = StateActingInstant
			return ActionNone
		}
		o.counter++
		if o.counter > holdTime {
			o.counter = 0
			o.State = StateActingHeld
		}
		return ActionNone

	case StateActingInstant:
		o.State = StateWaiting
		o.counter = 0
		if pitchModeActive {
			return ActionPitchModeOff
		}
		return instantAction(o.TotalButtons)

	case StateActingHeld:
		o.State = StateWaiting
		o.counter = 0
		return heldAction(buttons)

	case StateWaiting:
		o.counter++
		if anyPressed(buttons) {
			o.counter = 0
		}
		if o.counter > waitingTicks {
			o.counter = 0
			o.State = StateNone
			o.TotalButtons = [4]bool{}
		}
		return ActionNone
	}
	return ActionNone
}

func instantAction(b [4]bool) OnboardAction {
	switch {
	case b[0] && !b[1] && !b[2] && !b[3]:
		return ActionScratchPrevFile
	case !b[0] && b[1] && !b[2] && !b[3]:
		return ActionScratchNextFile
	case b[0] && b[1] && !b[2] && !b[3]:
		return ActionPitchModeJog
	case !b[0] && !b[1] && b[2] && !b[3]:
		return ActionBeatPrevFile
	case !b[0] && !b[1] && !b[2] && b[3]:
		return ActionBeatNextFile
	case !b[0] && !b[1] && b[2] && b[3]:
		return ActionPitchModeBeat
	case b[0] && b[1] && b[2] && b[3]:
		return ActionShiftLatch
	default:
		return ActionUnknown
	}
}

func heldAction(b [4]bool) OnboardAction {
	switch {
	case b[0] && !b[1] && !b[2] && !b[3]:
		return ActionScratchPrevFolder
	case !b[0] && b[1] && !b[2] && !b[3]:
		return ActionScratchNextFolder
	case b[0] && b[1] && !b[2] && !b[3]:
		return ActionScratchRandomFile
	case !b[0] && !b[1] && b[2] && !b[3]:
		return ActionBeatPrevFolder
	case !b[0] && !b[1] && !b[2] && b[3]:
		return ActionBeatNextFolder
	case !b[0] && !b[1] && b[2] && b[3]:
		return ActionBeatRandomFile
	case b[0] && b[1] && b[2] && b[3]:
		return ActionRecordBeat
	default:
		return ActionUnknown
	}
}
