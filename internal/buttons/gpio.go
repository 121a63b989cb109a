// Package buttons implements the two button state machines from spec §4.E:
// the per-mapping GPIO debounce/hold/release machine, and the onboard
// four-button instant/held classifier with its shifted-modifier latch.
package buttons

// Edge identifies which mapping edge variant a dispatch corresponds to.
type Edge int

const (
	Pressed Edge = iota
	Released
	Holding
	PressedShifted
	ReleasedShifted
	HoldingShifted
)

// RepeatHolding reports whether this mapping's action should keep
// redispatching its HOLDING edge every tick once past hold_time (spec:
// "action ∈ {VOLUHOLD, VOLDHOLD}").
type RepeatHolding func() bool

// GPIOMachine is the runtime state of exactly one `type=IO` mapping entry
// (spec §3: "a mutable runtime-only button record: debounce, shifted_at_press").
type GPIOMachine struct {
	Debounce       int // 0 idle; >0 settling/pressed/held ticks; <0 cool-down
	ShiftedAtPress bool
}

// Dispatcher is called once per edge that fires; real dispatch happens in
// package mapping, this package only decides *when*.
type Dispatcher func(Edge)

// Tick advances the machine by one coordination-thread tick given the
// current pin level and shift latch, per the state table in spec §4.E.1.
func (m *GPIOMachine) Tick(pinHigh, shifted bool, debounceTime, holdTime int, repeatHolding RepeatHolding, dispatch Dispatcher) {
	switch {
	case m.Debounce == 0:
		if pinHigh {
			m.ShiftedAtPress = shifted
			if shifted {
				dispatch(PressedShifted)
			} else {
				dispatch(Pressed)
			}
			m.Debounce = 1
		}
		// pin low: idle, no-op

	case m.Debounce > 0 && m.Debounce < debounceTime:
		m.Debounce++

	case m.Debounce >= debounceTime && m.Debounce < holdTime:
		if !pinHigh {
			if m.ShiftedAtPress {
				dispatch(ReleasedShifted)
			} else {
				dispatch(Released)
			}
			m.Debounce = -debounceTime
		} else {
			m.Debounce++
		}

	case m.Debounce == holdTime:
		if m.ShiftedAtPress {
			dispatch(HoldingShifted)
		} else {
			dispatch(Holding)
		}
		m.Debounce++

	case m.Debounce > holdTime:
		if pinHigh {
			if repeatHolding != nil && repeatHolding() {
				if m.ShiftedAtPress {
					dispatch(HoldingShifted)
				} else {
					dispatch(Holding)
				}
			}
		} else {
			// Only the unshifted RELEASED edge fires after a hold,
			// regardless of shift state at press (spec's documented
			// asymmetry, preserved faithfully -- see DESIGN.md).
			if !m.ShiftedAtPress {
				dispatch(Released)
			}
			m.Debounce = -debounceTime
		}

	case m.Debounce < 0:
		m.Debounce++
	}
}
