package buttons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario F: press B0 for 2 ticks then release within hold_time -> exactly
// one ActionScratchPrevFile.
func TestOnboardInstantPrevFile(t *testing.T) {
	const holdTime = 40
	o := NewOnboard()
	o.everPressed = true // skip the boot-chime special case

	var actions []OnboardAction
	press := [4]bool{true, false, false, false}
	released := [4]bool{}

	actions = append(actions, o.Tick(press, holdTime, false))
	actions = append(actions, o.Tick(press, holdTime, false))
	actions = append(actions, o.Tick(released, holdTime, false)) // -> ActingInstant
	actions = append(actions, o.Tick(released, holdTime, false)) // ActingInstant acts

	got := 0
	for _, a := range actions {
		if a == ActionScratchPrevFile {
			got++
		}
	}
	assert.Equal(t, 1, got)
}

// Scenario G: hold B0 for > hold_time ticks -> exactly one
// ActionScratchPrevFolder; returns to None after >= 20 all-released ticks.
func TestOnboardHeldPrevFolder(t *testing.T) {
	const holdTime = 10
	o := NewOnboard()
	o.everPressed = true

	press := [4]bool{true, false, false, false}
	var actions []OnboardAction
	// The first tick only leaves None; the counter then passes hold_time on
	// the (holdTime+2)th pressed tick.
	for i := 0; i < holdTime+2; i++ {
		actions = append(actions, o.Tick(press, holdTime, false))
	}
	require.Equal(t, StateActingHeld, o.State)

	actions = append(actions, o.Tick(press, holdTime, false))

	count := 0
	for _, a := range actions {
		if a == ActionScratchPrevFolder {
			count++
		}
	}
	assert.Equal(t, 1, count)
	require.Equal(t, StateWaiting, o.State)

	released := [4]bool{}
	for i := 0; i < waitingTicks+1; i++ {
		o.Tick(released, holdTime, false)
	}
	assert.Equal(t, StateNone, o.State)
}

func TestOnboardBootChimeOnFirstEverPress(t *testing.T) {
	o := NewOnboard()
	press := [4]bool{false, true, false, false}
	a := o.Tick(press, 40, false)
	assert.Equal(t, ActionBootChime, a)
	assert.Equal(t, StateWaiting, o.State)
}

func TestOnboardPitchModeOverridesInstantAction(t *testing.T) {
	const holdTime = 40
	o := NewOnboard()
	o.everPressed = true

	press := [4]bool{true, false, false, false}
	released := [4]bool{}
	o.Tick(press, holdTime, true)
	o.Tick(released, holdTime, true) // -> ActingInstant
	a := o.Tick(released, holdTime, true)
	assert.Equal(t, ActionPitchModeOff, a)
}
