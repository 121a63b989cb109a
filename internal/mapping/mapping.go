// Package mapping resolves (port, pin, edge) GPIO and MIDI events against a
// configured mapping table and dispatches the matching action against the
// engine facade (spec §4.F).
package mapping

import "github.com/lodsb/turntable-core/internal/buttons"

// Type distinguishes how an entry's pin is wired.
type Type int

const (
	TypeIO Type = iota
	TypeMIDI
	TypeADC
)

// Action is the enumeration of mapping action types actually dispatched
// against the engine facade.
type Action int

const (
	ActionNothing Action = iota
	ActionGND            // drive the pin low as an output; never dispatched, configured at init only
	ActionRecord
	ActionLoopErase
	ActionNextFile
	ActionPrevFile
	ActionRandomFile
	ActionJogPitch
	ActionVolUp
	ActionVolDown
	ActionVolUpHold   // redispatched every tick once past hold_time
	ActionVolDownHold // redispatched every tick once past hold_time
)

// Repeats reports whether this action should keep redispatching its HOLDING
// edge every tick once debounce has passed hold_time (spec §4.E.1's
// "action ∈ {VOLUHOLD, VOLDHOLD}" condition).
func (a Action) Repeats() bool {
	return a == ActionVolUpHold || a == ActionVolDownHold
}

// Entry is one row of the mapping table (spec §3 "Mapping table").
type Entry struct {
	Type      Type
	GPIOPort  uint8
	Pin       uint8
	Pullup    bool
	EdgeType  buttons.Edge
	Action    Action
	DeckNo    int
	MIDINote  int // only meaningful when Type == TypeMIDI

	// Runtime-only button record (spec §3 "Mapping table"): not part of the
	// configured table's identity. NewTable leaves it as given; a new
	// Entry starts with the zero (idle) machine.
	Button buttons.GPIOMachine
}

// Table is the ordered mapping table plus an index for O(1) (port, pin,
// edge) lookup, built once at init and immutable thereafter except for the
// one-time pin-conflict masking pass (spec §4.F, §5 "Ordering guarantees").
type Table struct {
	entries []*Entry
	byPin   map[pinKey][]*Entry
}

type pinKey struct {
	port uint8
	pin  uint8
}

// NewTable builds a lookup index over entries. The slice is retained and
// entries are mutated in place by MaskI2CConflicts, the single in-place
// mutation the original allows.
func NewTable(entries []*Entry) *Table {
	t := &Table{entries: entries, byPin: make(map[pinKey][]*Entry, len(entries))}
	for _, e := range entries {
		if e.Type != TypeIO {
			continue
		}
		k := pinKey{e.GPIOPort, e.Pin}
		t.byPin[k] = append(t.byPin[k], e)
	}
	return t
}

// Entries returns the table in configured order.
func (t *Table) Entries() []*Entry { return t.entries }

// FindGPIO returns the entry configured for this exact (port, pin, edge)
// triple, or nil. There is at most one match per invariant in spec §3.
func (t *Table) FindGPIO(port, pin uint8, edge buttons.Edge) *Entry {
	for _, e := range t.byPin[pinKey{port, pin}] {
		if e.EdgeType == edge {
			return e
		}
	}
	return nil
}

// FindGPIOAnyEdge returns the first entry configured for (port, pin)
// regardless of edge, used at init to decide pin direction/pullup before
// any edge-specific dispatch is meaningful.
func (t *Table) FindGPIOAnyEdge(port, pin uint8) *Entry {
	es := t.byPin[pinKey{port, pin}]
	if len(es) == 0 {
		return nil
	}
	return es[0]
}

// PinEntries returns one canonical entry per distinct (port, pin) among
// IO-type entries: the entry whose embedded Button machine drives that
// pin's debounce/hold state. A pin carrying more than one edge variant
// (e.g. PRESSED and RELEASED mapped to different actions) shares a
// single machine and a single firing per tick, matching the "exactly
// one dispatch" invariant in spec §5 — tick the returned entries'
// Button fields, never Entries() directly, or the same edge dispatches
// once per edge-variant sharing that pin instead of once.
func (t *Table) PinEntries() []*Entry {
	seen := make(map[pinKey]bool, len(t.byPin))
	out := make([]*Entry, 0, len(t.byPin))
	for _, e := range t.entries {
		if e.Type != TypeIO || e.Action == ActionGND {
			continue
		}
		k := pinKey{e.GPIOPort, e.Pin}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// MaskI2CConflicts rewrites any mapping on port 1 pins 15/16 to ActionNothing
// when the GPIO expander is present, since those pins are committed to the
// expander's I2C bus (spec §4.F's "conflict-avoidance rule").
func (t *Table) MaskI2CConflicts(expanderPresent bool) {
	if !expanderPresent {
		return
	}
	for _, e := range t.entries {
		if e.Type == TypeIO && e.GPIOPort == 1 && (e.Pin == 15 || e.Pin == 16) {
			e.Action = ActionNothing
		}
	}
}

// PinConfig reports, for one IO-type pin, whether it should be driven as
// an output (ActionGND) or configured as a pulled-up/down input (spec §4.F
// "at init, the core walks the mapping table...").
type PinConfig struct {
	Port    uint8
	Pin     uint8
	Output  bool
	Pullup  bool
}

// WalkPinConfig returns the init-time GPIO configuration implied by the
// table: one PinConfig per distinct (port, pin) among IO-type entries.
func (t *Table) WalkPinConfig() []PinConfig {
	seen := make(map[pinKey]bool, len(t.byPin))
	cfgs := make([]PinConfig, 0, len(t.byPin))
	for _, e := range t.entries {
		if e.Type != TypeIO {
			continue
		}
		k := pinKey{e.GPIOPort, e.Pin}
		if seen[k] {
			continue
		}
		seen[k] = true
		cfgs = append(cfgs, PinConfig{
			Port:   e.GPIOPort,
			Pin:    e.Pin,
			Output: e.Action == ActionGND,
			Pullup: e.Pullup,
		})
	}
	return cfgs
}
