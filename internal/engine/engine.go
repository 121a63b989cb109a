// Package engine is the facade of spec §4.G: it aggregates the two deck
// states, the crossfader, the process-wide input-state latch and the
// settings record, drives hardware polling, the encoder engine, the
// button machines and mapping dispatch each tick, and hands the audio
// subsystem its control signals.
package engine

import (
	"context"
	"time"

	"github.com/lodsb/turntable-core/internal/audio"
	"github.com/lodsb/turntable-core/internal/buttons"
	"github.com/lodsb/turntable-core/internal/hwio"
	"github.com/lodsb/turntable-core/internal/logx"
	"github.com/lodsb/turntable-core/internal/mapping"
	"github.com/lodsb/turntable-core/internal/scratchenc"
	"github.com/lodsb/turntable-core/internal/settings"
	"github.com/lodsb/turntable-core/internal/status"
	"github.com/lodsb/turntable-core/internal/track"
)

// picPollDecimation is "every 5th tick" (spec §4.G poll loop).
const picPollDecimation = 5

// sc500Port, sc500Pin identify the variant-detection strap (spec §4.G
// "SC500 variant detection").
const (
	sc500Port = 6
	sc500Pin  = 11
)

// Engine is the runtime state spec §3 describes as "Deck state... a
// crossfader... an input-state latch... the settings record", plus the
// collaborators it polls and dispatches against.
type Engine struct {
	Settings settings.Settings

	Decks      [2]*DeckState
	Crossfader Crossfader
	Input      InputState

	hw       hwio.Hardware
	presence hwio.Presence
	table    *mapping.Table
	registry *track.Registry
	rig      trackPoster
	au       audio.AudioSubsystem
	onboard  *buttons.Onboard

	log  *logx.Logger
	sink status.Sink

	tick       uint64
	lastPollAt time.Time
	lastPIC    hwio.PICReadings

	faderOpen [2]bool // hysteresis latch per Settings.FaderOpenPoint/FaderClosePoint
}

// New constructs an Engine over its collaborators. hw, table, registry and
// au must already be non-nil; they are the hardware abstraction, the
// resolved mapping table, the track registry, and the audio subsystem.
func New(cfg settings.Settings, hw hwio.Hardware, table *mapping.Table, registry *track.Registry, au audio.AudioSubsystem, log *logx.Logger, sink status.Sink) *Engine {
	e := &Engine{
		Settings: cfg,
		hw:       hw,
		table:    table,
		registry: registry,
		au:       au,
		onboard:  buttons.NewOnboard(),
		log:      log,
		sink:     sink,
	}
	e.Decks[audio.Beat] = newDeckState()
	e.Decks[audio.Scratch] = newDeckState()
	e.Decks[audio.Scratch].Encoder = scratchenc.NewState()
	e.Crossfader = Crossfader{ADCMin: cfg.CrossfaderADCMin, ADCMax: cfg.CrossfaderADCMax}
	return e
}

// trackPoster is satisfied by *coord.Rig. Kept as a narrow interface
// rather than an import of coord, mirroring AudioHandlerAdapter's seam:
// engine hands newly-spawned imports to the coordination thread so its
// poll loop drives them to completion (spec §4.C rig::post_track).
type trackPoster interface {
	PostTrack(ctx context.Context, t *track.Track) error
}

// SetRig wires the coordination thread so imports started through this
// engine (e.g. the boot-chime load) get added to its poll set. Must be
// called before any import-triggering action runs; cmd/turntabled does
// this right after constructing the rig.
func (e *Engine) SetRig(r trackPoster) {
	e.rig = r
}

// Init brings up the hardware abstraction, walks the mapping table to
// configure pin directions/pullups, detects the SC500 variant strap, and
// reports whether enough hardware is present to proceed (spec §6
// Lifecycle "init(engine) returns a boolean").
func (e *Engine) Init(ctx context.Context) bool {
	e.presence = e.hw.Init(ctx)
	e.table.MaskI2CConflicts(e.presence.Expander)

	for _, pc := range e.table.WalkPinConfig() {
		e.hw.ConfigurePin(ctx, pc.Port, pc.Pin, pc.Output, pc.Pullup)
	}

	if e.presence.MMapGPIO && e.hw.ReadPin(ctx, sc500Port, sc500Pin) {
		e.Settings.DisableVolumeADC = true
		e.Settings.DisablePicButtons = true
		e.info("SC500 variant strap detected: volume ADC and PIC buttons disabled")
	}

	e.lastPollAt = time.Now()
	return e.presence.Encoder || e.presence.PIC || e.presence.Expander || e.presence.MMapGPIO
}

func (e *Engine) info(msg string) {
	if e.log != nil {
		e.log.Infof("%s", msg)
	}
	if e.sink != nil {
		e.sink.Status(status.Message{Level: status.Info, Text: msg})
	}
}

// Poll is one coordination-thread tick (spec §6 Lifecycle "poll(engine) is
// called once per coordination tick").
func (e *Engine) Poll(ctx context.Context) {
	e.tick++

	e.pollGPIOButtons(ctx)

	if !e.presence.PIC {
		e.fallbackTick()
		return
	}

	if e.tick%picPollDecimation == 0 {
		e.pollPIC(ctx)
	}
	e.runEncoder(ctx)
}

// pollGPIOButtons drives one debounce machine per distinct (port, pin)
// off the live pin level (spec §4.E.1, §4.F), regardless of how many
// edge-variant mappings share that pin.
func (e *Engine) pollGPIOButtons(ctx context.Context) {
	shifted := e.Input.Shifted()
	for _, entry := range e.table.PinEntries() {
		pinHigh := e.hw.ReadPin(ctx, entry.GPIOPort, entry.Pin)
		entry.Button.Tick(pinHigh, shifted, e.Settings.DebounceTime, e.Settings.HoldTime,
			entry.Action.Repeats,
			func(edge buttons.Edge) {
				matched := e.table.FindGPIO(entry.GPIOPort, entry.Pin, edge)
				if matched == nil {
					return
				}
				mapping.Dispatch(matched, nil, e, settingsAdapter{&e.Settings}, &e.Input)
			})
	}
}
