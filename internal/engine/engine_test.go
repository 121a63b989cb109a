package engine

import (
	"context"
	"testing"

	"github.com/lodsb/turntable-core/internal/audio"
	"github.com/lodsb/turntable-core/internal/buttons"
	"github.com/lodsb/turntable-core/internal/hwio"
	"github.com/lodsb/turntable-core/internal/mapping"
	"github.com/lodsb/turntable-core/internal/settings"
	"github.com/lodsb/turntable-core/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHardware struct {
	presence hwio.Presence
	pic      hwio.PICReadings
	angle    uint16
	pins     map[[2]uint8]bool
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{pins: make(map[[2]uint8]bool)}
}

func (h *fakeHardware) Init(ctx context.Context) hwio.Presence       { return h.presence }
func (h *fakeHardware) Presence() hwio.Presence                      { return h.presence }
func (h *fakeHardware) ReadAngle(ctx context.Context) uint16         { return h.angle }
func (h *fakeHardware) ReadPIC(ctx context.Context) hwio.PICReadings { return h.pic }
func (h *fakeHardware) ConfigurePin(ctx context.Context, port, pin uint8, output, pullup bool) {}
func (h *fakeHardware) ReadPin(ctx context.Context, port, pin uint8) bool {
	return h.pins[[2]uint8{port, pin}]
}
func (h *fakeHardware) ReadPort(ctx context.Context, port uint8) uint32 { return 0 }
func (h *fakeHardware) Close() error                                   { return nil }

type fakeAudio struct {
	inputs [2]audio.PlayerInput
	states [2]audio.DeckState
}

func (a *fakeAudio) Init() bool                       { return true }
func (a *fakeAudio) Input(d audio.Deck) *audio.PlayerInput { return &a.inputs[d] }
func (a *fakeAudio) DeckState(d audio.Deck) audio.DeckState { return a.states[d] }
func (a *fakeAudio) Stats() audio.DSPStats            { return audio.DSPStats{} }
func (a *fakeAudio) PollFDs() []int                   { return nil }
func (a *fakeAudio) Handle()                          {}
func (a *fakeAudio) Close() error                     { return nil }

func newTestEngine() (*Engine, *fakeHardware, *fakeAudio) {
	hw := newFakeHardware()
	au := &fakeAudio{}
	tbl := mapping.NewTable(nil)
	reg := track.NewRegistry(false)
	cfg := settings.Default()
	e := New(cfg, hw, tbl, reg, au, nil, nil)
	return e, hw, au
}

func TestFallbackTickMatchesSyntheticProfile(t *testing.T) {
	e, hw, au := newTestEngine()
	hw.presence = hwio.Presence{} // no co-processor
	e.Init(context.Background())

	e.Poll(context.Background())

	scratch := au.Input(audio.Scratch)
	beat := au.Input(audio.Beat)
	assert.True(t, scratch.Touched)
	assert.Equal(t, 0.5, scratch.Crossfader)
	assert.Equal(t, 0.0, beat.Crossfader)
	assert.True(t, beat.JustPlay)
	assert.Equal(t, 1.0, beat.PitchNote)
}

func TestSC500VariantDetectionDisablesADCAndButtons(t *testing.T) {
	e, hw, _ := newTestEngine()
	hw.presence = hwio.Presence{MMapGPIO: true}
	hw.pins[[2]uint8{sc500Port, sc500Pin}] = true

	e.Init(context.Background())

	assert.True(t, e.Settings.DisableVolumeADC)
	assert.True(t, e.Settings.DisablePicButtons)
}

func TestApplyFaderHysteresisCutsBelowOpenPointThenTracksClosePoint(t *testing.T) {
	e, _, au := newTestEngine()
	e.Settings.FaderOpenPoint = 10
	e.Settings.FaderClosePoint = 5
	e.Settings.CutBeats = settings.CutBeatsDeck2 // scratch (deck 1) gets cut

	e.applyFaderHysteresis(hwio.PICReadings{ADC: [4]uint16{0, 0, 0, 3}}) // below open point
	assert.Equal(t, 0.0, au.Input(audio.Scratch).Crossfader)

	au.Input(audio.Scratch).Crossfader = 1.0
	e.faderOpen[1] = false
	e.applyFaderHysteresis(hwio.PICReadings{ADC: [4]uint16{0, 0, 0, 12}}) // crosses open point
	assert.True(t, e.faderOpen[1])

	// Once open, it takes dropping below the lower close point to cut again.
	e.applyFaderHysteresis(hwio.PICReadings{ADC: [4]uint16{0, 0, 0, 7}})
	assert.True(t, e.faderOpen[1])
	e.applyFaderHysteresis(hwio.PICReadings{ADC: [4]uint16{0, 0, 0, 4}})
	assert.False(t, e.faderOpen[1])
}

// Scenario F (spec §8): files_present=true on scratch deck, press B0 for 2
// ticks then release within hold_time -> exactly one scratch.prev_file.
func TestOnboardScenarioFInstantPrevFile(t *testing.T) {
	e, _, _ := newTestEngine()
	e.Decks[1].Nav.FilesPresent = true
	before := e.Decks[1].Nav.FileIndex

	ctx := context.Background()
	// The first-ever press is the boot chime; let it settle back to None.
	e.onboard.Tick([4]bool{true, false, false, false}, e.Settings.HoldTime, false)
	for i := 0; i < 21; i++ {
		e.onboard.Tick([4]bool{}, e.Settings.HoldTime, false)
	}

	applyOnboardAction(ctx, e, e.onboard.Tick([4]bool{true, false, false, false}, e.Settings.HoldTime, false))
	applyOnboardAction(ctx, e, e.onboard.Tick([4]bool{true, false, false, false}, e.Settings.HoldTime, false))
	applyOnboardAction(ctx, e, e.onboard.Tick([4]bool{false, false, false, false}, e.Settings.HoldTime, false))
	applyOnboardAction(ctx, e, e.onboard.Tick([4]bool{false, false, false, false}, e.Settings.HoldTime, false))

	require.Equal(t, before-1, e.Decks[1].Nav.FileIndex)
}

// Scenario G (spec §8): B0 held past hold_time -> exactly one
// scratch.prev_folder; >=20 all-released ticks returns to None.
func TestOnboardScenarioGHeldPrevFolder(t *testing.T) {
	e, _, _ := newTestEngine()
	e.Decks[1].Nav.FilesPresent = true
	beforeFolder := e.Decks[1].Nav.FolderIndex

	ctx := context.Background()
	// The first-ever press is the boot chime; let it settle back to None.
	e.onboard.Tick([4]bool{true, false, false, false}, e.Settings.HoldTime, false)
	for i := 0; i < 21; i++ {
		e.onboard.Tick([4]bool{}, e.Settings.HoldTime, false)
	}

	// ActingHeld is reached on the (HoldTime+2)th pressed tick and acts on
	// the next one, using the buttons still held then.
	for i := 0; i < e.Settings.HoldTime+3; i++ {
		applyOnboardAction(ctx, e, e.onboard.Tick([4]bool{true, false, false, false}, e.Settings.HoldTime, false))
	}
	applyOnboardAction(ctx, e, e.onboard.Tick([4]bool{false, false, false, false}, e.Settings.HoldTime, false))

	assert.Equal(t, beforeFolder-1, e.Decks[1].Nav.FolderIndex)
}

type fakeRig struct {
	posted []*track.Track
}

func (r *fakeRig) PostTrack(ctx context.Context, t *track.Track) error {
	r.posted = append(r.posted, t)
	return nil
}

// A spawned import must reach the coordination thread's poll set, or it
// never completes and its importer subprocess is never reaped.
func TestBootChimeImportIsPostedToRig(t *testing.T) {
	e, _, _ := newTestEngine()
	e.Settings.Importer = "/bin/true"
	rig := &fakeRig{}
	e.SetRig(rig)

	applyOnboardAction(context.Background(), e, buttons.ActionBootChime)

	require.Len(t, rig.posted, 1)
	assert.Same(t, e.Decks[0].Current, rig.posted[0])
}

func TestCrossfaderUpdateClampsToCalibrationBounds(t *testing.T) {
	var c Crossfader
	c.ADCMin, c.ADCMax = 100, 900
	c.Update(50)
	assert.Equal(t, 0.0, c.Position)
	c.Update(950)
	assert.Equal(t, 1.0, c.Position)
	c.Update(500)
	assert.InDelta(t, 0.5, c.Position, 0.01)
}
