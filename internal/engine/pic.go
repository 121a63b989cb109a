package engine

import (
	"context"

	"github.com/lodsb/turntable-core/internal/audio"
	"github.com/lodsb/turntable-core/internal/hwio"
)

// adcCrossfader, adcFader0, adcFader1 index hwio.PICReadings.ADC (spec
// §4.G "fader0 = adc[2]/1024, fader1 = adc[3]/1024", "crossfader (adc[0])").
const (
	adcCrossfader = 0
	adcFader0     = 2
	adcFader1     = 3
	adcFullScale  = 1024
)

// lastPIC caches the most recent co-processor snapshot for the encoder
// engine's cap_touched input, which is read at full tick rate while the
// co-processor itself is only polled every picPollDecimation ticks.
func (e *Engine) pollPIC(ctx context.Context) {
	r := e.hw.ReadPIC(ctx)
	e.lastPIC = r

	if !e.Settings.DisableVolumeADC {
		e.Crossfader.Update(r.ADC[adcCrossfader])
		e.applyFaderHysteresis(r)
	}

	if !e.Settings.DisablePicButtons {
		e.dispatchOnboard(ctx, r.Buttons)
	}
}

// applyFaderHysteresis evaluates the open/close hysteresis on the fader
// ADCs themselves (adc[2]/adc[3]), per spec §4.G's literal "fader0 =
// adc[2]/1024, fader1 = adc[3]/1024". The original's two-cut-switch
// scheme (adc[0]/adc[1] gating opposite decks depending on cut_beats)
// models a second, physically separate pair of cut switches this board
// doesn't carry; adc[0] stays reserved for the crossfader position.
func (e *Engine) applyFaderHysteresis(r hwio.PICReadings) {
	raw0, raw1 := int(r.ADC[adcFader0]), int(r.ADC[adcFader1])
	e.faderOpen[0] = faderHysteresis(e.faderOpen[0], raw0, e.Settings.FaderOpenPoint, e.Settings.FaderClosePoint)
	e.faderOpen[1] = faderHysteresis(e.faderOpen[1], raw1, e.Settings.FaderOpenPoint, e.Settings.FaderClosePoint)

	fader0 := clamp01(float64(raw0) / adcFullScale)
	fader1 := clamp01(float64(raw1) / adcFullScale)

	cutDeck := int(e.Settings.CutBeats) - 1 // CutBeatsDeck1=1 -> index 0, CutBeatsDeck2=2 -> index 1
	if e.au == nil {
		return
	}
	beat := e.au.Input(audio.Beat)
	scratch := e.au.Input(audio.Scratch)
	beat.Crossfader = fader0
	scratch.Crossfader = fader1

	if cutDeck == 0 && !e.faderOpen[0] {
		beat.Crossfader = 0
	}
	if cutDeck == 1 && !e.faderOpen[1] {
		scratch.Crossfader = 0
	}
}

// dispatchOnboard routes one tick of onboard-button levels through the
// four-button machine and translates its resolved action into facade
// calls (spec §4.E.2).
func (e *Engine) dispatchOnboard(ctx context.Context, buttonsActive [4]bool) {
	action := e.onboard.Tick(buttonsActive, e.Settings.HoldTime, e.Input.PitchMode() != 0)
	applyOnboardAction(ctx, e, action)
}

// runEncoder drives the scratch deck's encoder-tracking engine once per
// tick (spec §4.D "called once per coordination-loop tick"), using the
// most recently polled cap_touched flag and the audio subsystem's
// reported scratch position/motor speed.
func (e *Engine) runEncoder(ctx context.Context) {
	d := e.Decks[audio.Scratch]
	if d.Encoder == nil || e.au == nil {
		return
	}

	angleRaw := e.hw.ReadAngle(ctx)
	scratchIn := e.au.Input(audio.Scratch)
	state := e.au.DeckState(audio.Scratch)

	inputs := scratchencInputsFrom(e, angleRaw, scratchIn, state)
	cfg := encoderConfig(e.Settings)

	upd := tickScratchEncoder(d.Encoder, inputs, cfg)
	applyScratchUpdate(e, upd)
}
