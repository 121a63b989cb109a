package engine

import "github.com/lodsb/turntable-core/internal/audio"

// LogStats emits the once-a-second machine-parsable status line spec §6
// Lifecycle describes: "ADCs, crossfader position, DSP load/peak/xruns,
// encoder angle, touched flag, and button bits".
func (e *Engine) LogStats() {
	if e.log == nil {
		return
	}
	stats := audio.DSPStats{}
	if e.au != nil {
		stats = e.au.Stats()
	}
	scratch := e.Decks[audio.Scratch]
	touched := false
	angle := uint16(0)
	if scratch.Encoder != nil {
		angle = scratch.Encoder.Angle
		if e.au != nil {
			touched = e.au.Input(audio.Scratch).Touched
		}
	}

	e.log.Infof("stats adc=%v crossfader=%.3f dsp_load=%.3f dsp_peak=%.3f xruns=%d angle=%d touched=%v buttons=%v",
		e.lastPIC.ADC, e.Crossfader.Position, stats.Load, stats.Peak, stats.Xruns, angle, touched, e.lastPIC.Buttons)
}
