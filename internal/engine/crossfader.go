package engine

// Crossfader is spec §3's "Calibration bounds (adc_min, adc_max) and a
// current normalized position in [0,1]".
type Crossfader struct {
	ADCMin, ADCMax int
	Position       float64
}

// Update recomputes Position from a raw ADC reading using the calibration
// bounds (spec §4.G "The crossfader (adc[0]) updates the crossfader
// position via its calibration bounds").
func (c *Crossfader) Update(adc uint16) {
	span := c.ADCMax - c.ADCMin
	if span <= 0 {
		c.Position = 0
		return
	}
	v := (float64(int(adc)-c.ADCMin)) / float64(span)
	c.Position = clamp01(v)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// faderHysteresis tracks one channel's open/close latch (spec §4.G "ADC →
// fader mapping"): the cut-in threshold is openPoint until the channel
// opens, then closePoint until it closes again.
func faderHysteresis(wasOpen bool, value, openPoint, closePoint int) (isOpen bool) {
	if wasOpen {
		return value >= closePoint
	}
	return value >= openPoint
}
