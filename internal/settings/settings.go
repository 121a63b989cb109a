// Package settings holds the configuration record the control plane consumes
// but never persists (spec §6, "Settings (consumed, not persisted by the
// core)"). Loading happens once at startup from a YAML document; nothing in
// this package writes the file back out.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CutBeats selects which deck's fader is force-muted below the crossfader
// cut point (spec §4.G).
type CutBeats int

const (
	CutBeatsDeck1 CutBeats = 1
	CutBeatsDeck2 CutBeats = 2
)

// Settings mirrors spec §6 field-for-field. Every field has a workable
// zero-config default set by Default().
type Settings struct {
	SampleRate         int     `yaml:"sample_rate"`
	PeriodSize         int     `yaml:"period_size"`
	BufferPeriodFactor int     `yaml:"buffer_period_factor"`
	PlatterEnabled     bool    `yaml:"platter_enabled"`
	PlatterSpeed       int     `yaml:"platter_speed"`
	JogReverse         bool    `yaml:"jog_reverse"`
	Slippiness         float64 `yaml:"slippiness"`
	BrakeSpeed         float64 `yaml:"brake_speed"`
	InitialVolume      float64 `yaml:"initial_volume"`
	MaxVolume          float64 `yaml:"max_volume"`
	PitchRange         float64 `yaml:"pitch_range"`
	FaderOpenPoint     int     `yaml:"fader_open_point"`
	FaderClosePoint    int     `yaml:"fader_close_point"`
	CutBeats           CutBeats `yaml:"cut_beats"`
	DebounceTime       int     `yaml:"debounce_time"`
	HoldTime           int     `yaml:"hold_time"`
	CrossfaderADCMin   int     `yaml:"crossfader_adc_min"`
	CrossfaderADCMax   int     `yaml:"crossfader_adc_max"`
	DisableVolumeADC   bool    `yaml:"disable_volume_adc"`
	DisablePicButtons  bool    `yaml:"disable_pic_buttons"`
	Importer           string  `yaml:"importer"`
}

// Default returns settings a board can boot with before any config file is
// read, matching the values implied throughout spec.md (4096 ticks/rotation
// at a platter speed that makes one encoder revolution roughly one second of
// audio, a forgiving debounce/hold window, etc).
func Default() Settings {
	return Settings{
		SampleRate:         44100,
		PeriodSize:         1024,
		BufferPeriodFactor: 4,
		PlatterEnabled:     true,
		PlatterSpeed:       4096,
		JogReverse:         false,
		Slippiness:         0.5,
		BrakeSpeed:         4.5,
		InitialVolume:      1.0,
		MaxVolume:          1.0,
		PitchRange:         0.25,
		FaderOpenPoint:     10,
		FaderClosePoint:    5,
		CutBeats:           CutBeatsDeck2,
		DebounceTime:       2,
		HoldTime:           40,
		CrossfaderADCMin:   0,
		CrossfaderADCMax:   1023,
		DisableVolumeADC:   false,
		DisablePicButtons:  false,
		Importer:           "/usr/bin/sc_import",
	}
}

// Load reads a YAML settings document from path, applying it on top of
// Default() so a partial file only overrides what it mentions.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("settings: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("settings: decode %s: %w", path, err)
	}
	return s, nil
}
