package engine

import "github.com/lodsb/turntable-core/internal/settings"

// settingsAdapter satisfies mapping.Settings over the shared settings
// record without mapping needing to import the settings package directly.
type settingsAdapter struct {
	s *settings.Settings
}

func (a settingsAdapter) DebounceTime() int { return a.s.DebounceTime }
func (a settingsAdapter) HoldTime() int     { return a.s.HoldTime }
