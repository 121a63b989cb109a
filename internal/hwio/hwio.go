// Package hwio presents the sensor surfaces of spec §4.A as pure value
// snapshots, hiding the I2C/MMIO register details behind one interface
// with two implementations: a production Linux backend talking to the
// real AS5600 encoder, PIC co-processor, MCP23017 expander and A13
// memory-mapped GPIO, and a desktop/test backend built on Linux's
// character-device GPIO uAPI for bring-up away from the target board.
package hwio

import "context"

// PICReadings is a value snapshot of the input co-processor: four 10-bit
// ADCs, four buttons (inverted to active-high), and the capacitive touch
// flag (spec §4.A.2).
type PICReadings struct {
	ADC        [4]uint16
	Buttons    [4]bool
	CapTouched bool
}

// Presence reports which hardware surfaces initialised successfully
// (spec §4.A.4). Any surface that failed to open degrades to its
// best-effort zero value rather than propagating an error per call.
type Presence struct {
	Encoder  bool
	PIC      bool
	Expander bool // MCP23017 I2C GPIO expander
	MMapGPIO bool // A13 memory-mapped SoC GPIO
}

// Hardware is the capability set both backends implement (spec §9
// "Polymorphism": "an interface with a fixed method set").
type Hardware interface {
	// Init opens the underlying buses/devices, logging a warning and
	// flipping the corresponding Presence flag on any failure rather
	// than returning an error (spec §4.A "Error policy").
	Init(ctx context.Context) Presence
	Presence() Presence

	// ReadAngle returns the 12-bit encoder angle, or 0 if absent.
	ReadAngle(ctx context.Context) uint16
	// ReadPIC returns the co-processor snapshot, or the zero value if
	// absent.
	ReadPIC(ctx context.Context) PICReadings

	// ConfigurePin sets a GPIO pin's direction and pull mode at init.
	ConfigurePin(ctx context.Context, port, pin uint8, output, pullup bool)
	// ReadPin returns a single pin's active-high level.
	ReadPin(ctx context.Context, port, pin uint8) bool
	// ReadPort bulk-reads all pins of one port, active-high.
	ReadPort(ctx context.Context, port uint8) uint32

	// Close releases any open buses/mappings.
	Close() error
}
