package hwio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Register-level I/O (real I2C fds, mmap'd SoC registers, gpiocdev chips)
// needs actual hardware or a kernel gpio-sim rig to exercise meaningfully;
// what follows covers the pure logic that doesn't.

func TestI2CDeviceCloseOnZeroValueIsNoop(t *testing.T) {
	var d i2cDevice
	assert.NoError(t, d.close())
}

func TestCdevBackendOffsetIsPortMajor(t *testing.T) {
	b := NewCdevBackend("gpiochip0", nil)
	assert.Equal(t, 0, b.offset(0, 0))
	assert.Equal(t, 5, b.offset(0, 5))
	assert.Equal(t, 32, b.offset(1, 0))
	assert.Equal(t, 37, b.offset(1, 5))
}

func TestCdevBackendReadPinAbsentLineReturnsFalse(t *testing.T) {
	b := NewCdevBackend("gpiochip0", nil)
	assert.False(t, b.ReadPin(nil, 2, 3))
}

func TestCdevBackendReadPortWithNoLinesIsZero(t *testing.T) {
	b := NewCdevBackend("gpiochip0", nil)
	assert.Equal(t, uint32(0), b.ReadPort(nil, 1))
}

func TestCdevBackendConfigurePinNoopBeforeInit(t *testing.T) {
	b := NewCdevBackend("gpiochip0", nil)
	// presence.MMapGPIO is false until Init succeeds, so this must not
	// attempt to dial the (absent, in this test environment) chip.
	b.ConfigurePin(nil, 0, 0, false, true)
	assert.Equal(t, 0, len(b.lines))
}

func TestCdevBackendCloseWithNoChipOrLinesIsNoop(t *testing.T) {
	b := NewCdevBackend("gpiochip0", nil)
	assert.NoError(t, b.Close())
}

func TestLinuxBackendReadersReturnZeroValueWhenAbsent(t *testing.T) {
	b := NewLinuxBackend(nil)
	assert.Equal(t, uint16(0), b.ReadAngle(nil))
	assert.Equal(t, PICReadings{}, b.ReadPIC(nil))
	assert.Equal(t, uint32(0), b.ReadPort(nil, 1))
	assert.False(t, b.ReadPin(nil, 0, 0))
}

func TestLinuxBackendConfigurePinOutOfRangeIsNoop(t *testing.T) {
	b := NewLinuxBackend(nil)
	b.presence.Expander = true
	// pin 16 is out of the MCP23017's 16-line range.
	b.ConfigurePin(nil, 0, 16, false, true)
	b.presence.MMapGPIO = true
	// port 7 and pin 28 are both out of the A13 port/pin range this
	// backend wires (ports 1-6, pins 0-27).
	b.ConfigurePin(nil, 7, 0, false, true)
	b.ConfigurePin(nil, 1, 28, false, true)
}

func TestPresenceZeroValueReportsNothingPresent(t *testing.T) {
	var p Presence
	assert.False(t, p.Encoder)
	assert.False(t, p.PIC)
	assert.False(t, p.Expander)
	assert.False(t, p.MMapGPIO)
}
