package hwio

import (
	"context"
	"fmt"
	"sync"

	"github.com/lodsb/turntable-core/internal/logx"
	"github.com/warthog618/go-gpiocdev"
)

// CdevBackend is the desktop/bring-up Hardware implementation: it has no
// AS5600 encoder or PIC co-processor silicon to talk to, so those surfaces
// stay absent, but it exercises real GPIO lines through the Linux
// character-device uAPI so the button machines and mapping table can be
// driven from a dev board or gpio-sim chip (spec §9 "desktop-fallback
// implementation").
type CdevBackend struct {
	log      *logx.Logger
	chipName string
	presence Presence
	chip     *gpiocdev.Chip

	mu    sync.Mutex
	lines map[pinKey]*gpiocdev.Line
}

type pinKey struct {
	port uint8
	pin  uint8
}

// NewCdevBackend targets the named gpiochip (e.g. "gpiochip0") for every
// configured pin.
func NewCdevBackend(chipName string, log *logx.Logger) *CdevBackend {
	return &CdevBackend{chipName: chipName, log: log, lines: make(map[pinKey]*gpiocdev.Line)}
}

func (b *CdevBackend) Init(ctx context.Context) Presence {
	chip, err := gpiocdev.NewChip(b.chipName)
	if err != nil {
		b.warn("gpio chip %s absent: %v", b.chipName, err)
		return b.presence
	}
	b.chip = chip
	b.presence.MMapGPIO = true // stands in for "GPIO surface present"
	return b.presence
}

func (b *CdevBackend) warn(format string, args ...any) {
	if b.log != nil {
		b.log.Warnf(format, args...)
	}
}

func (b *CdevBackend) Presence() Presence { return b.presence }

// ReadAngle and ReadPIC always report absent: this backend has no sensor
// silicon, only GPIO lines.
func (b *CdevBackend) ReadAngle(ctx context.Context) uint16    { return 0 }
func (b *CdevBackend) ReadPIC(ctx context.Context) PICReadings { return PICReadings{} }

func (b *CdevBackend) offset(port, pin uint8) int {
	return int(port)*32 + int(pin)
}

func (b *CdevBackend) ConfigurePin(ctx context.Context, port, pin uint8, output, pullup bool) {
	if !b.presence.MMapGPIO {
		return
	}
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	if output {
		opts = []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	} else if pullup {
		opts = append(opts, gpiocdev.WithPullUp)
	}

	line, err := gpiocdev.RequestLine(b.chipName, b.offset(port, pin), opts...)
	if err != nil {
		b.warn("requesting %s line %d: %v", b.chipName, b.offset(port, pin), err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.lines[pinKey{port, pin}]; ok {
		_ = old.Close()
	}
	b.lines[pinKey{port, pin}] = line
}

func (b *CdevBackend) ReadPin(ctx context.Context, port, pin uint8) bool {
	b.mu.Lock()
	line, ok := b.lines[pinKey{port, pin}]
	b.mu.Unlock()
	if !ok {
		return false
	}
	v, err := line.Value()
	if err != nil {
		return false
	}
	return v != 0
}

// ReadPort has no bulk-read equivalent in the cdev uAPI per line, so it
// reads each configured pin individually.
func (b *CdevBackend) ReadPort(ctx context.Context, port uint8) uint32 {
	var out uint32
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, line := range b.lines {
		if k.port != port {
			continue
		}
		if v, err := line.Value(); err == nil && v != 0 {
			out |= 1 << k.pin
		}
	}
	return out
}

func (b *CdevBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for _, line := range b.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing gpio line: %w", err)
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing gpio chip: %w", err)
		}
	}
	return firstErr
}
