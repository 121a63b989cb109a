package hwio

import (
	"context"
	"encoding/binary"

	"github.com/lodsb/turntable-core/internal/logx"
	"golang.org/x/sys/unix"
)

const (
	as5600Addr    = 0x36
	as5600AngleH  = 0x0C
	as5600AngleL  = 0x0D

	picAddr = 0x69

	mcp23017Addr  = 0x20
	mcpIODIRA     = 0x00
	mcpIODIRB     = 0x01
	mcpGPPUA      = 0x0C
	mcpGPPUB      = 0x0D
	mcpGPIOA      = 0x12
	mcpGPIOB      = 0x13

	a13GPIOBase  = 0x01C20800
	a13MapLength = 65536
	a13PortBytes = 0x24
)

// LinuxBackend is the production Hardware implementation: AS5600 encoder
// and PIC co-processor over I2C, MCP23017 expander (port 0) and A13
// memory-mapped SoC GPIO (ports 1-6) (spec §6 "Sensors (input)").
type LinuxBackend struct {
	log *logx.Logger

	encoder i2cDevice
	pic     i2cDevice
	mcp     i2cDevice

	memFD    int
	mem      []byte // full mmap'd page containing the A13 GPIO registers
	regBase  uint32  // offset of the register window within mem

	presence Presence
}

// NewLinuxBackend constructs an unopened backend; call Init to bring up
// the buses.
func NewLinuxBackend(log *logx.Logger) *LinuxBackend {
	return &LinuxBackend{log: log}
}

func (b *LinuxBackend) Init(ctx context.Context) Presence {
	if d, err := openI2C("/dev/i2c-0", as5600Addr); err != nil {
		b.warn("encoder (AS5600) absent: %v", err)
	} else {
		b.encoder = d
		b.presence.Encoder = true
	}

	if d, err := openI2C("/dev/i2c-2", picAddr); err != nil {
		b.warn("input co-processor (PIC) absent: %v", err)
	} else {
		b.pic = d
		b.presence.PIC = true
	}

	if d, err := openI2C("/dev/i2c-1", mcp23017Addr); err != nil {
		b.warn("GPIO expander (MCP23017) absent: %v", err)
	} else if err := d.writeReg(mcpGPPUA, 0xFF); err != nil {
		b.warn("GPIO expander (MCP23017) not responding: %v", err)
		_ = d.close()
	} else {
		b.mcp = d
		b.presence.Expander = true
		_ = d.writeReg(mcpIODIRA, 0xFF)
		_ = d.writeReg(mcpIODIRB, 0xFF)
		_ = d.writeReg(mcpGPPUA, 0xFF)
		_ = d.writeReg(mcpGPPUB, 0xFF)
	}

	if mem, fd, err := mmapGPIO(); err != nil {
		b.warn("A13 GPIO mmap failed: %v", err)
	} else {
		b.mem = mem
		b.memFD = fd
		b.regBase = a13GPIOBase & 0xFFFF
		b.presence.MMapGPIO = true
	}

	return b.presence
}

func (b *LinuxBackend) warn(format string, args ...any) {
	if b.log != nil {
		b.log.Warnf(format, args...)
	}
}

func (b *LinuxBackend) Presence() Presence { return b.presence }

func (b *LinuxBackend) ReadAngle(ctx context.Context) uint16 {
	if !b.presence.Encoder {
		return 0
	}
	high, err1 := b.encoder.readReg(as5600AngleH)
	low, err2 := b.encoder.readReg(as5600AngleL)
	if err1 != nil || err2 != nil {
		return 0
	}
	return (uint16(high&0x0F) << 8) | uint16(low)
}

func (b *LinuxBackend) ReadPIC(ctx context.Context) PICReadings {
	var r PICReadings
	if !b.presence.PIC {
		return r
	}

	lo := [4]uint8{}
	for i := range lo {
		v, err := b.pic.readReg(uint8(i))
		if err != nil {
			return PICReadings{}
		}
		lo[i] = v
	}
	hi, err := b.pic.readReg(0x04)
	if err != nil {
		return PICReadings{}
	}
	r.ADC[0] = uint16(lo[0]) | (uint16(hi&0x03) << 8)
	r.ADC[1] = uint16(lo[1]) | (uint16(hi&0x0C) << 6)
	r.ADC[2] = uint16(lo[2]) | (uint16(hi&0x30) << 4)
	r.ADC[3] = uint16(lo[3]) | (uint16(hi&0xC0) << 2)

	status, err := b.pic.readReg(0x05)
	if err != nil {
		return PICReadings{}
	}
	r.Buttons[0] = status&0x01 == 0
	r.Buttons[1] = (status>>1)&0x01 == 0
	r.Buttons[2] = (status>>2)&0x01 == 0
	r.Buttons[3] = (status>>3)&0x01 == 0
	r.CapTouched = (status>>4)&0x01 != 0
	return r
}

// ConfigurePin dispatches to the MCP23017 expander for port 0, or the A13
// mmap registers for ports 1-6. The output flag is honoured only on port 0;
// pins on ports 1-6 are always configured as inputs with the given pull
// mode, so an output request there is not driven low.
func (b *LinuxBackend) ConfigurePin(ctx context.Context, port, pin uint8, output, pullup bool) {
	if port == 0 {
		if !b.presence.Expander || pin >= 16 {
			return
		}
		b.mcpSetDirection(pin, !output)
		b.mcpSetPullup(pin, pullup)
		return
	}
	if !b.presence.MMapGPIO || port > 6 || pin > 27 {
		return
	}
	b.a13ConfigureInput(port, pin, pullup)
}

func (b *LinuxBackend) ReadPin(ctx context.Context, port, pin uint8) bool {
	if port == 0 {
		return (b.readMCPAll() >> pin) & 0x01 != 0
	}
	return (b.ReadPort(ctx, port) >> pin) & 0x01 != 0
}

func (b *LinuxBackend) ReadPort(ctx context.Context, port uint8) uint32 {
	if port == 0 {
		return uint32(b.readMCPAll())
	}
	if !b.presence.MMapGPIO || port > 6 {
		return 0
	}
	off := b.regBase + uint32(port)*a13PortBytes + 0x10
	return binary.LittleEndian.Uint32(b.mem[off:]) ^ 0xFFFFFFFF
}

func (b *LinuxBackend) readMCPAll() uint16 {
	if !b.presence.Expander {
		return 0
	}
	a, err1 := b.mcp.readReg(mcpGPIOA)
	bb, err2 := b.mcp.readReg(mcpGPIOB)
	if err1 != nil || err2 != nil {
		return 0
	}
	return (uint16(bb)<<8 | uint16(a)) ^ 0xFFFF
}

func (b *LinuxBackend) mcpSetDirection(pin uint8, input bool) {
	reg := uint8(mcpIODIRA)
	if pin >= 8 {
		reg = mcpIODIRB
	}
	bit := pin % 8
	cur, err := b.mcp.readReg(reg)
	if err != nil {
		return
	}
	if input {
		cur |= 1 << bit
	} else {
		cur &^= 1 << bit
	}
	_ = b.mcp.writeReg(reg, cur)
}

func (b *LinuxBackend) mcpSetPullup(pin uint8, pullup bool) {
	reg := uint8(mcpGPPUA)
	if pin >= 8 {
		reg = mcpGPPUB
	}
	bit := pin % 8
	cur, err := b.mcp.readReg(reg)
	if err != nil {
		return
	}
	if pullup {
		cur |= 1 << bit
	} else {
		cur &^= 1 << bit
	}
	_ = b.mcp.writeReg(reg, cur)
}

// a13ConfigureInput sets pin as an input with the given pull mode, per the
// A13's 4-bit function fields (4 per 32-bit config register) and 2-bit
// pull fields (16 per 32-bit pull register).
func (b *LinuxBackend) a13ConfigureInput(port, pin uint8, pullup bool) {
	portOff := b.regBase + uint32(port)*a13PortBytes
	configRegIdx := uint32(pin) >> 3
	configShift := (uint32(pin) % 8) * 4
	pullRegIdx := uint32(pin) >> 4
	pullShift := (uint32(pin) % 16) * 2

	configOff := portOff + configRegIdx*4
	pullOff := portOff + 0x1C + pullRegIdx*4

	cfg := binary.LittleEndian.Uint32(b.mem[configOff:])
	cfg &^= 0xF << configShift
	binary.LittleEndian.PutUint32(b.mem[configOff:], cfg)

	pullVal := uint32(0)
	if pullup {
		pullVal = 1
	}
	pull := binary.LittleEndian.Uint32(b.mem[pullOff:])
	pull = (pull &^ (0x3 << pullShift)) | (pullVal << pullShift)
	binary.LittleEndian.PutUint32(b.mem[pullOff:], pull)
}

func mmapGPIO() ([]byte, int, error) {
	fd, err := unix.Open("/dev/mem", unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, 0, err
	}
	mem, err := unix.Mmap(fd, a13GPIOBase&0xFFFF0000, a13MapLength,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, 0, err
	}
	return mem, fd, nil
}

func (b *LinuxBackend) Close() error {
	_ = b.encoder.close()
	_ = b.pic.close()
	_ = b.mcp.close()
	if b.mem != nil {
		_ = unix.Munmap(b.mem)
	}
	if b.memFD != 0 {
		_ = unix.Close(b.memFD)
	}
	return nil
}
