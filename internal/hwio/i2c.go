package hwio

import "golang.org/x/sys/unix"

// i2cDevice is a bound I2C slave, opened once and addressed via
// I2C_SLAVE the way the original platform layer does (one fd per
// device rather than per-transaction addressing).
type i2cDevice struct {
	fd   int
	open bool
}

func openI2C(path string, addr uint16) (i2cDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return i2cDevice{}, err
	}
	if err := unix.IoctlSetInt(fd, unix.I2C_SLAVE, int(addr)); err != nil {
		_ = unix.Close(fd)
		return i2cDevice{}, err
	}
	return i2cDevice{fd: fd, open: true}, nil
}

// readReg writes the register address then reads back one byte, mirroring
// i2c_read_reg in the platform layer (no repeated-start, plain two-step
// write/read on the bound fd).
func (d i2cDevice) readReg(reg uint8) (uint8, error) {
	buf := [1]byte{reg}
	if _, err := unix.Write(d.fd, buf[:]); err != nil {
		return 0, err
	}
	if _, err := unix.Read(d.fd, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d i2cDevice) writeReg(reg, value uint8) error {
	buf := [2]byte{reg, value}
	_, err := unix.Write(d.fd, buf[:])
	return err
}

func (d i2cDevice) close() error {
	if !d.open {
		return nil
	}
	return unix.Close(d.fd)
}
