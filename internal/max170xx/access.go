package max170xx

import (
	"tinygo.org/x/drivers"
)

// Bus is the transport a gauge talks through. A periph.io i2c.Bus satisfies
// it as-is. Tx with both w and r set must write then read without releasing
// the bus.
type Bus = drivers.I2C

// dev is the register-level view of the chip shared by all variants.
type dev struct {
	bus Bus
}

func (d *dev) readRegister(reg byte) (uint16, error) {
	var r [2]byte
	if err := d.bus.Tx(Addr, []byte{reg}, r[:]); err != nil {
		return 0, &BusError{Op: "read", Reg: reg, Err: err}
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

func (d *dev) writeRegister(reg byte, val uint16) error {
	if err := d.bus.Tx(Addr, []byte{reg, byte(val >> 8), byte(val)}, nil); err != nil {
		return &BusError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (d *dev) writeU8Register(reg, val byte) error {
	if err := d.bus.Tx(Addr, []byte{reg, val}, nil); err != nil {
		return &BusError{Op: "write8", Reg: reg, Err: err}
	}
	return nil
}

// quickstart and version behave the same on every variant.

func (d *dev) quickstart() error {
	return d.writeRegister(RegMODE, CmdQuickStart)
}

func (d *dev) version() (uint16, error) {
	return d.readRegister(RegVERSION)
}

// setTable unlocks the table registers, bursts the 64 entries from the base
// address and locks them again. A failure stops the sequence where it
// happened; nothing is rolled back, so a failed burst leaves the table
// unlocked until the caller runs the whole sequence again.
func (d *dev) setTable(t *Table) error {
	if err := d.writeU8Register(regTableUnlock1, tableKey1); err != nil {
		return err
	}
	if err := d.writeU8Register(regTableUnlock2, tableKey2); err != nil {
		return err
	}
	if err := d.bus.Tx(Addr, t.Bytes(), nil); err != nil {
		return &BusError{Op: "write", Reg: regTableBase, Err: err}
	}
	if err := d.writeU8Register(regTableUnlock1, 0x00); err != nil {
		return err
	}
	return d.writeU8Register(regTableUnlock2, 0x00)
}
