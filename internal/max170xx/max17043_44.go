package max170xx

// MAX17043 (1 cell) and MAX17044 (2 cells). VCELL carries 12 significant bits
// in its top nibbles; one LSB is 1.25 mV on the 43 and 2.5 mV on the 44.

type Max17043 struct{ dev }

type Max17044 struct{ dev }

func NewMax17043(bus Bus) *Max17043 { return &Max17043{dev{bus: bus}} }

func NewMax17044(bus Bus) *Max17044 { return &Max17044{dev{bus: bus}} }

// socIntFrac decodes SOC as an integer high byte plus a 1/256 low byte.
func (d *dev) socIntFrac() (float32, error) {
	raw, err := d.readRegister(RegSOC)
	if err != nil {
		return 0, err
	}
	return float32(raw>>8) + float32(raw&0xFF)/256.0, nil
}

func (d *dev) vcell12(div float32) (float32, error) {
	raw, err := d.readRegister(RegVCELL)
	if err != nil {
		return 0, err
	}
	return float32(raw>>4) / div, nil
}

func (m *Max17043) SOC() (float32, error) { return m.socIntFrac() }
func (m *Max17043) Voltage() (float32, error) { return m.vcell12(800.0) }
func (m *Max17043) Reset() error { return m.writeRegister(RegCOMMAND, CmdResetA) }
func (m *Max17043) Version() (uint16, error) { return m.version() }
func (m *Max17043) Quickstart() error { return m.quickstart() }
func (m *Max17043) Destroy() Bus { return m.bus }

func (m *Max17044) SOC() (float32, error) { return m.socIntFrac() }
func (m *Max17044) Voltage() (float32, error) { return m.vcell12(400.0) }
func (m *Max17044) Reset() error { return m.writeRegister(RegCOMMAND, CmdResetA) }
func (m *Max17044) Version() (uint16, error) { return m.version() }
func (m *Max17044) Quickstart() error { return m.quickstart() }
func (m *Max17044) Destroy() Bus { return m.bus }
