package max170xx

// MAX17048/MAX17058 (1 cell, 78.125 uV/LSB) and MAX17049/MAX17059 (2 cells,
// 156.25 uV/LSB). All four take a custom table; only the 48/49 have CRATE.

const (
	lsbX8 = 5.0 / 64000.0
	lsbX9 = 5.0 / 32000.0

	crateLSB = 0.208 // %/h
)

type Max17048 struct{ dev }

type Max17049 struct{ dev }

type Max17058 struct{ dev }

type Max17059 struct{ dev }

func NewMax17048(bus Bus) *Max17048 { return &Max17048{dev{bus: bus}} }

func NewMax17049(bus Bus) *Max17049 { return &Max17049{dev{bus: bus}} }

func NewMax17058(bus Bus) *Max17058 { return &Max17058{dev{bus: bus}} }

func NewMax17059(bus Bus) *Max17059 { return &Max17059{dev{bus: bus}} }

func (d *dev) socFrac() (float32, error) {
	raw, err := d.readRegister(RegSOC)
	if err != nil {
		return 0, err
	}
	return float32(raw) / 256.0, nil
}

func (d *dev) vcell16(lsb float32) (float32, error) {
	raw, err := d.readRegister(RegVCELL)
	if err != nil {
		return 0, err
	}
	return float32(raw) * lsb, nil
}

func (d *dev) chargeRate() (float32, error) {
	raw, err := d.readRegister(RegCRATE)
	if err != nil {
		return 0, err
	}
	return float32(int16(raw)) * crateLSB, nil
}

func (m *Max17048) SOC() (float32, error) { return m.socFrac() }
func (m *Max17048) Voltage() (float32, error) { return m.vcell16(lsbX8) }
func (m *Max17048) Reset() error { return m.writeRegister(RegCOMMAND, CmdResetB) }
func (m *Max17048) Version() (uint16, error) { return m.version() }
func (m *Max17048) Quickstart() error { return m.quickstart() }
func (m *Max17048) Destroy() Bus { return m.bus }
func (m *Max17048) ChargeRate() (float32, error) { return m.chargeRate() }
func (m *Max17048) SetTable(t *Table) error { return m.setTable(t) }

func (m *Max17049) SOC() (float32, error) { return m.socFrac() }
func (m *Max17049) Voltage() (float32, error) { return m.vcell16(lsbX9) }
func (m *Max17049) Reset() error { return m.writeRegister(RegCOMMAND, CmdResetB) }
func (m *Max17049) Version() (uint16, error) { return m.version() }
func (m *Max17049) Quickstart() error { return m.quickstart() }
func (m *Max17049) Destroy() Bus { return m.bus }
func (m *Max17049) ChargeRate() (float32, error) { return m.chargeRate() }
func (m *Max17049) SetTable(t *Table) error { return m.setTable(t) }

func (m *Max17058) SOC() (float32, error) { return m.socFrac() }
func (m *Max17058) Voltage() (float32, error) { return m.vcell16(lsbX8) }
func (m *Max17058) Reset() error { return m.writeRegister(RegCOMMAND, CmdResetB) }
func (m *Max17058) Version() (uint16, error) { return m.version() }
func (m *Max17058) Quickstart() error { return m.quickstart() }
func (m *Max17058) Destroy() Bus { return m.bus }
func (m *Max17058) SetTable(t *Table) error { return m.setTable(t) }

func (m *Max17059) SOC() (float32, error) { return m.socFrac() }
func (m *Max17059) Voltage() (float32, error) { return m.vcell16(lsbX9) }
func (m *Max17059) Reset() error { return m.writeRegister(RegCOMMAND, CmdResetB) }
func (m *Max17059) Version() (uint16, error) { return m.version() }
func (m *Max17059) Quickstart() error { return m.quickstart() }
func (m *Max17059) Destroy() Bus { return m.bus }
func (m *Max17059) SetTable(t *Table) error { return m.setTable(t) }

var (
	_ FuelGauge       = (*Max17043)(nil)
	_ FuelGauge       = (*Max17044)(nil)
	_ FuelGauge       = (*Max17048)(nil)
	_ FuelGauge       = (*Max17049)(nil)
	_ FuelGauge       = (*Max17058)(nil)
	_ FuelGauge       = (*Max17059)(nil)
	_ ChargeRater     = (*Max17048)(nil)
	_ ChargeRater     = (*Max17049)(nil)
	_ TableProgrammer = (*Max17048)(nil)
	_ TableProgrammer = (*Max17049)(nil)
	_ TableProgrammer = (*Max17058)(nil)
	_ TableProgrammer = (*Max17059)(nil)
)
