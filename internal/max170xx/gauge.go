// Package max170xx drives the MAX17043/44/48/49/58/59 ModelGauge fuel gauges
// over I2C.
//
// Every register is two consecutive byte addresses read and written
// big-endian at the fixed address Addr. The six chips fall in two families:
// the MAX17043/44 encode SOC as an integer byte plus a 1/256 fraction byte,
// the MAX17048/49/58/59 encode it directly in 1/256 % steps and can be loaded
// with a custom characterization table. Only the MAX17048/49 report a
// charge rate.
//
// A gauge owns its Bus for its whole life and is not safe for concurrent
// use. See the monitor package for a goroutine that serializes access.
package max170xx

import (
	"fmt"
	"strings"
)

// FuelGauge is implemented by every supported chip.
type FuelGauge interface {
	// SOC returns the state of charge in percent. It is not clamped.
	SOC() (float32, error)
	// Voltage returns the cell voltage in volts.
	Voltage() (float32, error)
	// Reset issues a power-on reset.
	Reset() error
	// Version returns the raw VERSION register.
	Version() (uint16, error)
	// Quickstart restarts fuel-gauge calculations as on power-up.
	Quickstart() error
	// Destroy hands the bus back to the caller.
	Destroy() Bus
}

// ChargeRater is implemented by the MAX17048 and MAX17049.
type ChargeRater interface {
	// ChargeRate returns the charge (positive) or discharge (negative)
	// rate in percent per hour.
	ChargeRate() (float32, error)
}

// TableProgrammer is implemented by the MAX17048, MAX17049, MAX17058 and
// MAX17059.
type TableProgrammer interface {
	SetTable(t *Table) error
}

// Variant identifies one of the supported chips.
type Variant uint8

const (
	VariantUnknown Variant = iota
	VariantMax17043
	VariantMax17044
	VariantMax17048
	VariantMax17049
	VariantMax17058
	VariantMax17059
)

var variantNames = map[Variant]string{
	VariantMax17043: "max17043",
	VariantMax17044: "max17044",
	VariantMax17048: "max17048",
	VariantMax17049: "max17049",
	VariantMax17058: "max17058",
	VariantMax17059: "max17059",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// HasChargeRate reports whether the chip implements ChargeRater.
func (v Variant) HasChargeRate() bool {
	return v == VariantMax17048 || v == VariantMax17049
}

// HasTable reports whether the chip implements TableProgrammer.
func (v Variant) HasTable() bool {
	switch v {
	case VariantMax17048, VariantMax17049, VariantMax17058, VariantMax17059:
		return true
	default:
		return false
	}
}

// ParseVariant accepts "max17048", "MAX17048" or "17048".
func ParseVariant(name string) (Variant, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(n, "max") {
		n = "max" + n
	}
	for v, s := range variantNames {
		if s == n {
			return v, nil
		}
	}
	return VariantUnknown, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// New builds the driver for v around bus. Use a type assertion to reach
// ChargeRater or TableProgrammer.
func New(v Variant, bus Bus) (FuelGauge, error) {
	switch v {
	case VariantMax17043:
		return NewMax17043(bus), nil
	case VariantMax17044:
		return NewMax17044(bus), nil
	case VariantMax17048:
		return NewMax17048(bus), nil
	case VariantMax17049:
		return NewMax17049(bus), nil
	case VariantMax17058:
		return NewMax17058(bus), nil
	case VariantMax17059:
		return NewMax17059(bus), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
}
