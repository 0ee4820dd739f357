package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"maxgauge/internal/max170xx"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	test.That(t, os.WriteFile(p, []byte(body), 0o600), test.ShouldBeNil)
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Port, test.ShouldEqual, DefaultPort)
	v, err := cfg.GaugeVariant()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, max170xx.VariantMax17048)
	d, err := cfg.Interval()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldEqual, 5*time.Second)
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, "gauge.yaml", `
bus: "/dev/i2c-1"
variant: MAX17043
port: 8080
poll_interval: 250ms
`)
	cfg, err := Load(p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Bus, test.ShouldEqual, "/dev/i2c-1")
	test.That(t, cfg.Port, test.ShouldEqual, 8080)
	v, err := cfg.GaugeVariant()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, max170xx.VariantMax17043)
	d, err := cfg.Interval()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldEqual, 250*time.Millisecond)
}

func TestLoadInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"variant":  "variant: max99999\n",
		"port":     "port: 70000\n",
		"interval": "poll_interval: soon\n",
		"yaml":     "port: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", body))
			test.That(t, err, test.ShouldNotBeNil)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadTable(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < max170xx.TableLen; i++ {
		sb.WriteString("- ")
		sb.WriteString(strings.Repeat("1", 1+i%4))
		sb.WriteString("\n")
	}
	tbl, err := LoadTable(writeFile(t, "table.yaml", sb.String()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tbl[0], test.ShouldEqual, uint16(1))
	test.That(t, tbl[3], test.ShouldEqual, uint16(1111))

	tbl, err = LoadTable(writeFile(t, "hex.yaml", "["+strings.Repeat("0xFFFF, ", 63)+"0x0000]"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tbl[0], test.ShouldEqual, uint16(0xFFFF))
	test.That(t, tbl[63], test.ShouldEqual, uint16(0))
}

func TestTableFromInts(t *testing.T) {
	_, err := TableFromInts(make([]int, 63))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "63 entries")

	vals := make([]int, 64)
	vals[10] = 0x10000
	_, err = TableFromInts(vals)
	test.That(t, err, test.ShouldNotBeNil)

	vals[10] = -1
	_, err = TableFromInts(vals)
	test.That(t, err, test.ShouldNotBeNil)
}
