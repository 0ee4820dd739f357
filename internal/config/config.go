package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"maxgauge/internal/max170xx"
)

const (
	DefaultPort    = 3000
	DefaultVariant = "max17048"
)

type Config struct {
	// Bus is the periph I2C bus name; empty picks the first one.
	Bus          string `yaml:"bus"`
	Variant      string `yaml:"variant"`
	Port         int    `yaml:"port"`
	PollInterval string `yaml:"poll_interval"`
	TableFile    string `yaml:"table_file"`
}

func Default() *Config {
	return &Config{
		Variant:      DefaultVariant,
		Port:         DefaultPort,
		PollInterval: "5s",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := max170xx.ParseVariant(c.Variant); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range", c.Port)
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	return nil
}

func (c *Config) GaugeVariant() (max170xx.Variant, error) {
	return max170xx.ParseVariant(c.Variant)
}

func (c *Config) Interval() (time.Duration, error) {
	if c.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, errors.Wrap(err, "poll_interval")
	}
	if d < 0 {
		return 0, errors.Errorf("poll_interval %v is negative", d)
	}
	return d, nil
}

// LoadTable reads a YAML list of exactly 64 register values.
func LoadTable(path string) (*max170xx.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading table %q", path)
	}
	var vals []int
	if err := yaml.Unmarshal(data, &vals); err != nil {
		return nil, errors.Wrapf(err, "parsing table %q", path)
	}
	return TableFromInts(vals)
}

func TableFromInts(vals []int) (*max170xx.Table, error) {
	if len(vals) != max170xx.TableLen {
		return nil, errors.Errorf("table has %d entries, want %d", len(vals), max170xx.TableLen)
	}
	var t max170xx.Table
	for i, v := range vals {
		if v < 0 || v > 0xFFFF {
			return nil, errors.Errorf("table entry %d (%d) does not fit in 16 bits", i, v)
		}
		t[i] = uint16(v)
	}
	return &t, nil
}
