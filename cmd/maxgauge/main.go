package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"maxgauge/internal/config"
	"maxgauge/internal/max170xx"
	"maxgauge/internal/monitor"
	"maxgauge/internal/server"
)

func main() {
	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := zl.Sugar()
	defer logger.Sync() //nolint:errcheck

	app := &cli.App{
		Name:  "maxgauge",
		Usage: "read and control MAX170xx fuel gauges",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "bus", Usage: "I2C bus name (overrides config)"},
			&cli.StringFlag{Name: "variant", Usage: "gauge variant, e.g. max17048 (overrides config)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "print SOC, voltage, version and charge rate",
				Action: withGauge(logger, status),
			},
			{
				Name:  "quickstart",
				Usage: "restart fuel-gauge calculations",
				Action: withGauge(logger, func(c *cli.Context, _ *config.Config, g max170xx.FuelGauge) error {
					return g.Quickstart()
				}),
			},
			{
				Name:  "reset",
				Usage: "power-on reset the gauge",
				Action: withGauge(logger, func(c *cli.Context, _ *config.Config, g max170xx.FuelGauge) error {
					return g.Reset()
				}),
			},
			{
				Name:      "load-table",
				Usage:     "program a 64-entry characterization table",
				ArgsUsage: "TABLE.yaml",
				Action:    withGauge(logger, loadTable),
			},
			{
				Name:  "serve",
				Usage: "poll the gauge and serve its status over HTTP",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "listen port (overrides config)"},
				},
				Action: func(c *cli.Context) error { return serve(c, logger) },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("bus") {
		cfg.Bus = c.String("bus")
	}
	if c.IsSet("variant") {
		cfg.Variant = c.String("variant")
	}
	return cfg, cfg.Validate()
}

func openGauge(cfg *config.Config) (max170xx.FuelGauge, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "host init")
	}
	v, err := cfg.GaugeVariant()
	if err != nil {
		return nil, nil, err
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open I2C")
	}
	g, err := max170xx.New(v, bus)
	if err != nil {
		return nil, nil, multierr.Append(err, bus.Close())
	}
	return g, bus, nil
}

type gaugeAction func(c *cli.Context, cfg *config.Config, g max170xx.FuelGauge) error

func withGauge(logger *zap.SugaredLogger, fn gaugeAction) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		g, bus, err := openGauge(cfg)
		if err != nil {
			return err
		}
		defer func() {
			g.Destroy()
			err = multierr.Append(err, bus.Close())
		}()
		logger.Debugw("gauge opened", "variant", cfg.Variant, "bus", bus.String(), "addr", fmt.Sprintf("0x%X", max170xx.Addr))
		if err := fn(c, cfg, g); err != nil {
			return errors.Wrap(err, c.Command.Name)
		}
		return nil
	}
}

func status(c *cli.Context, _ *config.Config, g max170xx.FuelGauge) error {
	soc, err := g.SOC()
	if err != nil {
		return err
	}
	v, err := g.Voltage()
	if err != nil {
		return err
	}
	ver, err := g.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Charge:  %.2f%%\nVoltage: %.3fV\nVersion: 0x%04X\n", soc, v, ver)
	if cr, ok := g.(max170xx.ChargeRater); ok {
		rate, err := cr.ChargeRate()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Rate:    %.2f%%/h\n", rate)
	}
	return nil
}

func loadTable(c *cli.Context, cfg *config.Config, g max170xx.FuelGauge) error {
	path := c.Args().First()
	if path == "" {
		path = cfg.TableFile
	}
	if path == "" {
		return errors.New("no table file given")
	}
	tp, ok := g.(max170xx.TableProgrammer)
	if !ok {
		return errors.Errorf("%s has no table registers", cfg.Variant)
	}
	tbl, err := config.LoadTable(path)
	if err != nil {
		return err
	}
	// A failure here can leave the table unlocked; rerun the command.
	return tp.SetTable(tbl)
}

func serve(c *cli.Context, logger *zap.SugaredLogger) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	interval, err := cfg.Interval()
	if err != nil {
		return err
	}
	g, bus, err := openGauge(cfg)
	if err != nil {
		return err
	}
	logger.Infof("Hardware Initialized: %s (Addr: 0x%X) on %s", cfg.Variant, max170xx.Addr, bus)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(g, monitor.WithInterval(interval), monitor.WithLogger(logger.Named("monitor")))
	mon.Start(ctx)
	defer func() {
		mon.Close()
		err = multierr.Append(err, bus.Close())
	}()

	if cfg.TableFile != "" {
		tbl, err := config.LoadTable(cfg.TableFile)
		if err != nil {
			return err
		}
		if err := mon.SetTable(ctx, tbl); err != nil {
			logger.Errorw("Failed to load characterization table", "error", err)
		}
	}

	return server.Run(ctx, cfg.Port, mon, logger.Named("server"))
}
