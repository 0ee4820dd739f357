// Package monitor runs a fuel gauge on its own goroutine. Every bus exchange
// goes through that goroutine, so callers on other goroutines can share one
// gauge and wait on a context while a request is outstanding.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"maxgauge/internal/max170xx"
)

// DefaultInterval is the poll period used when none is given.
const DefaultInterval = 5 * time.Second

var (
	ErrClosed      = errors.New("monitor: closed")
	ErrUnsupported = errors.New("monitor: operation not supported by this gauge")
)

// Snapshot is the result of the last poll. Fields that failed to read keep
// their previous value; Err holds what went wrong on the last poll.
type Snapshot struct {
	SOC        float32
	Voltage    float32
	Version    uint16
	ChargeRate *float32
	Updated    time.Time
	Err        error
}

type request struct {
	fn  func(max170xx.FuelGauge) error
	res chan error
}

type Monitor struct {
	gauge    max170xx.FuelGauge
	clk      clock.Clock
	interval time.Duration
	logger   *zap.SugaredLogger

	reqs   chan request
	done   chan struct{}
	cancel context.CancelFunc

	mu   sync.RWMutex
	snap Snapshot
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clk = c }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Monitor) { m.logger = l }
}

func New(g max170xx.FuelGauge, opts ...Option) *Monitor {
	m := &Monitor{
		gauge:    g,
		clk:      clock.New(),
		interval: DefaultInterval,
		logger:   zap.NewNop().Sugar(),
		reqs:     make(chan request),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start polls once and then every interval until ctx ends or Close is called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	ticker := m.clk.Ticker(m.interval)
	go func() {
		defer close(m.done)
		defer ticker.Stop()
		m.poll(m.gauge)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.poll(m.gauge)
			case req := <-m.reqs:
				req.res <- req.fn(m.gauge)
			}
		}
	}()
}

// Close stops the worker and hands the bus back.
func (m *Monitor) Close() max170xx.Bus {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	return m.gauge.Destroy()
}

// Do runs fn on the worker goroutine and waits for it. If ctx ends first Do
// returns ctx.Err(); a request already handed to the worker still runs to
// completion.
func (m *Monitor) Do(ctx context.Context, fn func(max170xx.FuelGauge) error) error {
	req := request{fn: fn, res: make(chan error, 1)}
	select {
	case m.reqs <- req:
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Refresh polls now and returns the new snapshot.
func (m *Monitor) Refresh(ctx context.Context) (Snapshot, error) {
	err := m.Do(ctx, func(g max170xx.FuelGauge) error {
		return m.poll(g)
	})
	return m.Snapshot(), err
}

func (m *Monitor) Quickstart(ctx context.Context) error {
	err := m.Do(ctx, func(g max170xx.FuelGauge) error { return g.Quickstart() })
	if err != nil {
		return errors.Wrap(err, "quickstart")
	}
	m.logger.Info("quickstart issued")
	return nil
}

func (m *Monitor) Reset(ctx context.Context) error {
	err := m.Do(ctx, func(g max170xx.FuelGauge) error { return g.Reset() })
	if err != nil {
		return errors.Wrap(err, "reset")
	}
	m.logger.Info("reset issued")
	return nil
}

// SetTable loads a characterization table. On failure the table registers may
// be left unlocked; calling SetTable again relocks them.
func (m *Monitor) SetTable(ctx context.Context, t *max170xx.Table) error {
	err := m.Do(ctx, func(g max170xx.FuelGauge) error {
		tp, ok := g.(max170xx.TableProgrammer)
		if !ok {
			return ErrUnsupported
		}
		return tp.SetTable(t)
	})
	if err != nil {
		return errors.Wrap(err, "set table")
	}
	m.logger.Info("characterization table loaded")
	return nil
}

func (m *Monitor) poll(g max170xx.FuelGauge) error {
	m.mu.RLock()
	next := m.snap
	m.mu.RUnlock()

	var errs error
	if soc, err := g.SOC(); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		next.SOC = soc
	}
	if v, err := g.Voltage(); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		next.Voltage = v
	}
	if ver, err := g.Version(); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		next.Version = ver
	}
	if cr, ok := g.(max170xx.ChargeRater); ok {
		if rate, err := cr.ChargeRate(); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			next.ChargeRate = &rate
		}
	}
	next.Updated = m.clk.Now()
	next.Err = errs

	if errs != nil {
		m.logger.Warnw("gauge poll failed", "error", errs)
	} else {
		m.logger.Debugw("gauge polled", "soc", next.SOC, "voltage", next.Voltage)
	}

	m.mu.Lock()
	m.snap = next
	m.mu.Unlock()
	return errs
}
