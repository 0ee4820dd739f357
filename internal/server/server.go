package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"maxgauge/internal/config"
	"maxgauge/internal/max170xx"
	"maxgauge/internal/monitor"
)

type GaugeClient interface {
	Snapshot() monitor.Snapshot
	Quickstart(ctx context.Context) error
	Reset(ctx context.Context) error
	SetTable(ctx context.Context, t *max170xx.Table) error
}

type BatteryResponse struct {
	Level        int      `json:"sensor.battery_level"`
	Voltage      float64  `json:"sensor.battery_voltage"`
	State        string   `json:"sensor.battery_state"`
	IsCharging   bool     `json:"sensor.is_charging"`
	ChargeRate   *float64 `json:"sensor.charge_rate,omitempty"`
	GaugeVersion uint16   `json:"sensor.gauge_version"`
}

const requestTimeout = 5 * time.Second

type Server struct {
	gauge  GaugeClient
	logger *zap.SugaredLogger
}

func New(gauge GaugeClient, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{gauge: gauge, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.rootHandler)
	mux.HandleFunc("POST /quickstart", s.quickstartHandler)
	mux.HandleFunc("POST /reset", s.resetHandler)
	mux.HandleFunc("PUT /table", s.tableHandler)
	return mux
}

func Run(ctx context.Context, port int, gauge GaugeClient, logger *zap.SugaredLogger) error {
	s := New(gauge, logger)

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnw("shutdown", "error", err)
		}
	}()

	s.logger.Infof("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.gauge.Snapshot()
	if snap.Err != nil {
		s.logger.Warnw("Error reading gauge", "error", snap.Err)
	}

	resp := BatteryResponse{
		Level:        int(snap.SOC),
		Voltage:      float64(snap.Voltage),
		State:        batteryState(snap),
		GaugeVersion: snap.Version,
	}
	if snap.ChargeRate != nil {
		rate := float64(*snap.ChargeRate)
		resp.ChargeRate = &rate
	}
	resp.IsCharging = (resp.State == "Charging")

	writeJSON(w, http.StatusOK, resp)
}

// batteryState derives the state from the sign of the charge rate. Gauges
// without CRATE report "Unknown".
func batteryState(snap monitor.Snapshot) string {
	if snap.Updated.IsZero() || snap.ChargeRate == nil {
		return "Unknown"
	}
	rate := *snap.ChargeRate
	switch {
	case rate > 0:
		return "Charging"
	case snap.SOC >= 100:
		return "Full"
	case rate < 0:
		return "Discharging"
	default:
		return "Not Charging"
	}
}

func (s *Server) quickstartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	s.control(w, "quickstart", s.gauge.Quickstart(ctx))
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	s.control(w, "reset", s.gauge.Reset(ctx))
}

func (s *Server) tableHandler(w http.ResponseWriter, r *http.Request) {
	var vals []int
	if err := json.NewDecoder(r.Body).Decode(&vals); err != nil {
		http.Error(w, "table must be a JSON array of integers", http.StatusBadRequest)
		return
	}
	tbl, err := config.TableFromInts(vals)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	s.control(w, "set table", s.gauge.SetTable(ctx, tbl))
}

func (s *Server) control(w http.ResponseWriter, op string, err error) {
	var be *max170xx.BusError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, monitor.ErrUnsupported):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	case errors.As(err, &be):
		s.logger.Errorw("gauge command failed", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.logger.Errorw("gauge command failed", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
