package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maxgauge/internal/max170xx"
	"maxgauge/internal/monitor"
)

type MockGauge struct {
	Snap     monitor.Snapshot
	Err      error
	Table    *max170xx.Table
	Commands []string
}

func (m *MockGauge) Snapshot() monitor.Snapshot { return m.Snap }

func (m *MockGauge) Quickstart(ctx context.Context) error {
	m.Commands = append(m.Commands, "quickstart")
	return m.Err
}

func (m *MockGauge) Reset(ctx context.Context) error {
	m.Commands = append(m.Commands, "reset")
	return m.Err
}

func (m *MockGauge) SetTable(ctx context.Context, t *max170xx.Table) error {
	m.Commands = append(m.Commands, "table")
	m.Table = t
	return m.Err
}

func rate(r float32) *float32 { return &r }

func TestRootHandler(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name           string
		snap           monitor.Snapshot
		expectedState  string
		expectedLevel  int
		expectedVol    float64
		expectedCharge bool
		expectedRate   bool
	}{
		{
			name:           "Charging",
			snap:           monitor.Snapshot{SOC: 55.7, Voltage: 3.5, ChargeRate: rate(4.16), Updated: now},
			expectedState:  "Charging",
			expectedLevel:  55,
			expectedVol:    3.5,
			expectedCharge: true,
			expectedRate:   true,
		},
		{
			name:          "Full Charge",
			snap:          monitor.Snapshot{SOC: 100.2, Voltage: 4.25, ChargeRate: rate(0), Updated: now},
			expectedState: "Full",
			expectedLevel: 100,
			expectedVol:   4.25,
			expectedRate:  true,
		},
		{
			name:          "Discharging",
			snap:          monitor.Snapshot{SOC: 40, Voltage: 3.75, ChargeRate: rate(-0.208), Updated: now},
			expectedState: "Discharging",
			expectedLevel: 40,
			expectedVol:   3.75,
			expectedRate:  true,
		},
		{
			name:          "Not Charging",
			snap:          monitor.Snapshot{SOC: 40, Voltage: 3.75, ChargeRate: rate(0), Updated: now},
			expectedState: "Not Charging",
			expectedLevel: 40,
			expectedVol:   3.75,
			expectedRate:  true,
		},
		{
			name:          "No charge rate register",
			snap:          monitor.Snapshot{SOC: 26.5, Voltage: 0.5, Updated: now},
			expectedState: "Unknown",
			expectedLevel: 26,
			expectedVol:   0.5,
		},
		{
			name:          "Never polled",
			snap:          monitor.Snapshot{Err: errors.New("nack")},
			expectedState: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&MockGauge{Snap: tt.snap}, nil)

			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()

			s.rootHandler(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("Expected status 200, got %d", resp.StatusCode)
			}

			var br BatteryResponse
			if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if br.State != tt.expectedState {
				t.Errorf("Expected State %s, got %s", tt.expectedState, br.State)
			}
			if br.Level != tt.expectedLevel {
				t.Errorf("Expected Level %d, got %d", tt.expectedLevel, br.Level)
			}
			if br.Voltage != tt.expectedVol {
				t.Errorf("Expected Voltage %f, got %f", tt.expectedVol, br.Voltage)
			}
			if br.IsCharging != tt.expectedCharge {
				t.Errorf("Expected IsCharging %v, got %v", tt.expectedCharge, br.IsCharging)
			}
			if (br.ChargeRate != nil) != tt.expectedRate {
				t.Errorf("Expected charge rate present %v, got %v", tt.expectedRate, br.ChargeRate)
			}
		})
	}
}

func TestControlHandlers(t *testing.T) {
	busErr := &max170xx.BusError{Op: "write", Reg: max170xx.RegMODE, Err: errors.New("nack")}
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		err      error
		wantCode int
		wantCmd  string
	}{
		{"quickstart", "POST", "/quickstart", "", nil, http.StatusOK, "quickstart"},
		{"reset", "POST", "/reset", "", nil, http.StatusOK, "reset"},
		{"bus error", "POST", "/reset", "", busErr, http.StatusBadGateway, "reset"},
		{"timeout", "POST", "/quickstart", "", context.DeadlineExceeded, http.StatusServiceUnavailable, "quickstart"},
		{"table", "PUT", "/table", "[" + strings.Repeat("1,", 63) + "2]", nil, http.StatusOK, "table"},
		{"table unsupported", "PUT", "/table", "[" + strings.Repeat("1,", 63) + "2]", monitor.ErrUnsupported, http.StatusNotImplemented, "table"},
		{"table short", "PUT", "/table", "[1,2,3]", nil, http.StatusBadRequest, ""},
		{"table garbage", "PUT", "/table", "{", nil, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &MockGauge{Err: tt.err}
			s := New(g, nil)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d (%s)", tt.wantCode, w.Code, w.Body.String())
			}
			gotCmd := strings.Join(g.Commands, ",")
			if gotCmd != tt.wantCmd {
				t.Errorf("Expected command %q, got %q", tt.wantCmd, gotCmd)
			}
			if tt.wantCmd == "table" && g.Table[63] != 2 {
				t.Errorf("Expected last table entry 2, got %d", g.Table[63])
			}
		})
	}
}
