package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilAndDisabledAreNoops(t *testing.T) {
	var nilMetrics *Metrics
	disabled, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	for _, m := range []*Metrics{nilMetrics, disabled} {
		m.RecordSelection("astar", 1)
		m.RecordTransition("astar", 1, 1, time.Millisecond)
		m.SetFrontierSize(3)
		m.SetDistanceRecords(3)
		m.RecordRunCompleted("exhausted", 10)
		m.RecordTargetReached("astar")
		m.RecordError("internal", "INVALID_HANDLE")

		if m.Registry() != nil {
			t.Error("expected no registry for disabled metrics")
		}
	}

	server, err := disabled.StartMetricsServer()
	if err != nil || server != nil {
		t.Errorf("expected no server for disabled metrics, got %v, %v", server, err)
	}
}

func TestMetricsRecording(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "test"})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RecordSelection("astar2", 3)
	m.RecordSelection("astar2", math.Inf(1))
	m.RecordTransition("astar2", 2, 1, time.Microsecond)
	m.SetFrontierSize(7)
	m.RecordError("internal", "DUPLICATE_STATE")

	if got := testutil.ToFloat64(m.selections.WithLabelValues("astar2", "true")); got != 1 {
		t.Errorf("expected 1 reachable selection, got %v", got)
	}
	if got := testutil.ToFloat64(m.selections.WithLabelValues("astar2", "false")); got != 1 {
		t.Errorf("expected 1 unreachable selection, got %v", got)
	}
	if got := testutil.ToFloat64(m.statesAdded.WithLabelValues("astar2")); got != 2 {
		t.Errorf("expected 2 added states, got %v", got)
	}
	if got := testutil.ToFloat64(m.frontierSize); got != 7 {
		t.Errorf("expected frontier size 7, got %v", got)
	}
	if got := testutil.ToFloat64(m.errorsByCode.WithLabelValues("DUPLICATE_STATE")); got != 1 {
		t.Errorf("expected 1 duplicate error, got %v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "stdout tracing", mutate: func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "stdout"
		}},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "bad exporter", mutate: func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "jaeger"
		}, wantErr: true},
		{name: "bad sampling", mutate: func(c *Config) { c.Tracing.SamplingRate = 2 }, wantErr: true},
		{name: "missing service", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
