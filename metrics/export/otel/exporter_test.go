package otel

import (
	"maps"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/authcore"
)

// fakeSource serves a mutable snapshot; callers get copies.
type fakeSource struct {
	mu       sync.RWMutex
	counters map[authcore.MetricID]uint64
	latency  []uint64
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authcore.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	snap := authcore.MetricsSnapshot{
		Counters:   maps.Clone(f.counters),
		Histograms: map[authcore.MetricID][]uint64{},
	}
	if snap.Counters == nil {
		snap.Counters = map[authcore.MetricID]uint64{}
	}
	if f.latency != nil {
		snap.Histograms[authcore.MetricValidateLatency] = append([]uint64(nil), f.latency...)
	}
	return snap
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func (f *fakeSource) set(id authcore.MetricID, v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = map[authcore.MetricID]uint64{}
	}
	f.counters[id] = v
}

// newReader registers an exporter for src on a fresh manual reader.
func newReader(t *testing.T, src MetricsSource) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("authcore-test")
	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource: %v", err)
	}
	t.Cleanup(func() {
		if err := exp.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return reader
}

// collect indexes one collection by instrument name.
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(t.Context(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestExporterRejectsNilSource(t *testing.T) {
	meter := sdkmetric.NewMeterProvider().Meter("authcore-test")
	if _, err := NewOTelExporterFromSource(meter, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestExporterRegistersEveryCounter(t *testing.T) {
	got := collect(t, newReader(t, &fakeSource{}))
	for _, name := range []string{
		"authcore_login_success_total",
		"authcore_refresh_success_total",
		"authcore_audit_dropped_total",
		"authcore_validate_latency_seconds_count",
	} {
		if _, ok := got[name]; !ok {
			t.Errorf("%s not exported", name)
		}
	}
}

func TestExporterConcurrentCollect(t *testing.T) {
	src := &fakeSource{latency: []uint64{1, 0, 0, 0, 0, 0, 0, 0}}
	reader := newReader(t, src)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			src.set(authcore.MetricLoginSuccess, uint64(i+1))
			var rm metricdata.ResourceMetrics
			_ = reader.Collect(t.Context(), &rm)
		})
	}
	wg.Wait()
}

func TestExporterObservesCounterValues(t *testing.T) {
	src := &fakeSource{
		counters: map[authcore.MetricID]uint64{authcore.MetricRefreshReplayRejected: 5},
		dropped:  4,
	}
	got := collect(t, newReader(t, src))

	want := map[string]int64{
		"authcore_refresh_replay_rejected_total": 5,
		"authcore_audit_dropped_total":           4,
		"authcore_logout_total":                  0,
	}
	for name, expected := range want {
		sum, ok := got[name].(metricdata.Sum[int64])
		if !ok || len(sum.DataPoints) != 1 {
			t.Fatalf("%s: expected one int64 sum point, got %T", name, got[name])
		}
		if v := sum.DataPoints[0].Value; v != expected {
			t.Fatalf("%s = %d, want %d", name, v, expected)
		}
	}
}

func TestExporterObservesHistogramBuckets(t *testing.T) {
	src := &fakeSource{latency: []uint64{4, 0, 1, 0, 0, 0, 0, 2}}
	got := collect(t, newReader(t, src))

	g, ok := got["authcore_validate_latency_seconds_bucket"].(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("bucket: expected int64 gauge, got %T", got["authcore_validate_latency_seconds_bucket"])
	}
	byLE := map[string]int64{}
	for _, dp := range g.DataPoints {
		le, _ := dp.Attributes.Value("le")
		byLE[le.AsString()] = dp.Value
	}
	var count int64 = -1
	if c, ok := got["authcore_validate_latency_seconds_count"].(metricdata.Gauge[int64]); ok && len(c.DataPoints) == 1 {
		count = c.DataPoints[0].Value
	}

	want := map[string]int64{"0.005": 4, "0.01": 4, "0.025": 5, "0.5": 5, "+Inf": 7}
	for le, v := range want {
		if byLE[le] != v {
			t.Fatalf("le=%s: expected %d, got %d (all %v)", le, v, byLE[le], byLE)
		}
	}
	if len(byLE) != 8 {
		t.Fatalf("expected 8 bucket points, got %d", len(byLE))
	}
	if count != 7 {
		t.Fatalf("expected count 7, got %d", count)
	}
}
