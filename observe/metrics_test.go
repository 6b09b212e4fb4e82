package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func manualMetrics(t *testing.T) (*sdkmetric.ManualReader, Metrics) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return reader, m
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func counterTotal(m *metricdata.Metrics) int64 {
	if m == nil {
		return 0
	}
	var total int64
	for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Counters(t *testing.T) {
	reader, m := manualMetrics(t)
	ctx := context.Background()
	meta := ProbeMeta{Name: "redis"}

	m.RecordProbe(ctx, meta, time.Millisecond, Outcome{Status: "healthy"})
	m.RecordProbe(ctx, meta, time.Millisecond, Outcome{Status: "degraded"})
	m.RecordProbe(ctx, meta, time.Millisecond, Outcome{Status: "unhealthy", Unhealthy: true})

	rm := collect(t, reader)
	if got := counterTotal(findMetric(rm, "health.probe.total")); got != 3 {
		t.Errorf("health.probe.total = %d, want 3", got)
	}
	if got := counterTotal(findMetric(rm, "health.probe.unhealthy")); got != 1 {
		t.Errorf("health.probe.unhealthy = %d, want 1", got)
	}
}

func TestMetrics_DurationHistogram(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordProbe(context.Background(), ProbeMeta{Name: "http_endpoint"}, 1500*time.Microsecond, Outcome{Status: "healthy"})

	hist := findMetric(collect(t, reader), "health.probe.duration_ms")
	if hist == nil {
		t.Fatal("health.probe.duration_ms not found")
	}
	dps := hist.Data.(metricdata.Histogram[float64]).DataPoints
	if len(dps) != 1 || dps[0].Count != 1 {
		t.Fatalf("datapoints = %+v", dps)
	}
	if dps[0].Sum != 1.5 {
		t.Errorf("sum = %v, want 1.5", dps[0].Sum)
	}
}

func TestMetrics_Labels(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordProbe(context.Background(), ProbeMeta{Name: "database", Critical: true}, time.Millisecond, Outcome{Status: "unhealthy", Unhealthy: true})

	dp := findMetric(collect(t, reader), "health.probe.unhealthy").Data.(metricdata.Sum[int64]).DataPoints[0]
	checks := map[attribute.Key]attribute.Value{
		"probe.name":     attribute.StringValue("database"),
		"probe.critical": attribute.BoolValue(true),
		"probe.status":   attribute.StringValue("unhealthy"),
	}
	for key, want := range checks {
		got, ok := dp.Attributes.Value(key)
		if !ok || got != want {
			t.Errorf("%s = %v, want %v", key, got.Emit(), want.Emit())
		}
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	reader, m := manualMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordProbe(context.Background(), ProbeMeta{Name: "p"}, time.Millisecond, Outcome{Status: "healthy"})
		}()
	}
	wg.Wait()

	if got := counterTotal(findMetric(collect(t, reader), "health.probe.total")); got != 50 {
		t.Errorf("health.probe.total = %d, want 50", got)
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
