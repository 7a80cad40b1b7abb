package telemetry

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out
}

func TestTitleGuardMetrics_Counters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewTitleGuardMetricsWithMeter(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	m.RecordRejection(ctx, "Component")
	m.RecordRejection(ctx, "Component")
	m.RecordSave(ctx, "Component", true)

	sums := collectSums(t, reader)
	if sums["title_guard.rejections"] != 2 {
		t.Errorf("rejections: got %d, want 2", sums["title_guard.rejections"])
	}
	if sums["title_guard.saves"] != 1 {
		t.Errorf("saves: got %d, want 1", sums["title_guard.saves"])
	}
}

func TestTitleGuardMetrics_NilSafe(t *testing.T) {
	var m *TitleGuardMetrics
	m.RecordRejection(context.Background(), "Component")
	m.RecordSave(context.Background(), "Page", false)
}
