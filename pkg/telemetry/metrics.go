package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ghuser/titleguard"

// TitleGuardMetrics holds the counters recorded by the save path.
type TitleGuardMetrics struct {
	rejections metric.Int64Counter
	saves      metric.Int64Counter
}

// NewTitleGuardMetrics registers the title guard counters on the global
// MeterProvider. Call after Setup so the Prometheus reader sees them.
func NewTitleGuardMetrics() (*TitleGuardMetrics, error) {
	return NewTitleGuardMetricsWithMeter(otel.Meter(meterName))
}

// NewTitleGuardMetricsWithMeter registers the counters on m.
func NewTitleGuardMetricsWithMeter(m metric.Meter) (*TitleGuardMetrics, error) {
	rejections, err := m.Int64Counter("title_guard.rejections",
		metric.WithDescription("Saves blocked because the title held disallowed characters"),
	)
	if err != nil {
		return nil, fmt.Errorf("rejections counter: %w", err)
	}
	saves, err := m.Int64Counter("title_guard.saves",
		metric.WithDescription("Saves that passed the title guard and were persisted"),
	)
	if err != nil {
		return nil, fmt.Errorf("saves counter: %w", err)
	}
	return &TitleGuardMetrics{rejections: rejections, saves: saves}, nil
}

// RecordRejection increments title_guard.rejections. Nil-safe.
func (m *TitleGuardMetrics) RecordRejection(ctx context.Context, itemType string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("item_type", itemType)))
}

// RecordSave increments title_guard.saves. Nil-safe.
func (m *TitleGuardMetrics) RecordSave(ctx context.Context, itemType string, created bool) {
	if m == nil {
		return
	}
	m.saves.Add(ctx, 1, metric.WithAttributes(
		attribute.String("item_type", itemType),
		attribute.Bool("created", created),
	))
}
