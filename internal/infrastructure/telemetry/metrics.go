package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	Insecure          bool
}

// MeterProvider wraps the SDK meter provider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates and registers a global meter provider with a
// periodic OTLP/gRPC reader. When disabled the global no-op meter is used.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)
	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter.
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if mp == nil || mp.provider == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return mp.provider.Meter(name)
}

// Shutdown flushes pending metrics.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// DomainMetrics holds the instruments recorded by application services.
// A nil *DomainMetrics records nothing.
type DomainMetrics struct {
	billsGenerated   metric.Int64Counter
	paymentsRecorded metric.Int64Counter
	paymentConflicts metric.Int64Counter
	messagesSent     metric.Int64Counter
	liveConnections  metric.Int64UpDownCounter
}

// NewDomainMetrics creates the domain instruments on meter.
func NewDomainMetrics(meter metric.Meter) (*DomainMetrics, error) {
	var (
		m   DomainMetrics
		err error
	)
	if m.billsGenerated, err = meter.Int64Counter("bills_generated_total",
		metric.WithDescription("Monthly bills created")); err != nil {
		return nil, err
	}
	if m.paymentsRecorded, err = meter.Int64Counter("bill_payments_total",
		metric.WithDescription("Payments applied to bills")); err != nil {
		return nil, err
	}
	if m.paymentConflicts, err = meter.Int64Counter("bill_payment_conflicts_total",
		metric.WithDescription("Optimistic lock conflicts while applying payments")); err != nil {
		return nil, err
	}
	if m.messagesSent, err = meter.Int64Counter("chat_messages_total",
		metric.WithDescription("Chat messages persisted")); err != nil {
		return nil, err
	}
	if m.liveConnections, err = meter.Int64UpDownCounter("realtime_connections",
		metric.WithDescription("Open live channel connections")); err != nil {
		return nil, err
	}
	return &m, nil
}

// BillsGenerated adds n generated bills.
func (m *DomainMetrics) BillsGenerated(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.billsGenerated.Add(ctx, int64(n))
}

// PaymentRecorded counts one applied payment by method.
func (m *DomainMetrics) PaymentRecorded(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// PaymentConflict counts one lost optimistic update.
func (m *DomainMetrics) PaymentConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.paymentConflicts.Add(ctx, 1)
}

// MessageSent counts one persisted chat message.
func (m *DomainMetrics) MessageSent(ctx context.Context) {
	if m == nil {
		return
	}
	m.messagesSent.Add(ctx, 1)
}

// ConnectionOpened and ConnectionClosed track live channel connections.
func (m *DomainMetrics) ConnectionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.liveConnections.Add(ctx, 1)
}

func (m *DomainMetrics) ConnectionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.liveConnections.Add(ctx, -1)
}
