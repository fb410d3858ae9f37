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
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	Insecure          bool
}

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle
// management. Disabled config yields the no-op global meter.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates and registers the global meter provider
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exportInterval := cfg.ExportInterval
	if exportInterval == 0 {
		exportInterval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval)),
		),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", exportInterval),
		zap.String("service_name", cfg.ServiceName))

	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider
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

// Meter returns a named meter from the provider
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are enabled
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// Attribute keys shared across instruments
var (
	AttrWebhookEventType = attribute.Key("webhook.event_type")
	AttrSyncRecordType   = attribute.Key("sync.record_type")
	AttrSyncTrigger      = attribute.Key("sync.trigger")
	AttrSyncStatus       = attribute.Key("sync.status")
)

// SyncMetrics holds the instruments for the payment and Xero sync paths
type SyncMetrics struct {
	WebhookEvents     metric.Int64Counter
	WebhookFailures   metric.Int64Counter
	RowsSynced        metric.Int64Counter
	RowsFailed        metric.Int64Counter
	RowsPromoted      metric.Int64Counter
	InstallmentsDue   metric.Int64Counter
	SyncRunDuration   metric.Float64Histogram
}

// NewSyncMetrics registers the sync instruments on a meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	var err error

	if m.WebhookEvents, err = meter.Int64Counter("stripe.webhook.events",
		metric.WithDescription("Stripe webhook events received"),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("failed to create webhook events counter: %w", err)
	}
	if m.WebhookFailures, err = meter.Int64Counter("stripe.webhook.failures",
		metric.WithDescription("Stripe webhook events that failed processing"),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("failed to create webhook failures counter: %w", err)
	}
	if m.RowsSynced, err = meter.Int64Counter("xero.sync.rows_synced",
		metric.WithDescription("Staging rows pushed to Xero"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("failed to create rows synced counter: %w", err)
	}
	if m.RowsFailed, err = meter.Int64Counter("xero.sync.rows_failed",
		metric.WithDescription("Staging rows that failed to sync"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("failed to create rows failed counter: %w", err)
	}
	if m.RowsPromoted, err = meter.Int64Counter("xero.sync.rows_promoted",
		metric.WithDescription("Planned payment rows promoted to pending"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("failed to create rows promoted counter: %w", err)
	}
	if m.InstallmentsDue, err = meter.Int64Counter("billing.installments_charged",
		metric.WithDescription("Due installments charged by the nightly job"),
		metric.WithUnit("{installment}")); err != nil {
		return nil, fmt.Errorf("failed to create installments counter: %w", err)
	}
	if m.SyncRunDuration, err = meter.Float64Histogram("xero.sync.run_duration",
		metric.WithDescription("Duration of a Xero sync run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300)); err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	return m, nil
}

// RecordWebhook counts one webhook event, failed or not
func (m *SyncMetrics) RecordWebhook(ctx context.Context, eventType string, success bool) {
	attrs := metric.WithAttributes(AttrWebhookEventType.String(eventType))
	m.WebhookEvents.Add(ctx, 1, attrs)
	if !success {
		m.WebhookFailures.Add(ctx, 1, attrs)
	}
}

// RecordSyncRun records the outcome counts of one sync run
func (m *SyncMetrics) RecordSyncRun(ctx context.Context, trigger string, duration time.Duration, invoicesSynced, invoicesFailed, paymentsSynced, paymentsFailed int, promoted int64) {
	triggerAttr := AttrSyncTrigger.String(trigger)
	m.RowsSynced.Add(ctx, int64(invoicesSynced), metric.WithAttributes(triggerAttr, AttrSyncRecordType.String("invoice")))
	m.RowsSynced.Add(ctx, int64(paymentsSynced), metric.WithAttributes(triggerAttr, AttrSyncRecordType.String("payment")))
	m.RowsFailed.Add(ctx, int64(invoicesFailed), metric.WithAttributes(triggerAttr, AttrSyncRecordType.String("invoice")))
	m.RowsFailed.Add(ctx, int64(paymentsFailed), metric.WithAttributes(triggerAttr, AttrSyncRecordType.String("payment")))
	m.RowsPromoted.Add(ctx, promoted, metric.WithAttributes(triggerAttr))
	m.SyncRunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(triggerAttr))
}

// RecordInstallmentsCharged counts installments charged by the nightly job
func (m *SyncMetrics) RecordInstallmentsCharged(ctx context.Context, trigger string, charged int) {
	m.InstallmentsDue.Add(ctx, int64(charged), metric.WithAttributes(AttrSyncTrigger.String(trigger)))
}
