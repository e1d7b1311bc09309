// Package metrics exposes Prometheus collectors for the import and migration pipelines.
package metrics

import (
	"fmt"
	"time"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains all Prometheus metrics of the user pipeline.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	ImportRows       *prometheus.CounterVec
	MigrationRecords *prometheus.CounterVec
	MigrationBatch   prometheus.Histogram
	MigrationRunning prometheus.Gauge
}

// NewPipelineMetrics creates the collectors and registers them on registry.
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		ImportRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_pipeline_import_rows_total",
				Help: "Spreadsheet rows processed, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		MigrationRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_pipeline_migration_records_total",
				Help: "Legacy records processed by migration runs, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		MigrationBatch: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "user_pipeline_migration_batch_duration_seconds",
				Help:    "Time taken to migrate one batch of legacy records.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
		),
		MigrationRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "user_pipeline_migration_running",
				Help: "1 while a bulk migration run owned by this process is active.",
			},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

// Describe implements the prometheus.Collector interface.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ImportRows.Describe(ch)
	m.MigrationRecords.Describe(ch)
	ch <- m.MigrationBatch.Desc()
	ch <- m.MigrationRunning.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ImportRows.Collect(ch)
	m.MigrationRecords.Collect(ch)
	ch <- m.MigrationBatch
	ch <- m.MigrationRunning
}

func (m *PipelineMetrics) RecordImportRow(outcome domain.ImportOutcome) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues(outcome.String()).Inc()
}

func (m *PipelineMetrics) RecordMigrationRecord(outcome domain.ImportOutcome) {
	if m == nil {
		return
	}
	m.MigrationRecords.WithLabelValues(outcome.String()).Inc()
}

func (m *PipelineMetrics) ObserveMigrationBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.MigrationBatch.Observe(d.Seconds())
}

func (m *PipelineMetrics) SetMigrationRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.MigrationRunning.Set(1)
		return
	}
	m.MigrationRunning.Set(0)
}
