package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metar_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	ParseErrors      prometheus.Counter
	TransformErrors  prometheus.Counter
	MissingFields    *prometheus.CounterVec // labels: field
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Station lookup metrics.
	StationLookupRequests    *prometheus.CounterVec // labels: outcome={success,error,not_found}
	StationLookupCache       *prometheus.CounterVec // labels: result={hit,miss}
	StationLookupAPIDuration prometheus.Histogram
	StationLookupEnabled     prometheus.Gauge
	StationTableSize         prometheus.Gauge

	// HTTP decode endpoint.
	DecodeRequests *prometheus.CounterVec // labels: outcome={ok,parse_error,bad_request}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total observations written to the sink topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Total reports skipped because they could not be tokenized.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total transformation failures other than parse errors.",
		}),
		MissingFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_fields_total",
			Help:      "Decoded observations with a missing field, by field.",
		}, []string{"field"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StationLookupRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_lookup_requests_total",
			Help:      "Station metadata API requests by outcome.",
		}, []string{"outcome"}),
		StationLookupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_lookup_cache_total",
			Help:      "Station metadata cache lookups by result.",
		}, []string{"result"}),
		StationLookupAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "station_lookup_api_duration_seconds",
			Help:      "Station metadata API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StationLookupEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_lookup_enabled",
			Help:      "1 when remote station lookup is enabled, 0 otherwise.",
		}),
		StationTableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_table_size",
			Help:      "Number of stations in the local station table.",
		}),
		DecodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_requests_total",
			Help:      "HTTP decode requests by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.ParseErrors,
		m.TransformErrors,
		m.MissingFields,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.StationLookupRequests,
		m.StationLookupCache,
		m.StationLookupAPIDuration,
		m.StationLookupEnabled,
		m.StationTableSize,
		m.DecodeRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		ParseErrors:              prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "parse_errors_total"}),
		TransformErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "transform_errors_total"}),
		MissingFields:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "missing_fields_total"}, []string{"field"}),
		PipelineRunning:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:                prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		StationLookupRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "station_lookup_requests_total"}, []string{"outcome"}),
		StationLookupCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "station_lookup_cache_total"}, []string{"result"}),
		StationLookupAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "station_lookup_api_duration_seconds"}),
		StationLookupEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "station_lookup_enabled"}),
		StationTableSize:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "station_table_size"}),
		DecodeRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "decode_requests_total"}, []string{"outcome"}),
	}
}
