package gwmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusStoreMetrics is the Prometheus implementation of StoreMetrics.
type prometheusStoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	createObjectTotal *prometheus.CounterVec
	createObjectMs    prometheus.Histogram
	bytesWritten      prometheus.Counter
}

func newPrometheusStoreMetrics(reg *prometheus.Registry) StoreMetrics {
	return &prometheusStoreMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "s3gw_store_operations_total",
				Help: "Total number of backing store operations by type and outcome",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "s3gw_store_operation_duration_milliseconds",
				Help: "Duration of backing store operations in milliseconds",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"operation"},
		),
		createObjectTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "s3gw_store_create_object_total",
				Help: "Total number of create_object calls by outcome",
			},
			[]string{"status"},
		),
		createObjectMs: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "s3gw_store_create_object_duration_milliseconds",
				Help:    "Duration of create_object calls in milliseconds",
				Buckets: []float64{1, 5, 10, 50, 100, 500},
			},
		),
		bytesWritten: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "s3gw_store_bytes_written_total",
				Help: "Total bytes written to backing object containers",
			},
		),
	}
}

func (m *prometheusStoreMetrics) ObserveOperation(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(duration.Milliseconds()))
}

func (m *prometheusStoreMetrics) ObserveCreateObject(duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.createObjectTotal.WithLabelValues(status).Inc()
	m.createObjectMs.Observe(float64(duration.Milliseconds()))
}

func (m *prometheusStoreMetrics) RecordBytesWritten(n int64) {
	if n > 0 {
		m.bytesWritten.Add(float64(n))
	}
}

// prometheusActionMetrics is the Prometheus implementation of ActionMetrics.
type prometheusActionMetrics struct {
	stageDuration  *prometheus.HistogramVec
	actionDuration *prometheus.HistogramVec
	actionsTotal   *prometheus.CounterVec
}

func newPrometheusActionMetrics(reg *prometheus.Registry) ActionMetrics {
	return &prometheusActionMetrics{
		stageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "s3gw_action_stage_duration_milliseconds",
				Help: "Duration of individual pipeline stages in milliseconds",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000, 10000,
				},
			},
			[]string{"action", "stage"},
		),
		actionDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "s3gw_action_duration_milliseconds",
				Help: "Total duration of an action's pipeline run in milliseconds",
				Buckets: []float64{
					10, 50, 100, 500, 1000, 5000, 10000, 30000,
				},
			},
			[]string{"action"},
		),
		actionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "s3gw_action_responses_total",
				Help: "Total number of action responses by status code",
			},
			[]string{"action", "status_code"},
		),
	}
}

func (m *prometheusActionMetrics) ObserveStage(action, stage string, duration time.Duration, err error) {
	m.stageDuration.WithLabelValues(action, stage).Observe(float64(duration.Milliseconds()))
	_ = err // stage-level errors surface through the final status code, not a separate label
}

func (m *prometheusActionMetrics) ObserveAction(action string, duration time.Duration, statusCode int) {
	m.actionDuration.WithLabelValues(action).Observe(float64(duration.Milliseconds()))
	m.actionsTotal.WithLabelValues(action, statusCodeLabel(statusCode)).Inc()
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "other"
	}
}
