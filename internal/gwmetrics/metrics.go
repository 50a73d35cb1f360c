// Package gwmetrics exposes Prometheus instrumentation for the gateway.
//
// Metrics are optional: when disabled, every constructor returns nil and
// every recording function is a nil-safe no-op, so the core packages never
// need to branch on whether metrics collection is turned on.
package gwmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry turns metrics collection on and installs the registry that
// backs every subsequent constructor in this package.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// StoreMetrics records outcomes of backing-store operations (C1).
type StoreMetrics interface {
	ObserveOperation(op string, duration time.Duration, err error)
	ObserveCreateObject(duration time.Duration, err error)
	RecordBytesWritten(n int64)
}

// ActionMetrics records outcomes of the action pipeline (C3/C4).
type ActionMetrics interface {
	ObserveStage(action, stage string, duration time.Duration, err error)
	ObserveAction(action string, duration time.Duration, statusCode int)
}

// NewStoreMetrics returns a Prometheus-backed StoreMetrics, or nil when
// metrics are disabled. Callers pass the nil value straight through to
// gwstore constructors; every recording helper in this package is a no-op
// on a nil receiver.
func NewStoreMetrics() StoreMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusStoreMetrics(GetRegistry())
}

// NewActionMetrics returns a Prometheus-backed ActionMetrics, or nil when
// metrics are disabled.
func NewActionMetrics() ActionMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusActionMetrics(GetRegistry())
}

// ObserveOperation records a store operation's duration and outcome,
// tolerating a nil StoreMetrics.
func ObserveOperation(m StoreMetrics, op string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveOperation(op, duration, err)
	}
}

// ObserveCreateObject records a create_object call's duration and outcome,
// tolerating a nil StoreMetrics.
func ObserveCreateObject(m StoreMetrics, duration time.Duration, err error) {
	if m != nil {
		m.ObserveCreateObject(duration, err)
	}
}

// RecordBytesWritten records bytes written to a container, tolerating a
// nil StoreMetrics.
func RecordBytesWritten(m StoreMetrics, n int64) {
	if m != nil {
		m.RecordBytesWritten(n)
	}
}

// ObserveStage records one pipeline stage's duration and outcome,
// tolerating a nil ActionMetrics.
func ObserveStage(m ActionMetrics, action, stage string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveStage(action, stage, duration, err)
	}
}

// ObserveAction records a whole action's duration and final status code,
// tolerating a nil ActionMetrics.
func ObserveAction(m ActionMetrics, action string, duration time.Duration, statusCode int) {
	if m != nil {
		m.ObserveAction(action, duration, statusCode)
	}
}
