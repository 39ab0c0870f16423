// Package metrics defines a tiny backend-agnostic metrics facade.
//
// The pipeline records run outcomes through package-level helpers; the actual
// destination is a pluggable Backend (Datadog, or the default nop). Core
// stages never import a vendor SDK.
package metrics

import "sync"

// Labels attach dimensions to a metric sample.
type Labels map[string]string

// Backend receives metric samples. Implementations must be safe for
// concurrent use.
type Backend interface {
	// IncCounter adds delta to a named counter.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a distribution.
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered samples to the destination.
	Flush() error

	// Close stops background work and performs a final Flush.
	Close() error
}

// Metric names emitted by the pipeline. Backends may ignore names they do
// not understand.
const (
	MetricRowsTotal          = "dq_rows_total"           // labels: kind=raw|clean|dropped
	MetricRuleFailuresTotal  = "dq_rule_failures_total"  // labels: rule, severity
	MetricRulesFailedTotal   = "dq_rules_failed_total"   // labels: dataset
	MetricRunDurationSeconds = "dq_run_duration_seconds" // labels: dataset
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
func (nopBackend) Close() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide backend. Call once at startup.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter forwards to the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram forwards to the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush forwards to the installed backend.
func Flush() error { return current().Flush() }

// Close forwards to the installed backend.
func Close() error { return current().Close() }
