package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Event names recorded across the storefront shell.
const (
	EventSessionSaved        = "session.save.success"
	EventSessionSaveFailure  = "session.save.failure"
	EventSessionCleared      = "session.clear"
	EventSessionRenewed      = "session.renew"
	EventSessionExpired      = "session.expired"
	EventSessionMigrated     = "session.legacy_migrated"
	EventGuardRedirectSignIn = "guard.redirect.signin"
	EventGuardRedirectHome   = "guard.redirect.home"
	EventAPIRequestSuccess   = "api.request.success"
	EventAPIRequestFailure   = "api.request.failure"
	EventAPIRequestRetry     = "api.request.retry"
)

// MetricsRecorder increments counters for storefront events.
type MetricsRecorder interface {
	Increment(event string)
}

type noopMetrics struct{}

func (noopMetrics) Increment(string) {}

// NopMetrics returns a recorder that discards every event.
func NopMetrics() MetricsRecorder {
	return noopMetrics{}
}

// CounterMetrics implements MetricsRecorder with in-memory counts.
type CounterMetrics struct {
	mutex  sync.Mutex
	counts map[string]int64
}

// NewCounterMetrics constructs an in-memory metrics recorder.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{counts: make(map[string]int64)}
}

// Increment increases the counter for the given event.
func (recorder *CounterMetrics) Increment(event string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.counts[event]++
}

// Count returns the current value for the given event.
func (recorder *CounterMetrics) Count(event string) int64 {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return recorder.counts[event]
}

// Snapshot returns a copy of all recorded counters.
func (recorder *CounterMetrics) Snapshot() map[string]int64 {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	clone := make(map[string]int64, len(recorder.counts))
	for key, value := range recorder.counts {
		clone[key] = value
	}
	return clone
}

// PrometheusMetrics exports events as a single labelled counter.
type PrometheusMetrics struct {
	events *prometheus.CounterVec
}

// NewPrometheusMetrics registers the storefront event counter on registry.
func NewPrometheusMetrics(registry prometheus.Registerer) (*PrometheusMetrics, error) {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_total",
			Help: "Total number of storefront session, guard, and API client events",
		},
		[]string{"event"},
	)
	if err := registry.Register(events); err != nil {
		return nil, err
	}
	return &PrometheusMetrics{events: events}, nil
}

// Increment increases the counter labelled with event.
func (recorder *PrometheusMetrics) Increment(event string) {
	recorder.events.WithLabelValues(event).Inc()
}

// Fanout forwards each event to every recorder.
type Fanout []MetricsRecorder

// Increment forwards the event to each non-nil recorder.
func (recorders Fanout) Increment(event string) {
	for _, recorder := range recorders {
		if recorder != nil {
			recorder.Increment(event)
		}
	}
}
