package prometheus

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// Default buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultProviderDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30}
	DefaultAnalysisDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultCountBuckets            = []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000}
)

type metricKind int

const (
	kindCounter metricKind = iota
	kindHistogram
)

type metricDef struct {
	name    string
	help    string
	kind    metricKind
	buckets []float64
	labels  []string
}

// appMetricDefs lists the metrics the application packages report by name.
var appMetricDefs = []metricDef{
	{"provider_request_total", "Provider API requests", kindCounter, nil, []string{"endpoint", "status"}},
	{"provider_request_duration_seconds", "Provider API request duration", kindHistogram, DefaultProviderDurationBuckets, []string{"endpoint"}},

	{"signal_resolve_total", "Signal name resolutions", kindCounter, nil, []string{"kind", "outcome"}},
	{"grid_fetch_total", "Heatmap grid fetches", kindCounter, nil, []string{"grid", "outcome"}},
	{"grid_fetch_duration_seconds", "Heatmap grid fetch duration", kindHistogram, DefaultProviderDurationBuckets, []string{"grid"}},
	{"grid_fetch_points", "Points per fetched grid", kindHistogram, DefaultCountBuckets, []string{"grid"}},
	{"grid_fetch_retries_total", "Grid fetch retries", kindCounter, nil, []string{"grid"}},
	{"grid_fetch_degraded_total", "Grid fetches that fell back to an empty grid", kindCounter, nil, []string{"grid"}},

	{"analysis_build_total", "Composite analysis builds", kindCounter, nil, []string{"outcome"}},
	{"analysis_build_duration_seconds", "Composite analysis build duration", kindHistogram, DefaultAnalysisDurationBuckets, []string{"outcome"}},
	{"analysis_rows", "Rows per composite analysis", kindHistogram, DefaultCountBuckets, nil},
	{"analysis_view_total", "Derived analysis views served", kindCounter, nil, []string{"view"}},

	{"location_filter_total", "Location filter runs", kindCounter, nil, []string{"outcome"}},
	{"location_filter_locations", "Locations per saved filter result", kindHistogram, DefaultCountBuckets, nil},
}

// AppMetrics is the process-wide metrics sink. It satisfies the
// IncCounter/ObserveHistogram interface every application package declares,
// and carries typed vectors for the transport layers.
type AppMetrics struct {
	registrar Registrar
	logger    logging.Logger

	mu         sync.RWMutex
	counters   map[string]CounterVec
	histograms map[string]HistogramVec
	labelSets  map[string][]string

	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Worker
	MessagesProcessedTotal CounterVec
	MessageProcessDuration HistogramVec

	// System health
	HealthCheckStatus GaugeVec
	ServiceUptime     GaugeVec
}

// NewAppMetrics registers every known metric on r.
func NewAppMetrics(r Registrar, logger logging.Logger) *AppMetrics {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := &AppMetrics{
		registrar:  r,
		logger:     logger.Named("app-metrics"),
		counters:   make(map[string]CounterVec),
		histograms: make(map[string]HistogramVec),
		labelSets:  make(map[string][]string),
	}
	for _, d := range appMetricDefs {
		m.define(d)
	}

	m.HTTPRequestsTotal = r.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = r.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = r.RegisterGauge("http_active_requests", "In-flight HTTP requests")

	m.MessagesProcessedTotal = r.RegisterCounter("mq_messages_total", "Consumed messages by outcome", "topic", "outcome")
	m.MessageProcessDuration = r.RegisterHistogram("mq_process_duration_seconds", "Message handler duration", DefaultAnalysisDurationBuckets, "topic")

	m.HealthCheckStatus = r.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ServiceUptime = r.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	return m
}

func (m *AppMetrics) define(d metricDef) {
	switch d.kind {
	case kindCounter:
		m.counters[d.name] = m.registrar.RegisterCounter(d.name, d.help, d.labels...)
	case kindHistogram:
		m.histograms[d.name] = m.registrar.RegisterHistogram(d.name, d.help, d.buckets, d.labels...)
	}
	m.labelSets[d.name] = d.labels
}

// IncCounter increments the named counter. Names outside the known set are
// registered on first use with the label keys of that call.
func (m *AppMetrics) IncCounter(name string, labels map[string]string) {
	m.mu.RLock()
	vec, ok := m.counters[name]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if vec, ok = m.counters[name]; !ok {
			keys := labelKeys(labels)
			vec = m.registrar.RegisterCounter(name, name, keys...)
			m.counters[name] = vec
			m.labelSets[name] = keys
			m.logger.Debug("registered ad-hoc counter", logging.String("name", name), logging.Strings("labels", keys))
		}
		m.mu.Unlock()
	}
	vec.With(m.normalize(name, labels)).Inc()
}

// ObserveHistogram records value in the named histogram.
func (m *AppMetrics) ObserveHistogram(name string, value float64, labels map[string]string) {
	m.mu.RLock()
	vec, ok := m.histograms[name]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if vec, ok = m.histograms[name]; !ok {
			keys := labelKeys(labels)
			vec = m.registrar.RegisterHistogram(name, name, nil, keys...)
			m.histograms[name] = vec
			m.labelSets[name] = keys
		}
		m.mu.Unlock()
	}
	vec.With(m.normalize(name, labels)).Observe(value)
}

// normalize keeps exactly the registered label keys, filling absent ones with
// "" so a caller passing an extra or missing label still gets recorded.
func (m *AppMetrics) normalize(name string, labels map[string]string) map[string]string {
	m.mu.RLock()
	keys := m.labelSets[name]
	m.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = labels[k]
	}
	return out
}

func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helpers

func RecordHTTPRequest(m *AppMetrics, method, route string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordMessage(m *AppMetrics, topic string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.MessagesProcessedTotal.WithLabelValues(topic, outcome).Inc()
	m.MessageProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordHealth(m *AppMetrics, component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
