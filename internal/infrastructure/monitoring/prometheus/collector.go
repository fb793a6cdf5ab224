package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Registrar registers metric vectors on a private registry and serves them.
type Registrar interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

type (
	// CounterVec yields counters by label.
	CounterVec = vec[Counter]
	// GaugeVec yields gauges by label.
	GaugeVec = vec[Gauge]
	// HistogramVec yields observers by label.
	HistogramVec = vec[Histogram]
)

// vec is the label lookup every metric family shares.
type vec[M any] interface {
	WithLabelValues(lvs ...string) M
	With(labels map[string]string) M
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig holds configuration for the registrar. Buckets applies to
// histograms registered without their own.
type CollectorConfig struct {
	Namespace      string
	Subsystem      string
	RuntimeMetrics bool
	Buckets        []float64
	ConstLabels    map[string]string
}

// ConfigFromMetrics maps the metrics config section. Process and Go runtime
// collectors are always on for the served registries.
func ConfigFromMetrics(cfg config.MetricsConfig) CollectorConfig {
	return CollectorConfig{
		Namespace:      cfg.Namespace,
		Subsystem:      cfg.Subsystem,
		RuntimeMetrics: true,
		Buckets:        DefaultProviderDurationBuckets,
	}
}

type registrar struct {
	cfg    CollectorConfig
	reg    *prometheus.Registry
	logger logging.Logger

	mu     sync.Mutex
	byName map[string]prometheus.Collector
}

// NewCollector creates a Registrar backed by a fresh registry.
func NewCollector(cfg CollectorConfig, logger logging.Logger) (Registrar, error) {
	if cfg.Namespace == "" {
		return nil, errors.New(errors.ErrCodeValidation, "metrics namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}

	reg := prometheus.NewRegistry()
	if cfg.RuntimeMetrics {
		reg.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}),
			collectors.NewGoCollector(),
		)
	}
	return &registrar{
		cfg:    cfg,
		reg:    reg,
		logger: logger.Named("metrics"),
		byName: make(map[string]prometheus.Collector),
	}, nil
}

func (r *registrar) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *registrar) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace:   r.cfg.Namespace,
		Subsystem:   r.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: r.cfg.ConstLabels,
	}
}

func (r *registrar) RegisterCounter(name, help string, labels ...string) CounterVec {
	v := prometheus.NewCounterVec(prometheus.CounterOpts(r.opts(name, help)), labels)
	return registerVec[*prometheus.CounterVec](r, name, "counter", v,
		func(v *prometheus.CounterVec) CounterVec { return family[Counter]{v.MetricVec, noopCounter{}} },
		noopVec[Counter]{noopCounter{}})
}

func (r *registrar) RegisterGauge(name, help string, labels ...string) GaugeVec {
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts(r.opts(name, help)), labels)
	return registerVec[*prometheus.GaugeVec](r, name, "gauge", v,
		func(v *prometheus.GaugeVec) GaugeVec { return family[Gauge]{v.MetricVec, noopGauge{}} },
		noopVec[Gauge]{noopGauge{}})
}

func (r *registrar) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if len(buckets) == 0 {
		buckets = r.cfg.Buckets
	}
	o := r.opts(name, help)
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   o.Namespace,
		Subsystem:   o.Subsystem,
		Name:        o.Name,
		Help:        o.Help,
		ConstLabels: o.ConstLabels,
		Buckets:     buckets,
	}, labels)
	return registerVec[*prometheus.HistogramVec](r, name, "histogram", v,
		func(v *prometheus.HistogramVec) HistogramVec {
			return family[Histogram]{v.MetricVec, noopHistogram{}}
		},
		noopVec[Histogram]{noopHistogram{}})
}

// registerVec registers v once per fully qualified name. A later call with
// the same name gets the first vector back; a call whose kind differs from
// the first registration, or one the registry rejects, gets noop.
func registerVec[V prometheus.Collector, M any](r *registrar, name, kind string, v V, wrap func(V) vec[M], noop vec[M]) vec[M] {
	fq := prometheus.BuildFQName(r.cfg.Namespace, r.cfg.Subsystem, name)

	r.mu.Lock()
	existing, ok := r.byName[fq]
	if !ok {
		if err := r.reg.Register(v); err != nil {
			r.mu.Unlock()
			r.logger.Error("metric registration failed", logging.String("metric", fq), logging.String("kind", kind), logging.Err(err))
			return noop
		}
		r.byName[fq] = v
		existing = v
	}
	r.mu.Unlock()

	typed, ok := existing.(V)
	if !ok {
		r.logger.Warn("metric already registered with another kind", logging.String("metric", fq), logging.String("kind", kind))
		return noop
	}
	return wrap(typed)
}

// family resolves children through the untyped MetricVec so that a label
// mismatch returns the fallback instead of panicking.
type family[M any] struct {
	mv       *prometheus.MetricVec
	fallback M
}

func (f family[M]) WithLabelValues(lvs ...string) M {
	m, err := f.mv.GetMetricWithLabelValues(lvs...)
	return f.child(m, err)
}

func (f family[M]) With(labels map[string]string) M {
	m, err := f.mv.GetMetricWith(labels)
	return f.child(m, err)
}

func (f family[M]) child(m prometheus.Metric, err error) M {
	if err != nil {
		return f.fallback
	}
	if c, ok := m.(M); ok {
		return c
	}
	return f.fallback
}

type noopVec[M any] struct{ child M }

func (n noopVec[M]) WithLabelValues(...string) M { return n.child }
func (n noopVec[M]) With(map[string]string) M    { return n.child }

type noopCounter struct{}

func (noopCounter) Inc()        {}
func (noopCounter) Add(float64) {}

type noopGauge struct{}

func (noopGauge) Set(float64) {}
func (noopGauge) Inc()        {}
func (noopGauge) Dec()        {}

type noopHistogram struct{}

func (noopHistogram) Observe(float64) {}

//Personal.AI order the ending
