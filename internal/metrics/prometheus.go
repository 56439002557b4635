package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/lineseq/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a PrometheusCollector never touches the registry.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	requests     *prometheus.CounterVec
	solveSeconds *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	state        prometheus.Gauge
	superseded   prometheus.Counter
	errors       *prometheus.CounterVec
	costMinutes  *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "lineseq" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "lineseq"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "requests_total",
			Help:      "Total sequencing requests by kind and algorithm.",
		}, []string{"kind", "algorithm"})

		p.solveSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of solver runs in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms .. ~3.8s
		}, []string{"algorithm"})

		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "state_transitions_total",
			Help:      "Total engine state transitions.",
		}, []string{"from", "to"})

		p.state = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "state",
			Help:      "Current engine state (0=Idle,1=Running,2=Done,3=Error,4=Cancelled).",
		})

		p.superseded = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "superseded_total",
			Help:      "Total in-flight requests cancelled by a newer submission.",
		})

		p.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Total failed requests by error kind.",
		}, []string{"kind"})

		p.costMinutes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "sequence_cost_minutes",
			Help:      "Total changeover minutes of produced sequences.",
			Buckets:   []float64{0, 10, 30, 60, 120, 240, 480, 960, 1920},
		}, []string{"algorithm"})

		p.reg.MustRegister(
			p.requests,
			p.solveSeconds,
			p.transitions,
			p.state,
			p.superseded,
			p.errors,
			p.costMinutes,
		)
	})
}

// RecordRequest increments the request counter.
func (p *PrometheusCollector) RecordRequest(kind, algorithm string) {
	p.ensureRegistered()
	p.requests.WithLabelValues(kind, algorithm).Inc()
}

// RecordSolveDuration observes one solver run.
func (p *PrometheusCollector) RecordSolveDuration(algorithm string, seconds float64) {
	p.ensureRegistered()
	p.solveSeconds.WithLabelValues(algorithm).Observe(seconds)
}

// RecordStateTransition counts the transition and updates the state gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.EngineState) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
	p.state.Set(float64(to))
}

// RecordSuperseded increments the supersede counter.
func (p *PrometheusCollector) RecordSuperseded() {
	p.ensureRegistered()
	p.superseded.Inc()
}

// RecordError increments the error counter.
func (p *PrometheusCollector) RecordError(kind string) {
	p.ensureRegistered()
	p.errors.WithLabelValues(kind).Inc()
}

// RecordCost observes the cost of a produced sequence.
func (p *PrometheusCollector) RecordCost(algorithm string, minutes float64) {
	p.ensureRegistered()
	p.costMinutes.WithLabelValues(algorithm).Observe(minutes)
}
