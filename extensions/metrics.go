package extensions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pumped-fn/canopy"
)

const (
	namespace = "canopy"
	subsystem = "engine"
)

// MetricsExtension exports lifecycle and binding metrics to Prometheus.
//
// Collectors are registered when the extension is attached to an engine and
// unregistered when the engine is disposed, so one registerer can serve
// several engines over time but not at once.
type MetricsExtension struct {
	canopy.BaseExtension
	registerer prometheus.Registerer
	engine     *canopy.Engine

	transitions   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	bindErrors    *prometheus.CounterVec
	cleanupErrors prometheus.Counter
	enabledNodes  prometheus.Gauge
	liveBindings  prometheus.Gauge
}

// NewMetricsExtension creates a metrics extension registering into
// registerer. A nil registerer uses prometheus.DefaultRegisterer.
func NewMetricsExtension(registerer prometheus.Registerer) *MetricsExtension {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &MetricsExtension{
		BaseExtension: canopy.NewBaseExtension("metrics"),
		registerer:    registerer,
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lifecycle_transitions_total",
				Help:      "Lifecycle operations by kind and result.",
			},
			[]string{"op", "result"}, // result is "success" or "error"
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lifecycle_duration_seconds",
				Help:      "Lifecycle operation time in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~0.26s
			},
			[]string{"op"},
		),
		bindErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bind_errors_total",
				Help:      "Non-fatal binding problems by kind.",
			},
			[]string{"kind"},
		),
		cleanupErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cleanup_errors_total",
			Help:      "Cleanup functions that failed during destroy.",
		}),
		enabledNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enabled_nodes",
			Help:      "Nodes currently enabled.",
		}),
		liveBindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "live_bindings",
			Help:      "Active bindings held by created nodes.",
		}),
	}
}

func (m *MetricsExtension) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.transitions,
		m.duration,
		m.bindErrors,
		m.cleanupErrors,
		m.enabledNodes,
		m.liveBindings,
	}
}

func (m *MetricsExtension) Order() int {
	// Outermost, so the duration covers the other extensions.
	return 0
}

func (m *MetricsExtension) Init(engine *canopy.Engine) error {
	for i, c := range m.collectors() {
		if err := m.registerer.Register(c); err != nil {
			for _, done := range m.collectors()[:i] {
				m.registerer.Unregister(done)
			}
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return fmt.Errorf("metrics already registered by another engine: %w", err)
			}
			return err
		}
	}
	m.engine = engine
	return nil
}

func (m *MetricsExtension) Wrap(ctx context.Context, next func() error, op *canopy.Operation) error {
	var before int
	if op.Kind == canopy.OpDestroy {
		before = m.bindingCount(op)
	}
	start := time.Now()
	err := next()
	m.duration.WithLabelValues(string(op.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		m.transitions.WithLabelValues(string(op.Kind), "error").Inc()
		return err
	}
	m.transitions.WithLabelValues(string(op.Kind), "success").Inc()

	switch op.Kind {
	case canopy.OpCreate:
		m.liveBindings.Add(float64(m.bindingCount(op)))
	case canopy.OpEnable:
		m.enabledNodes.Inc()
	case canopy.OpDisable:
		m.enabledNodes.Dec()
	case canopy.OpDestroy:
		m.liveBindings.Sub(float64(before))
		if op.From == canopy.StateEnabled {
			m.enabledNodes.Dec()
		}
	}
	return nil
}

func (m *MetricsExtension) bindingCount(op *canopy.Operation) int {
	if m.engine == nil {
		return 0
	}
	return len(m.engine.Controller(op.Node, nil).Bindings())
}

func (m *MetricsExtension) OnBindError(err *canopy.BindError, engine *canopy.Engine) {
	m.bindErrors.WithLabelValues(string(err.Kind)).Inc()
}

func (m *MetricsExtension) OnCleanupError(err *canopy.CleanupError) bool {
	m.cleanupErrors.Inc()
	return false
}

func (m *MetricsExtension) Dispose(engine *canopy.Engine) error {
	for _, c := range m.collectors() {
		m.registerer.Unregister(c)
	}
	m.engine = nil
	return nil
}
