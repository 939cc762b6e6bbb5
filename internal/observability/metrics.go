package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MonitorCollector bundles Prometheus metrics for the live monitor and
// provides a ready-to-serve /metrics handler.
type MonitorCollector struct {
	gatherer prometheus.Gatherer

	Ticks         prometheus.Counter
	TickDurations prometheus.Histogram
	ComputeErrors *prometheus.CounterVec

	TrackedObjects prometheus.Gauge
	ActiveAlerts   prometheus.Gauge
}

// NewMonitorCollector registers monitor Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewMonitorCollector(reg prometheus.Registerer) (*MonitorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_ticks_total",
		Help: "Total number of monitor refresh ticks rendered.",
	}), "monitor_ticks_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "monitor_tick_duration_seconds",
		Help:    "Time spent computing and rendering one monitor tick.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
	durations, err = registerHistogram(reg, durations, "monitor_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	computeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_compute_errors_total",
		Help: "Position computations that failed, labeled by object name.",
	}, []string{"object"})
	computeErrors, err = registerCounterVec(reg, computeErrors, "monitor_compute_errors_total")
	if err != nil {
		return nil, err
	}

	tracked, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "monitor_tracked_objects",
		Help: "Number of objects the monitor refreshes each tick.",
	}), "monitor_tracked_objects")
	if err != nil {
		return nil, err
	}
	alerts, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "monitor_active_alerts",
		Help: "Number of alert-flagged objects currently outside their elevation window.",
	}), "monitor_active_alerts")
	if err != nil {
		return nil, err
	}

	return &MonitorCollector{
		gatherer:       gatherer,
		Ticks:          ticks,
		TickDurations:  durations,
		ComputeErrors:  computeErrors,
		TrackedObjects: tracked,
		ActiveAlerts:   alerts,
	}, nil
}

// ObserveTick records one completed tick and its duration in seconds.
func (c *MonitorCollector) ObserveTick(seconds float64, activeAlerts int) {
	if c == nil {
		return
	}
	if c.Ticks != nil {
		c.Ticks.Inc()
	}
	if c.TickDurations != nil {
		c.TickDurations.Observe(seconds)
	}
	if c.ActiveAlerts != nil {
		c.ActiveAlerts.Set(float64(activeAlerts))
	}
}

// ObserveComputeError records a failed position computation for an object.
func (c *MonitorCollector) ObserveComputeError(object string) {
	if c == nil || c.ComputeErrors == nil {
		return
	}
	c.ComputeErrors.WithLabelValues(object).Inc()
}

// SetTrackedObjects records how many objects each tick refreshes.
func (c *MonitorCollector) SetTrackedObjects(n int) {
	if c == nil || c.TrackedObjects == nil {
		return
	}
	c.TrackedObjects.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *MonitorCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
