package navigation

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK      = "ok"
	resultError   = "error"
	resultDropped = "dropped"
)

// Metrics is nil-safe; a nil *Metrics records nothing.
type Metrics struct {
	authInit      *prometheus.CounterVec
	routeCycles   prometheus.Counter
	routesSkipped *prometheus.CounterVec
	pluginRoutes  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		authInit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantshell",
			Name:      "auth_init_total",
			Help:      "Auth initialization requests by trigger and result.",
		}, []string{"trigger", "result"}),
		routeCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tenantshell",
			Name:      "route_load_cycles_total",
			Help:      "Completed plugin route load cycles.",
		}),
		routesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantshell",
			Name:      "plugin_routes_skipped_total",
			Help:      "Plugin routes omitted from navigation.",
		}, []string{"reason"}),
		pluginRoutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tenantshell",
			Name:      "plugin_routes",
			Help:      "Plugin routes in the current route table.",
		}),
	}
	reg.MustRegister(m.authInit, m.routeCycles, m.routesSkipped, m.pluginRoutes)
	return m
}

func (m *Metrics) authInitResult(trigger Trigger, result string) {
	if m == nil {
		return
	}
	m.authInit.WithLabelValues(string(trigger), result).Inc()
}

func (m *Metrics) routeCycle(loaded int, skipped []SkippedRoute) {
	if m == nil {
		return
	}
	m.routeCycles.Inc()
	m.pluginRoutes.Set(float64(loaded))
	for _, s := range skipped {
		m.routesSkipped.WithLabelValues(string(s.Reason)).Inc()
	}
}
