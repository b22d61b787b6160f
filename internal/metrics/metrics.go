// Package metrics publishes SLA state as Prometheus gauges.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cm-sla/sla-dashboard/internal/model"
)

const namespace = "cm_sla"

// Recorder holds the dashboard collectors on a private registry.
type Recorder struct {
	registry   *prometheus.Registry
	tickets    *prometheus.GaugeVec
	compliance prometheus.Gauge
	lastSync   prometheus.Gauge
	alerts     prometheus.Counter
	now        func() time.Time
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		tickets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tickets",
			Help:      "Tickets in the current sync window by team and SLA status.",
		}, []string{"team", "status"}),
		compliance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compliance_percent",
			Help:      "Share of closed tickets completed within their SLA.",
		}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix time of the last completed sync.",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_posted_total",
			Help:      "SLA alert comments posted on tickets.",
		}),
		now: time.Now,
	}
	r.registry.MustRegister(
		r.tickets, r.compliance, r.lastSync, r.alerts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Record replaces the ticket gauges with the counts of projections.
func (r *Recorder) Record(projections []model.Projection) {
	r.tickets.Reset()
	closed, met := 0, 0
	for _, p := range projections {
		r.tickets.WithLabelValues(p.Team, string(p.Status)).Inc()
		if !p.IsOpen {
			closed++
			if p.Elapsed <= p.SLADays {
				met++
			}
		}
	}
	pct := 100.0
	if closed > 0 {
		pct = float64(met) / float64(closed) * 100
	}
	r.compliance.Set(pct)
	r.lastSync.Set(float64(r.now().Unix()))
}

// AlertsPosted adds n to the posted alerts counter.
func (r *Recorder) AlertsPosted(n int) {
	r.alerts.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
