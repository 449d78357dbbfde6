package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// store
	StoreOpDuration  *prometheus.HistogramVec
	StoreErrorsTotal *prometheus.CounterVec

	// mapper
	UsersMapped     *prometheus.CounterVec
	UpdatesRejected *prometheus.CounterVec

	// change notifications (worker)
	NotificationDuration  *prometheus.HistogramVec
	NotificationResults   *prometheus.CounterVec
	NotificationsInFlight prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userdir",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "userdir",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "userdir",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		StoreOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "userdir",
				Subsystem: "store",
				Name:      "op_duration_seconds",
				Help:      "User store latency by logical op.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2},
			},
			[]string{"op", "status"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userdir",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "User store errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		UsersMapped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userdir",
				Subsystem: "mapper",
				Name:      "users_total",
				Help:      "Users mapped or updated, by path.",
			},
			[]string{"path"}, // path=user|self|batch|update
		),
		UpdatesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userdir",
				Subsystem: "mapper",
				Name:      "rejected_total",
				Help:      "Payloads rejected before mutation, by reason.",
			},
			[]string{"reason"},
		),
		NotificationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "userdir",
				Subsystem: "notifications",
				Name:      "duration_seconds",
				Help:      "Change notification handling duration by type and result.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"type", "result"},
		),
		NotificationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userdir",
				Subsystem: "notifications",
				Name:      "results_total",
				Help:      "Change notification outcomes by type and result.",
			},
			[]string{"type", "result"}, // result=applied|skipped|dropped|retry
		),
		NotificationsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "userdir",
				Subsystem: "notifications",
				Name:      "in_flight",
				Help:      "Notifications currently being applied.",
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.StoreOpDuration, p.StoreErrorsTotal,
		p.UsersMapped, p.UpdatesRejected,
		p.NotificationDuration, p.NotificationResults, p.NotificationsInFlight,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveNotification records one handled change notification.
func (p *Prom) ObserveNotification(typ, result string, d time.Duration) {
	if p == nil {
		return
	}
	p.NotificationResults.WithLabelValues(typ, result).Inc()
	p.NotificationDuration.WithLabelValues(typ, result).Observe(d.Seconds())
}

func (p *Prom) IncMapped(path string, n int) {
	if p == nil {
		return
	}
	p.UsersMapped.WithLabelValues(path).Add(float64(n))
}

func (p *Prom) IncRejected(reason string) {
	if p == nil {
		return
	}
	p.UpdatesRejected.WithLabelValues(reason).Inc()
}

func (p *Prom) IncNotificationsInFlight() {
	if p == nil {
		return
	}
	p.NotificationsInFlight.Inc()
}

func (p *Prom) DecNotificationsInFlight() {
	if p == nil {
		return
	}
	p.NotificationsInFlight.Dec()
}
