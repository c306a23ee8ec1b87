package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flotillahq/flotilla/internal/common/config"
)

// Metrics holds the prometheus registry and the collectors exposed by the
// API server: basic HTTP metrics plus the authentication and authorization
// counters of the account core.
type Metrics struct {
	registry *prometheus.Registry

	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec

	loginCnt    *prometheus.CounterVec
	lockoutCnt  prometheus.Counter
	authzDenial *prometheus.CounterVec
}

// New builds a Metrics instance from configuration.
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	if ns == "" {
		ns = "flotilla"
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	loginCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "login_attempts_total"}, []string{"status"})
	lockoutCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "account_lockouts_total"})
	authzDenial := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "authorization_denials_total"}, []string{"reason"})
	r.MustRegister(loginCnt, lockoutCnt, authzDenial)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		loginCnt:    loginCnt,
		lockoutCnt:  lockoutCnt,
		authzDenial: authzDenial,
	}
}

// LoginAttempt records a login outcome: success, invalid, locked, inactive.
func (m *Metrics) LoginAttempt(status string) {
	m.loginCnt.WithLabelValues(status).Inc()
}

// AccountLocked records a lockout being triggered.
func (m *Metrics) AccountLocked() {
	m.lockoutCnt.Inc()
}

// AuthorizationDenied records an authorization failure by reason.
func (m *Metrics) AuthorizationDenied(reason string) {
	m.authzDenial.WithLabelValues(reason).Inc()
}

// Middleware returns a gin middleware collecting HTTP metrics.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
