package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/audit"
)

var (
	custodyComponentsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custody_components_total",
		Help: "Number of registered components.",
	})

	custodyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custody_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	custodyRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custody_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	custodyEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custody_events_appended_total",
		Help: "Custody events appended, by stage.",
	}, []string{"stage"})

	custodyVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custody_verifications_total",
		Help: "Component verifications served, by status.",
	}, []string{"status"})

	custodyAuditFailed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custody_audit_failed_components",
		Help: "Components that failed verification in the last audit sweep.",
	})

	custodyAuditLedgerValid = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custody_audit_ledger_valid",
		Help: "1 when the last audit sweep found the trust ledger intact, else 0.",
	})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		custodyRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		custodyRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// SetComponentsGauge sets the registered component count.
func SetComponentsGauge(n int) {
	custodyComponentsTotal.Set(float64(n))
}

// RecordCustodyEvent counts an appended custody event.
func RecordCustodyEvent(stage string) {
	custodyEventsTotal.WithLabelValues(stage).Inc()
}

// RecordVerification counts a served verification.
func RecordVerification(status string) {
	custodyVerificationsTotal.WithLabelValues(status).Inc()
}

// RecordAudit publishes the outcome of an audit sweep. It matches
// audit.MetricsRecordFunc.
func RecordAudit(r audit.Result) {
	custodyAuditFailed.Set(float64(r.Failed))
	custodyComponentsTotal.Set(float64(r.Components))
	if r.LedgerValid {
		custodyAuditLedgerValid.Set(1)
	} else {
		custodyAuditLedgerValid.Set(0)
	}
}
