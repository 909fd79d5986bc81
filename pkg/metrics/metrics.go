package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one server instance.
type Metrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Renders         *prometheus.CounterVec
	TemplateReloads *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Passing a fresh prometheus.Registry
// keeps several servers (or tests) in one process from colliding.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motionsite_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "motionsite_request_duration_seconds",
				Help: "HTTP request duration in seconds",
			},
			[]string{"method", "route"},
		),
		Renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motionsite_renders_total",
				Help: "Container page renders by mode and result",
			},
			[]string{"mode", "result"},
		),
		TemplateReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motionsite_template_reloads_total",
				Help: "Template reloads triggered by file changes",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}
}

// Middleware records request counts and latency. Requests that matched no
// registered route are labelled "catchall".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "catchall"
		}
		method := c.Request.Method
		m.RequestCount.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
