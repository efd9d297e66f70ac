package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finwise_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "finwise_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"route"},
	)

	FallbacksUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finwise_fallbacks_total",
			Help: "Number of times an external source was replaced by mock data",
		},
		[]string{"source"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "finwise_external_call_duration_seconds",
			Help: "Duration of calls to third-party models and data APIs",
		},
		[]string{"service", "outcome"},
	)
)

// ObserveExternalCall records how long a call to service took and whether it failed
func ObserveExternalCall(service string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ExternalCallDuration.WithLabelValues(service, outcome).Observe(time.Since(start).Seconds())
}

// GinMiddleware counts requests per matched route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
