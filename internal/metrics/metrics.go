// Package metrics は Prometheus メトリクスの定義と収集ミドルウェアを提供します。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusconnect_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusconnect_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthAttempts は signup/login の結果ごとの件数です。
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusconnect_auth_attempts_total",
		Help: "Signup and login attempts by outcome.",
	}, []string{"action", "outcome"})

	EventRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusconnect_event_registrations_total",
		Help: "Event registration attempts by outcome.",
	}, []string{"outcome"})
)

// Middleware はルート単位でリクエスト数とレイテンシを記録します。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler は /metrics 用のハンドラーです。
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
