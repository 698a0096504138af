// Package metrics holds the profile server's prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edital_http_requests_total",
		Help: "Requests served by the profile API",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edital_http_request_duration_seconds",
		Help:    "Latency of profile API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edital_auth_attempts_total",
		Help: "Register, login and logout attempts by outcome",
	}, []string{"op", "result"})

	ProfileSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edital_profile_saves_total",
		Help: "Profile document writes by outcome",
	}, []string{"result"})

	ProfileBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "edital_profile_document_bytes",
		Help:    "Size of saved profile documents",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

// MustRegister registers every collector on reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AuthAttemptsTotal,
		ProfileSavesTotal,
		ProfileBytes,
	)
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Result is the outcome label for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
