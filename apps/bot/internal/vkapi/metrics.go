package vkapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vkinder",
		Subsystem: "vk_api",
		Name:      "requests_total",
		Help:      "VK API calls by method and outcome.",
	}, []string{"method", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vkinder",
		Subsystem: "vk_api",
		Name:      "request_duration_seconds",
		Help:      "VK API call latency, rate limiter wait excluded.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

func observe(method string, start time.Time, err error) {
	result := "ok"
	switch {
	case err == nil:
	case IsTransient(err):
		result = "flood"
	case IsAPIError(err):
		result = "api_error"
	default:
		result = "transport_error"
	}
	requestsTotal.WithLabelValues(method, result).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
