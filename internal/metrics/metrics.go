// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arthemis_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arthemis_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// EngagementTotal counts like, unlike, save and unsave actions.
	EngagementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arthemis_engagement_total",
			Help: "Total number of artwork engagement actions",
		},
		[]string{"action"},
	)

	// CurationFallbackTotal counts AI calls answered with the default payload.
	CurationFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arthemis_curation_fallback_total",
			Help: "Total number of curation requests served from the default payload",
		},
		[]string{"feature"},
	)

	// EventsPublishedTotal counts domain events by routing key and outcome.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arthemis_events_published_total",
			Help: "Total number of domain events handed to the broker",
		},
		[]string{"routing_key", "result"},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordEngagement records a like, unlike, save or unsave.
func RecordEngagement(action string) {
	EngagementTotal.WithLabelValues(action).Inc()
}

// RecordCurationFallback records an AI feature served from its default.
func RecordCurationFallback(feature string) {
	CurationFallbackTotal.WithLabelValues(feature).Inc()
}

// RecordEvent records the outcome of publishing a domain event.
func RecordEvent(routingKey string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublishedTotal.WithLabelValues(routingKey, result).Inc()
}
