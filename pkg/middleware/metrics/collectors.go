package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "dnsd"

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "http response time by route.",
			Buckets:   []float64{0.005, 0.05, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"uri", "method"},
	)

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "http requests by status code, route, method and caller role.",
		},
		[]string{"code", "uri", "method", "role"},
	)

	dnsActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "registry actions by surface, action and outcome.",
		},
		[]string{"surface", "action", "outcome"},
	)

	dnsRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records",
		Help:      "live records in the registry.",
	})

	dnsEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "record events dropped because the queue was full or closed.",
	})
)

func init() {
	prometheus.MustRegister(requestDuration, requests, dnsActions, dnsRecords, dnsEventsDropped)
}
