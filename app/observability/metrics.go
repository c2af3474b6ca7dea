package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firsttime_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records request latency by route and method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "firsttime_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// StoreMutations counts applied store mutations by kind.
	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firsttime_store_mutations_total",
		Help: "Total number of applied post store mutations",
	}, []string{"kind"})

	// StorePosts is the size of the canonical collection.
	StorePosts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "firsttime_store_posts",
		Help: "Number of posts in the in-memory collection",
	})

	// PersistenceWrites counts durable writes by adapter and result.
	PersistenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firsttime_persistence_writes_total",
		Help: "Total number of persistence writes by adapter and result",
	}, []string{"adapter", "result"})

	// PersistenceInFlight is the number of durable writes not yet settled.
	PersistenceInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "firsttime_persistence_in_flight",
		Help: "Number of persistence writes in flight",
	})

	// PersistenceLatency records durable write latency by adapter.
	PersistenceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "firsttime_persistence_latency_seconds",
		Help:    "Persistence write latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"adapter"})
)
