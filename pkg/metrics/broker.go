package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesProduced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_messages_produced_total",
		Help: "Total number of messages appended across all partitions",
	})

	MessagesConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_messages_consumed_total",
		Help: "Total number of entries returned to consumers",
	})

	TopicsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_topics_created_total",
		Help: "Total number of topics created in the registry",
	})

	InvalidRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_invalid_requests_total",
		Help: "Total number of undecodable or unknown-tag requests",
	})

	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "broker_active_connections",
		Help: "Number of currently open client connections",
	})

	ProduceLatencyHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "broker_produce_latency_seconds",
		Help:    "Histogram of produce dispatch latency",
		Buckets: prometheus.DefBuckets,
	})
)
