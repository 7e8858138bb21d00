package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	prometheus.MustRegister(MessagesProduced, MessagesConsumed, TopicsCreated,
		InvalidRequests, ActiveConnections, ProduceLatencyHist)
}

func StartMetricsServer(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", port)
		fmt.Println("[METRICS] Prometheus exporter listening on", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			fmt.Printf("[METRICS] Failed to start metrics server: %v\n", err)
		}
	}()
}

// PushProduceMetric updates the produce counters for one appended batch.
func PushProduceMetric(count int, elapsedSeconds float64) {
	MessagesProduced.Add(float64(count))
	ProduceLatencyHist.Observe(elapsedSeconds)
}
