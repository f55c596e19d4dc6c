package node

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ethwallet",
		Subsystem: "node",
		Name:      "requests_total",
		Help:      "JSON-RPC requests sent to the node, by method and outcome.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ethwallet",
		Subsystem: "node",
		Name:      "request_duration_seconds",
		Help:      "Latency of JSON-RPC requests sent to the node, including failover.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

// observe starts timing method. The returned func records the outcome.
func observe(method string) func(err error) {
	start := time.Now()

	return func(err error) {
		status := statusOK
		if err != nil {
			status = statusError
		}

		requestsTotal.WithLabelValues(method, status).Inc()
		requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}
