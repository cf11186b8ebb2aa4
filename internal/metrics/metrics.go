package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autopost",
			Name:      "deliveries_total",
			Help:      "Scheduled post delivery attempts by outcome.",
		},
		[]string{"outcome"},
	)

	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "autopost",
			Name:      "batch_duration_seconds",
			Help:      "Duration of delivery batch runs.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	enumerationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autopost",
			Name:      "enumeration_failures_total",
			Help:      "Batch runs aborted because due posts could not be listed.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(deliveries, batchDuration, enumerationFailures)
	})
}

// IncDelivery counts one delivery attempt with the given outcome label.
func IncDelivery(outcome string) {
	deliveries.WithLabelValues(outcome).Inc()
}

func ObserveBatch(d time.Duration) {
	batchDuration.Observe(d.Seconds())
}

func IncEnumerationFailure() {
	enumerationFailures.Inc()
}
