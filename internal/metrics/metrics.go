// Package metrics exposes prometheus instrumentation for the ingestion
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consumer holds the counters and histograms for the queue consumer loop.
type Consumer struct {
	Received      prometheus.Counter
	Processed     prometheus.Counter
	Failed        prometheus.Counter
	Unsupported   prometheus.Counter
	Deleted       prometheus.Counter
	ReceiveErrors prometheus.Counter
	DeleteErrors  prometheus.Counter
	BatchDuration prometheus.Histogram
}

// NewConsumer registers the consumer metrics with the given registerer.
func NewConsumer(reg prometheus.Registerer) *Consumer {
	factory := promauto.With(reg)

	return &Consumer{
		Received: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_messages_received_total",
			Help: "Messages received from the queue.",
		}),
		Processed: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_messages_processed_total",
			Help: "Messages successfully applied to the graph.",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_messages_failed_total",
			Help: "Messages whose transformer failed.",
		}),
		Unsupported: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_messages_unsupported_total",
			Help: "Messages with no registered transformer.",
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_messages_deleted_total",
			Help: "Messages acknowledged (deleted) from the queue.",
		}),
		ReceiveErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_receive_errors_total",
			Help: "Queue receive failures.",
		}),
		DeleteErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_consumer_delete_errors_total",
			Help: "Queue delete failures.",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendations_consumer_batch_duration_seconds",
			Help:    "Time spent processing one received batch.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
