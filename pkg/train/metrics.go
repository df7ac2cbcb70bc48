package train

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("micrograd.train")

var (
	// iterationsTotal counts completed training iterations
	iterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neural_train_iterations_total",
		Help: "Total training iterations completed",
	})

	// lossGauge holds the loss of the most recent iteration
	lossGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neural_train_loss",
		Help: "Loss of the most recent training iteration",
	})

	// backwardDuration tracks the time spent in one backward pass
	backwardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "neural_backward_duration_seconds",
		Help:    "Backward pass duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~0.26s
	})

	// graphNodes tracks the size of each per-sample graph
	graphNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "neural_graph_nodes",
		Help:    "Number of nodes in each per-sample expression graph",
		Buckets: prometheus.ExponentialBuckets(8, 2, 12),
	})
)
