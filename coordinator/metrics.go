package coordinator

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus instruments the Coordinator exposes, grounded
// on fetch/metrics.go's registration pattern.
type Metrics struct {
	BlocksProcessed prometheus.Counter
	EventsEmitted   *prometheus.CounterVec
	ReorgDepth      prometheus.Histogram
	RPCRetries      prometheus.Counter
	QueueDepth      prometheus.Gauge
}

// NewMetrics registers and returns the Coordinator's metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "blocks_processed_total",
			Help:      "Number of blocks fully processed and checkpointed.",
		}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "events_emitted_total",
			Help:      "Number of domain events emitted, by kind.",
		}, []string{"kind"}),
		ReorgDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "indexer",
			Name:      "reorg_depth_blocks",
			Help:      "Depth of detected chain reorganizations, in blocks.",
			Buckets:   []float64{1, 2, 3, 6, 10, 20, 30},
		}),
		RPCRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "rpc_retries_total",
			Help:      "Number of block-processing retries due to RPC/transient errors.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "indexer",
			Name:      "queue_depth",
			Help:      "Number of block numbers currently pending in the block queue.",
		}),
	}
	reg.MustRegister(m.BlocksProcessed, m.EventsEmitted, m.ReorgDepth, m.RPCRetries, m.QueueDepth)
	return m
}
