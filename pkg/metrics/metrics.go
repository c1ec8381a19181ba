// Package metrics exposes the coordinator's and storage node's Prometheus
// instrumentation, grounded on the teacher's pkg/metadata/lock.Metrics:
// one struct of pre-registered vectors built with prometheus.NewCounterVec
// etc. and registered into a caller-supplied prometheus.Registerer (never
// the global default registry, so tests can use a private one).
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	LabelRequestType = "request_type"
	LabelResult      = "result"
)

// Coordinator holds the coordinator process's metrics.
type Coordinator struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LocksHeld       prometheus.Gauge
	NodesAlive      prometheus.Gauge
	CatalogSize     prometheus.Gauge
}

// NewCoordinator builds and registers coordinator metrics against registry.
// Passing a fresh prometheus.NewRegistry() (rather than the global default)
// keeps repeated test construction from panicking on duplicate registration,
// the same pattern the teacher's NewMetrics(registry) follows.
func NewCoordinator(registry prometheus.Registerer) *Coordinator {
	m := &Coordinator{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netdoc",
			Subsystem: "coordinator",
			Name:      "requests_total",
			Help:      "Total coordinator requests handled, by type and result.",
		}, []string{LabelRequestType, LabelResult}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "netdoc",
			Subsystem: "coordinator",
			Name:      "request_duration_seconds",
			Help:      "Coordinator request handling latency.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{LabelRequestType}),

		LocksHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netdoc",
			Subsystem: "coordinator",
			Name:      "locks_held",
			Help:      "Number of sentence locks currently outstanding.",
		}),

		NodesAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netdoc",
			Subsystem: "coordinator",
			Name:      "storage_nodes_alive",
			Help:      "Number of storage nodes currently marked alive.",
		}),

		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netdoc",
			Subsystem: "coordinator",
			Name:      "catalog_files",
			Help:      "Number of files and folders tracked in the catalog.",
		}),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.LocksHeld, m.NodesAlive, m.CatalogSize)
	return m
}

// StorageNode holds a storage node process's metrics.
type StorageNode struct {
	RequestsTotal *prometheus.CounterVec
	BytesWritten  prometheus.Counter
	BytesRead     prometheus.Counter
	BlobCount     prometheus.Gauge
}

// NewStorageNode builds and registers storage-node metrics.
func NewStorageNode(registry prometheus.Registerer) *StorageNode {
	m := &StorageNode{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netdoc",
			Subsystem: "storagenode",
			Name:      "requests_total",
			Help:      "Total storage-node requests handled, by type and result.",
		}, []string{LabelRequestType, LabelResult}),

		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netdoc",
			Subsystem: "storagenode",
			Name:      "bytes_written_total",
			Help:      "Total bytes written to file content.",
		}),

		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netdoc",
			Subsystem: "storagenode",
			Name:      "bytes_read_total",
			Help:      "Total bytes served on reads.",
		}),

		BlobCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netdoc",
			Subsystem: "storagenode",
			Name:      "blobs",
			Help:      "Number of blobs (content + checkpoints) currently stored.",
		}),
	}

	registry.MustRegister(m.RequestsTotal, m.BytesWritten, m.BytesRead, m.BlobCount)
	return m
}
