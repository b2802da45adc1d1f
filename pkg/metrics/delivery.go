package metrics

import (
	"github.com/ftpgram/ftpgram/pkg/delivery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// deliveryMetrics is the Prometheus implementation of delivery.Metrics.
type deliveryMetrics struct {
	uploads     prometheus.Counter
	uploadBytes prometheus.Histogram
	deliveries  *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewDeliveryMetrics creates Prometheus-backed delivery metrics.
//
// Returns nil if metrics are not enabled (Init not called); the delivery
// pipeline treats a nil Metrics as a no-op.
func NewDeliveryMetrics() delivery.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := Registry()

	return &deliveryMetrics{
		uploads: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "ftpgram_uploads_total",
			Help: "Total number of completed FTP uploads handed to delivery",
		}),
		uploadBytes: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "ftpgram_upload_bytes",
			Help: "Distribution of uploaded file sizes in bytes",
			Buckets: []float64{
				16384,    // 16KB - thumbnails
				65536,    // 64KB
				262144,   // 256KB - typical snapshot
				1048576,  // 1MB
				4194304,  // 4MB
				10485760, // 10MB - photo ceiling
				52428800, // 50MB - video clips
			},
		}),
		deliveries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpgram_deliveries_total",
				Help: "Total successful deliveries by outbound message kind",
			},
			[]string{"kind"}, // "photo", "document", "video"
		),
		failures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpgram_delivery_failures_total",
				Help: "Total failed delivery attempts by failure reason",
			},
			[]string{"reason"},
		),
	}
}

func (m *deliveryMetrics) RecordUpload(bytes int64) {
	m.uploads.Inc()
	m.uploadBytes.Observe(float64(bytes))
}

func (m *deliveryMetrics) RecordDelivery(kind string) {
	m.deliveries.WithLabelValues(kind).Inc()
}

func (m *deliveryMetrics) RecordFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}
