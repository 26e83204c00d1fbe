package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application's prometheus collectors. A nil *Metrics is
// valid and records nothing, so tests can pass nil.
type Metrics struct {
	walletMutationsTotal    *prometheus.CounterVec
	receiptTransitionsTotal *prometheus.CounterVec
	fxFetchesTotal          *prometheus.CounterVec
	fxFetchDuration         prometheus.Histogram
	uploadChunksTotal       prometheus.Counter
	uploadBytesTotal        prometheus.Counter
	uploadSessionsActive    prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		walletMutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wla",
				Subsystem: "wallet",
				Name:      "mutations_total",
				Help:      "Total wallet ledger mutations partitioned by kind and result.",
			},
			[]string{"kind", "result"},
		),
		receiptTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wla",
				Subsystem: "receipt",
				Name:      "transitions_total",
				Help:      "Total receipt state transitions partitioned by target status.",
			},
			[]string{"status"},
		),
		fxFetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wla",
				Subsystem: "fx",
				Name:      "fetches_total",
				Help:      "Total FX provider fetches partitioned by result.",
			},
			[]string{"result"},
		),
		fxFetchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "wla",
				Subsystem: "fx",
				Name:      "fetch_duration_seconds",
				Help:      "Latency of FX provider fetches.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		uploadChunksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wla",
				Subsystem: "upload",
				Name:      "chunks_total",
				Help:      "Total upload chunks received.",
			},
		),
		uploadBytesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wla",
				Subsystem: "upload",
				Name:      "bytes_total",
				Help:      "Total decompressed upload bytes received.",
			},
		),
		uploadSessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wla",
				Subsystem: "upload",
				Name:      "sessions_active",
				Help:      "Chunked upload sessions currently open.",
			},
		),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// WalletMutation records one ledger mutation attempt.
func (m *Metrics) WalletMutation(kind string, err error) {
	if m == nil {
		return
	}
	m.walletMutationsTotal.WithLabelValues(kind, result(err)).Inc()
}

// ReceiptTransition records a completed receipt state transition.
func (m *Metrics) ReceiptTransition(status string) {
	if m == nil {
		return
	}
	m.receiptTransitionsTotal.WithLabelValues(status).Inc()
}

// FXFetch records one provider fetch with its latency.
func (m *Metrics) FXFetch(start time.Time, err error) {
	if m == nil {
		return
	}
	m.fxFetchesTotal.WithLabelValues(result(err)).Inc()
	m.fxFetchDuration.Observe(time.Since(start).Seconds())
}

// UploadChunk records one received chunk and its decompressed size.
func (m *Metrics) UploadChunk(bytes int) {
	if m == nil {
		return
	}
	m.uploadChunksTotal.Inc()
	m.uploadBytesTotal.Add(float64(bytes))
}

// UploadSessionOpened tracks the active session gauge.
func (m *Metrics) UploadSessionOpened() {
	if m == nil {
		return
	}
	m.uploadSessionsActive.Inc()
}

// UploadSessionClosed tracks the active session gauge.
func (m *Metrics) UploadSessionClosed() {
	if m == nil {
		return
	}
	m.uploadSessionsActive.Dec()
}
