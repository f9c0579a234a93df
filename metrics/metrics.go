package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalyzeRequestsTotal counts analyze requests by outcome.
	AnalyzeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photolocation",
		Subsystem: "api",
		Name:      "analyze_requests_total",
		Help:      "Total number of image analyze requests, labeled by result.",
	}, []string{"result"})

	// TokensUsedTotal counts metered provider tokens actually recorded.
	TokensUsedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "photolocation",
		Subsystem: "quota",
		Name:      "tokens_used_total",
		Help:      "Total number of provider tokens recorded against the quota.",
	})

	// QuotaRejectedTotal counts requests rejected by the quota gate.
	QuotaRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photolocation",
		Subsystem: "quota",
		Name:      "rejected_total",
		Help:      "Total number of requests rejected by the quota gate, labeled by exhausted ceiling.",
	}, []string{"ceiling"})

	// FallbackAttemptsTotal counts failed model attempts during fallback.
	FallbackAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photolocation",
		Subsystem: "gateway",
		Name:      "fallback_attempts_total",
		Help:      "Total number of failed model attempts that triggered fallback, labeled by model.",
	}, []string{"model"})

	// StoredImages is the current number of images held in memory.
	StoredImages = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "photolocation",
		Subsystem: "store",
		Name:      "images",
		Help:      "Current number of uploaded images held in the ephemeral store.",
	})

	// StoredImageBytes is the total payload size of stored images.
	StoredImageBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "photolocation",
		Subsystem: "store",
		Name:      "image_bytes",
		Help:      "Total byte size of uploaded images held in the ephemeral store.",
	})

	// StoredShares is the current number of share snapshots in memory.
	StoredShares = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "photolocation",
		Subsystem: "store",
		Name:      "shares",
		Help:      "Current number of share snapshots held in the ephemeral store.",
	})

	// SweepRemovedTotal counts entries removed by expiry sweeps.
	SweepRemovedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photolocation",
		Subsystem: "store",
		Name:      "sweep_removed_total",
		Help:      "Total number of entries removed by expiry sweeps, labeled by store.",
	}, []string{"store"})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalyzeRequestsTotal,
			TokensUsedTotal,
			QuotaRejectedTotal,
			FallbackAttemptsTotal,
			StoredImages,
			StoredImageBytes,
			StoredShares,
			SweepRemovedTotal,
		)
	})
}
