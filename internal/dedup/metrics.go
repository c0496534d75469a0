package dedup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	duplicatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsvet_duplicates_total",
			Help: "Items flagged duplicate, labeled by cascade strategy",
		},
		[]string{"strategy"},
	)

	// Rejections caused by an unreachable or failing fingerprint store.
	// Kept separate from genuine duplicates so operators can tell a noisy
	// feed from a down database.
	InfraRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsvet_dedup_infra_rejections_total",
			Help: "Items rejected fail-closed because the duplicate check infrastructure failed",
		},
	)

	FingerprintWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsvet_fingerprint_write_failures_total",
			Help: "Fingerprint inserts that failed and were swallowed",
		},
	)
)
