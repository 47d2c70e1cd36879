package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookshelf_http_request_seconds",
		Help:    "Latency of HTTP requests by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	CompensationWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_compensation_writes_total",
		Help: "Back-reference writes applied to the foreign collection.",
	}, []string{"side", "operation"})

	OrphanDeletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_orphan_deletions_total",
		Help: "Records deleted because their relationship set became empty.",
	}, []string{"side"})

	PartialCompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_partial_compensations_total",
		Help: "Compensation loops that failed after starting.",
	}, []string{"side", "operation"})

	ExistenceCheckFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_existence_check_failures_total",
		Help: "Requested relationship ids that did not resolve one-to-one.",
	}, []string{"side"})

	AuditMismatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookshelf_link_audit_mismatches",
		Help: "Number of one-sided or dangling links found by the last audit.",
	})
)
