package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Ledger metrics
	EntriesCreated prometheus.Counter
	EntriesDeleted prometheus.Counter
	EntryErrors    *prometheus.CounterVec

	// Transfer metrics
	TransfersCreated prometheus.Counter

	// Reconciliation metrics
	GroupsCreated     prometheus.Counter
	GroupsVoided      prometheus.Counter
	GroupCreateErrors *prometheus.CounterVec
	GroupSize         prometheus.Histogram

	// Issue scan metrics
	IssueScans      prometheus.Counter
	IssuesDetected  *prometheus.CounterVec
	IssueScanLength prometheus.Histogram

	// View refresh metrics
	ViewRefreshes prometheus.Counter
	StaleFetches  prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_entries_created_total",
			Help: "Total number of ledger entries created",
		}),
		EntriesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_entries_deleted_total",
			Help: "Total number of ledger entries soft-deleted",
		}),
		EntryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bynkbook_entry_errors_total",
				Help: "Total number of entry operation errors by type",
			},
			[]string{"error_type"},
		),

		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_transfers_created_total",
			Help: "Total number of transfer pairs created",
		}),

		GroupsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_match_groups_created_total",
			Help: "Total number of match groups created",
		}),
		GroupsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_match_groups_voided_total",
			Help: "Total number of match groups voided",
		}),
		GroupCreateErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bynkbook_match_group_errors_total",
				Help: "Total number of rejected match proposals by reason",
			},
			[]string{"reason"},
		),
		GroupSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bynkbook_match_group_size",
			Help:    "Number of items per created match group",
			Buckets: []float64{2, 3, 4, 5, 8, 12, 20},
		}),

		IssueScans: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_issue_scans_total",
			Help: "Total number of issue scans run",
		}),
		IssuesDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bynkbook_issues_detected_total",
				Help: "Total number of issues detected by kind",
			},
			[]string{"kind"},
		),
		IssueScanLength: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bynkbook_issue_scan_duration_seconds",
			Help:    "Duration of issue scans",
			Buckets: prometheus.DefBuckets,
		}),

		ViewRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_view_refreshes_total",
			Help: "Total number of background ledger view refreshes",
		}),
		StaleFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bynkbook_stale_fetches_discarded_total",
			Help: "Total number of stale list results discarded",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bynkbook_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bynkbook_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bynkbook_db_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bynkbook_db_query_duration_seconds",
				Help:    "Duration of database queries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bynkbook_db_connections",
			Help: "Current number of database connections",
		}),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bynkbook_rate_limit_hits_total",
				Help: "Total number of rate-limited requests",
			},
			[]string{"path"},
		),
	}
}
