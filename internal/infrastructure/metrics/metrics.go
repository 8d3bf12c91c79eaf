package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Claim lifecycle metrics
	ClaimsSubmitted prometheus.Counter
	SubmitDuration  prometheus.Histogram
	ClaimsByStatus  *prometheus.GaugeVec
	ClaimAmount     prometheus.Histogram

	// Rule engine metrics
	RuleMatches   *prometheus.CounterVec
	ClaimsHeld    prometheus.Counter
	ActiveRules   prometheus.Gauge
	MatchDuration prometheus.Histogram

	// Approval metrics
	DecisionsRecorded *prometheus.CounterVec
	Escalations       prometheus.Counter

	// Reimbursement metrics
	ReimbursementsProcessed *prometheus.CounterVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	OutboxBacklog   prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Claim lifecycle metrics
		ClaimsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimcore_claims_submitted_total",
			Help: "Total number of claims submitted",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimcore_submit_duration_seconds",
			Help:    "Duration of claim submission transactions",
			Buckets: prometheus.DefBuckets,
		}),
		ClaimsByStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "claimcore_claims_by_status",
				Help: "Current number of claims per status",
			},
			[]string{"status"},
		),
		ClaimAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimcore_claim_amount",
			Help:    "Submitted claim totals in the reference currency",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 100000},
		}),

		// Rule engine metrics
		RuleMatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_rule_matches_total",
				Help: "Total rule matches by resulting action",
			},
			[]string{"action"},
		),
		ClaimsHeld: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimcore_claims_held_total",
			Help: "Total submissions held because no rule matched",
		}),
		ActiveRules: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "claimcore_active_rules",
			Help: "Current number of active approval rules",
		}),
		MatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimcore_rule_match_duration_seconds",
			Help:    "Duration of rule evaluation per submission",
			Buckets: prometheus.DefBuckets,
		}),

		// Approval metrics
		DecisionsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_decisions_recorded_total",
				Help: "Total approval decisions recorded by verdict",
			},
			[]string{"decision"},
		),
		Escalations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimcore_escalations_total",
			Help: "Total approval rows escalated to another approver",
		}),

		// Reimbursement metrics
		ReimbursementsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_reimbursements_total",
				Help: "Total reimbursement attempts by outcome",
			},
			[]string{"outcome"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "claimcore_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "claimcore_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimcore_events_published_total",
				Help: "Total outbox events dispatched by type",
			},
			[]string{"event_type"},
		),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "claimcore_outbox_backlog",
			Help: "Unpublished outbox events at last dispatcher sweep",
		}),
	}
}
