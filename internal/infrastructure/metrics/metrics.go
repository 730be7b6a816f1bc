package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCommitted *prometheus.CounterVec
	TransactionsRejected  *prometheus.CounterVec
	TransactionDuration   prometheus.Histogram
	TransactionAmount     prometheus.Histogram
	CommitRetries         prometheus.Counter

	// Account metrics
	AccountsOpened  prometheus.Counter
	EntriesRecorded *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationRuns       prometheus.Counter
	ReconciliationMismatches prometheus.Counter

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transaction metrics
		TransactionsCommitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_committed_total",
				Help: "Total number of committed transactions by type",
			},
			[]string{"type"},
		),
		TransactionsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_rejected_total",
				Help: "Total number of rejected transactions by reason",
			},
			[]string{"reason"},
		),
		TransactionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transaction_duration_seconds",
			Help:    "Duration of transaction commits",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		CommitRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_commit_retries_total",
			Help: "Total number of commit attempts retried after storage conflicts",
		}),

		// Account metrics
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		EntriesRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entries_recorded_total",
				Help: "Total number of entries recorded by type",
			},
			[]string{"entry_type"},
		),

		// Reconciliation metrics
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		ReconciliationMismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconciliation_mismatches_total",
			Help: "Total number of accounts found inconsistent during reconciliation",
		}),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}
