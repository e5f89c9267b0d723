package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Cash movement metrics
	CashIssued        prometheus.Counter
	ExpensesRecorded  prometheus.Counter
	CashAmount        *prometheus.HistogramVec
	InsufficientFunds prometheus.Counter
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountBalance  *prometheus.GaugeVec

	// Approval metrics
	RequestsSubmitted *prometheus.CounterVec
	RequestDecisions  *prometheus.CounterVec

	// Report metrics
	ReportCache                 *prometheus.CounterVec
	ReconciliationDiscrepancies prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Cash movement metrics
		CashIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "pettycash_issuances_total",
			Help: "Total number of cash issuances recorded",
		}),
		ExpensesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pettycash_expenses_total",
			Help: "Total number of expenses recorded",
		}),
		CashAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pettycash_entry_amount",
				Help:    "Ledger entry amounts by type",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 100000},
			},
			[]string{"type"},
		),
		InsufficientFunds: factory.NewCounter(prometheus.CounterOpts{
			Name: "pettycash_insufficient_funds_total",
			Help: "Total number of expenses refused for insufficient funds",
		}),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pettycash_operation_duration_seconds",
				Help:    "Duration of ledger mutations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_operation_errors_total",
				Help: "Total number of failed ledger mutations by type",
			},
			[]string{"operation", "error_type"},
		),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pettycash_accounts_created_total",
			Help: "Total number of petty-cash accounts created",
		}),
		AccountBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pettycash_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),

		// Approval metrics
		RequestsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_requests_submitted_total",
				Help: "Total approval requests submitted",
			},
			[]string{"kind"},
		),
		RequestDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_request_decisions_total",
				Help: "Total approval request transitions",
			},
			[]string{"kind", "decision"},
		),

		// Report metrics
		ReportCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_report_cache_total",
				Help: "Ledger report cache lookups",
			},
			[]string{"result"},
		),
		ReconciliationDiscrepancies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pettycash_reconciliation_discrepancies",
			Help: "Accounts whose stored balance disagrees with their entries at last check",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pettycash_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_outbox_events_total",
				Help: "Outbox events handed to the publisher",
			},
			[]string{"event_type", "status"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pettycash_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
