package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultReportCacheTTL bounds how long a rendered ledger report is reused
	DefaultReportCacheTTL = 5 * time.Minute

	// reconcileBatchSize is the page size used when walking all accounts
	reconcileBatchSize = 500
)
