package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iho/pettycash/internal/infrastructure/metrics"
	"github.com/iho/pettycash/internal/ledger"
)

// ErrCacheMiss is returned by Cache implementations for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// ReportUseCase builds ledger reports with running balances.
type ReportUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	cache       Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewReportUseCase creates a new ReportUseCase. cache may be nil.
func NewReportUseCase(accountRepo AccountRepository, entryRepo EntryRepository, cache Cache, cacheTTL time.Duration, metrics *metrics.Metrics) *ReportUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultReportCacheTTL
	}
	return &ReportUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
	}
}

// GetLedgerReport returns the account's ledger inside filter. Reports are
// cached per account version, so any new entry invalidates them.
func (uc *ReportUseCase) GetLedgerReport(ctx context.Context, accountID string, filter ledger.DateFilter) (*ledger.Report, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, account); err != nil {
		return nil, err
	}

	key := reportCacheKey(account.ID, account.Version, filter)
	if report, ok := uc.fromCache(ctx, key); ok {
		return report, nil
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	report, err := ledger.BuildReport(account, entries, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build report for account %s: %w", account.ID, err)
	}
	report.GeneratedAt = time.Now().UTC()

	uc.toCache(ctx, key, report)
	return report, nil
}

func (uc *ReportUseCase) fromCache(ctx context.Context, key string) (*ledger.Report, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.countCache("miss")
		return nil, false
	}

	var report ledger.Report
	if err := json.Unmarshal(data, &report); err != nil {
		uc.countCache("corrupt")
		_ = uc.cache.Delete(ctx, key)
		return nil, false
	}

	uc.countCache("hit")
	return &report, true
}

func (uc *ReportUseCase) toCache(ctx context.Context, key string, report *ledger.Report) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.countCache("error")
	}
}

func (uc *ReportUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.ReportCache.WithLabelValues(result).Inc()
	}
}

func reportCacheKey(accountID string, version int64, filter ledger.DateFilter) string {
	return fmt.Sprintf("report:%s:v%d:%s", accountID, version, filter.Key())
}
