package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

// FakeAccountRepository is an in-memory AccountRepository. Reads return copies.
type FakeAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, boardingHouseID string, limit, offset int) ([]*domain.Account, error)
}

func NewFakeAccountRepository(accounts ...*domain.Account) *FakeAccountRepository {
	repo := &FakeAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
	for _, acc := range accounts {
		copied := *acc
		repo.accounts[acc.ID] = &copied
	}
	return repo
}

func (m *FakeAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Code == account.Code {
			return domain.ErrDuplicateCode
		}
	}
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *FakeAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *FakeAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *FakeAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.CurrentBalance = balance
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *FakeAccountRepository) List(ctx context.Context, boardingHouseID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, boardingHouseID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if boardingHouseID != "" && acc.BoardingHouseID != boardingHouseID {
			continue
		}
		copied := *acc
		accounts = append(accounts, &copied)
	}
	if offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[offset:]
	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// FakeEntryRepository is an in-memory EntryRepository.
type FakeEntryRepository struct {
	mu      sync.RWMutex
	Entries []domain.LedgerEntry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	ListByAccountFunc func(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)
}

func NewFakeEntryRepository(entries ...domain.LedgerEntry) *FakeEntryRepository {
	return &FakeEntryRepository{Entries: entries}
}

func (m *FakeEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *entry)
	return nil
}

func (m *FakeEntryRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []domain.LedgerEntry
	for _, e := range m.Entries {
		if e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *FakeEntryRepository) NetChangeUntil(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	net := decimal.Zero
	for _, e := range m.Entries {
		if e.AccountID == accountID && !e.TransactionDate.After(at) {
			net = net.Add(e.Delta())
		}
	}
	return net, nil
}

// FakeApprovalRepository is an in-memory ApprovalRepository. Reads return copies.
type FakeApprovalRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.ApprovalRequest

	UpdateFunc func(ctx context.Context, tx usecase.Transaction, req *domain.ApprovalRequest) error
}

func NewFakeApprovalRepository(requests ...*domain.ApprovalRequest) *FakeApprovalRepository {
	repo := &FakeApprovalRepository{
		requests: make(map[string]*domain.ApprovalRequest),
	}
	for _, req := range requests {
		copied := *req
		repo.requests[req.ID] = &copied
	}
	return repo
}

func (m *FakeApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.ApprovalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *FakeApprovalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if req, ok := m.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (m *FakeApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ApprovalRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *FakeApprovalRepository) Update(ctx context.Context, tx usecase.Transaction, req *domain.ApprovalRequest) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *FakeApprovalRepository) List(ctx context.Context, filter usecase.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ApprovalRequest
	for _, req := range m.requests {
		if filter.BoardingHouseID != "" && req.BoardingHouseID != filter.BoardingHouseID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && req.Kind != filter.Kind {
			continue
		}
		copied := *req
		out = append(out, &copied)
	}
	return out, nil
}

// FakeOutboxRepository records outbox events.
type FakeOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewFakeOutboxRepository() *FakeOutboxRepository {
	return &FakeOutboxRepository{}
}

func (m *FakeOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *FakeOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *FakeOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *FakeOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.Events = kept
	return nil
}

// EventTypes lists recorded event types in order.
func (m *FakeOutboxRepository) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}

// FakeAuditRepository records audit logs.
type FakeAuditRepository struct {
	mu   sync.Mutex
	Logs []*domain.AuditLog
}

func NewFakeAuditRepository() *FakeAuditRepository {
	return &FakeAuditRepository{}
}

func (m *FakeAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *FakeAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

// FakeTransactionManager hands out FakeTransactions and counts outcomes.
type FakeTransactionManager struct {
	mu         sync.Mutex
	Committed  int
	RolledBack int

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewFakeTransactionManager() *FakeTransactionManager {
	return &FakeTransactionManager{}
}

func (m *FakeTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &FakeTransaction{manager: m}, nil
}

// FakeTransaction is a Transaction whose rollback after commit is a no-op.
type FakeTransaction struct {
	manager *FakeTransactionManager
	done    bool

	CommitFunc func(ctx context.Context) error
}

func (m *FakeTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.done = true
	if m.manager != nil {
		m.manager.mu.Lock()
		m.manager.Committed++
		m.manager.mu.Unlock()
	}
	return nil
}

func (m *FakeTransaction) Rollback(ctx context.Context) error {
	if m.done {
		return nil
	}
	m.done = true
	if m.manager != nil {
		m.manager.mu.Lock()
		m.manager.RolledBack++
		m.manager.mu.Unlock()
	}
	return nil
}

// FakeIDGenerator returns id-1, id-2, ... unless GenerateFunc is set.
type FakeIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (m *FakeIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// FakeIdempotencyStore is an in-memory IdempotencyStore.
type FakeIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewFakeIdempotencyStore() *FakeIdempotencyStore {
	return &FakeIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *FakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *FakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *FakeIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Value returns the stored bytes for key.
func (m *FakeIdempotencyStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}
