package usecase

import (
	"context"
	"time"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/infrastructure/metrics"
)

// withRetry runs op through retrier, or once when retrier is nil.
func withRetry(ctx context.Context, retrier Retrier, op func() error) error {
	if retrier == nil {
		return op()
	}
	return retrier.Retry(ctx, op)
}

func newOutboxEvent(idGen IDGenerator, aggregateType, aggregateID, eventType string, payload map[string]any, at time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
		Published:     false,
	}
}

// auditTx writes a success audit record inside tx.
func auditTx(ctx context.Context, tx Transaction, repo AuditRepository, idGen IDGenerator,
	action domain.AuditAction, resourceType, resourceID string, before, after any) error {
	if repo == nil {
		return nil
	}

	auditLog := &domain.AuditLog{
		ID:           idGen.Generate(),
		UserID:       domain.ActorID(ctx),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	return repo.CreateTx(ctx, tx, auditLog)
}

// auditFailure records a refused mutation outside any transaction.
// Failures to write it are ignored; the caller already has an error to return.
func auditFailure(ctx context.Context, repo AuditRepository, idGen IDGenerator, m *metrics.Metrics,
	action domain.AuditAction, resourceType, resourceID string, cause error) {
	if repo == nil {
		return
	}

	auditLog := &domain.AuditLog{
		ID:           idGen.Generate(),
		UserID:       domain.ActorID(ctx),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       string(domain.AuditStatusFailure),
		ErrorMessage: cause.Error(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(ctx, auditLog); err == nil && m != nil {
		m.AuditLogsCreated.WithLabelValues(string(action), string(domain.AuditStatusFailure)).Inc()
	}
}

// checkScope hides accounts that belong to another boarding house.
func checkScope(ctx context.Context, account *domain.Account) error {
	scope := domain.BoardingHouseFromContext(ctx)
	if scope != "" && account.BoardingHouseID != scope {
		return domain.ErrAccountNotFound
	}
	return nil
}
