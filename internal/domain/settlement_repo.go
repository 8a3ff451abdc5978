package domain

import "context"

type SettlementRepository interface {
	// CreateIfAbsent inserts the document unless one already exists for
	// the same (order, allocation) pair. Reports whether a row was
	// actually inserted.
	CreateIfAbsent(ctx context.Context, doc *SettlementDocument) (bool, error)

	GetByID(ctx context.Context, settlementID string) (*SettlementDocument, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*SettlementDocument, error)
	FindByExternalDocID(ctx context.Context, externalDocID string) ([]*SettlementDocument, error)

	// FindOpen returns documents still in PENDING or TRIGGERED.
	FindOpen(ctx context.Context, limit int) ([]*SettlementDocument, error)

	// TransitionStatus is a compare-and-set status update. Reports false
	// without error when the document already left the expected status,
	// so replayed events degrade to no-ops.
	TransitionStatus(ctx context.Context, settlementID string, from, to SettlementStatus) (bool, error)

	// CancelOpenByOrderID cancels every unposted document of an order.
	CancelOpenByOrderID(ctx context.Context, orderID string) error
}
