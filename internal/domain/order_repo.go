package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderPatch carries the columns a status transition writes alongside
// the status itself. Nil fields are left untouched.
type OrderPatch struct {
	Reviewer  *StageApproval
	Allocator *StageApproval
	Approver  *StageApproval
	Poster    *StageApproval

	RejectReason   *string
	ClearApprovals bool
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*Order, error)
	ListOrders(ctx context.Context, filters OrderFilters, page, limit int64, sortBy, sortOrder string) ([]*Order, int64, error)

	// TransitionStatus moves the order from one status to another with a
	// compare-and-set on the current status. Returns ErrInvalidTransition
	// when the order is no longer in the expected status.
	TransitionStatus(ctx context.Context, orderID string, from, to OrderStatus, patch OrderPatch) error

	// ReplaceAllocations swaps the order's allocation set atomically.
	ReplaceAllocations(ctx context.Context, orderID string, allocations []*CommissionAllocation) error
	UpdateAllocationAmount(ctx context.Context, allocationID string, amount decimal.Decimal) error
	UpdateBaseAmount(ctx context.Context, orderID string, amount decimal.Decimal) error

	// MarkSettlementsGenerated flips the generation guard, but only if it
	// is still unset. Returns false when another invocation won.
	MarkSettlementsGenerated(ctx context.Context, orderID string) (bool, error)

	// FindPostedUnsettled returns posted orders whose settlement
	// generation has not completed yet.
	FindPostedUnsettled(ctx context.Context, limit int) ([]*Order, error)
}
