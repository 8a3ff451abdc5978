package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusDraft          OrderStatus = "DRAFT"
	StatusDocumentReview OrderStatus = "DOCUMENT_REVIEW"
	StatusAllocation     OrderStatus = "ALLOCATION"
	StatusApproved       OrderStatus = "APPROVED"
	StatusPosted         OrderStatus = "POSTED"
	StatusRejected       OrderStatus = "REJECTED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// StageApproval records who signed off a workflow stage and when.
type StageApproval struct {
	ActorID string
	At      time.Time
}

type Order struct {
	ID         string
	Reference  string
	Currency   string
	BaseAmount decimal.Decimal
	Status     OrderStatus
	Version    int64

	Reviewer  *StageApproval
	Allocator *StageApproval
	Approver  *StageApproval
	Poster    *StageApproval

	RejectReason         string
	SettlementsGenerated bool

	// External document whose receipt/payment completion releases the
	// commission payables of this order.
	FulfillmentDocID string

	CallbackURL string

	Allocations []*CommissionAllocation

	CreatedAt time.Time
	UpdatedAt time.Time
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusDraft:          {StatusDocumentReview, StatusCancelled},
	StatusDocumentReview: {StatusAllocation, StatusRejected, StatusCancelled},
	StatusAllocation:     {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:       {StatusPosted, StatusRejected, StatusCancelled},
	StatusPosted:         {StatusCancelled}, // ledger-side cancellation only
}

func TransitionAllowed(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderFilters struct {
	Statuses  []OrderStatus
	Reference string
	DateFrom  time.Time
	DateTo    time.Time
}
