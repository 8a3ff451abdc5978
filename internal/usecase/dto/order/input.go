package orderdto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

type CreateOrderInput struct {
	Reference        string
	Currency         string
	BaseAmount       decimal.Decimal
	FulfillmentDocID string
	CallbackURL      string

	// Optional per-order rule set; when empty the configured default
	// rules apply once the order enters the allocation stage.
	Allocations []AllocationInput
}

type AllocationInput struct {
	Role            domain.CommissionRole
	Rate            decimal.Decimal
	FixedAmount     decimal.Decimal
	PayeeID         string
	NoPayeeRequired bool
}

// TransitionInput identifies the actor driving a workflow transition.
type TransitionInput struct {
	OrderID      string
	ActorID      string
	Capabilities []string
	Reason       string

	// Set when a posted order is voided by the external ledger.
	ExternalCancellation bool
}

func (in TransitionInput) HasCapability(name string) bool {
	for _, c := range in.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

type ListOrdersInput struct {
	Statuses  []domain.OrderStatus
	Reference string
	DateFrom  time.Time
	DateTo    time.Time
	Page      int64
	Limit     int64
	SortBy    string
	SortOrder string
}
