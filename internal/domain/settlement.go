package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementTriggered SettlementStatus = "TRIGGERED"
	SettlementPosted    SettlementStatus = "POSTED"
	SettlementCancelled SettlementStatus = "CANCELLED"
)

// SettlementDocument is the payable record generated to pay out one
// commission allocation. At most one exists per (order, allocation).
type SettlementDocument struct {
	ID           string
	OrderID      string
	AllocationID string
	PayeeID      string
	Role         CommissionRole
	Amount       decimal.Decimal
	Currency     string

	// External document whose fulfillment triggers posting.
	ExternalDocID string

	Status      SettlementStatus
	TriggeredAt *time.Time
	PostedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
