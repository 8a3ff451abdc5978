package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

// The unique index over (order_id, allocation_id) is what makes
// settlement generation idempotent at the storage layer.
type SettlementModel struct {
	ID           string                  `gorm:"primaryKey"`
	OrderID      string                  `gorm:"type:uuid;uniqueIndex:idx_order_allocation"`
	AllocationID string                  `gorm:"type:uuid;uniqueIndex:idx_order_allocation"`
	PayeeID      string                  `gorm:"index"`
	Role         domain.CommissionRole   `gorm:"size:20"`
	Amount       decimal.Decimal         `gorm:"type:decimal(18,4)"`
	Currency     string                  `gorm:"size:3"`
	Status       domain.SettlementStatus `gorm:"index:idx_settlement_status"`

	ExternalDocID string `gorm:"index"`

	TriggeredAt *time.Time
	PostedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SettlementModel) TableName() string {
	return "settlement_documents"
}
