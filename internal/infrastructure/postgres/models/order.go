package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

type OrderModel struct {
	ID         string             `gorm:"primaryKey;type:uuid"`
	Reference  string             `gorm:"uniqueIndex"`
	Currency   string             `gorm:"size:3"`
	BaseAmount decimal.Decimal    `gorm:"type:decimal(18,4)"`
	Status     domain.OrderStatus `gorm:"index:idx_status"`
	Version    int64

	ReviewerID  *string
	ReviewedAt  *time.Time
	AllocatorID *string
	AllocatedAt *time.Time
	ApproverID  *string
	ApprovedAt  *time.Time
	PosterID    *string
	PostedAt    *time.Time

	RejectReason         string
	SettlementsGenerated bool `gorm:"index:idx_status_settled"`

	FulfillmentDocID string `gorm:"index"`
	CallbackURL      string

	Allocations []AllocationModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `gorm:"index:idx_created_at"`
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type AllocationModel struct {
	ID              string                `gorm:"primaryKey;type:uuid"`
	OrderID         string                `gorm:"type:uuid;index"`
	Role            domain.CommissionRole `gorm:"size:20"`
	Rate            decimal.Decimal       `gorm:"type:decimal(9,4)"`
	FixedAmount     decimal.Decimal       `gorm:"type:decimal(18,4)"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,4)"`
	PayeeID         string
	NoPayeeRequired bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AllocationModel) TableName() string {
	return "commission_allocations"
}
