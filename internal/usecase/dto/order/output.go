package orderdto

import (
	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

type PostOrderOutput struct {
	Order *domain.Order

	// Allocation IDs whose settlement document could not be created;
	// the reconciliation job retries them.
	FailedSettlements []string
}

type NetCommissionOutput struct {
	OrderID       string
	BaseAmount    decimal.Decimal
	InternalTotal decimal.Decimal
	ExternalTotal decimal.Decimal
	Net           decimal.Decimal
	Currency      string
}
