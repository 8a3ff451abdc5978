package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/usecase/commission"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
)

func (uc *DefaultOrderUsecase) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByID(ctx, orderID)
}

func (uc *DefaultOrderUsecase) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByReference(ctx, reference)
}

func (uc *DefaultOrderUsecase) ListOrders(ctx context.Context, input *orderdto.ListOrdersInput) ([]*domain.Order, int64, error) {
	filters := domain.OrderFilters{
		Statuses:  input.Statuses,
		Reference: input.Reference,
		DateFrom:  input.DateFrom,
		DateTo:    input.DateTo,
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return uc.OrderRepo.ListOrders(ctx, filters, page, limit, input.SortBy, input.SortOrder)
}

// NetCommission is a reporting figure only; it never feeds back into
// allocation amounts.
func (uc *DefaultOrderUsecase) NetCommission(ctx context.Context, orderID string) (*orderdto.NetCommissionOutput, error) {
	order, err := uc.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	internal := decimal.Zero
	external := decimal.Zero
	for _, alloc := range order.Allocations {
		if alloc.Role.External() {
			external = external.Add(alloc.Amount)
		} else {
			internal = internal.Add(alloc.Amount)
		}
	}

	return &orderdto.NetCommissionOutput{
		OrderID:       order.ID,
		BaseAmount:    order.BaseAmount,
		InternalTotal: internal,
		ExternalTotal: external,
		Net:           commission.NetResult(order.BaseAmount, order.Allocations),
		Currency:      order.Currency,
	}, nil
}
