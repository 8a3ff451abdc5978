package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/usecase/commission"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
)

func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error) {
	if input.Reference == "" {
		return nil, fmt.Errorf("order reference is required")
	}
	if input.Currency == "" {
		return nil, fmt.Errorf("order currency is required")
	}
	if input.BaseAmount.IsNegative() {
		return nil, fmt.Errorf("base amount must not be negative")
	}

	order := &domain.Order{
		ID:               uuid.New().String(),
		Reference:        input.Reference,
		Currency:         input.Currency,
		BaseAmount:       input.BaseAmount,
		Status:           domain.StatusDraft,
		FulfillmentDocID: input.FulfillmentDocID,
		CallbackURL:      input.CallbackURL,
	}

	allocations, err := uc.buildAllocations(order, input.Allocations)
	if err != nil {
		return nil, err
	}
	order.Allocations = allocations

	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateBaseAmount changes the base amount of a draft order and
// recomputes every allocation amount from it.
func (uc *DefaultOrderUsecase) UpdateBaseAmount(ctx context.Context, orderID string, amount string) (*domain.Order, error) {
	baseAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid base amount: %w", err)
	}
	if baseAmount.IsNegative() {
		return nil, fmt.Errorf("base amount must not be negative")
	}

	order, err := uc.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusDraft {
		return nil, fmt.Errorf("base amount is frozen after submission: %w", domain.ErrInvalidTransition)
	}

	if err := uc.OrderRepo.UpdateBaseAmount(ctx, orderID, baseAmount); err != nil {
		return nil, err
	}

	order.BaseAmount = baseAmount
	for _, alloc := range order.Allocations {
		newAmount, err := commission.AllocationAmount(baseAmount, order.Currency, alloc)
		if err != nil {
			return nil, err
		}
		if err := uc.OrderRepo.UpdateAllocationAmount(ctx, alloc.ID, newAmount); err != nil {
			return nil, err
		}
		alloc.Amount = newAmount
	}
	return order, nil
}

// SetAllocations replaces the allocation set of an order still open for
// allocation and recomputes all amounts.
func (uc *DefaultOrderUsecase) SetAllocations(ctx context.Context, orderID string, inputs []orderdto.AllocationInput) (*domain.Order, error) {
	order, err := uc.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusDraft && order.Status != domain.StatusAllocation {
		return nil, fmt.Errorf("allocations are frozen in status %s: %w", order.Status, domain.ErrInvalidTransition)
	}

	allocations, err := uc.buildAllocations(order, inputs)
	if err != nil {
		return nil, err
	}

	if err := uc.OrderRepo.ReplaceAllocations(ctx, orderID, allocations); err != nil {
		return nil, err
	}
	order.Allocations = allocations
	return order, nil
}

func (uc *DefaultOrderUsecase) buildAllocations(order *domain.Order, inputs []orderdto.AllocationInput) ([]*domain.CommissionAllocation, error) {
	allocations := make([]*domain.CommissionAllocation, 0, len(inputs))
	for _, in := range inputs {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("unknown commission role %q", in.Role)
		}
		alloc := &domain.CommissionAllocation{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			Role:            in.Role,
			Rate:            in.Rate,
			FixedAmount:     in.FixedAmount,
			PayeeID:         in.PayeeID,
			NoPayeeRequired: in.NoPayeeRequired,
		}
		amount, err := commission.AllocationAmount(order.BaseAmount, order.Currency, alloc)
		if err != nil {
			return nil, err
		}
		alloc.Amount = amount
		allocations = append(allocations, alloc)
	}
	return allocations, nil
}
