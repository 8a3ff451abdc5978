package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
)

func stageApproval(actorID string) *domain.StageApproval {
	return &domain.StageApproval{ActorID: actorID, At: time.Now()}
}

// ApproveOrder closes the allocation stage. Every allocation with a
// non-zero basis must either carry a payee or be explicitly marked as
// not needing one.
func (uc *DefaultOrderUsecase) ApproveOrder(ctx context.Context, input orderdto.TransitionInput) error {
	order, err := uc.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusAllocation {
		uc.Metrics.RecordTransitionError("approve")
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	for _, alloc := range order.Allocations {
		if alloc.HasBasis() && alloc.PayeeID == "" && !alloc.NoPayeeRequired {
			uc.Metrics.RecordTransitionError("approve")
			return fmt.Errorf("allocation %s (%s): %w", alloc.ID, alloc.Role, domain.ErrIncompleteAllocation)
		}
	}

	patch := domain.OrderPatch{Allocator: stageApproval(input.ActorID)}
	if err := uc.OrderRepo.TransitionStatus(ctx, order.ID, domain.StatusAllocation, domain.StatusApproved, patch); err != nil {
		uc.Metrics.RecordTransitionError("approve")
		return err
	}

	uc.afterTransition(order, domain.StatusAllocation, domain.StatusApproved, input.ActorID, "")
	return nil
}
