package usecase

import (
	"context"
	"fmt"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
)

// RejectOrder sends the order back to draft with every stage sign-off
// cleared. A reason is mandatory.
func (uc *DefaultOrderUsecase) RejectOrder(ctx context.Context, input orderdto.TransitionInput) error {
	if input.Reason == "" {
		return domain.ErrMissingReason
	}

	order, err := uc.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if !domain.TransitionAllowed(order.Status, domain.StatusRejected) {
		uc.Metrics.RecordTransitionError("reject")
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	reason := input.Reason
	patch := domain.OrderPatch{
		RejectReason:   &reason,
		ClearApprovals: true,
	}
	if err := uc.OrderRepo.TransitionStatus(ctx, order.ID, order.Status, domain.StatusDraft, patch); err != nil {
		uc.Metrics.RecordTransitionError("reject")
		return err
	}

	// Nothing should be payable for an order that left the flow.
	if err := uc.SettlementUsecase.CancelForOrder(ctx, order.ID); err != nil {
		return err
	}

	uc.afterTransition(order, order.Status, domain.StatusRejected, input.ActorID, input.Reason)
	return nil
}

// CancelOrder soft-cancels the order. A posted order can only be
// cancelled when the underlying financial document was voided on the
// ledger side.
func (uc *DefaultOrderUsecase) CancelOrder(ctx context.Context, input orderdto.TransitionInput) error {
	order, err := uc.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if order.Status == domain.StatusPosted && !input.ExternalCancellation {
		uc.Metrics.RecordTransitionError("cancel")
		return fmt.Errorf("posted order %s is terminal: %w", order.ID, domain.ErrInvalidTransition)
	}
	if !domain.TransitionAllowed(order.Status, domain.StatusCancelled) {
		uc.Metrics.RecordTransitionError("cancel")
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	if err := uc.OrderRepo.TransitionStatus(ctx, order.ID, order.Status, domain.StatusCancelled, domain.OrderPatch{}); err != nil {
		uc.Metrics.RecordTransitionError("cancel")
		return err
	}

	if err := uc.SettlementUsecase.CancelForOrder(ctx, order.ID); err != nil {
		return err
	}

	uc.afterTransition(order, order.Status, domain.StatusCancelled, input.ActorID, input.Reason)
	return nil
}
