package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
)

// PostOrder performs the final accounting transition. The status flip is
// compare-and-set, so two concurrent posts cannot both succeed. The
// ledger confirmation and settlement generation run after the flip and
// never roll it back: an already-confirmed financial document must not
// be undone by a downstream failure, the reconciliation job recovers
// instead.
func (uc *DefaultOrderUsecase) PostOrder(ctx context.Context, input orderdto.TransitionInput) (*orderdto.PostOrderOutput, error) {
	order, err := uc.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusApproved {
		uc.Metrics.RecordTransitionError("post")
		return nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	if order.Allocator != nil && order.Allocator.ActorID == input.ActorID &&
		!input.HasCapability(CapabilityOverrideApprover) {
		uc.Metrics.RecordTransitionError("post")
		return nil, fmt.Errorf("actor %s allocated order %s: %w", input.ActorID, order.ID, domain.ErrSeparationOfDuties)
	}

	patch := domain.OrderPatch{
		Approver: stageApproval(input.ActorID),
		Poster:   stageApproval(input.ActorID),
	}
	if err := uc.OrderRepo.TransitionStatus(ctx, order.ID, domain.StatusApproved, domain.StatusPosted, patch); err != nil {
		uc.Metrics.RecordTransitionError("post")
		return nil, err
	}

	amount, _ := order.BaseAmount.Float64()
	uc.Metrics.RecordOrderPosted(order.Currency, amount)
	uc.afterTransition(order, domain.StatusApproved, domain.StatusPosted, input.ActorID, "")

	output := &orderdto.PostOrderOutput{Order: order}

	result, err := uc.SettlementUsecase.FinalizePostedOrder(ctx, order)
	if result != nil {
		for allocID := range result.Failed {
			output.FailedSettlements = append(output.FailedSettlements, allocID)
		}
	}
	if err != nil {
		// The order stays posted; the reconciliation job retries the
		// settlement side.
		slog.Error("post-posting settlement finalization failed",
			"order_id", order.ID,
			"error", err.Error())
		if errors.Is(err, domain.ErrGenerationPartial) || errors.Is(err, domain.ErrCollaboratorUnavailable) {
			return output, err
		}
		return output, fmt.Errorf("order %s: %w", order.ID, err)
	}

	return output, nil
}
