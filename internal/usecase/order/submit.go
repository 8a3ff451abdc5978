package usecase

import (
	"context"
	"fmt"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/usecase/commission"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
)

// SubmitForReview moves a draft into document review. The document
// storage collaborator decides whether required attachments are present.
func (uc *DefaultOrderUsecase) SubmitForReview(ctx context.Context, input orderdto.TransitionInput) error {
	order, err := uc.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusDraft {
		uc.Metrics.RecordTransitionError("submit")
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	ok, err := uc.Documents.HasRequiredDocuments(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("document check for order %s: %w", order.ID, err)
	}
	if !ok {
		uc.Metrics.RecordTransitionError("submit")
		return fmt.Errorf("order %s: %w", order.ID, domain.ErrMissingDocuments)
	}

	if err := uc.OrderRepo.TransitionStatus(ctx, order.ID, domain.StatusDraft, domain.StatusDocumentReview, domain.OrderPatch{}); err != nil {
		uc.Metrics.RecordTransitionError("submit")
		return err
	}

	uc.afterTransition(order, domain.StatusDraft, domain.StatusDocumentReview, input.ActorID, "")
	return nil
}

// BeginAllocation closes document review and opens the allocation stage,
// recording the reviewing actor. When the order carries no allocations
// of its own, the configured default rule set is expanded into draft
// allocations.
func (uc *DefaultOrderUsecase) BeginAllocation(ctx context.Context, input orderdto.TransitionInput) error {
	if input.ActorID == "" {
		return fmt.Errorf("document review requires a recorded actor")
	}

	order, err := uc.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusDocumentReview {
		uc.Metrics.RecordTransitionError("begin_allocation")
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidTransition)
	}

	if len(order.Allocations) == 0 && len(uc.DefaultRules) > 0 {
		allocations := commission.ExpandRules(order.ID, uc.DefaultRules)
		for _, alloc := range allocations {
			amount, err := commission.AllocationAmount(order.BaseAmount, order.Currency, alloc)
			if err != nil {
				return err
			}
			alloc.Amount = amount
		}
		if err := uc.OrderRepo.ReplaceAllocations(ctx, order.ID, allocations); err != nil {
			return err
		}
	}

	patch := domain.OrderPatch{Reviewer: stageApproval(input.ActorID)}
	if err := uc.OrderRepo.TransitionStatus(ctx, order.ID, domain.StatusDocumentReview, domain.StatusAllocation, patch); err != nil {
		uc.Metrics.RecordTransitionError("begin_allocation")
		return err
	}

	uc.afterTransition(order, domain.StatusDocumentReview, domain.StatusAllocation, input.ActorID, "")
	return nil
}
