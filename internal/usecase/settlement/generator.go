package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

// GenerationResult reports the outcome per allocation. Creation attempts
// are independent: one failure never blocks the others.
type GenerationResult struct {
	Created  []string
	Existing []string
	Failed   map[string]error
}

func (r *GenerationResult) Partial() bool {
	return len(r.Failed) > 0
}

// GenerateForOrder creates one settlement document per payable
// allocation of a posted order. Uniqueness per (order, allocation) is
// enforced by the storage layer, so invoking this twice for the same
// order creates nothing new.
func (uc *DefaultSettlementUsecase) GenerateForOrder(ctx context.Context, order *domain.Order) *GenerationResult {
	result := &GenerationResult{Failed: make(map[string]error)}

	for _, alloc := range order.Allocations {
		if !alloc.Payable() {
			continue
		}

		doc := &domain.SettlementDocument{
			ID:            uc.newID(),
			OrderID:       order.ID,
			AllocationID:  alloc.ID,
			PayeeID:       alloc.PayeeID,
			Role:          alloc.Role,
			Amount:        alloc.Amount,
			Currency:      order.Currency,
			ExternalDocID: order.FulfillmentDocID,
			Status:        domain.SettlementPending,
		}

		created, err := uc.SettlementRepo.CreateIfAbsent(ctx, doc)
		if err != nil {
			slog.Error("settlement generation failed",
				"order_id", order.ID,
				"allocation_id", alloc.ID,
				"error", err.Error())
			uc.Metrics.RecordGenerationFailure()
			result.Failed[alloc.ID] = err
			continue
		}
		if !created {
			result.Existing = append(result.Existing, alloc.ID)
			continue
		}
		uc.Metrics.RecordSettlementCreated()
		result.Created = append(result.Created, doc.ID)
	}

	return result
}

// FinalizePostedOrder runs the post-posting side effects: the idempotent
// ledger confirmation, settlement generation, and the generation guard.
// The guard is only set once every allocation has its document, so the
// reconciliation job can retry partial failures.
func (uc *DefaultSettlementUsecase) FinalizePostedOrder(ctx context.Context, order *domain.Order) (*GenerationResult, error) {
	if err := uc.Ledger.ConfirmSalesOrder(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("confirm sales order %s: %w", order.ID, err)
	}

	result := uc.GenerateForOrder(ctx, order)
	if result.Partial() {
		return result, fmt.Errorf("order %s: %d of %d payable allocations failed: %w",
			order.ID, len(result.Failed), len(result.Failed)+len(result.Created)+len(result.Existing),
			domain.ErrGenerationPartial)
	}

	if _, err := uc.OrderRepo.MarkSettlementsGenerated(ctx, order.ID); err != nil {
		return result, err
	}
	return result, nil
}
