package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

// Reconcile is the reliability backstop for missed fulfillment events
// and partially failed generation. It queries the ledger for the live
// fulfillment state instead of trusting local status, and drives
// documents forward exactly as the watcher would. Per-document CAS makes
// it safe to run concurrently with the watcher or an overlapping tick.
func (uc *DefaultSettlementUsecase) Reconcile(ctx context.Context, batchSize int) error {
	start := time.Now()
	defer func() {
		uc.Metrics.ObserveReconciliationRun(time.Since(start).Seconds())
	}()

	if err := uc.retryUnsettledOrders(ctx, batchSize); err != nil {
		return err
	}
	return uc.sweepOpenSettlements(ctx, batchSize)
}

// retryUnsettledOrders re-runs finalization for posted orders whose
// generation guard is still unset (GenerationPartialFailure recovery).
func (uc *DefaultSettlementUsecase) retryUnsettledOrders(ctx context.Context, batchSize int) error {
	orders, err := uc.OrderRepo.FindPostedUnsettled(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if _, err := uc.FinalizePostedOrder(ctx, order); err != nil {
			slog.Error("reconciliation: settlement generation retry failed",
				"order_id", order.ID,
				"error", err.Error())
		}
	}
	return nil
}

func (uc *DefaultSettlementUsecase) sweepOpenSettlements(ctx context.Context, batchSize int) error {
	docs, err := uc.SettlementRepo.FindOpen(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		switch doc.Status {
		case domain.SettlementPending:
			complete, err := uc.Ledger.IsFulfillmentComplete(ctx, doc.ExternalDocID)
			if err != nil {
				slog.Error("reconciliation: fulfillment check failed",
					"settlement_id", doc.ID,
					"external_doc_id", doc.ExternalDocID,
					"error", err.Error())
				continue
			}
			if !complete {
				continue
			}
			ok, err := uc.SettlementRepo.TransitionStatus(ctx, doc.ID, domain.SettlementPending, domain.SettlementTriggered)
			if err != nil {
				slog.Error("reconciliation: trigger failed", "settlement_id", doc.ID, "error", err.Error())
				continue
			}
			if !ok {
				// The document left PENDING since the snapshot, e.g. a
				// concurrent cancellation. Nothing to confirm here; a
				// genuinely triggered document is picked up by the
				// TRIGGERED branch on the next sweep.
				uc.Metrics.RecordDuplicateEvent()
				continue
			}
			uc.Metrics.RecordDriftCatch()
			if uc.AutoConfirm {
				if err := uc.confirm(ctx, doc); err != nil {
					slog.Error("reconciliation: confirm failed", "settlement_id", doc.ID, "error", err.Error())
				}
			}

		case domain.SettlementTriggered:
			if !uc.AutoConfirm {
				continue
			}
			if err := uc.confirm(ctx, doc); err != nil {
				slog.Error("reconciliation: confirm failed", "settlement_id", doc.ID, "error", err.Error())
			}
		}
	}
	return nil
}
