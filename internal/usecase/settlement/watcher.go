package settlement

import (
	"context"
	"log/slog"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

const (
	EventReceiptCompleted = "receipt_completed"
	EventPaymentCompleted = "payment_completed"
)

// HandleFulfillmentEvent reacts to a receipt/payment completion for an
// external document. Delivery is at-least-once: every transition here
// is compare-and-set, so replays fall through as no-ops.
func (uc *DefaultSettlementUsecase) HandleFulfillmentEvent(ctx context.Context, eventType, externalDocID string) error {
	if eventType != EventReceiptCompleted && eventType != EventPaymentCompleted {
		slog.Warn("ignoring unknown fulfillment event", "type", eventType, "document_id", externalDocID)
		return nil
	}

	docs, err := uc.SettlementRepo.FindByExternalDocID(ctx, externalDocID)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if err := uc.advance(ctx, doc); err != nil {
			slog.Error("failed to advance settlement",
				"settlement_id", doc.ID,
				"event", eventType,
				"error", err.Error())
		}
	}
	return nil
}

// advance moves one document forward as far as configuration allows:
// PENDING -> TRIGGERED always, TRIGGERED -> POSTED when auto-confirm is
// on.
func (uc *DefaultSettlementUsecase) advance(ctx context.Context, doc *domain.SettlementDocument) error {
	switch doc.Status {
	case domain.SettlementPending:
		ok, err := uc.SettlementRepo.TransitionStatus(ctx, doc.ID, domain.SettlementPending, domain.SettlementTriggered)
		if err != nil {
			return err
		}
		if !ok {
			uc.Metrics.RecordDuplicateEvent()
			return nil
		}
		if uc.AutoConfirm {
			return uc.confirm(ctx, doc)
		}
		return nil

	case domain.SettlementTriggered:
		if uc.AutoConfirm {
			return uc.confirm(ctx, doc)
		}
		return nil

	default:
		// Already posted or cancelled.
		uc.Metrics.RecordDuplicateEvent()
		return nil
	}
}
