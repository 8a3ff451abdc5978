package usecase

import (
	"log/slog"
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/notifier"
)

// afterTransition runs the non-critical side effects of a successful
// transition: the observability event, the audit row, metrics, and the
// terminal-state callback. None of them can fail the transition itself.
func (uc *DefaultOrderUsecase) afterTransition(order *domain.Order, from, to domain.OrderStatus, actorID, reason string) {
	uc.Metrics.RecordTransition(string(from), string(to))

	if uc.AuditLog != nil {
		if err := uc.AuditLog.LogTransition(order.ID, from, to, actorID, reason); err != nil {
			slog.Error("failed to write transition audit row", "order_id", order.ID, "error", err.Error())
		}
	}

	go func(event domain.OrderTransitioned) {
		if err := uc.Publisher.PublishOrderTransitioned(event); err != nil {
			slog.Error("failed to publish order.transitioned", "order_id", event.OrderID, "error", err.Error())
		}
	}(domain.OrderTransitioned{
		OrderID:   order.ID,
		Reference: order.Reference,
		From:      string(from),
		To:        string(to),
		ActorID:   actorID,
		Timestamp: time.Now(),
	})

	if order.CallbackURL != "" && terminal(to) {
		notifier.SendCallback(order.CallbackURL, order.Reference, string(to))
	}
}

func terminal(status domain.OrderStatus) bool {
	switch status {
	case domain.StatusPosted, domain.StatusRejected, domain.StatusCancelled:
		return true
	}
	return false
}
