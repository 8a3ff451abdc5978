package background

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/kafka"
	"github.com/mkarelin/sales-commission-service/internal/usecase/settlement"
)

type BackgroundTasks struct {
	SettlementUsecase settlement.SettlementUsecase
	Subscriber        domain.SubscriberPort

	FulfillmentTopic  string
	ConsumerGroup     string
	ReconcileInterval time.Duration
	ReconcileBatch    int
}

func NewBackgroundTasks(
	settlementUC settlement.SettlementUsecase,
	subscriber domain.SubscriberPort,
	fulfillmentTopic, consumerGroup string,
	reconcileInterval time.Duration,
	reconcileBatch int) *BackgroundTasks {

	return &BackgroundTasks{
		SettlementUsecase: settlementUC,
		Subscriber:        subscriber,
		FulfillmentTopic:  fulfillmentTopic,
		ConsumerGroup:     consumerGroup,
		ReconcileInterval: reconcileInterval,
		ReconcileBatch:    reconcileBatch,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startFulfillmentConsumer(ctx)
	go bt.startReconciliation(ctx)
}

// startFulfillmentConsumer feeds receipt/payment completion events into
// the settlement watcher. Delivery is at-least-once; the watcher's CAS
// guards absorb replays.
func (bt *BackgroundTasks) startFulfillmentConsumer(ctx context.Context) {
	messages, err := bt.Subscriber.Subscribe(bt.FulfillmentTopic, bt.ConsumerGroup)
	if err != nil {
		log.Printf("failed to subscribe to %s: %v", bt.FulfillmentTopic, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				log.Printf("fulfillment event stream closed")
				return
			}
			var event kafka.FulfillmentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("skipping malformed fulfillment event: %v", err)
				continue
			}
			if err := bt.SettlementUsecase.HandleFulfillmentEvent(ctx, event.Type, event.DocumentID); err != nil {
				log.Printf("fulfillment event handling failed: %v", err)
			}
		}
	}
}

// startReconciliation is the polling backstop for missed events and
// partial generation failures.
func (bt *BackgroundTasks) startReconciliation(ctx context.Context) {
	ticker := time.NewTicker(bt.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.SettlementUsecase.Reconcile(ctx, bt.ReconcileBatch); err != nil {
				log.Printf("Reconciliation error: %v\n", err)
			}
		}
	}
}
