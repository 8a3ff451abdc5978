package kafka

import (
	"encoding/json"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

// EventPublisher fans the domain observability events out to their
// topics. Messages are keyed by order so per-order ordering holds.
type EventPublisher struct {
	orders      domain.PublisherPort
	settlements domain.PublisherPort
}

func NewEventPublisher(orders, settlements domain.PublisherPort) *EventPublisher {
	return &EventPublisher{orders: orders, settlements: settlements}
}

func (p *EventPublisher) PublishOrderTransitioned(event domain.OrderTransitioned) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.orders.Publish(domain.Message{Key: []byte(event.OrderID), Value: v})
}

func (p *EventPublisher) PublishSettlementPosted(event domain.SettlementPostedEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.settlements.Publish(domain.Message{Key: []byte(event.OrderID), Value: v})
}

// FulfillmentEvent is the inbound trigger signal: a goods/service
// receipt or a payment completed for an external document.
type FulfillmentEvent struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	OccurredAt string `json:"occurred_at,omitempty"`
}
