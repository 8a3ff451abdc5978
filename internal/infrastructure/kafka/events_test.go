package kafka

import (
	"encoding/json"
	"testing"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

type capturePublisher struct {
	msgs []domain.Message
}

func (p *capturePublisher) Publish(msgs ...domain.Message) error {
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestPublishOrderTransitionedKeysByOrder(t *testing.T) {
	orders := &capturePublisher{}
	p := NewEventPublisher(orders, &capturePublisher{})

	err := p.PublishOrderTransitioned(domain.OrderTransitioned{
		OrderID:   "ord-1",
		Reference: "SO-1001",
		From:      "APPROVED",
		To:        "POSTED",
		ActorID:   "poster",
	})
	if err != nil {
		t.Fatalf("PublishOrderTransitioned: %v", err)
	}

	if len(orders.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(orders.msgs))
	}
	if string(orders.msgs[0].Key) != "ord-1" {
		t.Errorf("key = %q, want order id", orders.msgs[0].Key)
	}
	var event domain.OrderTransitioned
	if err := json.Unmarshal(orders.msgs[0].Value, &event); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if event.From != "APPROVED" || event.To != "POSTED" {
		t.Errorf("payload = %+v", event)
	}
}

func TestPublishSettlementPostedKeysByOrder(t *testing.T) {
	settlements := &capturePublisher{}
	p := NewEventPublisher(&capturePublisher{}, settlements)

	err := p.PublishSettlementPosted(domain.SettlementPostedEvent{
		SettlementID: "stl-1",
		OrderID:      "ord-1",
		PayeeID:      "emp-1",
		Amount:       "2000",
		Currency:     "USD",
	})
	if err != nil {
		t.Fatalf("PublishSettlementPosted: %v", err)
	}

	if len(settlements.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(settlements.msgs))
	}
	if string(settlements.msgs[0].Key) != "ord-1" {
		t.Errorf("key = %q, want order id for per-order ordering", settlements.msgs[0].Key)
	}
	var event domain.SettlementPostedEvent
	if err := json.Unmarshal(settlements.msgs[0].Value, &event); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if event.SettlementID != "stl-1" || event.Amount != "2000" {
		t.Errorf("payload = %+v", event)
	}
}
