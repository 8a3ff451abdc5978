package domain

import "time"

type Message struct {
	Key   []byte
	Value []byte
}

// PublisherPort is a topic-bound message sink.
type PublisherPort interface {
	Publish(msgs ...Message) error
}

type SubscriberPort interface {
	Subscribe(topic, groupID string) (<-chan Message, error)
}

// OrderTransitioned is published on every successful status transition.
type OrderTransitioned struct {
	OrderID   string    `json:"order_id"`
	Reference string    `json:"reference"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// SettlementPostedEvent is published when a settlement document reaches
// POSTED.
type SettlementPostedEvent struct {
	SettlementID string    `json:"settlement_id"`
	OrderID      string    `json:"order_id"`
	PayeeID      string    `json:"payee_id"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Timestamp    time.Time `json:"timestamp"`
}

type EventPublisher interface {
	PublishOrderTransitioned(event OrderTransitioned) error
	PublishSettlementPosted(event SettlementPostedEvent) error
}

// TransitionLogger persists an audit row per order transition.
type TransitionLogger interface {
	LogTransition(orderID string, from, to OrderStatus, actorID, reason string) error
}
