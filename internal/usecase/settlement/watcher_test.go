package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

func TestHandleFulfillmentEventIgnoresUnknownTypes(t *testing.T) {
	env := newSettlementEnv(t, true)
	env.uc.GenerateForOrder(context.Background(), postedOrder("ord-1"))

	if err := env.uc.HandleFulfillmentEvent(context.Background(), "shipment_delayed", "doc-ord-1"); err != nil {
		t.Fatalf("unknown event must be a no-op, got %v", err)
	}
	for _, doc := range env.repo.byOrder("ord-1") {
		if doc.Status != domain.SettlementPending {
			t.Errorf("doc %s status = %s, want pending", doc.ID, doc.Status)
		}
	}
}

func TestHandleFulfillmentEventAutoConfirmPosts(t *testing.T) {
	env := newSettlementEnv(t, true)
	ctx := context.Background()
	env.uc.GenerateForOrder(ctx, postedOrder("ord-1"))

	if err := env.uc.HandleFulfillmentEvent(ctx, EventReceiptCompleted, "doc-ord-1"); err != nil {
		t.Fatalf("HandleFulfillmentEvent: %v", err)
	}

	for _, doc := range env.repo.byOrder("ord-1") {
		if doc.Status != domain.SettlementPosted {
			t.Errorf("doc %s status = %s, want posted", doc.ID, doc.Status)
		}
		if doc.TriggeredAt == nil || doc.PostedAt == nil {
			t.Errorf("doc %s missing trigger/post timestamps", doc.ID)
		}
	}
	if got := env.ledger.payableConfirmCount(); got != 2 {
		t.Errorf("payable confirms = %d, want 2", got)
	}
}

func TestHandleFulfillmentEventManualModeStopsAtTriggered(t *testing.T) {
	env := newSettlementEnv(t, false)
	ctx := context.Background()
	result := env.uc.GenerateForOrder(ctx, postedOrder("ord-1"))

	if err := env.uc.HandleFulfillmentEvent(ctx, EventPaymentCompleted, "doc-ord-1"); err != nil {
		t.Fatalf("HandleFulfillmentEvent: %v", err)
	}

	for _, doc := range env.repo.byOrder("ord-1") {
		if doc.Status != domain.SettlementTriggered {
			t.Errorf("doc %s status = %s, want triggered", doc.ID, doc.Status)
		}
	}
	if got := env.ledger.payableConfirmCount(); got != 0 {
		t.Errorf("payable confirms = %d, want 0 in manual mode", got)
	}

	// Manual confirm drives one of them the rest of the way.
	if err := env.uc.ConfirmSettlement(ctx, result.Created[0]); err != nil {
		t.Fatalf("ConfirmSettlement: %v", err)
	}
	if got := env.repo.status(result.Created[0]); got != domain.SettlementPosted {
		t.Errorf("status after manual confirm = %s, want posted", got)
	}
	if got := env.ledger.payableConfirmCount(); got != 1 {
		t.Errorf("payable confirms = %d, want 1", got)
	}
}

func TestHandleFulfillmentEventReplayIsNoOp(t *testing.T) {
	env := newSettlementEnv(t, true)
	ctx := context.Background()
	env.uc.GenerateForOrder(ctx, postedOrder("ord-1"))

	for i := 0; i < 3; i++ {
		if err := env.uc.HandleFulfillmentEvent(ctx, EventReceiptCompleted, "doc-ord-1"); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	for _, doc := range env.repo.byOrder("ord-1") {
		if doc.Status != domain.SettlementPosted {
			t.Errorf("doc %s status = %s, want posted", doc.ID, doc.Status)
		}
	}
	if got := env.ledger.payableConfirmCount(); got != 2 {
		t.Errorf("payable confirms = %d, want 2 across replays", got)
	}
}

func TestHandleFulfillmentEventUnmatchedDocument(t *testing.T) {
	env := newSettlementEnv(t, true)
	if err := env.uc.HandleFulfillmentEvent(context.Background(), EventReceiptCompleted, "doc-unknown"); err != nil {
		t.Fatalf("event for unknown document must be a no-op, got %v", err)
	}
}

func TestConfirmSettlementStates(t *testing.T) {
	env := newSettlementEnv(t, false)
	ctx := context.Background()
	result := env.uc.GenerateForOrder(ctx, postedOrder("ord-1"))
	id := result.Created[0]

	// Pending documents cannot be confirmed directly.
	if err := env.uc.ConfirmSettlement(ctx, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("confirm pending: expected ErrInvalidTransition, got %v", err)
	}

	env.repo.TransitionStatus(ctx, id, domain.SettlementPending, domain.SettlementTriggered)
	if err := env.uc.ConfirmSettlement(ctx, id); err != nil {
		t.Fatalf("confirm triggered: %v", err)
	}

	// Confirming an already posted document is a no-op.
	if err := env.uc.ConfirmSettlement(ctx, id); err != nil {
		t.Fatalf("confirm posted: %v", err)
	}
	if got := env.ledger.payableConfirmCount(); got != 1 {
		t.Errorf("payable confirms = %d, want 1", got)
	}
}

func TestConfirmSettlementUnknownID(t *testing.T) {
	env := newSettlementEnv(t, true)
	err := env.uc.ConfirmSettlement(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSettlementNotFound) {
		t.Fatalf("expected ErrSettlementNotFound, got %v", err)
	}
}
