package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/metrics"
)

type SettlementUsecase interface {
	FinalizePostedOrder(ctx context.Context, order *domain.Order) (*GenerationResult, error)
	GenerateForOrder(ctx context.Context, order *domain.Order) *GenerationResult
	HandleFulfillmentEvent(ctx context.Context, eventType, externalDocID string) error
	ConfirmSettlement(ctx context.Context, settlementID string) error
	CancelForOrder(ctx context.Context, orderID string) error
	Reconcile(ctx context.Context, batchSize int) error
	GetSettlementByID(ctx context.Context, settlementID string) (*domain.SettlementDocument, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.SettlementDocument, error)
}

type DefaultSettlementUsecase struct {
	SettlementRepo domain.SettlementRepository
	OrderRepo      domain.OrderRepository
	Ledger         domain.LedgerService
	Publisher      domain.EventPublisher
	Metrics        *metrics.CommissionMetrics
	AutoConfirm    bool

	newID func() string
}

func NewDefaultSettlementUsecase(
	settlementRepo domain.SettlementRepository,
	orderRepo domain.OrderRepository,
	ledger domain.LedgerService,
	eventPublisher domain.EventPublisher,
	commissionMetrics *metrics.CommissionMetrics,
	autoConfirm bool) (*DefaultSettlementUsecase, error) {

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	return &DefaultSettlementUsecase{
		SettlementRepo: settlementRepo,
		OrderRepo:      orderRepo,
		Ledger:         ledger,
		Publisher:      eventPublisher,
		Metrics:        commissionMetrics,
		AutoConfirm:    autoConfirm,
		newID:          idGenerator,
	}, nil
}

func (uc *DefaultSettlementUsecase) GetSettlementByID(ctx context.Context, settlementID string) (*domain.SettlementDocument, error) {
	return uc.SettlementRepo.GetByID(ctx, settlementID)
}

func (uc *DefaultSettlementUsecase) ListByOrderID(ctx context.Context, orderID string) ([]*domain.SettlementDocument, error) {
	return uc.SettlementRepo.ListByOrderID(ctx, orderID)
}

// ConfirmSettlement is the manual confirm step used when auto-confirm is
// off. Confirming an already posted document is a no-op.
func (uc *DefaultSettlementUsecase) ConfirmSettlement(ctx context.Context, settlementID string) error {
	doc, err := uc.SettlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return err
	}
	switch doc.Status {
	case domain.SettlementPosted:
		return nil
	case domain.SettlementTriggered:
		return uc.confirm(ctx, doc)
	default:
		return fmt.Errorf("settlement %s is %s: %w", doc.ID, doc.Status, domain.ErrInvalidTransition)
	}
}

func (uc *DefaultSettlementUsecase) CancelForOrder(ctx context.Context, orderID string) error {
	if err := uc.SettlementRepo.CancelOpenByOrderID(ctx, orderID); err != nil {
		return err
	}
	uc.Metrics.RecordSettlementCancelled()
	return nil
}

// confirm drives a triggered document to POSTED. The ledger confirm is
// idempotent, so losing the status race after confirming is harmless.
func (uc *DefaultSettlementUsecase) confirm(ctx context.Context, doc *domain.SettlementDocument) error {
	if err := uc.Ledger.ConfirmPayableDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("confirm payable %s: %w", doc.ID, err)
	}

	ok, err := uc.SettlementRepo.TransitionStatus(ctx, doc.ID, domain.SettlementTriggered, domain.SettlementPosted)
	if err != nil {
		return err
	}
	if !ok {
		// Another watcher or reconciliation tick already posted it.
		uc.Metrics.RecordDuplicateEvent()
		return nil
	}

	amount, _ := doc.Amount.Float64()
	uc.Metrics.RecordSettlementPosted(doc.Currency, amount)

	go func(event domain.SettlementPostedEvent) {
		if err := uc.Publisher.PublishSettlementPosted(event); err != nil {
			slog.Error("failed to publish settlement.posted", "settlement_id", event.SettlementID, "error", err.Error())
		}
	}(domain.SettlementPostedEvent{
		SettlementID: doc.ID,
		OrderID:      doc.OrderID,
		PayeeID:      doc.PayeeID,
		Amount:       doc.Amount.String(),
		Currency:     doc.Currency,
		Timestamp:    time.Now(),
	})

	return nil
}
