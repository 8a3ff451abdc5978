package usecase

import (
	"context"

	"github.com/mkarelin/sales-commission-service/internal/config"
	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/metrics"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
	"github.com/mkarelin/sales-commission-service/internal/usecase/settlement"
)

// CapabilityOverrideApprover lets an actor post an order they allocated
// themselves, bypassing the separation-of-duties check.
const CapabilityOverrideApprover = "override_approver"

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error)
	UpdateBaseAmount(ctx context.Context, orderID string, amount string) (*domain.Order, error)
	SetAllocations(ctx context.Context, orderID string, inputs []orderdto.AllocationInput) (*domain.Order, error)

	SubmitForReview(ctx context.Context, input orderdto.TransitionInput) error
	BeginAllocation(ctx context.Context, input orderdto.TransitionInput) error
	ApproveOrder(ctx context.Context, input orderdto.TransitionInput) error
	PostOrder(ctx context.Context, input orderdto.TransitionInput) (*orderdto.PostOrderOutput, error)
	RejectOrder(ctx context.Context, input orderdto.TransitionInput) error
	CancelOrder(ctx context.Context, input orderdto.TransitionInput) error

	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListOrders(ctx context.Context, input *orderdto.ListOrdersInput) ([]*domain.Order, int64, error)
	NetCommission(ctx context.Context, orderID string) (*orderdto.NetCommissionOutput, error)
}

type DefaultOrderUsecase struct {
	OrderRepo         domain.OrderRepository
	Documents         domain.DocumentChecker
	SettlementUsecase settlement.SettlementUsecase
	Publisher         domain.EventPublisher
	AuditLog          domain.TransitionLogger
	Metrics           *metrics.CommissionMetrics
	DefaultRules      []config.RuleConfig
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	documents domain.DocumentChecker,
	settlementUsecase settlement.SettlementUsecase,
	eventPublisher domain.EventPublisher,
	auditLog domain.TransitionLogger,
	commissionMetrics *metrics.CommissionMetrics,
	defaultRules []config.RuleConfig) *DefaultOrderUsecase {

	return &DefaultOrderUsecase{
		OrderRepo:         orderRepo,
		Documents:         documents,
		SettlementUsecase: settlementUsecase,
		Publisher:         eventPublisher,
		AuditLog:          auditLog,
		Metrics:           commissionMetrics,
		DefaultRules:      defaultRules,
	}
}
