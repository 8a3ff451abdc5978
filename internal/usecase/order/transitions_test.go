package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/config"
	"github.com/mkarelin/sales-commission-service/internal/domain"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
	"github.com/mkarelin/sales-commission-service/internal/usecase/settlement"
)

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *memOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.Reference == order.Reference {
			return domain.ErrDuplicateReference
		}
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) GetOrderByReference(_ context.Context, reference string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.Reference == reference {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrderRepo) ListOrders(_ context.Context, _ domain.OrderFilters, _, _ int64, _, _ string) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) TransitionStatus(_ context.Context, orderID string, from, to domain.OrderStatus, patch domain.OrderPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != from {
		return fmt.Errorf("order %s is %s: %w", orderID, order.Status, domain.ErrInvalidTransition)
	}
	order.Status = to
	order.Version++
	if patch.Reviewer != nil {
		order.Reviewer = patch.Reviewer
	}
	if patch.Allocator != nil {
		order.Allocator = patch.Allocator
	}
	if patch.Approver != nil {
		order.Approver = patch.Approver
	}
	if patch.Poster != nil {
		order.Poster = patch.Poster
	}
	if patch.RejectReason != nil {
		order.RejectReason = *patch.RejectReason
	}
	if patch.ClearApprovals {
		order.Reviewer = nil
		order.Allocator = nil
		order.Approver = nil
		order.Poster = nil
	}
	return nil
}

func (r *memOrderRepo) ReplaceAllocations(_ context.Context, orderID string, allocations []*domain.CommissionAllocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Allocations = allocations
	return nil
}

func (r *memOrderRepo) UpdateAllocationAmount(_ context.Context, allocationID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		for _, alloc := range order.Allocations {
			if alloc.ID == allocationID {
				alloc.Amount = amount
				return nil
			}
		}
	}
	return domain.ErrOrderNotFound
}

func (r *memOrderRepo) UpdateBaseAmount(_ context.Context, orderID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.BaseAmount = amount
	return nil
}

func (r *memOrderRepo) MarkSettlementsGenerated(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if order.SettlementsGenerated {
		return false, nil
	}
	order.SettlementsGenerated = true
	return true, nil
}

func (r *memOrderRepo) FindPostedUnsettled(_ context.Context, _ int) ([]*domain.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) status(orderID string) domain.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[orderID].Status
}

type stubDocuments struct {
	complete bool
	err      error
}

func (d *stubDocuments) HasRequiredDocuments(context.Context, string) (bool, error) {
	return d.complete, d.err
}

type stubSettlements struct {
	mu             sync.Mutex
	finalizeCalls  int
	finalizeResult *settlement.GenerationResult
	finalizeErr    error
	cancelledFor   []string
}

func (s *stubSettlements) FinalizePostedOrder(context.Context, *domain.Order) (*settlement.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeCalls++
	return s.finalizeResult, s.finalizeErr
}

func (s *stubSettlements) GenerateForOrder(context.Context, *domain.Order) *settlement.GenerationResult {
	return &settlement.GenerationResult{}
}

func (s *stubSettlements) HandleFulfillmentEvent(context.Context, string, string) error { return nil }
func (s *stubSettlements) ConfirmSettlement(context.Context, string) error              { return nil }

func (s *stubSettlements) CancelForOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelledFor = append(s.cancelledFor, orderID)
	return nil
}

func (s *stubSettlements) Reconcile(context.Context, int) error { return nil }

func (s *stubSettlements) GetSettlementByID(context.Context, string) (*domain.SettlementDocument, error) {
	return nil, domain.ErrSettlementNotFound
}

func (s *stubSettlements) ListByOrderID(context.Context, string) ([]*domain.SettlementDocument, error) {
	return nil, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderTransitioned(domain.OrderTransitioned) error    { return nil }
func (noopPublisher) PublishSettlementPosted(domain.SettlementPostedEvent) error { return nil }

type testEnv struct {
	uc          *DefaultOrderUsecase
	repo        *memOrderRepo
	documents   *stubDocuments
	settlements *stubSettlements
}

func newTestEnv(rules []config.RuleConfig) *testEnv {
	repo := newMemOrderRepo()
	documents := &stubDocuments{complete: true}
	settlements := &stubSettlements{}
	uc := NewDefaultOrderUsecase(repo, documents, settlements, noopPublisher{}, nil, nil, rules)
	return &testEnv{uc: uc, repo: repo, documents: documents, settlements: settlements}
}

func (e *testEnv) createOrder(t *testing.T, allocs []orderdto.AllocationInput) *domain.Order {
	t.Helper()
	order, err := e.uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		Reference:   "SO-" + t.Name(),
		Currency:    "USD",
		BaseAmount:  decimal.NewFromInt(100000),
		Allocations: allocs,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return order
}

func (e *testEnv) driveTo(t *testing.T, orderID string, target domain.OrderStatus) {
	t.Helper()
	ctx := context.Background()
	steps := []struct {
		to  domain.OrderStatus
		run func() error
	}{
		{domain.StatusDocumentReview, func() error {
			return e.uc.SubmitForReview(ctx, orderdto.TransitionInput{OrderID: orderID, ActorID: "submitter"})
		}},
		{domain.StatusAllocation, func() error {
			return e.uc.BeginAllocation(ctx, orderdto.TransitionInput{OrderID: orderID, ActorID: "reviewer"})
		}},
		{domain.StatusApproved, func() error {
			return e.uc.ApproveOrder(ctx, orderdto.TransitionInput{OrderID: orderID, ActorID: "allocator"})
		}},
		{domain.StatusPosted, func() error {
			_, err := e.uc.PostOrder(ctx, orderdto.TransitionInput{OrderID: orderID, ActorID: "poster"})
			return err
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("driving to %s: step to %s failed: %v", target, step.to, err)
		}
		if step.to == target {
			return
		}
	}
	t.Fatalf("unreachable target status %s", target)
}

func payableAllocation() orderdto.AllocationInput {
	return orderdto.AllocationInput{
		Role:    domain.RoleAgent1,
		Rate:    decimal.NewFromInt(2),
		PayeeID: "emp-1",
	}
}

func TestOrderLifecycleHappyPath(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})

	if order.Status != domain.StatusDraft {
		t.Fatalf("new order status = %s, want draft", order.Status)
	}
	if !order.Allocations[0].Amount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("allocation amount = %s, want 2000", order.Allocations[0].Amount)
	}

	env.driveTo(t, order.ID, domain.StatusPosted)

	final, err := env.uc.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if final.Status != domain.StatusPosted {
		t.Errorf("final status = %s, want posted", final.Status)
	}
	if final.Reviewer == nil || final.Reviewer.ActorID != "reviewer" {
		t.Error("reviewer sign-off not recorded")
	}
	if final.Allocator == nil || final.Allocator.ActorID != "allocator" {
		t.Error("allocator sign-off not recorded")
	}
	if final.Poster == nil || final.Poster.ActorID != "poster" {
		t.Error("poster sign-off not recorded")
	}
	if env.settlements.finalizeCalls != 1 {
		t.Errorf("finalize calls = %d, want 1", env.settlements.finalizeCalls)
	}
}

func TestSubmitRequiresDocuments(t *testing.T) {
	env := newTestEnv(nil)
	env.documents.complete = false
	order := env.createOrder(t, nil)

	err := env.uc.SubmitForReview(context.Background(), orderdto.TransitionInput{OrderID: order.ID})
	if !errors.Is(err, domain.ErrMissingDocuments) {
		t.Fatalf("expected ErrMissingDocuments, got %v", err)
	}
	if got := env.repo.status(order.ID); got != domain.StatusDraft {
		t.Errorf("status = %s, want draft", got)
	}
}

func TestSubmitFromWrongStatus(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})
	env.driveTo(t, order.ID, domain.StatusAllocation)

	err := env.uc.SubmitForReview(context.Background(), orderdto.TransitionInput{OrderID: order.ID})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestBeginAllocationRequiresActor(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, nil)
	env.driveTo(t, order.ID, domain.StatusDocumentReview)

	err := env.uc.BeginAllocation(context.Background(), orderdto.TransitionInput{OrderID: order.ID})
	if err == nil {
		t.Fatal("expected error for missing actor")
	}
	if got := env.repo.status(order.ID); got != domain.StatusDocumentReview {
		t.Errorf("status = %s, want document_review", got)
	}
}

func TestBeginAllocationAppliesDefaultRules(t *testing.T) {
	env := newTestEnv([]config.RuleConfig{
		{Role: "AGENT1", Rate: 2},
		{Role: "MANAGER", Rate: 0.5},
	})
	order := env.createOrder(t, nil)
	env.driveTo(t, order.ID, domain.StatusAllocation)

	after, err := env.uc.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if len(after.Allocations) != 2 {
		t.Fatalf("allocations = %d, want 2 from default rules", len(after.Allocations))
	}
	if !after.Allocations[0].Amount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("agent1 amount = %s, want 2000", after.Allocations[0].Amount)
	}
	if !after.Allocations[1].Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("manager amount = %s, want 500", after.Allocations[1].Amount)
	}
}

func TestApproveRejectsIncompleteAllocation(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{
		{Role: domain.RoleBroker, Rate: decimal.NewFromInt(3)}, // basis but no payee
	})
	env.driveTo(t, order.ID, domain.StatusAllocation)

	err := env.uc.ApproveOrder(context.Background(), orderdto.TransitionInput{OrderID: order.ID, ActorID: "allocator"})
	if !errors.Is(err, domain.ErrIncompleteAllocation) {
		t.Fatalf("expected ErrIncompleteAllocation, got %v", err)
	}
}

func TestApproveAllowsExplicitlyUnassignedPayee(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{
		{Role: domain.RoleCashback, Rate: decimal.NewFromInt(1), NoPayeeRequired: true},
	})
	env.driveTo(t, order.ID, domain.StatusAllocation)

	err := env.uc.ApproveOrder(context.Background(), orderdto.TransitionInput{OrderID: order.ID, ActorID: "allocator"})
	if err != nil {
		t.Fatalf("ApproveOrder: %v", err)
	}
}

func TestPostEnforcesSeparationOfDuties(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})
	env.driveTo(t, order.ID, domain.StatusApproved)

	ctx := context.Background()
	_, err := env.uc.PostOrder(ctx, orderdto.TransitionInput{OrderID: order.ID, ActorID: "allocator"})
	if !errors.Is(err, domain.ErrSeparationOfDuties) {
		t.Fatalf("expected ErrSeparationOfDuties, got %v", err)
	}

	_, err = env.uc.PostOrder(ctx, orderdto.TransitionInput{
		OrderID:      order.ID,
		ActorID:      "allocator",
		Capabilities: []string{CapabilityOverrideApprover},
	})
	if err != nil {
		t.Fatalf("override post: %v", err)
	}
	if got := env.repo.status(order.ID); got != domain.StatusPosted {
		t.Errorf("status = %s, want posted", got)
	}
}

func TestPostSurvivesPartialGeneration(t *testing.T) {
	env := newTestEnv(nil)
	env.settlements.finalizeResult = &settlement.GenerationResult{
		Created: []string{"s1"},
		Failed:  map[string]error{"alloc-2": errors.New("insert failed")},
	}
	env.settlements.finalizeErr = fmt.Errorf("order: %w", domain.ErrGenerationPartial)

	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})
	env.driveTo(t, order.ID, domain.StatusApproved)

	output, err := env.uc.PostOrder(context.Background(), orderdto.TransitionInput{OrderID: order.ID, ActorID: "poster"})
	if !errors.Is(err, domain.ErrGenerationPartial) {
		t.Fatalf("expected ErrGenerationPartial, got %v", err)
	}
	if got := env.repo.status(order.ID); got != domain.StatusPosted {
		t.Errorf("status = %s, want posted despite generation failure", got)
	}
	if len(output.FailedSettlements) != 1 || output.FailedSettlements[0] != "alloc-2" {
		t.Errorf("failed settlements = %v, want [alloc-2]", output.FailedSettlements)
	}
}

func TestConcurrentPostWinsOnce(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})
	env.driveTo(t, order.ID, domain.StatusApproved)

	const posters = 8
	errs := make(chan error, posters)
	var wg sync.WaitGroup
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.uc.PostOrder(context.Background(), orderdto.TransitionInput{
				OrderID: order.ID,
				ActorID: fmt.Sprintf("poster-%d", n),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("loser got %v, want ErrInvalidTransition", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d posts succeeded, want exactly 1", succeeded)
	}
	if env.settlements.finalizeCalls != 1 {
		t.Errorf("finalize calls = %d, want 1", env.settlements.finalizeCalls)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, nil)
	env.driveTo(t, order.ID, domain.StatusDocumentReview)

	err := env.uc.RejectOrder(context.Background(), orderdto.TransitionInput{OrderID: order.ID, ActorID: "reviewer"})
	if !errors.Is(err, domain.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
}

func TestRejectResetsToDraft(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})
	env.driveTo(t, order.ID, domain.StatusApproved)

	err := env.uc.RejectOrder(context.Background(), orderdto.TransitionInput{
		OrderID: order.ID,
		ActorID: "approver",
		Reason:  "wrong broker rate",
	})
	if err != nil {
		t.Fatalf("RejectOrder: %v", err)
	}

	after, err := env.uc.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if after.Status != domain.StatusDraft {
		t.Errorf("status = %s, want draft", after.Status)
	}
	if after.Reviewer != nil || after.Allocator != nil {
		t.Error("stage sign-offs not cleared")
	}
	if after.RejectReason != "wrong broker rate" {
		t.Errorf("reject reason = %q", after.RejectReason)
	}
	if len(env.settlements.cancelledFor) != 1 {
		t.Errorf("settlement cancellations = %d, want 1", len(env.settlements.cancelledFor))
	}
}

func TestRejectFromDraftIsInvalid(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, nil)

	err := env.uc.RejectOrder(context.Background(), orderdto.TransitionInput{
		OrderID: order.ID,
		ActorID: "reviewer",
		Reason:  "nothing to reject",
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelPostedRequiresLedgerVoid(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})
	env.driveTo(t, order.ID, domain.StatusPosted)

	ctx := context.Background()
	err := env.uc.CancelOrder(ctx, orderdto.TransitionInput{OrderID: order.ID, ActorID: "admin"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	err = env.uc.CancelOrder(ctx, orderdto.TransitionInput{
		OrderID:              order.ID,
		ActorID:              "admin",
		ExternalCancellation: true,
	})
	if err != nil {
		t.Fatalf("external cancellation: %v", err)
	}
	if got := env.repo.status(order.ID); got != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got)
	}
	if len(env.settlements.cancelledFor) != 1 {
		t.Errorf("settlement cancellations = %d, want 1", len(env.settlements.cancelledFor))
	}
}

func TestUpdateBaseAmountRecomputesAllocations(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})

	updated, err := env.uc.UpdateBaseAmount(context.Background(), order.ID, "50000")
	if err != nil {
		t.Fatalf("UpdateBaseAmount: %v", err)
	}
	if !updated.Allocations[0].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("recomputed amount = %s, want 1000", updated.Allocations[0].Amount)
	}
}

func TestUpdateBaseAmountFrozenAfterSubmission(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, nil)
	env.driveTo(t, order.ID, domain.StatusDocumentReview)

	_, err := env.uc.UpdateBaseAmount(context.Background(), order.ID, "50000")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateOrderRejectsDuplicateReference(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	input := &orderdto.CreateOrderInput{
		Reference:  "SO-2001",
		Currency:   "USD",
		BaseAmount: decimal.NewFromInt(100000),
	}
	if _, err := env.uc.CreateOrder(ctx, input); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err := env.uc.CreateOrder(ctx, input)
	if !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestGetOrderByReference(t *testing.T) {
	env := newTestEnv(nil)
	order := env.createOrder(t, []orderdto.AllocationInput{payableAllocation()})

	found, err := env.uc.GetOrderByReference(context.Background(), order.Reference)
	if err != nil {
		t.Fatalf("GetOrderByReference: %v", err)
	}
	if found.ID != order.ID {
		t.Errorf("order id = %s, want %s", found.ID, order.ID)
	}

	_, err = env.uc.GetOrderByReference(context.Background(), "SO-missing")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
