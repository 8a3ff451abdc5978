package mappers

import (
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := &domain.Order{
		ID:                   model.ID,
		Reference:            model.Reference,
		Currency:             model.Currency,
		BaseAmount:           model.BaseAmount,
		Status:               model.Status,
		Version:              model.Version,
		Reviewer:             toStage(model.ReviewerID, model.ReviewedAt),
		Allocator:            toStage(model.AllocatorID, model.AllocatedAt),
		Approver:             toStage(model.ApproverID, model.ApprovedAt),
		Poster:               toStage(model.PosterID, model.PostedAt),
		RejectReason:         model.RejectReason,
		SettlementsGenerated: model.SettlementsGenerated,
		FulfillmentDocID:     model.FulfillmentDocID,
		CallbackURL:          model.CallbackURL,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
	for i := range model.Allocations {
		order.Allocations = append(order.Allocations, ToDomainAllocation(&model.Allocations[i]))
	}
	return order
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	reviewerID, reviewedAt := fromStage(order.Reviewer)
	allocatorID, allocatedAt := fromStage(order.Allocator)
	approverID, approvedAt := fromStage(order.Approver)
	posterID, postedAt := fromStage(order.Poster)

	model := &models.OrderModel{
		ID:                   order.ID,
		Reference:            order.Reference,
		Currency:             order.Currency,
		BaseAmount:           order.BaseAmount,
		Status:               order.Status,
		Version:              order.Version,
		ReviewerID:           reviewerID,
		ReviewedAt:           reviewedAt,
		AllocatorID:          allocatorID,
		AllocatedAt:          allocatedAt,
		ApproverID:           approverID,
		ApprovedAt:           approvedAt,
		PosterID:             posterID,
		PostedAt:             postedAt,
		RejectReason:         order.RejectReason,
		SettlementsGenerated: order.SettlementsGenerated,
		FulfillmentDocID:     order.FulfillmentDocID,
		CallbackURL:          order.CallbackURL,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
	for _, alloc := range order.Allocations {
		model.Allocations = append(model.Allocations, *ToGORMAllocation(alloc))
	}
	return model
}

func ToDomainAllocation(model *models.AllocationModel) *domain.CommissionAllocation {
	return &domain.CommissionAllocation{
		ID:              model.ID,
		OrderID:         model.OrderID,
		Role:            model.Role,
		Rate:            model.Rate,
		FixedAmount:     model.FixedAmount,
		Amount:          model.Amount,
		PayeeID:         model.PayeeID,
		NoPayeeRequired: model.NoPayeeRequired,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func ToGORMAllocation(alloc *domain.CommissionAllocation) *models.AllocationModel {
	return &models.AllocationModel{
		ID:              alloc.ID,
		OrderID:         alloc.OrderID,
		Role:            alloc.Role,
		Rate:            alloc.Rate,
		FixedAmount:     alloc.FixedAmount,
		Amount:          alloc.Amount,
		PayeeID:         alloc.PayeeID,
		NoPayeeRequired: alloc.NoPayeeRequired,
		CreatedAt:       alloc.CreatedAt,
		UpdatedAt:       alloc.UpdatedAt,
	}
}

func toStage(actorID *string, at *time.Time) *domain.StageApproval {
	if actorID == nil || at == nil {
		return nil
	}
	return &domain.StageApproval{ActorID: *actorID, At: *at}
}

func fromStage(stage *domain.StageApproval) (*string, *time.Time) {
	if stage == nil {
		return nil, nil
	}
	actorID := stage.ActorID
	at := stage.At
	return &actorID, &at
}
