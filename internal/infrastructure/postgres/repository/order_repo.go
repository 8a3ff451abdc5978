package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/models"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.WithContext(ctx).Create(orderModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("order reference %s: %w", order.Reference, domain.ErrDuplicateReference)
		}
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).Preload("Allocations").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).Preload("Allocations").First(&order, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

// TransitionStatus flips the order status only if the row is still in
// the expected status. Losing the compare-and-set means another actor
// transitioned the order first.
func (r *DefaultOrderRepository) TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, patch domain.OrderPatch) error {
	updates := map[string]interface{}{
		"status":  to,
		"version": gorm.Expr("version + 1"),
	}

	applyStage(updates, "reviewer_id", "reviewed_at", patch.Reviewer)
	applyStage(updates, "allocator_id", "allocated_at", patch.Allocator)
	applyStage(updates, "approver_id", "approved_at", patch.Approver)
	applyStage(updates, "poster_id", "posted_at", patch.Poster)

	if patch.RejectReason != nil {
		updates["reject_reason"] = *patch.RejectReason
	}
	if patch.ClearApprovals {
		updates["reviewer_id"] = nil
		updates["reviewed_at"] = nil
		updates["allocator_id"] = nil
		updates["allocated_at"] = nil
		updates["approver_id"] = nil
		updates["approved_at"] = nil
		updates["poster_id"] = nil
		updates["posted_at"] = nil
	}

	result := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s left status %s: %w", orderID, from, domain.ErrInvalidTransition)
	}
	return nil
}

func applyStage(updates map[string]interface{}, idColumn, atColumn string, stage *domain.StageApproval) {
	if stage == nil {
		return
	}
	updates[idColumn] = stage.ActorID
	updates[atColumn] = stage.At
}

func (r *DefaultOrderRepository) ReplaceAllocations(ctx context.Context, orderID string, allocations []*domain.CommissionAllocation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.AllocationModel{}).Error; err != nil {
			return err
		}
		for _, alloc := range allocations {
			if err := tx.Create(mappers.ToGORMAllocation(alloc)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DefaultOrderRepository) UpdateAllocationAmount(ctx context.Context, allocationID string, amount decimal.Decimal) error {
	return r.DB.WithContext(ctx).
		Model(&models.AllocationModel{}).
		Where("id = ?", allocationID).
		Update("amount", amount).Error
}

func (r *DefaultOrderRepository) UpdateBaseAmount(ctx context.Context, orderID string, amount decimal.Decimal) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("base_amount", amount).Error
}

func (r *DefaultOrderRepository) MarkSettlementsGenerated(ctx context.Context, orderID string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND settlements_generated = ?", orderID, false).
		Update("settlements_generated", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultOrderRepository) FindPostedUnsettled(ctx context.Context, limit int) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.WithContext(ctx).
		Preload("Allocations").
		Where("status = ? AND settlements_generated = ?", domain.StatusPosted, false).
		Limit(limit).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders, nil
}

func (r *DefaultOrderRepository) ListOrders(
	ctx context.Context,
	filters domain.OrderFilters,
	page, limit int64,
	sortBy, sortOrder string,
) ([]*domain.Order, int64, error) {
	var orderModels []models.OrderModel
	var total int64

	safeSortBy := "created_at"
	switch sortBy {
	case "base_amount":
		safeSortBy = "base_amount"
	case "reference":
		safeSortBy = "reference"
	case "created_at":
		safeSortBy = "created_at"
	}

	safeSortOrder := "DESC"
	if strings.ToUpper(sortOrder) == "ASC" {
		safeSortOrder = "ASC"
	}

	baseQuery := r.DB.WithContext(ctx).Model(&models.OrderModel{}).Preload("Allocations")

	if len(filters.Statuses) > 0 {
		baseQuery = baseQuery.Where("status IN (?)", filters.Statuses)
	}
	if filters.Reference != "" {
		baseQuery = baseQuery.Where("reference = ?", filters.Reference)
	}
	if !filters.DateFrom.IsZero() {
		baseQuery = baseQuery.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		baseQuery = baseQuery.Where("created_at <= ?", filters.DateTo)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * limit
	err := baseQuery.
		Order(fmt.Sprintf("%s %s", safeSortBy, safeSortOrder)).
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}

	orders := make([]*domain.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders, total, nil
}
