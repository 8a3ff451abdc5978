package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/mappers"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/models"
)

type DefaultSettlementRepository struct {
	DB *gorm.DB
}

func NewDefaultSettlementRepository(db *gorm.DB) *DefaultSettlementRepository {
	return &DefaultSettlementRepository{DB: db}
}

// CreateIfAbsent relies on the (order_id, allocation_id) unique index:
// the insert is atomic, not a read-then-write, so two concurrent
// generator runs cannot both create a document.
func (r *DefaultSettlementRepository) CreateIfAbsent(ctx context.Context, doc *domain.SettlementDocument) (bool, error) {
	model := mappers.ToGORMSettlement(doc)
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "allocation_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultSettlementRepository) GetByID(ctx context.Context, settlementID string) (*domain.SettlementDocument, error) {
	var model models.SettlementModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", settlementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettlementNotFound
		}
		return nil, err
	}
	return mappers.ToDomainSettlement(&model), nil
}

func (r *DefaultSettlementRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.SettlementDocument, error) {
	var settlementModels []models.SettlementModel
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&settlementModels).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(settlementModels), nil
}

func (r *DefaultSettlementRepository) FindByExternalDocID(ctx context.Context, externalDocID string) ([]*domain.SettlementDocument, error) {
	var settlementModels []models.SettlementModel
	if err := r.DB.WithContext(ctx).
		Where("external_doc_id = ?", externalDocID).
		Find(&settlementModels).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(settlementModels), nil
}

func (r *DefaultSettlementRepository) FindOpen(ctx context.Context, limit int) ([]*domain.SettlementDocument, error) {
	var settlementModels []models.SettlementModel
	if err := r.DB.WithContext(ctx).
		Where("status IN (?)", []domain.SettlementStatus{domain.SettlementPending, domain.SettlementTriggered}).
		Order("created_at ASC").
		Limit(limit).
		Find(&settlementModels).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(settlementModels), nil
}

// TransitionStatus is the compare-and-set guard every settlement
// transition goes through. Zero rows affected means the document
// already left the expected status; callers treat that as handled.
func (r *DefaultSettlementRepository) TransitionStatus(ctx context.Context, settlementID string, from, to domain.SettlementStatus) (bool, error) {
	updates := map[string]interface{}{"status": to}
	now := time.Now()
	switch to {
	case domain.SettlementTriggered:
		updates["triggered_at"] = now
	case domain.SettlementPosted:
		updates["posted_at"] = now
	}

	result := r.DB.WithContext(ctx).
		Model(&models.SettlementModel{}).
		Where("id = ? AND status = ?", settlementID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultSettlementRepository) CancelOpenByOrderID(ctx context.Context, orderID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.SettlementModel{}).
		Where("order_id = ? AND status IN (?)", orderID,
			[]domain.SettlementStatus{domain.SettlementPending, domain.SettlementTriggered}).
		Update("status", domain.SettlementCancelled).Error
}

func toDomainSettlements(settlementModels []models.SettlementModel) []*domain.SettlementDocument {
	docs := make([]*domain.SettlementDocument, len(settlementModels))
	for i := range settlementModels {
		docs[i] = mappers.ToDomainSettlement(&settlementModels[i])
	}
	return docs
}
