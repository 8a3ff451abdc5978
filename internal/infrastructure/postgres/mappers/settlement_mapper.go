package mappers

import (
	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/models"
)

func ToDomainSettlement(model *models.SettlementModel) *domain.SettlementDocument {
	return &domain.SettlementDocument{
		ID:            model.ID,
		OrderID:       model.OrderID,
		AllocationID:  model.AllocationID,
		PayeeID:       model.PayeeID,
		Role:          model.Role,
		Amount:        model.Amount,
		Currency:      model.Currency,
		ExternalDocID: model.ExternalDocID,
		Status:        model.Status,
		TriggeredAt:   model.TriggeredAt,
		PostedAt:      model.PostedAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMSettlement(doc *domain.SettlementDocument) *models.SettlementModel {
	return &models.SettlementModel{
		ID:            doc.ID,
		OrderID:       doc.OrderID,
		AllocationID:  doc.AllocationID,
		PayeeID:       doc.PayeeID,
		Role:          doc.Role,
		Amount:        doc.Amount,
		Currency:      doc.Currency,
		ExternalDocID: doc.ExternalDocID,
		Status:        doc.Status,
		TriggeredAt:   doc.TriggeredAt,
		PostedAt:      doc.PostedAt,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
