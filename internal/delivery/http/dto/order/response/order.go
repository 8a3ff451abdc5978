package response

import (
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

type OrderResponse struct {
	ID                   string               `json:"id"`
	Reference            string               `json:"reference"`
	Currency             string               `json:"currency"`
	BaseAmount           string               `json:"base_amount"`
	Status               string               `json:"status"`
	RejectReason         string               `json:"reject_reason,omitempty"`
	SettlementsGenerated bool                 `json:"settlements_generated"`
	Reviewer             *StageResponse       `json:"reviewer,omitempty"`
	Allocator            *StageResponse       `json:"allocator,omitempty"`
	Approver             *StageResponse       `json:"approver,omitempty"`
	Poster               *StageResponse       `json:"poster,omitempty"`
	Allocations          []AllocationResponse `json:"allocations"`
	CreatedAt            time.Time            `json:"created_at"`
}

type StageResponse struct {
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
}

type AllocationResponse struct {
	ID              string `json:"id"`
	Role            string `json:"role"`
	Rate            string `json:"rate"`
	FixedAmount     string `json:"fixed_amount"`
	Amount          string `json:"amount"`
	PayeeID         string `json:"payee_id,omitempty"`
	NoPayeeRequired bool   `json:"no_payee_required"`
}

type NetCommissionResponse struct {
	OrderID       string `json:"order_id"`
	BaseAmount    string `json:"base_amount"`
	InternalTotal string `json:"internal_total"`
	ExternalTotal string `json:"external_total"`
	Net           string `json:"net"`
	Currency      string `json:"currency"`
}

type SettlementResponse struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"order_id"`
	AllocationID  string     `json:"allocation_id"`
	PayeeID       string     `json:"payee_id"`
	Role          string     `json:"role"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	ExternalDocID string     `json:"external_doc_id"`
	TriggeredAt   *time.Time `json:"triggered_at,omitempty"`
	PostedAt      *time.Time `json:"posted_at,omitempty"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

type PostOrderResponse struct {
	Order             OrderResponse `json:"order"`
	FailedSettlements []string      `json:"failed_settlements,omitempty"`
	Warning           string        `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func FromDomainOrder(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:                   order.ID,
		Reference:            order.Reference,
		Currency:             order.Currency,
		BaseAmount:           order.BaseAmount.String(),
		Status:               string(order.Status),
		RejectReason:         order.RejectReason,
		SettlementsGenerated: order.SettlementsGenerated,
		Reviewer:             fromStage(order.Reviewer),
		Allocator:            fromStage(order.Allocator),
		Approver:             fromStage(order.Approver),
		Poster:               fromStage(order.Poster),
		CreatedAt:            order.CreatedAt,
	}
	for _, alloc := range order.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			ID:              alloc.ID,
			Role:            string(alloc.Role),
			Rate:            alloc.Rate.String(),
			FixedAmount:     alloc.FixedAmount.String(),
			Amount:          alloc.Amount.String(),
			PayeeID:         alloc.PayeeID,
			NoPayeeRequired: alloc.NoPayeeRequired,
		})
	}
	return resp
}

func FromDomainSettlement(doc *domain.SettlementDocument) SettlementResponse {
	return SettlementResponse{
		ID:            doc.ID,
		OrderID:       doc.OrderID,
		AllocationID:  doc.AllocationID,
		PayeeID:       doc.PayeeID,
		Role:          string(doc.Role),
		Amount:        doc.Amount.String(),
		Currency:      doc.Currency,
		Status:        string(doc.Status),
		ExternalDocID: doc.ExternalDocID,
		TriggeredAt:   doc.TriggeredAt,
		PostedAt:      doc.PostedAt,
	}
}

func fromStage(stage *domain.StageApproval) *StageResponse {
	if stage == nil {
		return nil
	}
	return &StageResponse{ActorID: stage.ActorID, At: stage.At}
}
