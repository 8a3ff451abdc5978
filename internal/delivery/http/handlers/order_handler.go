package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mkarelin/sales-commission-service/internal/delivery/http/dto/order/request"
	"github.com/mkarelin/sales-commission-service/internal/delivery/http/dto/order/response"
	"github.com/mkarelin/sales-commission-service/internal/domain"
	orderdto "github.com/mkarelin/sales-commission-service/internal/usecase/dto/order"
	orderusecase "github.com/mkarelin/sales-commission-service/internal/usecase/order"
)

type OrderHandler struct {
	uc orderusecase.OrderUsecase
}

func NewOrderHandler(uc orderusecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/orders", h.CreateOrder)
	e.GET("/orders", h.ListOrders)
	e.GET("/orders/:id", h.GetOrder)
	e.GET("/orders/by-reference/:reference", h.GetOrderByReference)
	e.GET("/orders/:id/net-commission", h.NetCommission)
	e.PUT("/orders/:id/base-amount", h.UpdateBaseAmount)
	e.PUT("/orders/:id/allocations", h.SetAllocations)
	e.POST("/orders/:id/submit", h.Submit)
	e.POST("/orders/:id/begin-allocation", h.BeginAllocation)
	e.POST("/orders/:id/approve", h.Approve)
	e.POST("/orders/:id/post", h.Post)
	e.POST("/orders/:id/reject", h.Reject)
	e.POST("/orders/:id/cancel", h.Cancel)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req request.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
	}

	baseAmount, err := decimal.NewFromString(req.BaseAmount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid base_amount"})
	}

	allocations, err := toAllocationInputs(req.Allocations)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	}

	order, err := h.uc.CreateOrder(c.Request().Context(), &orderdto.CreateOrderInput{
		Reference:        req.Reference,
		Currency:         req.Currency,
		BaseAmount:       baseAmount,
		FulfillmentDocID: req.FulfillmentDocID,
		CallbackURL:      req.CallbackURL,
		Allocations:      allocations,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, response.FromDomainOrder(order))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.uc.GetOrderByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) GetOrderByReference(c echo.Context) error {
	order, err := h.uc.GetOrderByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	input := &orderdto.ListOrdersInput{
		Reference: c.QueryParam("reference"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if statuses := c.QueryParam("statuses"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			input.Statuses = append(input.Statuses, domain.OrderStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if page, err := strconv.ParseInt(c.QueryParam("page"), 10, 64); err == nil {
		input.Page = page
	}
	if limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64); err == nil {
		input.Limit = limit
	}
	if from := c.QueryParam("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			input.DateFrom = t
		}
	}
	if to := c.QueryParam("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			input.DateTo = t
		}
	}

	orders, total, err := h.uc.ListOrders(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	resp := response.ListOrdersResponse{Total: total}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, response.FromDomainOrder(order))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) NetCommission(c echo.Context) error {
	output, err := h.uc.NetCommission(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.NetCommissionResponse{
		OrderID:       output.OrderID,
		BaseAmount:    output.BaseAmount.String(),
		InternalTotal: output.InternalTotal.String(),
		ExternalTotal: output.ExternalTotal.String(),
		Net:           output.Net.String(),
		Currency:      output.Currency,
	})
}

func (h *OrderHandler) UpdateBaseAmount(c echo.Context) error {
	var req request.UpdateBaseAmountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
	}
	order, err := h.uc.UpdateBaseAmount(c.Request().Context(), c.Param("id"), req.BaseAmount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) SetAllocations(c echo.Context) error {
	var req request.SetAllocationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
	}
	inputs, err := toAllocationInputs(req.Allocations)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	}
	order, err := h.uc.SetAllocations(c.Request().Context(), c.Param("id"), inputs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) Submit(c echo.Context) error {
	return h.transition(c, h.uc.SubmitForReview)
}

func (h *OrderHandler) BeginAllocation(c echo.Context) error {
	return h.transition(c, h.uc.BeginAllocation)
}

func (h *OrderHandler) Approve(c echo.Context) error {
	return h.transition(c, h.uc.ApproveOrder)
}

func (h *OrderHandler) Reject(c echo.Context) error {
	return h.transition(c, h.uc.RejectOrder)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.uc.CancelOrder)
}

func (h *OrderHandler) Post(c echo.Context) error {
	input, bindErr := bindTransition(c)
	if bindErr != nil {
		return bindErr
	}

	output, err := h.uc.PostOrder(c.Request().Context(), input)
	if err != nil && !errors.Is(err, domain.ErrGenerationPartial) {
		return writeError(c, err)
	}

	order, getErr := h.uc.GetOrderByID(c.Request().Context(), input.OrderID)
	if getErr != nil {
		return writeError(c, getErr)
	}

	resp := response.PostOrderResponse{Order: response.FromDomainOrder(order)}
	if output != nil {
		resp.FailedSettlements = output.FailedSettlements
	}
	if err != nil {
		// The order is posted; the reconciliation job finishes the rest.
		resp.Warning = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) transition(c echo.Context, op func(ctx context.Context, input orderdto.TransitionInput) error) error {
	input, bindErr := bindTransition(c)
	if bindErr != nil {
		return bindErr
	}
	if err := op(c.Request().Context(), input); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.GetOrderByID(c.Request().Context(), input.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainOrder(order))
}

func bindTransition(c echo.Context) (orderdto.TransitionInput, error) {
	var req request.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return orderdto.TransitionInput{}, c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
	}
	return orderdto.TransitionInput{
		OrderID:              c.Param("id"),
		ActorID:              req.ActorID,
		Capabilities:         req.Capabilities,
		Reason:               req.Reason,
		ExternalCancellation: req.External,
	}, nil
}

func toAllocationInputs(reqs []request.AllocationRequest) ([]orderdto.AllocationInput, error) {
	inputs := make([]orderdto.AllocationInput, 0, len(reqs))
	for _, r := range reqs {
		input := orderdto.AllocationInput{
			Role:            domain.CommissionRole(strings.ToUpper(r.Role)),
			PayeeID:         r.PayeeID,
			NoPayeeRequired: r.NoPayeeRequired,
		}
		if r.Rate != "" {
			rate, err := decimal.NewFromString(r.Rate)
			if err != nil {
				return nil, fmt.Errorf("invalid rate %q", r.Rate)
			}
			input.Rate = rate
		}
		if r.FixedAmount != "" {
			fixed, err := decimal.NewFromString(r.FixedAmount)
			if err != nil {
				return nil, fmt.Errorf("invalid fixed_amount %q", r.FixedAmount)
			}
			input.FixedAmount = fixed
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrSettlementNotFound):
		return c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSeparationOfDuties),
		errors.Is(err, domain.ErrDuplicateReference):
		return c.JSON(http.StatusConflict, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrIncompleteAllocation), errors.Is(err, domain.ErrMissingDocuments):
		return c.JSON(http.StatusUnprocessableEntity, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMissingReason),
		errors.Is(err, domain.ErrConflictingBasis),
		errors.Is(err, domain.ErrNegativeCommission):
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return c.JSON(http.StatusBadGateway, response.ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
	}
}
