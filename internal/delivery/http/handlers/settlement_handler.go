package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkarelin/sales-commission-service/internal/delivery/http/dto/order/response"
	"github.com/mkarelin/sales-commission-service/internal/usecase/settlement"
)

type SettlementHandler struct {
	uc settlement.SettlementUsecase
}

func NewSettlementHandler(uc settlement.SettlementUsecase) *SettlementHandler {
	return &SettlementHandler{uc: uc}
}

func (h *SettlementHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/settlements", h.ListByOrder)
	e.GET("/settlements/:id", h.GetSettlement)
	e.POST("/settlements/:id/confirm", h.Confirm)
}

func (h *SettlementHandler) ListByOrder(c echo.Context) error {
	orderID := c.QueryParam("order_id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "order_id is required"})
	}

	docs, err := h.uc.ListByOrderID(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]response.SettlementResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, response.FromDomainSettlement(doc))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SettlementHandler) GetSettlement(c echo.Context) error {
	doc, err := h.uc.GetSettlementByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainSettlement(doc))
}

// Confirm is the manual triggered->posted step used when auto-confirm
// is off.
func (h *SettlementHandler) Confirm(c echo.Context) error {
	if err := h.uc.ConfirmSettlement(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	doc, err := h.uc.GetSettlementByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromDomainSettlement(doc))
}
