package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace/internal/domain/model"
	"marketplace/internal/usecase"
)

type InventoryHandler struct {
	uc *usecase.InventoryUsecase
}

func NewInventoryHandler(uc *usecase.InventoryUsecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

type AdjustStockRequest struct {
	ProductID      int64  `json:"product_id"`
	QuantityChange int    `json:"quantity_change"`
	Type           string `json:"type"`
	Reason         string `json:"reason"`
	OrderID        *int64 `json:"order_id,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func (h *InventoryHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/inventory")
	g.POST("/adjust", h.adjust)
	g.GET("/summary/:storeID", h.summary)
	g.GET("/alerts/:storeID", h.alerts)
	g.POST("/alerts/:alertID/acknowledge", h.acknowledge)
	g.GET("/products/:productID/history", h.history)
}

func (h *InventoryHandler) adjust(c echo.Context) error {
	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdjustStock(c.Request().Context(), usecase.StockAdjustmentInput{
		ProductID:      req.ProductID,
		QuantityChange: req.QuantityChange,
		Type:           model.TransactionType(req.Type),
		Reason:         req.Reason,
		OrderID:        req.OrderID,
		Notes:          req.Notes,
	}, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) summary(c echo.Context) error {
	storeID, err := parseID(c, "storeID")
	if err != nil {
		return writeError(c, err)
	}
	email, ok := ownerEmail(c)
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "owner identity required"})
	}
	out, err := h.uc.GetInventorySummary(c.Request().Context(), storeID, email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) alerts(c echo.Context) error {
	storeID, err := parseID(c, "storeID")
	if err != nil {
		return writeError(c, err)
	}
	email, ok := ownerEmail(c)
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "owner identity required"})
	}
	includeAcknowledged := c.QueryParam("include_acknowledged") == "true"

	out, err := h.uc.GetLowStockAlerts(c.Request().Context(), storeID, email, includeAcknowledged)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) acknowledge(c echo.Context) error {
	alertID, err := parseID(c, "alertID")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AcknowledgeAlert(c.Request().Context(), alertID, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) history(c echo.Context) error {
	productID, err := parseID(c, "productID")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetProductTransactionHistory(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
