package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"
)

type OrderHandler struct {
	uc      *usecase.OrderUsecase
	returns *usecase.ReturnUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, returns *usecase.ReturnUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, returns: returns}
}

type OrderCreateRequest struct {
	CustomerID      int64          `json:"customer_id"`
	PaymentMethod   string         `json:"payment_method"`
	ShippingAddress *model.Address `json:"shipping_address,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ProcessReturnRequest struct {
	Refund bool `json:"refund"`
}

type OrderListResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("/:id", h.detail)
	g.GET("/number/:orderNumber", h.detailByNumber)
	g.PATCH("/:id/status", h.updateStatus)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/return", h.requestReturn)
	g.POST("/:id/return/process", h.processReturn)

	s := e.Group("/stores/:storeID/orders")
	s.GET("", h.listStoreOrders)
	s.GET("/stats", h.stats)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.CustomerID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "customer_id is required"})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		CustomerID:      req.CustomerID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetOrderByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detailByNumber(c echo.Context) error {
	out, err := h.uc.GetOrderByOrderNumber(c.Request().Context(), c.Param("orderNumber"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateOrderStatus(c.Request().Context(), usecase.UpdateOrderStatusInput{
		OrderID:   id,
		NewStatus: req.Status,
		Actor:     actor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.returns.CancelOrder(c.Request().Context(), id, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) requestReturn(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.returns.RequestReturn(c.Request().Context(), id, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) processReturn(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req ProcessReturnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.returns.ProcessReturn(c.Request().Context(), id, req.Refund, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listStoreOrders(c echo.Context) error {
	storeID, err := parseID(c, "storeID")
	if err != nil {
		return writeError(c, err)
	}
	email, ok := ownerEmail(c)
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "owner identity required"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	f := repo.StoreOrderListFilter{
		StoreID: storeID,
		Status:  c.QueryParam("status"),
		Page:    page,
		Limit:   limit,
	}
	orders, total, err := h.uc.ListStoreOrders(c.Request().Context(), f, email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderListResponse{Orders: orders, Total: total, Page: page, Limit: limit})
}

func (h *OrderHandler) stats(c echo.Context) error {
	storeID, err := parseID(c, "storeID")
	if err != nil {
		return writeError(c, err)
	}
	email, ok := ownerEmail(c)
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "owner identity required"})
	}
	out, err := h.uc.GetOrderStats(c.Request().Context(), storeID, email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
