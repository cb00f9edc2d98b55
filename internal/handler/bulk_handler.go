package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace/internal/domain/model"
	"marketplace/internal/usecase"
)

type BulkProductHandler struct {
	uc *usecase.BulkProductUsecase
}

func NewBulkProductHandler(uc *usecase.BulkProductUsecase) *BulkProductHandler {
	return &BulkProductHandler{uc: uc}
}

func (h *BulkProductHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/products/bulk", h.execute)
}

func (h *BulkProductHandler) execute(c echo.Context) error {
	email, ok := ownerEmail(c)
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "owner identity required"})
	}

	var req model.BulkOperationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Execute(c.Request().Context(), req, email)
	if err != nil {
		return writeError(c, err)
	}

	//部分失敗でも200で返す（結果のリストで判断してもらう）
	return c.JSON(http.StatusOK, out)
}
