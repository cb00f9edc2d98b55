package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"marketplace/internal/handler"
)

// ルート登録済みのechoを組み立てる
func New(
	orderH *handler.OrderHandler,
	inventoryH *handler.InventoryHandler,
	bulkH *handler.BulkProductHandler,
	paymentH *handler.PaymentHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	orderH.RegisterRoutes(e)
	inventoryH.RegisterRoutes(e)
	bulkH.RegisterRoutes(e)
	paymentH.RegisterRoutes(e)

	return e
}
