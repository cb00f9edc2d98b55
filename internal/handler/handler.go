package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"marketplace/internal/usecase"
)

// 呼び出し側の識別はヘッダーで明示的に受け取る。
// 認証・セッションは外部コラボレータの責務。
const (
	headerOwnerEmail = "X-Owner-Email"
	headerActor      = "X-Actor"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		return c.JSON(ae.Status, ErrorResponse{Error: ae.Message, Kind: string(ae.Kind)})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func ownerEmail(c echo.Context) (string, bool) {
	v := c.Request().Header.Get(headerOwnerEmail)
	return v, v != ""
}

func actor(c echo.Context) string {
	if v := c.Request().Header.Get(headerActor); v != "" {
		return v
	}
	return "system"
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewValidation("invalid " + name)
	}
	return id, nil
}
