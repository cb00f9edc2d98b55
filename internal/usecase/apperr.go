package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種別。呼び出し側はメッセージではなくKindで分岐する。
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindReturnWindowExpired    ErrorKind = "RETURN_WINDOW_EXPIRED"
	KindInsufficientStock      ErrorKind = "INSUFFICIENT_STOCK"
	KindNegativeStock          ErrorKind = "NEGATIVE_STOCK"
	KindEmptyCart              ErrorKind = "EMPTY_CART"
	KindInvalidRefundState     ErrorKind = "INVALID_REFUND_STATE"
	KindValidation             ErrorKind = "VALIDATION"
	KindInternal               ErrorKind = "INTERNAL"
)

type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newAppError(kind ErrorKind, status int, message string) error {
	return &AppError{Kind: kind, Status: status, Message: message}
}

func NewNotFound(message string) error {
	return newAppError(KindNotFound, http.StatusNotFound, message)
}

func NewUnauthorized(message string) error {
	return newAppError(KindUnauthorized, http.StatusForbidden, message)
}

func NewInvalidStateTransition(message string) error {
	return newAppError(KindInvalidStateTransition, http.StatusConflict, message)
}

func NewReturnWindowExpired(message string) error {
	return newAppError(KindReturnWindowExpired, http.StatusConflict, message)
}

func NewInsufficientStock(message string) error {
	return newAppError(KindInsufficientStock, http.StatusConflict, message)
}

func NewNegativeStock(message string) error {
	return newAppError(KindNegativeStock, http.StatusConflict, message)
}

func NewEmptyCart(message string) error {
	return newAppError(KindEmptyCart, http.StatusBadRequest, message)
}

func NewInvalidRefundState(message string) error {
	return newAppError(KindInvalidRefundState, http.StatusConflict, message)
}

func NewValidation(message string) error {
	return newAppError(KindValidation, http.StatusBadRequest, message)
}

func NewInternal(message string) error {
	return newAppError(KindInternal, http.StatusInternalServerError, message)
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// 指定Kindのエラーか
func IsKind(err error, kind ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == kind
}
