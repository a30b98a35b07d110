package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
)

// 認証切れ・DB障害など、分類に当てはまらないもの
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 500。原因は残してログに出す（レスポンスには出さない）
func dbError(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
}

func unauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// 無い・見えない（他人のもの）
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	}
	return e.Resource + " not found"
}

type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// 同時更新に負け続けた
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
