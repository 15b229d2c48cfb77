package services

import (
	"errors"
	"fmt"

	"github.com/kendall-kelly/baskets-api/models"
)

// ErrorKind classifies business-rule failures. Every kind maps to one HTTP status.
type ErrorKind string

const (
	KindUnauthorized   ErrorKind = "UNAUTHORIZED"
	KindForbidden      ErrorKind = "FORBIDDEN"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindDeadlinePassed ErrorKind = "DEADLINE_PASSED"
	KindDuplicateOrder ErrorKind = "DUPLICATE_ORDER"
	KindEmptyOrder     ErrorKind = "EMPTY_ORDER"
	KindInvalidItem    ErrorKind = "INVALID_ITEM"
	KindInvalidInput   ErrorKind = "INVALID_INPUT"
	KindConflict       ErrorKind = "CONFLICT"
	KindUnavailable    ErrorKind = "UNAVAILABLE"
)

// Error is a request-level failure surfaced to the caller as is
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error of the same kind. A target without a code
// matches every code of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// Sentinels for errors.Is
var (
	ErrUnauthorized   = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden      = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound       = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDeadlinePassed = &Error{Kind: KindDeadlinePassed, Message: "deadline passed"}
	ErrDuplicateOrder = &Error{Kind: KindDuplicateOrder, Message: "duplicate order"}
	ErrEmptyOrder     = &Error{Kind: KindEmptyOrder, Message: "empty order"}
	ErrInvalidItem    = &Error{Kind: KindInvalidItem, Message: "invalid item"}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrConflict       = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUnavailable    = &Error{Kind: KindUnavailable, Message: "unavailable"}
)

func newError(kind ErrorKind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a service error, or "" for any other error
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

func unauthorized() *Error {
	return newError(KindUnauthorized, "UNAUTHORIZED", "Authentication required")
}

func staffOnly() *Error {
	return newError(KindForbidden, "FORBIDDEN", "Only staff members can perform this action")
}

func deliveryNotFound(id uint) *Error {
	return newError(KindNotFound, "DELIVERY_NOT_FOUND", "Delivery with id %d does not exist", id)
}

func productNotFound(id uint) *Error {
	return newError(KindNotFound, "PRODUCT_NOT_FOUND", "Product with id %d does not exist", id)
}

func orderNotFound(id uint) *Error {
	return newError(KindNotFound, "ORDER_NOT_FOUND", "Order with id %d does not exist", id)
}

func requireStaff(user *models.User) error {
	if user == nil {
		return unauthorized()
	}
	if !user.IsStaff() {
		return staffOnly()
	}
	return nil
}
