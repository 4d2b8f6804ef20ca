// Package apperrors defines the error taxonomy shared by the store, gateway and HTTP layers.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the stable, machine-readable category of a failure.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindEmptyCart          Kind = "empty_cart"
	KindAmountExceedsLimit Kind = "amount_exceeds_limit"
	KindCatalogReference   Kind = "catalog_reference_error"
	KindGateway            Kind = "gateway_error"
	KindSignatureMismatch  Kind = "signature_mismatch"
	KindInternal           Kind = "internal_error"
)

// Error is a categorised failure. Sentinels below are compared with errors.Is after wrapping
// with fmt.Errorf("...: %w", err).
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidQuantity    = &Error{Kind: KindValidation, Message: "quantity must be at least 1"}
	ErrInvalidAmount      = &Error{Kind: KindValidation, Message: "amount must be greater than zero"}
	ErrInvalidInput       = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrEmptyCart          = &Error{Kind: KindEmptyCart, Message: "cart is empty"}
	ErrAmountExceedsLimit = &Error{Kind: KindAmountExceedsLimit, Message: "amount exceeds the maximum allowed for a single transaction, split the payment into smaller transactions"}
	ErrCatalogReference   = &Error{Kind: KindCatalogReference, Message: "cart references a catalog entry that does not exist"}
	ErrGateway            = &Error{Kind: KindGateway, Message: "payment gateway unavailable, please retry"}
	ErrSignatureMismatch  = &Error{Kind: KindSignatureMismatch, Message: "payment signature verification failed"}
)

// New returns a fresh error of the given kind. Use it when the message carries detail that a
// sentinel cannot, e.g. which field failed validation.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err. Internal failures never expose their text.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps a kind onto the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindEmptyCart, KindAmountExceedsLimit, KindSignatureMismatch:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
