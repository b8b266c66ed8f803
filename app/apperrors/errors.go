// Package apperrors defines the client-facing error taxonomy. Every error
// carries a stable machine-readable code and the HTTP status class it maps
// to. None of these are retried anywhere; they are terminal, client-caused
// failures. Infrastructure errors stay plain wrapped errors and surface as
// 500 at the handler boundary.
package apperrors

import (
	"errors"
	"net/http"
)

type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Code
}

func notFound(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusNotFound}
}

func badRequest(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusBadRequest}
}

func conflict(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusConflict}
}

var (
	ErrProductNotFound    = notFound("PRODUCT_NOT_FOUND", "product does not exist")
	ErrCategoryNotFound   = notFound("CATEGORY_NOT_FOUND", "category does not exist")
	ErrOrderNotFound      = notFound("ORDER_NOT_FOUND", "order does not exist")
	ErrOrderItemNotFound  = notFound("ORDER_ITEM_NOT_FOUND", "product is not in the order")
	ErrUserNotFound       = notFound("USER_NOT_FOUND", "user does not exist")
	ErrCommentNotFound    = notFound("COMMENT_NOT_FOUND", "comment does not exist")
	ErrRegionNotFound     = notFound("REGION_NOT_FOUND", "region does not exist")
	ErrSettlementNotFound = notFound("SETTLEMENT_NOT_FOUND", "settlement does not exist")
	ErrPostOfficeNotFound = notFound("POST_OFFICE_NOT_FOUND", "post office does not exist or is not working")

	ErrOrderEmpty          = badRequest("ORDER_EMPTY", "order has no items")
	ErrStatusIncorrect     = badRequest("STATUS_INCORRECT", "order status does not allow this transition")
	ErrInvalidCategory     = badRequest("NON_EXISTANT_CATEGORY", "referenced category does not exist")
	ErrBasicFlowIncomplete = badRequest("BASIC_FLOW_INCOMPLETE", "account has no password set")
	ErrAlreadyInFavourite  = badRequest("ALREADY_IN_FAVOURITE", "product is already in favourites")
	ErrNotInFavourites     = badRequest("NOT_IN_FAVOURITES", "product is not in favourites")
	ErrValidation          = badRequest("VALIDATION_FAILED", "request payload failed validation")
	ErrWrongOldPassword    = badRequest("WRONG_OLD_PASSWORD", "old password does not match")

	ErrUserAlreadyExists     = conflict("USER_ALREADY_EXISTS", "user with this email or phone already exists")
	ErrCategoryAlreadyExists = conflict("CATEGORY_ALREADY_EXISTS", "category with this slug already exists")

	ErrInvalidPassword = &Error{Code: "INVALID_PASSWORD", Message: "wrong password", Status: http.StatusUnauthorized}
	ErrInvalidToken    = &Error{Code: "INVALID_TOKEN", Message: "missing or invalid bearer token", Status: http.StatusUnauthorized}
	ErrNotOwnOrder     = &Error{Code: "NOT_OWN_ORDER", Message: "order belongs to another user", Status: http.StatusForbidden}
	ErrForbidden       = &Error{Code: "FORBIDDEN", Message: "operation not allowed", Status: http.StatusForbidden}
)

// From extracts the taxonomy error from an error chain, or nil if the error
// is an infrastructure failure.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
