package service

import (
	"errors"

	"auctionhouse/auction-service/internal/app/auctions/policy"
)

type ErrorCategory string

const (
	CategoryValidation      ErrorCategory = "VALIDATION_ERROR"
	CategoryNotFound        ErrorCategory = "NOT_FOUND"
	CategoryForbidden       ErrorCategory = "FORBIDDEN"
	CategoryUnauthenticated ErrorCategory = "UNAUTHENTICATED"
	CategoryDuplicate       ErrorCategory = "DUPLICATE_CONSTRAINT"
)

// Error is a business error the handler can render. Two errors match under
// errors.Is when their codes are equal, so a copy with a different message
// still matches its sentinel.
type Error struct {
	Category ErrorCategory
	Code     string
	Message  string
	Field    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) withMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

var (
	ErrInvalidClosingDate = &Error{CategoryValidation, "INVALID_CLOSING_DATE", "Closing date must be greater than now.", "closing_date"}
	ErrClosingDateTooSoon = &Error{CategoryValidation, "CLOSING_DATE_TOO_SOON", "Closing date must be at least 15 days after creation date.", "closing_date"}
	ErrInvalidRatingValue = &Error{CategoryValidation, "INVALID_RATING_VALUE", "Rating value must be between 1 and 5.", "value"}
	ErrInvalidField       = &Error{CategoryValidation, "INVALID_FIELD", "Invalid field.", ""}

	ErrAuctionNotFound  = &Error{CategoryNotFound, "AUCTION_NOT_FOUND", "Auction not found.", ""}
	ErrCategoryNotFound = &Error{CategoryNotFound, "CATEGORY_NOT_FOUND", "Category not found.", ""}
	ErrBidNotFound      = &Error{CategoryNotFound, "BID_NOT_FOUND", "Bid not found.", ""}
	ErrRatingNotFound   = &Error{CategoryNotFound, "RATING_NOT_FOUND", "You have not rated this auction.", ""}
	ErrCommentNotFound  = &Error{CategoryNotFound, "COMMENT_NOT_FOUND", "You have not commented on this auction.", ""}

	ErrForbidden       = &Error{CategoryForbidden, "FORBIDDEN", policy.ReasonForbidden, ""}
	ErrUnauthenticated = &Error{CategoryUnauthenticated, "UNAUTHENTICATED", policy.ReasonUnauthenticated, ""}

	ErrDuplicateRating   = &Error{CategoryDuplicate, "DUPLICATE_RATING", "You have already rated this auction.", ""}
	ErrDuplicateComment  = &Error{CategoryDuplicate, "DUPLICATE_COMMENT", "You have already commented on this auction.", ""}
	ErrDuplicateCategory = &Error{CategoryDuplicate, "DUPLICATE_CATEGORY", "Category with this name already exists.", "name"}
)

// InvalidField reports a request field that failed validation.
func InvalidField(field, message string) *Error {
	return &Error{Category: CategoryValidation, Code: ErrInvalidField.Code, Message: message, Field: field}
}

func requiredField(field string) *Error {
	return InvalidField(field, "This field is required.")
}

func blankField(field string) *Error {
	return InvalidField(field, "This field may not be blank.")
}

// authorize runs the access policy and turns a denial into an error.
func authorize(op policy.Operation, res policy.Resource, caller policy.Caller) error {
	decision := policy.Authorize(op, res, caller)
	if decision.Allowed {
		return nil
	}
	if decision.Kind == policy.DenyUnauthenticated {
		return ErrUnauthenticated.withMessage(decision.Reason)
	}
	return ErrForbidden.withMessage(decision.Reason)
}

func requireLogin(caller policy.Caller) error {
	if !caller.Authenticated {
		return ErrUnauthenticated
	}
	return nil
}
