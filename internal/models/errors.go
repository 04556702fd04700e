package models

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyCancelled     = errors.New("already cancelled")
	ErrConflict             = errors.New("conflict")
)

// DomainError is a user-facing failure belonging to one category.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

var (
	ErrTripNotFound         = &DomainError{Kind: ErrNotFound, Message: "Trip not found"}
	ErrBookingNotFound      = &DomainError{Kind: ErrNotFound, Message: "Booking not found"}
	ErrUserNotFound         = &DomainError{Kind: ErrNotFound, Message: "User not found"}
	ErrNotEnoughSeats       = &DomainError{Kind: ErrInsufficientCapacity, Message: "Not enough seats available"}
	ErrNotAuthorized        = &DomainError{Kind: ErrForbidden, Message: "Not authorized"}
	ErrBookingCancelled     = &DomainError{Kind: ErrAlreadyCancelled, Message: "Booking already cancelled"}
	ErrCancelledNotEditable = &DomainError{Kind: ErrAlreadyCancelled, Message: "Cannot update cancelled booking"}
	ErrTripSeatsChanged     = &DomainError{Kind: ErrConflict, Message: "Trip seats changed while editing, reload and try again"}
	ErrEmailTaken           = &DomainError{Kind: ErrValidation, Message: "User already exists"}
	ErrInvalidVerification  = &DomainError{Kind: ErrValidation, Message: "Invalid or expired verification token"}
)

// Validationf builds a validation failure with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}
