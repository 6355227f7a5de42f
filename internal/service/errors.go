package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrSlotUnavailable     = errors.New("slot unavailable")
	ErrDuplicateEnrollment = errors.New("student already enrolled in this course")
	ErrCapacityExceeded    = errors.New("lesson capacity exceeded")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidReference    = errors.New("invalid reference")
	// ErrBusy means another booking for the same teacher held the lock
	// longer than we were willing to wait.
	ErrBusy = errors.New("teacher is busy, try again")
)

// NotFoundError names the missing entity. errors.Is(err, ErrNotFound) holds
// for it.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func invalidRef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReference, fmt.Sprintf(format, args...))
}
