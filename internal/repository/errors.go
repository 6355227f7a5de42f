package repository

import "errors"

// ErrConflict is returned when an insert violates a unique constraint, such as
// a second enrollment of the same student in a course or a second appointment
// for a teacher on the same day and slot.
var ErrConflict = errors.New("conflict")
