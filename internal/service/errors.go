// Package service implements the use cases behind the HTTP surface: bus,
// bus-unit and user CRUD, and the scoped delete/patch protocol that keeps
// shared bus units consistent across schedules.
//
// The scoped path reads usage, decides, and writes without any lock or
// transaction spanning the sequence; concurrent requests touching the same
// unit or schedule can observe stale usage counts. Writes within one
// request are issued in a fixed order (unit before its schedule) and a
// failed step aborts the rest without rolling back earlier writes.
package service

import "errors"

var (
	// ErrMissingFields rejects requests with absent required fields.
	ErrMissingFields = errors.New("please fill out all fields")

	// ErrInvalidEmail rejects registration with a malformed or taken email.
	ErrInvalidEmail = errors.New("invalid email address")
	ErrEmailExists  = errors.New("email already registered")

	// ErrDateAlreadyPresent rejects adding an absent date twice.
	ErrDateAlreadyPresent = errors.New("date already present")

	// ErrNotSupported marks operations that are deliberately unimplemented.
	ErrNotSupported = errors.New("deleting users is not supported")
)
