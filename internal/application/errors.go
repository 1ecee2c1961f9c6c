package application

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized is returned when the acting user may not perform the
	// operation, such as stopping someone else's shower.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrShowerFree is returned when a stop arrives while nobody is
	// showering.
	ErrShowerFree = errors.New("application: shower is free")
)

// OccupiedError reports a start attempt while the shower is held.
type OccupiedError struct {
	By string
}

func (e *OccupiedError) Error() string {
	return fmt.Sprintf("application: shower occupied by %s", e.By)
}

// CooldownError reports a stop that arrived before the minimum shower
// duration elapsed, usually a double tap.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("application: shower too short, %s remaining", e.Remaining)
}

// ClaimRejectedError reports a slot claim refused by validation. Reason is
// the timeslot reject reason; ConflictID names the blocking slot when the
// claim overlapped one.
type ClaimRejectedError struct {
	Reason     string
	ConflictID string
}

func (e *ClaimRejectedError) Error() string {
	if e.ConflictID != "" {
		return fmt.Sprintf("application: claim rejected (%s, conflicts with %s)", e.Reason, e.ConflictID)
	}
	return fmt.Sprintf("application: claim rejected (%s)", e.Reason)
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
