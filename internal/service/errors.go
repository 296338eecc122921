package service

import "errors"

// Sentinel errors shared across services. Handlers translate these into HTTP
// statuses; everything else surfaces as a 500.
var (
	// ErrValidation marks missing or malformed input. Terminal, no retry.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an illegal status transition, e.g. confirming an
	// already-paid proforma or deleting a paid one.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks a refused mutation, e.g. deleting a tax rate that is
	// still referenced by products or proforma items.
	ErrConflict = errors.New("conflict")

	// ErrNumberingExhausted is returned after the bounded retry on counter
	// contention runs out. The caller may retry the whole request.
	ErrNumberingExhausted = errors.New("could not allocate a document number")

	// ErrRenderFailed marks a PDF generation failure. The persisted proforma
	// stays untouched.
	ErrRenderFailed = errors.New("pdf rendering failed")

	// ErrMailFailed marks an email dispatch failure. The proforma stays valid
	// and undelivered; sending can be retried.
	ErrMailFailed = errors.New("email dispatch failed")
)
