// Package services defines the business logic of the commitment engine: the
// ingest pipeline, commitment lifecycle operations, and the sweep/reconcile
// process. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
//
// Note the asymmetry mandated by the engine's error taxonomy: a reference to
// a record that does not exist is a real error (ErrCommitmentNotFound), while
// an illegal transition on an existing record is NOT; it is absorbed as an
// idempotent no-op because callers routinely retry.
package services

import "errors"

var (
	// ErrCommitmentNotFound indicates that the requested commitment does
	// not exist. Distinct from illegal-transition no-ops, since it points
	// at a genuine reference error on the caller's side.
	ErrCommitmentNotFound = errors.New("commitment not found")

	// ErrMessageNotFound indicates that the referenced inbound message does
	// not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrEmptyText is returned when an ingest or diagnostic request carries
	// no usable text.
	ErrEmptyText = errors.New("text is empty")

	// ErrTooLong is returned when a message exceeds the maximum configured
	// length limit.
	ErrTooLong = errors.New("text too long")

	// ErrInvalidExtend is returned when an extend action carries a
	// non-positive number of minutes.
	ErrInvalidExtend = errors.New("extend minutes must be positive")
)
