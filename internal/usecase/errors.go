package usecase

import "errors"

// Business outcomes are closed sentinels so callers distinguish them with
// errors.Is. Anything else bubbling out of a service is a store fault and the
// only kind a caller may retry.
var (
	ErrBookingNotFound = errors.New("booking not found")

	ErrSlotNotFound = errors.New("visitor slot not found")

	// ErrCapacityExceeded is a normal business rejection at reservation
	// time, not a fault.
	ErrCapacityExceeded = errors.New("time slot capacity exceeded")

	// ErrUnresolvable means no strategy could map the scanned content to
	// a credential.
	ErrUnresolvable = errors.New("could not resolve scanned code")

	// ErrAlreadyAdmitted is the at-most-once guarantee surfacing: the
	// credential was consumed before, by this scan's loser or an earlier
	// visit.
	ErrAlreadyAdmitted = errors.New("credential already admitted")

	ErrExpired = errors.New("credential expired")

	ErrBookingInactive = errors.New("booking is cancelled or archived")
)
