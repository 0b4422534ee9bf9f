package services

import (
	"errors"

	"github.com/lbin817/MSE/store"
)

// Typed errors crossing the service boundary. Handlers translate these into
// HTTP statuses; no failure path leaves a partial write behind.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("record not found")
	ErrIdentityMismatch   = errors.New("leader name does not match")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrNotApproved        = errors.New("request is not approved")
	ErrAlreadyApproved    = errors.New("request is already approved")
	ErrOutOfRange         = errors.New("budget out of range")
)

// notFound maps store-level misses to the service error kind and passes
// everything else through.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
