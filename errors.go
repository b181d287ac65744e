package starterauth

import (
	"errors"

	"github.com/jeziorskilukasz/starterauth/kv"
)

var (
	// ErrStoreUnavailable mirrors the kv sentinel so callers can match it
	// without importing the adapter package. Surfaced as a 5xx-equivalent.
	ErrStoreUnavailable = kv.ErrStoreUnavailable

	// ErrInvalidCredentials covers bad passwords, unknown accounts, missing
	// sessions on refresh, and failed token validation. Surfaced as a
	// 401-equivalent; deliberately never says which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredHash is the single error for every failure inside
	// hash verification: bad signature, expiry, type mismatch, absent or
	// substituted canonical copy. One error for all causes, so a caller
	// probing hashes learns nothing.
	ErrInvalidOrExpiredHash = errors.New("invalid or expired hash")

	// ErrOperationConflict is returned when the request is well-formed but
	// conflicts with current state, e.g. changing email to one already in
	// use. Surfaced as a 400-equivalent.
	ErrOperationConflict = errors.New("operation conflict")

	// ErrUserNotFound must be returned by UserProvider implementations when
	// a lookup finds no account. The engine relies on errors.Is against it
	// to produce success-shaped responses on enumeration-sensitive paths.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountInactive is returned on login before email confirmation.
	ErrAccountInactive = errors.New("account not activated")

	// ErrMailDelivery wraps failures from the mail collaborator. The hash
	// dispatched alongside the mail is not rolled back; a retried request
	// overwrites it.
	ErrMailDelivery = errors.New("mail delivery failed")
)
