package starterauth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jeziorskilukasz/starterauth/jwt"
	"github.com/jeziorskilukasz/starterauth/kv"
	"github.com/jeziorskilukasz/starterauth/password"
	"github.com/jeziorskilukasz/starterauth/session"
)

// Engine orchestrates the session and credential lifecycle. Construct it
// through [Builder]; all methods are safe for concurrent use afterwards.
type Engine struct {
	config Config
	log    zerolog.Logger

	users UserProvider
	mail  MailSender

	store    *kv.Store
	sessions *session.Registry
	hasher   *password.Hasher

	jwtAccess  *jwt.Manager
	jwtRefresh *jwt.Manager
	jwtOps     map[OperationType]*jwt.Manager

	metrics  *Metrics
	cleanups []CleanupFunc
}

// Sessions exposes the session registry for administrative surfaces
// (listing a user's devices, support tooling). Request paths should go
// through Engine methods instead.
func (e *Engine) Sessions() *session.Registry {
	return e.sessions
}

// ValidateAccess verifies an access token's signature and expiry and checks
// that its session record is still live. A structurally valid token whose
// session was revoked or lapsed is rejected the same way as a forged one.
func (e *Engine) ValidateAccess(ctx context.Context, token string) (*jwt.AccessClaims, error) {
	claims, err := e.jwtAccess.ParseAccess(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := e.sessions.AccessSessionExists(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return claims, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// findUserByEmail distinguishes "absent" from "broken" so enumeration-
// sensitive flows can answer success-shaped on absence while still
// surfacing store failures.
func (e *Engine) findUserByEmail(ctx context.Context, email string) (*User, bool, error) {
	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}
