package starterauth

import (
	"context"
	"fmt"
)

// ChangePassword replaces the password for an authenticated user after
// re-verifying the current one, then revokes every OTHER session. The session
// that performed the change stays live so the user is not logged out of the
// device they are holding.
func (e *Engine) ChangePassword(ctx context.Context, userID, sessionID, oldPassword, newPassword string) error {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Provider != ProviderEmail {
		return fmt.Errorf("%w: account uses %s login", ErrOperationConflict, user.Provider)
	}

	ok, err := e.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := e.users.Update(ctx, userID, UserUpdate{PasswordHash: &passwordHash}); err != nil {
		return err
	}

	if err := e.sessions.LogoutOtherSessions(ctx, userID, sessionID); err != nil {
		return err
	}
	e.log.Info().Str("userId", userID).Msg("password changed")
	return nil
}

// DeleteAccount revokes every session, runs the registered cleanup hooks,
// removes the user record, and sends a farewell mail. A failing cleanup
// aborts before the record is removed so the deletion can be retried whole.
func (e *Engine) DeleteAccount(ctx context.Context, userID string) error {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	revoked, err := e.revokeAllSessions(ctx, userID)
	if err != nil {
		return err
	}
	e.metrics.SessionsRevoked(revoked)

	for _, cleanup := range e.cleanups {
		if err := cleanup(ctx, userID); err != nil {
			return fmt.Errorf("account cleanup: %w", err)
		}
	}

	if err := e.users.Delete(ctx, userID); err != nil {
		return err
	}
	e.log.Info().Str("userId", userID).Msg("account deleted")

	farewell := MailData{To: user.Email, UserName: user.FirstName}
	if err := e.mail.DeleteAccount(ctx, farewell); err != nil {
		e.log.Warn().Err(err).Str("userId", userID).Msg("farewell mail failed")
	}
	return nil
}
