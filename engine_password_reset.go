package starterauth

import "context"

// ForgotPassword issues a password-reset hash and mails it to the account.
// The response is success-shaped whether or not the address exists; only a
// store or mail failure for a real account surfaces as an error.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	user, found, err := e.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	// Social accounts have no local password; answering success-shaped for
	// them keeps the response indistinguishable from an unknown address.
	if !found || user.Provider != ProviderEmail {
		return nil
	}

	return e.generateAndDispatch(ctx, OpForgotPassword, user, nil, e.mail.ForgotPassword, MailData{
		To:       user.Email,
		UserName: user.FirstName,
	})
}

// ResetPassword redeems a reset hash, replaces the account password, and
// revokes every live session. Whoever held the old credentials is signed out
// everywhere; the new password is the only way back in.
func (e *Engine) ResetPassword(ctx context.Context, hash, newPassword string) error {
	return e.verifyAndConsume(ctx, OpForgotPassword, hash, func(ctx context.Context, userID string, _ map[string]any) error {
		passwordHash, err := e.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if _, err := e.users.Update(ctx, userID, UserUpdate{PasswordHash: &passwordHash}); err != nil {
			return err
		}

		revoked, err := e.revokeAllSessions(ctx, userID)
		if err != nil {
			return err
		}
		e.metrics.SessionsRevoked(revoked)
		e.log.Info().Str("userId", userID).Int("revoked", revoked).Msg("password reset")
		return nil
	})
}

// revokeAllSessions revokes every session for the user and reports how many
// were tracked at the time.
func (e *Engine) revokeAllSessions(ctx context.Context, userID string) (int, error) {
	ids, err := e.sessions.ActiveSessionIDs(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := e.sessions.LogoutAllSessions(ctx, userID); err != nil {
		return 0, err
	}
	return len(ids), nil
}
