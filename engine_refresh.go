package starterauth

import "context"

// RefreshToken exchanges a live refresh token for a brand-new session and
// token pair, then revokes the session the presented token belonged to.
// Rotation means a refresh token works exactly once: replaying it after the
// exchange finds no session record and fails like any other bad credential.
func (e *Engine) RefreshToken(ctx context.Context, presented string) (*TokenPair, error) {
	claims, err := e.jwtRefresh.ParseRefresh(presented)
	if err != nil {
		e.metrics.RefreshFailure()
		return nil, ErrInvalidCredentials
	}

	stored, ok, err := e.sessions.GetRefreshSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	// The stored token must be the one presented. A stale token from before a
	// rotation carries the same session id but different bytes.
	if !ok || stored != presented {
		e.metrics.RefreshFailure()
		return nil, ErrInvalidCredentials
	}

	user, err := e.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			e.metrics.RefreshFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := e.sessions.LogoutSession(ctx, user.ID, claims.SessionID); err != nil {
		return nil, err
	}
	e.metrics.SessionsRevoked(1)
	e.metrics.RefreshSuccess()

	return &pair, nil
}

// Logout revokes one session. Idempotent: logging out a session that is
// already gone succeeds.
func (e *Engine) Logout(ctx context.Context, userID, sessionID string) error {
	if err := e.sessions.LogoutSession(ctx, userID, sessionID); err != nil {
		return err
	}
	e.metrics.SessionsRevoked(1)
	e.log.Info().Str("userId", userID).Str("sessionId", sessionID).Msg("logout")
	return nil
}

// LogoutAll revokes every session the user has, on every device.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	revoked, err := e.revokeAllSessions(ctx, userID)
	if err != nil {
		return err
	}
	e.metrics.SessionsRevoked(revoked)
	e.log.Info().Str("userId", userID).Int("revoked", revoked).Msg("logout all")
	return nil
}
