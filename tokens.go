package starterauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jeziorskilukasz/starterauth/session"
)

// issueTokenPair mints a fresh session: a new session id, an access and a
// refresh token bound to it, and the registry records that make both
// redeemable. Session records expire with their tokens, so an abandoned
// session cleans itself up.
func (e *Engine) issueTokenPair(ctx context.Context, user *User) (TokenPair, error) {
	sessionID := uuid.NewString()

	access, err := e.jwtAccess.CreateAccess(user.ID, user.Role, user.Status, sessionID)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := e.jwtRefresh.CreateRefresh(user.ID, sessionID)
	if err != nil {
		return TokenPair{}, err
	}

	_, err = e.sessions.CreateSession(ctx, session.CreateSessionParams{
		UserID:       user.ID,
		SessionID:    sessionID,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    e.jwtAccess.TTL(),
		RefreshTTL:   e.jwtRefresh.TTL(),
	})
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.SessionCreated()

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(e.jwtAccess.TTL()).UnixMilli(),
	}, nil
}
