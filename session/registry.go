package session

import (
	"context"
	"time"

	"github.com/jeziorskilukasz/starterauth/kv"
)

// Key layout, wire-compatible with earlier deployments:
//
//	userSessions:{userId}        set of live session ids
//	refreshToken:{sessionId}     signed refresh token, TTL = refresh lifetime
//	token:{sessionId}            signed access token, TTL = access lifetime
//	{operation}Code:{userId}     canonical single-use operation hash
//
// A session id present in the user set is expected to have had its token keys
// written in the same CreateSession call, but the three writes are not
// transactional: a crash in between leaves a half-open session that expires
// on its own. Nothing reads the set without also checking the token keys.

// Registry tracks live sessions per user and the canonical copies of
// single-use operation hashes.
type Registry struct {
	store  *kv.Store
	prefix string
}

// NewRegistry creates a Registry on top of the given store. prefix namespaces
// every key and may be empty.
func NewRegistry(store *kv.Store, prefix string) *Registry {
	return &Registry{store: store, prefix: prefix}
}

func (r *Registry) userSessionsKey(userID string) string {
	return r.prefix + "userSessions:" + userID
}

func (r *Registry) refreshTokenKey(sessionID string) string {
	return r.prefix + "refreshToken:" + sessionID
}

func (r *Registry) accessTokenKey(sessionID string) string {
	return r.prefix + "token:" + sessionID
}

func (r *Registry) operationKey(operation, userID string) string {
	return r.prefix + operation + "Code:" + userID
}

// CreateSessionParams carries everything CreateSession persists. The session
// id is caller-generated; the registry never mints identifiers.
type CreateSessionParams struct {
	UserID       string
	SessionID    string
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// CreateSession registers the session id under the user's session set and
// writes both token records with their TTLs. Returns the same session id.
func (r *Registry) CreateSession(ctx context.Context, p CreateSessionParams) (string, error) {
	if _, err := r.store.AddToSet(ctx, r.userSessionsKey(p.UserID), p.SessionID); err != nil {
		return "", err
	}
	if err := r.store.Set(ctx, r.refreshTokenKey(p.SessionID), p.RefreshToken, p.RefreshTTL); err != nil {
		return "", err
	}
	if err := r.store.Set(ctx, r.accessTokenKey(p.SessionID), p.AccessToken, p.AccessTTL); err != nil {
		return "", err
	}
	return p.SessionID, nil
}

// GetRefreshSession returns the refresh token recorded for the session.
// ok is false when the record never existed or its TTL lapsed.
func (r *Registry) GetRefreshSession(ctx context.Context, sessionID string) (string, bool, error) {
	return r.store.Get(ctx, r.refreshTokenKey(sessionID))
}

// AccessSessionExists reports whether the session's access record is still
// live. Backs bearer-token validation: a signed token whose session record
// expired or was revoked is rejected.
func (r *Registry) AccessSessionExists(ctx context.Context, sessionID string) (bool, error) {
	_, ok, err := r.store.Get(ctx, r.accessTokenKey(sessionID))
	return ok, err
}

// LogoutSession removes the session from the user's set and deletes both
// token records. Idempotent: absent keys are treated as success.
func (r *Registry) LogoutSession(ctx context.Context, userID, sessionID string) error {
	if _, err := r.store.RemoveFromSet(ctx, r.userSessionsKey(userID), sessionID); err != nil {
		return err
	}
	if _, err := r.store.Delete(ctx, r.refreshTokenKey(sessionID)); err != nil {
		return err
	}
	if _, err := r.store.Delete(ctx, r.accessTokenKey(sessionID)); err != nil {
		return err
	}
	return nil
}

// LogoutAllSessions revokes every live session for the user and removes the
// set key itself. An empty or absent set is a no-op.
func (r *Registry) LogoutAllSessions(ctx context.Context, userID string) error {
	sessionIDs, err := r.store.MembersOf(ctx, r.userSessionsKey(userID))
	if err != nil {
		return err
	}
	for _, sessionID := range sessionIDs {
		if err := r.LogoutSession(ctx, userID, sessionID); err != nil {
			return err
		}
	}
	_, err = r.store.Delete(ctx, r.userSessionsKey(userID))
	return err
}

// LogoutOtherSessions revokes every session for the user except
// keepSessionID. Used when a password changes: siblings are invalidated while
// the session that performed the change stays live.
func (r *Registry) LogoutOtherSessions(ctx context.Context, userID, keepSessionID string) error {
	sessionIDs, err := r.store.MembersOf(ctx, r.userSessionsKey(userID))
	if err != nil {
		return err
	}
	for _, sessionID := range sessionIDs {
		if sessionID == keepSessionID {
			continue
		}
		if err := r.LogoutSession(ctx, userID, sessionID); err != nil {
			return err
		}
	}
	return nil
}

// ActiveSessionIDs returns the tracked session ids for a user. Entries may be
// stale until their token keys lapse; callers must check the records.
func (r *Registry) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	return r.store.MembersOf(ctx, r.userSessionsKey(userID))
}

// SaveOperationHash stores the canonical copy of a single-use operation hash,
// overwriting any previous copy for the same (user, operation) pair. Issuing
// a new hash therefore invalidates the old one.
func (r *Registry) SaveOperationHash(ctx context.Context, operation, userID, hash string, ttl time.Duration) error {
	return r.store.Set(ctx, r.operationKey(operation, userID), hash, ttl)
}

// GetOperationHash returns the canonical copy for the (user, operation) pair.
func (r *Registry) GetOperationHash(ctx context.Context, operation, userID string) (string, bool, error) {
	return r.store.Get(ctx, r.operationKey(operation, userID))
}

// ConsumeOperationHash deletes the canonical copy only if it still equals
// expected, atomically. Returns true for the single caller that consumed it;
// a concurrent verifier racing on the same hash loses and gets false.
func (r *Registry) ConsumeOperationHash(ctx context.Context, operation, userID, expected string) (bool, error) {
	return r.store.DeleteIfEquals(ctx, r.operationKey(operation, userID), expected)
}

// DeleteOperationHash unconditionally removes the canonical copy.
func (r *Registry) DeleteOperationHash(ctx context.Context, operation, userID string) (int64, error) {
	return r.store.Delete(ctx, r.operationKey(operation, userID))
}
