package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeziorskilukasz/starterauth/roles"
	"github.com/jeziorskilukasz/starterauth/statuses"
)

// ErrTokenInvalid is returned for any token that fails signature, expiry, or
// claim-shape checks. Callers get no finer detail than this.
var ErrTokenInvalid = errors.New("invalid token")

// AccessClaims is the payload of an access token: identity, role and status
// snapshots, and the session correlation id.
type AccessClaims struct {
	UserID    string          `json:"id"`
	Role      roles.Role      `json:"role"`
	Status    statuses.Status `json:"status"`
	SessionID string          `json:"sessionId"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. It deliberately carries
// nothing beyond identity and the session correlation id.
type RefreshClaims struct {
	UserID    string `json:"id"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens for one purpose: each purpose
// (access, refresh, and every hashed operation) has its own secret and TTL,
// so a token minted for one can never verify against another.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a Manager. The secret must be non-empty and the TTL
// positive; both come from configuration validated at startup.
func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt: empty secret")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt: non-positive ttl")
	}
	return &Manager{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// CreateAccess signs an access token for the user under the given session id.
func (m *Manager) CreateAccess(userID string, role roles.Role, status statuses.Status, sessionID string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:    userID,
		Role:      role,
		Status:    status,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseAccess verifies an access token and returns its claims.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parseInto(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// CreateRefresh signs a refresh token for the user under the given session id.
func (m *Manager) CreateRefresh(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parseInto(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// SignOperation signs an operation hash carrying the given claims. Operation
// claims use dynamic keys ("confirmEmailUserId", "type", extras), hence the
// map form rather than a struct.
func (m *Manager) SignOperation(claims map[string]any) (string, error) {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(m.ttl)),
	}
	for k, v := range claims {
		mapClaims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString(m.secret)
}

// ParseOperation verifies an operation hash and returns its claims.
func (m *Manager) ParseOperation(tokenStr string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if err := m.parseInto(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) parseInto(tokenStr string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// DecodeOperation extracts an operation hash's claims WITHOUT verifying the
// signature. Used only to cross-check the stored canonical copy against a
// presented hash; never trust its output for authentication decisions.
func DecodeOperation(tokenStr string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}
