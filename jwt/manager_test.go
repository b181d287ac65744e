package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/jeziorskilukasz/starterauth/roles"
	"github.com/jeziorskilukasz/starterauth/statuses"
)

func newTestManager(t *testing.T, secret string, ttl time.Duration) *Manager {
	t.Helper()

	m, err := NewManager([]byte(secret), ttl)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewManager([]byte("s"), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if _, err := NewManager([]byte("s"), -time.Minute); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager(t, "access-secret", 15*time.Minute)

	token, err := m.CreateAccess("u1", roles.Admin(), statuses.Active(), "s1")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role.ID != roles.IDAdmin || claims.Status.ID != statuses.IDActive {
		t.Fatalf("role/status snapshot lost: %+v", claims)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	m := newTestManager(t, "refresh-secret", time.Hour)

	token, err := m.CreateRefresh("u1", "s1")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}
	claims, err := m.ParseRefresh(token)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestCrossSecretRejection(t *testing.T) {
	access := newTestManager(t, "access-secret", time.Minute)
	refresh := newTestManager(t, "refresh-secret", time.Minute)

	token, err := access.CreateAccess("u1", roles.User(), statuses.Active(), "s1")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	if _, err := refresh.ParseAccess(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected cross-secret parse to fail, got %v", err)
	}
}

func TestExpiredTokenRejection(t *testing.T) {
	m := newTestManager(t, "secret", time.Millisecond)

	token, err := m.CreateRefresh("u1", "s1")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := m.ParseRefresh(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestMalformedTokenRejection(t *testing.T) {
	m := newTestManager(t, "secret", time.Minute)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.ParseAccess(bad); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("ParseAccess(%q): expected ErrTokenInvalid, got %v", bad, err)
		}
	}
}

func TestOperationRoundTrip(t *testing.T) {
	m := newTestManager(t, "op-secret", 10*time.Minute)

	token, err := m.SignOperation(map[string]any{
		"confirmEmailUserId": "u1",
		"type":               "confirmEmail",
	})
	if err != nil {
		t.Fatalf("SignOperation failed: %v", err)
	}

	claims, err := m.ParseOperation(token)
	if err != nil {
		t.Fatalf("ParseOperation failed: %v", err)
	}
	if claims["confirmEmailUserId"] != "u1" || claims["type"] != "confirmEmail" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatal("expected exp claim to be stamped")
	}
}

func TestDecodeOperationIgnoresSignature(t *testing.T) {
	m := newTestManager(t, "op-secret", time.Minute)

	token, err := m.SignOperation(map[string]any{"type": "forgotPassword"})
	if err != nil {
		t.Fatalf("SignOperation failed: %v", err)
	}

	// Break the signature; decoding still yields the claims.
	broken := token[:len(token)-2] + "xx"
	claims, err := DecodeOperation(broken)
	if err != nil {
		t.Fatalf("DecodeOperation failed: %v", err)
	}
	if claims["type"] != "forgotPassword" {
		t.Fatalf("unexpected claims: %v", claims)
	}

	// But verified parsing rejects it.
	if _, err := m.ParseOperation(broken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected tampered token to fail verification, got %v", err)
	}
}
