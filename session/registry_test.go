package session

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jeziorskilukasz/starterauth/kv"
)

func newTestRegistry(t *testing.T) (*miniredis.Miniredis, *Registry) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	store := kv.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return mr, NewRegistry(store, "")
}

func createSession(t *testing.T, r *Registry, userID, sessionID string) {
	t.Helper()

	_, err := r.CreateSession(context.Background(), CreateSessionParams{
		UserID:       userID,
		SessionID:    sessionID,
		AccessToken:  "access-" + sessionID,
		RefreshToken: "refresh-" + sessionID,
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   time.Hour,
	})
	if err != nil {
		t.Fatalf("CreateSession(%s) failed: %v", sessionID, err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	mr, r := newTestRegistry(t)
	ctx := context.Background()

	createSession(t, r, "u1", "s1")

	if !mr.Exists("userSessions:u1") {
		t.Fatal("expected userSessions:u1 key")
	}
	if !mr.Exists("refreshToken:s1") || !mr.Exists("token:s1") {
		t.Fatal("expected both token keys")
	}

	refresh, ok, err := r.GetRefreshSession(ctx, "s1")
	if err != nil || !ok || refresh != "refresh-s1" {
		t.Fatalf("GetRefreshSession = %q, %v, %v", refresh, ok, err)
	}

	live, err := r.AccessSessionExists(ctx, "s1")
	if err != nil || !live {
		t.Fatalf("AccessSessionExists = %v, %v", live, err)
	}

	// Access record lapses with its TTL; the refresh record outlives it.
	mr.FastForward(16 * time.Minute)
	live, err = r.AccessSessionExists(ctx, "s1")
	if err != nil || live {
		t.Fatalf("expected access record expired, live=%v err=%v", live, err)
	}
	if _, ok, _ := r.GetRefreshSession(ctx, "s1"); !ok {
		t.Fatal("expected refresh record still live")
	}
}

func TestLogoutSessionIsolation(t *testing.T) {
	_, r := newTestRegistry(t)
	ctx := context.Background()

	createSession(t, r, "u1", "s1")
	createSession(t, r, "u1", "s2")
	createSession(t, r, "u2", "s3")

	if err := r.LogoutSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("LogoutSession failed: %v", err)
	}

	if live, _ := r.AccessSessionExists(ctx, "s1"); live {
		t.Fatal("s1 should be gone")
	}
	if live, _ := r.AccessSessionExists(ctx, "s2"); !live {
		t.Fatal("s2 should survive")
	}
	if live, _ := r.AccessSessionExists(ctx, "s3"); !live {
		t.Fatal("another user's session should be untouched")
	}

	// Idempotent.
	if err := r.LogoutSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("repeated LogoutSession failed: %v", err)
	}
}

func TestLogoutAllSessions(t *testing.T) {
	mr, r := newTestRegistry(t)
	ctx := context.Background()

	createSession(t, r, "u1", "s1")
	createSession(t, r, "u1", "s2")

	if err := r.LogoutAllSessions(ctx, "u1"); err != nil {
		t.Fatalf("LogoutAllSessions failed: %v", err)
	}

	ids, err := r.ActiveSessionIDs(ctx, "u1")
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected empty session set, got %v, %v", ids, err)
	}
	if mr.Exists("userSessions:u1") {
		t.Fatal("expected set key removed")
	}
	if mr.Exists("refreshToken:s1") || mr.Exists("token:s2") {
		t.Fatal("expected all token keys removed")
	}

	// Empty set is a no-op.
	if err := r.LogoutAllSessions(ctx, "u1"); err != nil {
		t.Fatalf("LogoutAllSessions on empty set failed: %v", err)
	}
}

func TestLogoutOtherSessions(t *testing.T) {
	_, r := newTestRegistry(t)
	ctx := context.Background()

	createSession(t, r, "u1", "s1")
	createSession(t, r, "u1", "s2")
	createSession(t, r, "u1", "s3")

	if err := r.LogoutOtherSessions(ctx, "u1", "s2"); err != nil {
		t.Fatalf("LogoutOtherSessions failed: %v", err)
	}

	ids, err := r.ActiveSessionIDs(ctx, "u1")
	if err != nil || len(ids) != 1 || ids[0] != "s2" {
		t.Fatalf("expected only s2 to survive, got %v, %v", ids, err)
	}
	if live, _ := r.AccessSessionExists(ctx, "s2"); !live {
		t.Fatal("kept session's records should be intact")
	}
}

func TestActiveSessionIDs(t *testing.T) {
	_, r := newTestRegistry(t)
	ctx := context.Background()

	createSession(t, r, "u1", "s1")
	createSession(t, r, "u1", "s2")

	ids, err := r.ActiveSessionIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveSessionIDs failed: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Fatalf("expected [s1 s2], got %v", ids)
	}
}

func TestOperationHashLifecycle(t *testing.T) {
	mr, r := newTestRegistry(t)
	ctx := context.Background()

	if err := r.SaveOperationHash(ctx, "confirmEmail", "u1", "hash-1", time.Minute); err != nil {
		t.Fatalf("SaveOperationHash failed: %v", err)
	}
	if !mr.Exists("confirmEmailCode:u1") {
		t.Fatal("expected operation key")
	}

	// Re-issuing overwrites.
	if err := r.SaveOperationHash(ctx, "confirmEmail", "u1", "hash-2", time.Minute); err != nil {
		t.Fatalf("SaveOperationHash overwrite failed: %v", err)
	}
	stored, ok, err := r.GetOperationHash(ctx, "confirmEmail", "u1")
	if err != nil || !ok || stored != "hash-2" {
		t.Fatalf("GetOperationHash = %q, %v, %v", stored, ok, err)
	}

	// The superseded hash cannot be consumed.
	consumed, err := r.ConsumeOperationHash(ctx, "confirmEmail", "u1", "hash-1")
	if err != nil || consumed {
		t.Fatalf("expected stale consume to lose, consumed=%v err=%v", consumed, err)
	}

	consumed, err = r.ConsumeOperationHash(ctx, "confirmEmail", "u1", "hash-2")
	if err != nil || !consumed {
		t.Fatalf("expected consume to win, consumed=%v err=%v", consumed, err)
	}

	// Single use.
	consumed, err = r.ConsumeOperationHash(ctx, "confirmEmail", "u1", "hash-2")
	if err != nil || consumed {
		t.Fatalf("expected second consume to lose, consumed=%v err=%v", consumed, err)
	}
}

func TestOperationHashKeysAreScoped(t *testing.T) {
	mr, r := newTestRegistry(t)
	ctx := context.Background()

	if err := r.SaveOperationHash(ctx, "forgotPassword", "u1", "h", time.Minute); err != nil {
		t.Fatalf("SaveOperationHash failed: %v", err)
	}
	if err := r.SaveOperationHash(ctx, "changeEmail", "u1", "h", time.Minute); err != nil {
		t.Fatalf("SaveOperationHash failed: %v", err)
	}

	if !mr.Exists("forgotPasswordCode:u1") || !mr.Exists("changeEmailCode:u1") {
		t.Fatal("expected per-operation keys")
	}

	// Consuming one operation's hash leaves the other's alone.
	if _, err := r.ConsumeOperationHash(ctx, "forgotPassword", "u1", "h"); err != nil {
		t.Fatalf("ConsumeOperationHash failed: %v", err)
	}
	if _, ok, _ := r.GetOperationHash(ctx, "changeEmail", "u1"); !ok {
		t.Fatal("expected changeEmail hash untouched")
	}
}

func TestRegistryKeyPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	store := kv.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	r := NewRegistry(store, "authsvc:")

	createSession(t, r, "u1", "s1")
	if !mr.Exists("authsvc:userSessions:u1") || !mr.Exists("authsvc:token:s1") {
		t.Fatal("expected prefixed keys")
	}
}
