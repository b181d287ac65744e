package starterauth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jeziorskilukasz/starterauth/roles"
	"github.com/jeziorskilukasz/starterauth/statuses"
)

type mockUserProvider struct {
	mu     sync.Mutex
	users  map[string]*User
	nextID int

	createErr error
	updateErr error
	findErr   error
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{users: map[string]*User{}}
}

func (m *mockUserProvider) add(u User) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.ID] = &cp
	return &cp
}

func (m *mockUserProvider) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserProvider) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserProvider) FindBySocialID(_ context.Context, socialID string, provider AuthProvider) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.SocialID == socialID && u.Provider == provider {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserProvider) Create(_ context.Context, input CreateUserInput) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	u := &User{
		ID:           fmt.Sprintf("u%d", m.nextID),
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: input.PasswordHash,
		Provider:     input.Provider,
		SocialID:     input.SocialID,
		Locale:       input.Locale,
		Role:         input.Role,
		Status:       input.Status,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *mockUserProvider) Update(_ context.Context, id string, changes UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.FirstName != nil {
		u.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = *changes.LastName
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.Provider != nil {
		u.Provider = *changes.Provider
	}
	if changes.Status != nil {
		u.Status = *changes.Status
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserProvider) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserProvider) get(id string) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

// mockMailSender records every send and exposes the last hash it carried.
type mockMailSender struct {
	mu    sync.Mutex
	sent  []string
	last  MailData
	fails map[string]error
}

func newMockMailSender() *mockMailSender {
	return &mockMailSender{fails: map[string]error{}}
}

func (m *mockMailSender) record(kind string, data MailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fails[kind]; err != nil {
		return err
	}
	m.sent = append(m.sent, kind)
	m.last = data
	return nil
}

func (m *mockMailSender) SignUp(_ context.Context, d MailData) error {
	return m.record("signUp", d)
}
func (m *mockMailSender) ForgotPassword(_ context.Context, d MailData) error {
	return m.record("forgotPassword", d)
}
func (m *mockMailSender) ChangeEmail(_ context.Context, d MailData) error {
	return m.record("changeEmail", d)
}
func (m *mockMailSender) ConfirmedEmailChange(_ context.Context, d MailData) error {
	return m.record("confirmedEmailChange", d)
}
func (m *mockMailSender) Welcome(_ context.Context, d MailData) error {
	return m.record("welcome", d)
}
func (m *mockMailSender) DeleteAccount(_ context.Context, d MailData) error {
	return m.record("deleteAccount", d)
}

func (m *mockMailSender) lastHash(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := m.last.Data["hash"]
	if hash == "" {
		t.Fatal("expected dispatched mail to carry a hash")
	}
	return hash
}

func (m *mockMailSender) sentKinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	return Config{
		JWT: JWTConfig{
			Access:  TokenConfig{Secret: []byte("access-secret"), TTL: 15 * time.Minute},
			Refresh: TokenConfig{Secret: []byte("refresh-secret"), TTL: time.Hour},
		},
		Operations: OperationsConfig{
			ConfirmEmail:   TokenConfig{Secret: []byte("confirm-secret"), TTL: 10 * time.Minute},
			ForgotPassword: TokenConfig{Secret: []byte("forgot-secret"), TTL: 10 * time.Minute},
			ChangeEmail:    TokenConfig{Secret: []byte("change-secret"), TTL: 10 * time.Minute},
		},
		Password: PasswordConfig{BcryptCost: 4},
	}
}

func newTestEngine(t *testing.T, rdb *redis.Client, up UserProvider, mail MailSender) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserProvider(up).
		WithMailSender(mail).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

func seedActiveUser(t *testing.T, e *Engine, up *mockUserProvider, email, plain string) *User {
	t.Helper()

	hash, err := e.hasher.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return up.add(User{
		ID:           "u-" + email,
		Email:        email,
		FirstName:    "Test",
		PasswordHash: hash,
		Provider:     ProviderEmail,
		Role:         roles.User(),
		Status:       statuses.Active(),
	})
}
