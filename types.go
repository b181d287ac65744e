package starterauth

import (
	"context"

	"github.com/jeziorskilukasz/starterauth/roles"
	"github.com/jeziorskilukasz/starterauth/statuses"
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	// ProviderEmail marks accounts with a local password.
	ProviderEmail AuthProvider = "email"
	// ProviderGoogle marks accounts created through Google sign-in.
	ProviderGoogle AuthProvider = "google"
	// ProviderFacebook marks accounts created through Facebook sign-in.
	ProviderFacebook AuthProvider = "facebook"
	// ProviderApple marks accounts created through Apple sign-in.
	ProviderApple AuthProvider = "apple"
)

// User is the account shape this core reads and writes through
// [UserProvider]. Storage, schema, and query semantics belong to the
// provider; the engine only trusts the field values it is handed.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Provider     AuthProvider
	SocialID     string
	Locale       string
	Role         roles.Role
	Status       statuses.Status
}

// CreateUserInput carries everything needed to create an account.
type CreateUserInput struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Provider     AuthProvider
	SocialID     string
	Locale       string
	Role         roles.Role
	Status       statuses.Status
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	PasswordHash *string
	Provider     *AuthProvider
	Status       *statuses.Status
}

// UserProvider is the user-storage collaborator. Implementations must return
// [ErrUserNotFound] (possibly wrapped) when a lookup finds no account; the
// engine's anti-enumeration behavior depends on being able to tell "absent"
// from "store broken".
type UserProvider interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindBySocialID(ctx context.Context, socialID string, provider AuthProvider) (*User, error)
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	Update(ctx context.Context, id string, changes UserUpdate) (*User, error)
	Delete(ctx context.Context, id string) error
}

// MailData is the envelope handed to the mail collaborator. The engine never
// inspects or renders content; Data carries flow payloads such as the
// operation hash under "hash".
type MailData struct {
	To       string
	UserName string
	Data     map[string]string
}

// SendFunc delivers one mail. Flows pass explicit function values (usually a
// bound MailSender method) into the hashed-operation protocol.
type SendFunc func(ctx context.Context, data MailData) error

// MailSender is the transactional-mail collaborator. Each method corresponds
// to one template; the engine only requires that calls eventually succeed or
// fail.
type MailSender interface {
	SignUp(ctx context.Context, data MailData) error
	ForgotPassword(ctx context.Context, data MailData) error
	ChangeEmail(ctx context.Context, data MailData) error
	ConfirmedEmailChange(ctx context.Context, data MailData) error
	Welcome(ctx context.Context, data MailData) error
	DeleteAccount(ctx context.Context, data MailData) error
}

// CleanupFunc removes per-user data owned by another module (consents,
// uploaded files) during account deletion.
type CleanupFunc func(ctx context.Context, userID string) error

// TokenPair is the result of token issuance. ExpiresAt is the access token's
// expiry as Unix epoch milliseconds, precomputed so clients need not decode
// the token to schedule a refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// AuthResult is returned by the login flows: a token pair plus the
// authenticated account.
type AuthResult struct {
	TokenPair
	User *User
}

// SocialProfile is the identity asserted by an upstream social provider
// after the host application has validated the provider's token. The engine
// trusts it as-is.
type SocialProfile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}
