package starterauth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OperationType names the hashed operations the verify-once protocol
// supports. The set is closed: per-operation secrets and TTLs are looked up
// through an exhaustive switch, not string interpolation, so an unknown
// operation is a compile-time concern rather than a runtime one.
type OperationType uint8

const (
	// OpConfirmEmail confirms a freshly registered address.
	OpConfirmEmail OperationType = iota
	// OpForgotPassword authorizes a password reset.
	OpForgotPassword
	// OpChangeEmail confirms a change to a new address.
	OpChangeEmail
)

// operationTypes lists every operation, for iteration at build time.
var operationTypes = []OperationType{OpConfirmEmail, OpForgotPassword, OpChangeEmail}

// String returns the wire name used in claims and storage keys.
func (t OperationType) String() string {
	switch t {
	case OpConfirmEmail:
		return "confirmEmail"
	case OpForgotPassword:
		return "forgotPassword"
	case OpChangeEmail:
		return "changeEmail"
	default:
		return "unknown"
	}
}

// claimKey is the dynamic claim carrying the subject user id, e.g.
// "confirmEmailUserId".
func (t OperationType) claimKey() string {
	return t.String() + "UserId"
}

// TokenConfig is one signing purpose: a secret and a lifetime.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

func (c TokenConfig) validate(name string) []string {
	var missing []string
	if len(c.Secret) == 0 {
		missing = append(missing, name+".Secret")
	}
	if c.TTL <= 0 {
		missing = append(missing, name+".TTL")
	}
	return missing
}

// JWTConfig holds the access and refresh token purposes.
type JWTConfig struct {
	Access  TokenConfig
	Refresh TokenConfig
}

// OperationsConfig is the enum-indexed table of per-operation signing
// purposes.
type OperationsConfig struct {
	ConfirmEmail   TokenConfig
	ForgotPassword TokenConfig
	ChangeEmail    TokenConfig
}

// For returns the signing purpose for op. The switch is exhaustive over
// [OperationType]; extending the enum without extending this table is caught
// by the returned error in tests.
func (c OperationsConfig) For(op OperationType) (TokenConfig, error) {
	switch op {
	case OpConfirmEmail:
		return c.ConfirmEmail, nil
	case OpForgotPassword:
		return c.ForgotPassword, nil
	case OpChangeEmail:
		return c.ChangeEmail, nil
	default:
		return TokenConfig{}, fmt.Errorf("unknown operation type %d", op)
	}
}

// SessionConfig controls the session registry.
type SessionConfig struct {
	// KeyPrefix namespaces every registry key. Empty keeps the layout
	// wire-compatible with earlier deployments.
	KeyPrefix string
}

// PasswordConfig controls the password hasher.
type PasswordConfig struct {
	// BcryptCost selects the bcrypt work factor; 0 uses the default.
	BcryptCost int
}

// Config is the engine configuration. Secrets and TTLs have no defaults:
// a process must not come up half-configured, so Validate reports every
// missing entry at once and Build fails fast.
type Config struct {
	JWT        JWTConfig
	Operations OperationsConfig
	Session    SessionConfig
	Password   PasswordConfig
}

// Validate checks that every signing purpose is fully specified. All
// problems are reported in a single error.
func (c *Config) Validate() error {
	var missing []string
	missing = append(missing, c.JWT.Access.validate("JWT.Access")...)
	missing = append(missing, c.JWT.Refresh.validate("JWT.Refresh")...)
	missing = append(missing, c.Operations.ConfirmEmail.validate("Operations.ConfirmEmail")...)
	missing = append(missing, c.Operations.ForgotPassword.validate("Operations.ForgotPassword")...)
	missing = append(missing, c.Operations.ChangeEmail.validate("Operations.ChangeEmail")...)
	if len(missing) > 0 {
		return errors.New("config: missing or invalid: " + strings.Join(missing, ", "))
	}
	return nil
}

func defaultConfig() Config {
	return Config{}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneTokenConfig(c TokenConfig) TokenConfig {
	c.Secret = cloneBytes(c.Secret)
	return c
}

func cloneConfig(c Config) Config {
	c.JWT.Access = cloneTokenConfig(c.JWT.Access)
	c.JWT.Refresh = cloneTokenConfig(c.JWT.Refresh)
	c.Operations.ConfirmEmail = cloneTokenConfig(c.Operations.ConfirmEmail)
	c.Operations.ForgotPassword = cloneTokenConfig(c.Operations.ForgotPassword)
	c.Operations.ChangeEmail = cloneTokenConfig(c.Operations.ChangeEmail)
	return c
}
