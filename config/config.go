// Package config loads engine configuration from the environment, with an
// optional .env file for development. Every secret and lifetime is required;
// loading reports all missing keys at once so a half-configured deployment
// fails on the first start, not the first request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jeziorskilukasz/starterauth"
	"github.com/jeziorskilukasz/starterauth/internal/duration"
)

// Environment keys. Lifetimes accept "900", "15m", "7d", "2w", or any
// stdlib duration string; bare numbers are milliseconds.
const (
	KeyJWTSecret     = "AUTH_JWT_SECRET"
	KeyJWTExpires    = "AUTH_JWT_TOKEN_EXPIRES_IN"
	KeyRefreshSecret = "AUTH_REFRESH_SECRET"
	KeyRefreshExp    = "AUTH_REFRESH_TOKEN_EXPIRES_IN"
	KeyForgotSecret  = "AUTH_FORGOT_SECRET"
	KeyForgotExpires = "AUTH_FORGOT_TOKEN_EXPIRES_IN"
	KeyConfirmSecret = "AUTH_CONFIRM_EMAIL_SECRET"
	KeyConfirmExp    = "AUTH_CONFIRM_EMAIL_TOKEN_EXPIRES_IN"
	KeyChangeSecret  = "AUTH_CHANGE_EMAIL_SECRET"
	KeyChangeExpires = "AUTH_CHANGE_EMAIL_TOKEN_EXPIRES_IN"

	KeySessionPrefix = "AUTH_SESSION_KEY_PREFIX"
	KeyBcryptCost    = "AUTH_BCRYPT_COST"
)

// Load reads configuration from the process environment. envFile, when
// non-empty, names a .env file merged in first; a missing file is not an
// error, environment variables always win.
func Load(envFile string) (starterauth.Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return starterauth.Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		}
	}

	l := loader{v: v}
	cfg := starterauth.Config{
		JWT: starterauth.JWTConfig{
			Access:  l.tokenConfig(KeyJWTSecret, KeyJWTExpires),
			Refresh: l.tokenConfig(KeyRefreshSecret, KeyRefreshExp),
		},
		Operations: starterauth.OperationsConfig{
			ConfirmEmail:   l.tokenConfig(KeyConfirmSecret, KeyConfirmExp),
			ForgotPassword: l.tokenConfig(KeyForgotSecret, KeyForgotExpires),
			ChangeEmail:    l.tokenConfig(KeyChangeSecret, KeyChangeExpires),
		},
		Session: starterauth.SessionConfig{
			KeyPrefix: v.GetString(KeySessionPrefix),
		},
		Password: starterauth.PasswordConfig{
			BcryptCost: v.GetInt(KeyBcryptCost),
		},
	}

	if len(l.problems) > 0 {
		return starterauth.Config{}, errors.New("config: " + strings.Join(l.problems, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return starterauth.Config{}, err
	}
	return cfg, nil
}

// loader accumulates problems across keys instead of failing on the first.
type loader struct {
	v        *viper.Viper
	problems []string
}

func (l *loader) tokenConfig(secretKey, expiresKey string) starterauth.TokenConfig {
	var cfg starterauth.TokenConfig

	secret := l.v.GetString(secretKey)
	if secret == "" {
		l.problems = append(l.problems, secretKey+" is required")
	} else {
		cfg.Secret = []byte(secret)
	}

	raw := l.v.GetString(expiresKey)
	if raw == "" {
		l.problems = append(l.problems, expiresKey+" is required")
		return cfg
	}
	ttl, err := duration.Parse(raw)
	if err != nil {
		l.problems = append(l.problems, fmt.Sprintf("%s: %v", expiresKey, err))
		return cfg
	}
	cfg.TTL = ttl
	return cfg
}
