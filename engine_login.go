package starterauth

import (
	"context"
	"fmt"

	"github.com/jeziorskilukasz/starterauth/roles"
	"github.com/jeziorskilukasz/starterauth/statuses"
)

// LoginWithEmail authenticates an email/password account and opens a new
// session. Unknown email and wrong password both return
// [ErrInvalidCredentials]; an account registered through a social provider
// returns [ErrOperationConflict] naming the provider, since it has no local
// password to check.
func (e *Engine) LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	user, found, err := e.findUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		e.metrics.LoginFailure()
		return nil, ErrInvalidCredentials
	}

	if user.Provider != ProviderEmail {
		e.metrics.LoginFailure()
		return nil, fmt.Errorf("%w: account uses %s login", ErrOperationConflict, user.Provider)
	}

	ok, err := e.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metrics.LoginFailure()
		return nil, ErrInvalidCredentials
	}

	if user.Status.ID == statuses.IDInactive {
		e.metrics.LoginFailure()
		return nil, ErrAccountInactive
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	e.metrics.LoginSuccess()

	e.log.Info().Str("userId", user.ID).Msg("login")
	return &AuthResult{TokenPair: pair, User: user}, nil
}

// LoginWithSocial authenticates a profile already validated against the
// upstream provider by the caller. Matching order: social id first, then the
// profile email, else a new active account is created. A returning profile
// whose upstream email changed drags the local record along, unless another
// account already owns the address, in which case the local email stays put.
func (e *Engine) LoginWithSocial(ctx context.Context, provider AuthProvider, profile SocialProfile) (*AuthResult, error) {
	if profile.ID == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := e.users.FindBySocialID(ctx, profile.ID, provider)
	switch {
	case err == nil:
		if profile.Email != "" && profile.Email != user.Email {
			owner, found, err := e.findUserByEmail(ctx, profile.Email)
			if err != nil {
				return nil, err
			}
			if !found || owner.ID == user.ID {
				user, err = e.users.Update(ctx, user.ID, UserUpdate{Email: &profile.Email})
				if err != nil {
					return nil, err
				}
			}
		}
	case isNotFound(err):
		var found bool
		if profile.Email != "" {
			user, found, err = e.findUserByEmail(ctx, profile.Email)
			if err != nil {
				return nil, err
			}
		}
		if !found {
			user, err = e.users.Create(ctx, CreateUserInput{
				Email:     profile.Email,
				FirstName: profile.FirstName,
				LastName:  profile.LastName,
				Provider:  provider,
				SocialID:  profile.ID,
				Role:      roles.User(),
				Status:    statuses.Active(),
			})
			if err != nil {
				return nil, err
			}
			e.log.Info().Str("userId", user.ID).Str("provider", string(provider)).Msg("social signup")

			welcome := MailData{To: user.Email, UserName: user.FirstName}
			if err := e.mail.Welcome(ctx, welcome); err != nil {
				e.log.Warn().Err(err).Str("userId", user.ID).Msg("welcome mail failed")
			}
		}
	default:
		return nil, err
	}

	pair, err := e.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	e.metrics.LoginSuccess()

	return &AuthResult{TokenPair: pair, User: user}, nil
}

// ensureEmailFree returns ErrOperationConflict when email is owned by an
// account other than exceptID. An empty email is always free.
func (e *Engine) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	if email == "" {
		return nil
	}
	owner, found, err := e.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if found && owner.ID != exceptID {
		return fmt.Errorf("%w: email already in use", ErrOperationConflict)
	}
	return nil
}
