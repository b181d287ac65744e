package starterauth

import (
	"context"
	"errors"

	"github.com/jeziorskilukasz/starterauth/roles"
	"github.com/jeziorskilukasz/starterauth/statuses"
)

// RegisterParams carries the email sign-up form.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Locale    string
}

// RegisterWithEmail creates an inactive email/password account and dispatches
// the confirmation mail carrying a single-use hash. The account stays
// inactive, and unable to log in, until [Engine.ConfirmEmail] redeems it.
func (e *Engine) RegisterWithEmail(ctx context.Context, p RegisterParams) (*User, error) {
	if err := e.ensureEmailFree(ctx, p.Email, ""); err != nil {
		return nil, err
	}

	passwordHash, err := e.hasher.Hash(p.Password)
	if err != nil {
		return nil, err
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: passwordHash,
		Provider:     ProviderEmail,
		Locale:       p.Locale,
		Role:         roles.User(),
		Status:       statuses.Inactive(),
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("userId", user.ID).Msg("registered")

	err = e.generateAndDispatch(ctx, OpConfirmEmail, user, nil, e.mail.SignUp, MailData{
		To:       user.Email,
		UserName: user.FirstName,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ConfirmEmail redeems a confirmation hash and activates the account. The
// hash is single-use; a second redeem, or one issued before a resend, fails
// with [ErrInvalidOrExpiredHash].
func (e *Engine) ConfirmEmail(ctx context.Context, hash string) error {
	return e.verifyAndConsume(ctx, OpConfirmEmail, hash, func(ctx context.Context, userID string, _ map[string]any) error {
		user, err := e.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Status.ID != statuses.IDInactive {
			return errors.New("account already confirmed")
		}

		active := statuses.Active()
		user, err = e.users.Update(ctx, userID, UserUpdate{Status: &active})
		if err != nil {
			return err
		}
		e.log.Info().Str("userId", userID).Msg("email confirmed")

		welcome := MailData{To: user.Email, UserName: user.FirstName}
		if err := e.mail.Welcome(ctx, welcome); err != nil {
			// The account is already active; a lost welcome mail is not
			// worth failing the confirmation for.
			e.log.Warn().Err(err).Str("userId", userID).Msg("welcome mail failed")
		}
		return nil
	})
}

// ResendVerificationEmail issues a fresh confirmation hash for an inactive
// account, invalidating any earlier one. The response is success-shaped for
// unknown or already-active addresses so callers cannot probe the user base.
func (e *Engine) ResendVerificationEmail(ctx context.Context, email string) error {
	user, found, err := e.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !found || user.Provider != ProviderEmail || user.Status.ID != statuses.IDInactive {
		return nil
	}

	return e.generateAndDispatch(ctx, OpConfirmEmail, user, nil, e.mail.SignUp, MailData{
		To:       user.Email,
		UserName: user.FirstName,
	})
}
