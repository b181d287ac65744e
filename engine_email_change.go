package starterauth

import (
	"context"
	"errors"
	"fmt"
)

// RequestEmailChange issues an email-change hash bound to both the account
// and the requested address, and mails it to the NEW address so the change
// also proves the requester controls it. Fails with [ErrOperationConflict]
// when another account already owns the address.
func (e *Engine) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	if newEmail == "" {
		return fmt.Errorf("%w: empty email", ErrOperationConflict)
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Provider != ProviderEmail {
		return fmt.Errorf("%w: account uses %s login", ErrOperationConflict, user.Provider)
	}
	if user.Email == newEmail {
		return fmt.Errorf("%w: email unchanged", ErrOperationConflict)
	}
	if err := e.ensureEmailFree(ctx, newEmail, userID); err != nil {
		return err
	}

	extra := map[string]any{"oldEmail": user.Email, "newEmail": newEmail}
	return e.generateAndDispatch(ctx, OpChangeEmail, user, extra, e.mail.ChangeEmail, MailData{
		To:       newEmail,
		UserName: user.FirstName,
	})
}

// ConfirmEmailChange redeems an email-change hash and moves the account to
// the address embedded in it. The ownership check repeats at redeem time:
// the address may have been taken between request and confirmation, which
// surfaces as [ErrOperationConflict].
func (e *Engine) ConfirmEmailChange(ctx context.Context, hash string) error {
	return e.verifyAndConsume(ctx, OpChangeEmail, hash, func(ctx context.Context, userID string, claims map[string]any) error {
		newEmail, _ := claims["newEmail"].(string)
		if newEmail == "" {
			return errors.New("hash missing newEmail claim")
		}
		if err := e.ensureEmailFree(ctx, newEmail, userID); err != nil {
			return err
		}

		user, err := e.users.Update(ctx, userID, UserUpdate{Email: &newEmail})
		if err != nil {
			return err
		}
		e.log.Info().Str("userId", userID).Msg("email changed")

		confirmed := MailData{To: user.Email, UserName: user.FirstName}
		if err := e.mail.ConfirmedEmailChange(ctx, confirmed); err != nil {
			e.log.Warn().Err(err).Str("userId", userID).Msg("email change notice failed")
		}
		return nil
	})
}
