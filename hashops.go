package starterauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeziorskilukasz/starterauth/jwt"
)

// generateAndDispatch implements the issue side of the single-use operation
// protocol: sign a hash binding the operation type to the user, store it as
// the canonical copy (overwriting any earlier one, which this invalidates),
// then hand it to the mail collaborator under data.Data["hash"].
//
// A failed send does not roll the hash back. The stored copy is harmless on
// its own and a retried request overwrites it.
func (e *Engine) generateAndDispatch(ctx context.Context, op OperationType, user *User, extra map[string]any, send SendFunc, data MailData) error {
	claims := map[string]any{
		op.claimKey(): user.ID,
		"type":        op.String(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	mgr := e.jwtOps[op]
	hash, err := mgr.SignOperation(claims)
	if err != nil {
		return err
	}

	if err := e.sessions.SaveOperationHash(ctx, op.String(), user.ID, hash, mgr.TTL()); err != nil {
		return err
	}
	e.metrics.HashIssued(op)

	if data.Data == nil {
		data.Data = make(map[string]string, 1)
	}
	data.Data["hash"] = hash

	if err := send(ctx, data); err != nil {
		e.log.Error().Err(err).
			Str("operation", op.String()).
			Str("userId", user.ID).
			Msg("mail dispatch failed")
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// verifyAndConsume implements the redeem side: verify the presented hash's
// signature and expiry, check it names this operation and carries a subject,
// confirm it is byte-identical to the live canonical copy, consume that copy
// atomically, then run onSuccess with the subject user id and the verified
// claims.
//
// Every verification failure collapses to [ErrInvalidOrExpiredHash] so a
// caller probing hashes learns nothing about which check tripped. Store
// outages are the exception and propagate as [ErrStoreUnavailable].
//
// Consumption happens before onSuccess. If onSuccess fails the hash stays
// burned; [ErrStoreUnavailable] and [ErrOperationConflict] pass through,
// anything else is logged and collapsed like a verification failure.
func (e *Engine) verifyAndConsume(ctx context.Context, op OperationType, hash string, onSuccess func(ctx context.Context, userID string, claims map[string]any) error) error {
	mgr := e.jwtOps[op]

	claims, err := mgr.ParseOperation(hash)
	if err != nil {
		e.metrics.HashRejected(op)
		return ErrInvalidOrExpiredHash
	}

	typ, _ := claims["type"].(string)
	userID, _ := claims[op.claimKey()].(string)
	if typ != op.String() || userID == "" {
		e.metrics.HashRejected(op)
		return ErrInvalidOrExpiredHash
	}

	stored, ok, err := e.sessions.GetOperationHash(ctx, op.String(), userID)
	if err != nil {
		return err
	}
	if !ok || stored != hash {
		e.metrics.HashRejected(op)
		return ErrInvalidOrExpiredHash
	}

	// Decode the stored copy independently. Byte equality should make this
	// redundant; it stays as a guard against a substituted canonical copy.
	decoded, err := jwt.DecodeOperation(stored)
	if err != nil {
		e.metrics.HashRejected(op)
		return ErrInvalidOrExpiredHash
	}
	decodedType, _ := decoded["type"].(string)
	decodedUser, _ := decoded[op.claimKey()].(string)
	if decodedType != op.String() || decodedUser != userID {
		e.metrics.HashRejected(op)
		return ErrInvalidOrExpiredHash
	}

	consumed, err := e.sessions.ConsumeOperationHash(ctx, op.String(), userID, hash)
	if err != nil {
		return err
	}
	if !consumed {
		// Lost the race to a concurrent redeem, or the copy lapsed between
		// the read and the compare-and-delete.
		e.metrics.HashRejected(op)
		return ErrInvalidOrExpiredHash
	}
	e.metrics.HashConsumed(op)

	if err := onSuccess(ctx, userID, claims); err != nil {
		if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrOperationConflict) {
			return err
		}
		e.log.Error().Err(err).
			Str("operation", op.String()).
			Str("userId", userID).
			Msg("operation completion failed after hash consumed")
		return ErrInvalidOrExpiredHash
	}
	return nil
}
