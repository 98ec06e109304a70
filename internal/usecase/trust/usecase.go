// Package trust tracks peer vouches and the verification flags that widen
// a borrower's loan cap.
package trust

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"metric-backend/internal/domain/apperr"
	"metric-backend/internal/domain/ledger"
	"metric-backend/internal/domain/uow"
	"metric-backend/internal/domain/user"
	"metric-backend/internal/domain/vouch"
	"metric-backend/internal/usecase"
)

type Usecase struct {
	uow     uow.UnitOfWork
	reward  decimal.Decimal
	timeout time.Duration
	rec     usecase.Recorder
}

func NewUsecase(tx uow.UnitOfWork, reward decimal.Decimal, timeout time.Duration, rec usecase.Recorder) *Usecase {
	return &Usecase{uow: tx, reward: reward, timeout: timeout, rec: rec}
}

// RecordVouch stores the (voucher, vouchee) pair once, bumps the vouchee's
// count, grants social proof at the threshold and rewards the voucher.
func (u *Usecase) RecordVouch(ctx context.Context, in VouchInput) (*VouchDTO, error) {
	fields := []zap.Field{zap.String("voucher_id", in.VoucherID), zap.String("vouchee_id", in.VoucheeID)}
	switch {
	case in.VoucheeID == "":
		return nil, u.rec.Done("vouch", apperr.Invalid("vouchee_id", "is required"), fields...)
	case in.VoucheeID == in.VoucherID:
		return nil, u.rec.Done("vouch", vouch.ErrSelfVouchNotAllowed, fields...)
	}
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var out *VouchDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUserID(ctx, in.VoucherID); err != nil {
			return err
		}
		vouchee, err := r.Users.GetByUserID(ctx, in.VoucheeID)
		if err != nil {
			return err
		}

		exists, err := r.Vouches.Exists(ctx, in.VoucherID, in.VoucheeID)
		if err != nil {
			return err
		}
		if exists {
			return vouch.ErrAlreadyVouched
		}
		if err := r.Vouches.Create(ctx, &vouch.Vouch{VoucherID: in.VoucherID, VoucheeID: in.VoucheeID}); err != nil {
			return err
		}

		count, err := r.Users.IncrementVouchCount(ctx, in.VoucheeID)
		if err != nil {
			return err
		}
		verified := vouchee.SocialProofVerified
		if count >= user.SocialProofThreshold && !verified {
			if err := r.Users.SetFlag(ctx, in.VoucheeID, user.FlagSocialProofVerified, true); err != nil {
				return err
			}
			verified = true
		}

		if u.reward.IsPositive() {
			if err := r.Users.Credit(ctx, in.VoucherID, u.reward); err != nil {
				return err
			}
			if err := r.Ledger.Append(ctx, &ledger.Transaction{
				Type:           ledger.TxVouchReward,
				Amount:         u.reward,
				UserID:         in.VoucherID,
				CounterpartyID: in.VoucheeID,
			}); err != nil {
				return err
			}
		}
		out = &VouchDTO{VoucheeID: in.VoucheeID, VouchCount: count, SocialProofVerified: verified}
		return nil
	})
	if err = u.rec.Done("vouch", err, fields...); err != nil {
		return nil, err
	}
	if u.reward.IsPositive() {
		u.rec.Metrics.Transferred(string(ledger.TxVouchReward), u.reward)
	}
	return out, nil
}

// SetVerification raises one flag; setting it again is a no-op.
func (u *Usecase) SetVerification(ctx context.Context, userID string, kind user.VerificationKind) (*VerificationDTO, error) {
	fields := []zap.Field{zap.String("user_id", userID), zap.String("kind", string(kind))}
	if !kind.Valid() {
		return nil, u.rec.Done("verify", apperr.Invalid("kind", "must be identity or social"), fields...)
	}
	column := user.FlagIdentityVerified
	if kind == user.VerificationSocial {
		column = user.FlagSocialProofVerified
	}
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var out *VerificationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUserID(ctx, userID); err != nil {
			return err
		}
		if err := r.Users.SetFlag(ctx, userID, column, true); err != nil {
			return err
		}
		usr, err := r.Users.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out = &VerificationDTO{UserID: usr.UserID, IdentityVerified: usr.IdentityVerified, SocialProofVerified: usr.SocialProofVerified}
		return nil
	})
	if err = u.rec.Done("verify", err, fields...); err != nil {
		return nil, err
	}
	return out, nil
}
