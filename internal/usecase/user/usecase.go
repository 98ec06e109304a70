// Package user covers sign-in, role selection and linked credentials.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"metric-backend/internal/domain/apperr"
	"metric-backend/internal/domain/ledger"
	"metric-backend/internal/domain/uow"
	domain "metric-backend/internal/domain/user"
	"metric-backend/internal/usecase"
)

// Contributor moves money from a user into the insurance pool inside the
// caller's transaction. RecordContribution runs after the commit.
type Contributor interface {
	ContributeTx(ctx context.Context, r uow.Repos, userID string, amount decimal.Decimal, typ ledger.TxType) error
	RecordContribution(ctx context.Context, typ ledger.TxType, amount decimal.Decimal)
}

type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	pool   Contributor
	policy Policy
	rec    usecase.Recorder
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, pool Contributor, p Policy, rec usecase.Recorder) *Usecase {
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Second
	}
	return &Usecase{repos: repos, uow: tx, pool: pool, policy: p, rec: rec}
}

// SignIn creates the user on first sight and returns the profile either way.
func (u *Usecase) SignIn(ctx context.Context, in SignInInput) (*ProfileDTO, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	created := false
	_, err := u.repos.Users.GetByUserID(ctx, in.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		err = u.repos.Users.Create(ctx, &domain.User{
			UserID:  in.UserID,
			Name:    strings.TrimSpace(in.Name),
			Email:   strings.ToLower(strings.TrimSpace(in.Email)),
			Balance: decimal.Zero,
		})
		switch {
		case err == nil:
			created = true
		case errors.Is(err, domain.ErrAlreadyExists):
			// lost a sign-in race with ourselves
			err = nil
		}
	}
	if err = u.rec.Done("sign_in", err, zap.String("user_id", in.UserID), zap.Bool("created", created)); err != nil {
		return nil, false, err
	}
	p, err := u.Profile(ctx, in.UserID)
	return p, created, err
}

// SelectRole sets the role. The first selection also grants the starting
// balance and takes the initial pool contribution out of it.
func (u *Usecase) SelectRole(ctx context.Context, userID string, role domain.Role) (*ProfileDTO, error) {
	fields := []zap.Field{zap.String("user_id", userID), zap.String("role", string(role))}
	if !role.Valid() {
		return nil, u.rec.Done("select_role", apperr.Invalid("role", "must be borrower, lender or both"), fields...)
	}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	contributed := false
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		usr, err := r.Users.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		first := usr.Role == ""
		usr.Role = role
		if err := r.Users.Save(ctx, usr); err != nil {
			return err
		}
		if !first {
			return nil
		}
		if err := r.Users.Credit(ctx, userID, u.policy.StartingBalance); err != nil {
			return err
		}
		if !u.policy.InitialContribution.IsPositive() {
			return nil
		}
		if err := u.pool.ContributeTx(ctx, r, userID, u.policy.InitialContribution, ledger.TxInitialContribution); err != nil {
			return err
		}
		contributed = true
		return nil
	})
	if err = u.rec.Done("select_role", err, fields...); err != nil {
		return nil, err
	}
	if contributed {
		u.pool.RecordContribution(ctx, ledger.TxInitialContribution, u.policy.InitialContribution)
	}
	return u.Profile(ctx, userID)
}

func (u *Usecase) Profile(ctx context.Context, userID string) (*ProfileDTO, error) {
	usr, err := u.repos.Users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, u.rec.Done("profile", err, zap.String("user_id", userID))
	}
	accounts, err := u.repos.Users.ListLinkedAccounts(ctx, userID)
	if err != nil {
		return nil, u.rec.Done("profile", err, zap.String("user_id", userID))
	}
	return toProfile(usr, accounts), nil
}

// LinkAccount attaches an external credential. Wallet addresses must be
// EVM hex addresses and are stored checksummed; a user holds one wallet.
func (u *Usecase) LinkAccount(ctx context.Context, in LinkAccountInput) (*ProfileDTO, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	address := strings.TrimSpace(in.Address)
	fields := []zap.Field{zap.String("user_id", in.UserID), zap.String("provider", provider)}

	switch {
	case provider == "":
		return nil, u.rec.Done("link_account", apperr.Invalid("provider", "is required"), fields...)
	case address == "":
		return nil, u.rec.Done("link_account", apperr.Invalid("address", "is required"), fields...)
	case provider == domain.ProviderWallet:
		if !common.IsHexAddress(address) {
			return nil, u.rec.Done("link_account", apperr.Invalid("address", "is not a valid wallet address"), fields...)
		}
		address = common.HexToAddress(address).Hex()
	}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUserIDForUpdate(ctx, in.UserID); err != nil {
			return err
		}
		if provider == domain.ProviderWallet {
			linked, err := r.Users.ListLinkedAccounts(ctx, in.UserID)
			if err != nil {
				return err
			}
			for _, a := range linked {
				if a.Provider == domain.ProviderWallet {
					return domain.ErrWalletAlreadyLinked
				}
			}
		}
		return r.Users.CreateLinkedAccount(ctx, &domain.LinkedAccount{UserID: in.UserID, Provider: provider, Address: address})
	})
	if err = u.rec.Done("link_account", err, fields...); err != nil {
		return nil, err
	}
	return u.Profile(ctx, in.UserID)
}
