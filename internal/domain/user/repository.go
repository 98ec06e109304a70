package user

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByUserIDForUpdate(ctx context.Context, userID string) (*User, error)
	Save(ctx context.Context, u *User) error

	// Debit subtracts amount only while the stored balance covers it;
	// otherwise ErrInsufficientBalance and nothing changes.
	Debit(ctx context.Context, userID string, amount decimal.Decimal) error
	// Credit adds amount; ErrNotFound when the user does not exist.
	Credit(ctx context.Context, userID string, amount decimal.Decimal) error

	// IncrementVouchCount atomically bumps the counter and returns the new value.
	IncrementVouchCount(ctx context.Context, userID string) (int, error)
	SetFlag(ctx context.Context, userID, column string, value bool) error

	CreateLinkedAccount(ctx context.Context, a *LinkedAccount) error
	ListLinkedAccounts(ctx context.Context, userID string) ([]LinkedAccount, error)
}

// Flag columns accepted by SetFlag.
const (
	FlagIdentityVerified    = "identity_verified"
	FlagSocialProofVerified = "social_proof_verified"
	FlagWalletLocked        = "wallet_locked"
)
