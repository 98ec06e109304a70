package user

import (
	"time"

	"github.com/shopspring/decimal"

	domain "metric-backend/internal/domain/user"
)

// Policy is what a user receives on first role selection.
type Policy struct {
	StartingBalance     decimal.Decimal
	InitialContribution decimal.Decimal
	Timeout             time.Duration
}

type SignInInput struct {
	UserID string `json:"-"`
	Name   string `json:"name" validate:"omitempty,max=128"`
	Email  string `json:"email" validate:"omitempty,email,max=255"`
}

type LinkAccountInput struct {
	UserID   string `json:"-"`
	Provider string `json:"provider" validate:"required,max=32"`
	Address  string `json:"address" validate:"required,max=128"`
}

type LinkedAccountDTO struct {
	Provider string `json:"provider"`
	Address  string `json:"address"`
}

type ProfileDTO struct {
	UserID              string             `json:"user_id"`
	Name                string             `json:"name"`
	Email               string             `json:"email"`
	Role                string             `json:"role"`
	Balance             decimal.Decimal    `json:"balance"`
	IdentityVerified    bool               `json:"identity_verified"`
	SocialProofVerified bool               `json:"social_proof_verified"`
	VouchCount          int                `json:"vouch_count"`
	WalletLocked        bool               `json:"wallet_locked"`
	LinkedAccounts      []LinkedAccountDTO `json:"linked_accounts"`
	CreatedAt           time.Time          `json:"created_at"`
}

func toProfile(u *domain.User, accounts []domain.LinkedAccount) *ProfileDTO {
	out := &ProfileDTO{
		UserID:              u.UserID,
		Name:                u.Name,
		Email:               u.Email,
		Role:                string(u.Role),
		Balance:             u.Balance,
		IdentityVerified:    u.IdentityVerified,
		SocialProofVerified: u.SocialProofVerified,
		VouchCount:          u.VouchCount,
		WalletLocked:        u.WalletLocked,
		LinkedAccounts:      make([]LinkedAccountDTO, 0, len(accounts)),
		CreatedAt:           u.CreatedAt,
	}
	for _, a := range accounts {
		out.LinkedAccounts = append(out.LinkedAccounts, LinkedAccountDTO{Provider: a.Provider, Address: a.Address})
	}
	return out
}
