package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
	RoleBoth     Role = "both"
)

func (r Role) Valid() bool { return r == RoleBorrower || r == RoleLender || r == RoleBoth }

type VerificationKind string

const (
	VerificationIdentity VerificationKind = "identity"
	VerificationSocial   VerificationKind = "social"
)

func (k VerificationKind) Valid() bool { return k == VerificationIdentity || k == VerificationSocial }

// SocialProofThreshold is the vouch count at which social proof is granted.
const SocialProofThreshold = 2

type User struct {
	ID                  uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID              string          `gorm:"size:32;not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Name                string          `gorm:"size:128" json:"name"`
	Email               string          `gorm:"size:255" json:"email"`
	Role                Role            `gorm:"size:16" json:"role"`
	Balance             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	IdentityVerified    bool            `gorm:"not null;default:false" json:"identity_verified"`
	SocialProofVerified bool            `gorm:"not null;default:false" json:"social_proof_verified"`
	VouchCount          int             `gorm:"not null;default:0" json:"vouch_count"`
	WalletLocked        bool            `gorm:"not null;default:false" json:"wallet_locked"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ProviderWallet is the wallet-credential provider; a user links at most one.
const ProviderWallet = "wallet"

type LinkedAccount struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID    string    `gorm:"size:32;not null;index" json:"-"`
	Provider  string    `gorm:"size:32;not null;uniqueIndex:ux_accounts_provider_address" json:"provider"`
	Address   string    `gorm:"size:128;not null;uniqueIndex:ux_accounts_provider_address" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LinkedAccount) TableName() string { return "accounts" }
