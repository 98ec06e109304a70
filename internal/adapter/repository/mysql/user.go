package mysql

import (
	"context"
	"errors"
	"fmt"

	userDomain "metric-backend/internal/domain/user"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return userDomain.ErrAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, translate(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out).Error
	if err != nil {
		return nil, translate(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) Save(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Debit folds the sufficiency check into the UPDATE so two interleaved
// debits can never take the balance below zero.
func (r *UserRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&userDomain.User{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return userDomain.ErrInsufficientBalance
	}
	return nil
}

func (r *UserRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&userDomain.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return userDomain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) IncrementVouchCount(ctx context.Context, userID string) (int, error) {
	res := r.db.WithContext(ctx).Model(&userDomain.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("vouch_count", gorm.Expr("vouch_count + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, userDomain.ErrNotFound
	}
	var count int
	err := r.db.WithContext(ctx).Model(&userDomain.User{}).
		Select("vouch_count").
		Where("user_id = ?", userID).
		Row().Scan(&count)
	return count, err
}

var flagColumns = map[string]struct{}{
	userDomain.FlagIdentityVerified:    {},
	userDomain.FlagSocialProofVerified: {},
	userDomain.FlagWalletLocked:        {},
}

// SetFlag is idempotent; it does not report a missing user because MySQL
// counts an unchanged row as unaffected.
func (r *UserRepository) SetFlag(ctx context.Context, userID, column string, value bool) error {
	if _, ok := flagColumns[column]; !ok {
		return fmt.Errorf("unknown user flag %q", column)
	}
	return r.db.WithContext(ctx).Model(&userDomain.User{}).
		Where("user_id = ?", userID).
		UpdateColumn(column, value).Error
}

func (r *UserRepository) CreateLinkedAccount(ctx context.Context, a *userDomain.LinkedAccount) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return userDomain.ErrAddressInUse
	}
	return err
}

func (r *UserRepository) ListLinkedAccounts(ctx context.Context, userID string) ([]userDomain.LinkedAccount, error) {
	var out []userDomain.LinkedAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}
