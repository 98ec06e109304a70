package usermock

import (
	"context"

	"github.com/shopspring/decimal"

	domain "metric-backend/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads report ErrNotFound; unset writes succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, u *domain.User) error
	GetByUserIDFn          func(ctx context.Context, userID string) (*domain.User, error)
	GetByUserIDForUpdateFn func(ctx context.Context, userID string) (*domain.User, error)
	SaveFn                 func(ctx context.Context, u *domain.User) error
	DebitFn                func(ctx context.Context, userID string, amount decimal.Decimal) error
	CreditFn               func(ctx context.Context, userID string, amount decimal.Decimal) error
	IncrementVouchCountFn  func(ctx context.Context, userID string) (int, error)
	SetFlagFn              func(ctx context.Context, userID, column string, value bool) error
	CreateLinkedAccountFn  func(ctx context.Context, a *domain.LinkedAccount) error
	ListLinkedAccountsFn   func(ctx context.Context, userID string) ([]domain.LinkedAccount, error)
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return m.GetByUserID(ctx, userID)
}

func (m *Repo) Save(ctx context.Context, u *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return nil
}

func (m *Repo) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	if m.DebitFn != nil {
		return m.DebitFn(ctx, userID, amount)
	}
	return nil
}

func (m *Repo) Credit(ctx context.Context, userID string, amount decimal.Decimal) error {
	if m.CreditFn != nil {
		return m.CreditFn(ctx, userID, amount)
	}
	return nil
}

func (m *Repo) IncrementVouchCount(ctx context.Context, userID string) (int, error) {
	if m.IncrementVouchCountFn != nil {
		return m.IncrementVouchCountFn(ctx, userID)
	}
	return 0, domain.ErrNotFound
}

func (m *Repo) SetFlag(ctx context.Context, userID, column string, value bool) error {
	if m.SetFlagFn != nil {
		return m.SetFlagFn(ctx, userID, column, value)
	}
	return nil
}

func (m *Repo) CreateLinkedAccount(ctx context.Context, a *domain.LinkedAccount) error {
	if m.CreateLinkedAccountFn != nil {
		return m.CreateLinkedAccountFn(ctx, a)
	}
	return nil
}

func (m *Repo) ListLinkedAccounts(ctx context.Context, userID string) ([]domain.LinkedAccount, error) {
	if m.ListLinkedAccountsFn != nil {
		return m.ListLinkedAccountsFn(ctx, userID)
	}
	return nil, nil
}
