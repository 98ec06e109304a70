package loanmock

import (
	"context"
	"errors"

	domain "metric-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to success, reads to errUnimplemented.
type Repo struct {
	CreateFn                     func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn                func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn       func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetPendingLoanByBorrowerIDFn func(ctx context.Context, borrowerID string) (*domain.Loan, error)
	ListByBorrowerFn             func(ctx context.Context, borrowerID string) ([]domain.Loan, error)
	ListByLenderFn               func(ctx context.Context, lenderID string) ([]domain.Loan, error)
	ListByStatusFn               func(ctx context.Context, status domain.Status) ([]domain.Loan, error)
	TransitionFn                 func(ctx context.Context, l *domain.Loan, from domain.Status) error
	CreateRepaymentPlanFn        func(ctx context.Context, p *domain.RepaymentPlan) error
	GetRepaymentPlanByLoanIDFn   func(ctx context.Context, loanID string) (*domain.RepaymentPlan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*domain.Loan, error) {
	if m.GetPendingLoanByBorrowerIDFn != nil {
		return m.GetPendingLoanByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Loan, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrowerID)
	}
	return nil, nil
}

func (m *Repo) ListByLender(ctx context.Context, lenderID string) ([]domain.Loan, error) {
	if m.ListByLenderFn != nil {
		return m.ListByLenderFn(ctx, lenderID)
	}
	return nil, nil
}

func (m *Repo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Loan, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *Repo) Transition(ctx context.Context, l *domain.Loan, from domain.Status) error {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, l, from)
	}
	return nil
}

func (m *Repo) CreateRepaymentPlan(ctx context.Context, p *domain.RepaymentPlan) error {
	if m.CreateRepaymentPlanFn != nil {
		return m.CreateRepaymentPlanFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetRepaymentPlanByLoanID(ctx context.Context, loanID string) (*domain.RepaymentPlan, error) {
	if m.GetRepaymentPlanByLoanIDFn != nil {
		return m.GetRepaymentPlanByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrPlanNotFound
}
