package uow

import (
	"context"

	"metric-backend/internal/domain/insurance"
	"metric-backend/internal/domain/ledger"
	"metric-backend/internal/domain/loan"
	"metric-backend/internal/domain/user"
	"metric-backend/internal/domain/vouch"
)

// Repos are bound to a single transaction.
type Repos struct {
	Users   user.Repository
	Loans   loan.Repository
	Pool    insurance.Repository
	Ledger  ledger.Repository
	Vouches vouch.Repository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, then passes it in.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
