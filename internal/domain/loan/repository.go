package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate row-locks the loan for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]Loan, error)
	ListByLender(ctx context.Context, lenderID string) ([]Loan, error)
	ListByStatus(ctx context.Context, status Status) ([]Loan, error)

	// Transition persists l's mutable fields only if the stored row still has
	// status `from` and l.Version; otherwise ErrConflict. On success l.Version
	// is advanced.
	Transition(ctx context.Context, l *Loan, from Status) error

	CreateRepaymentPlan(ctx context.Context, p *RepaymentPlan) error
	GetRepaymentPlanByLoanID(ctx context.Context, loanID string) (*RepaymentPlan, error)
}
