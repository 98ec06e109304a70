package mysql

import (
	"context"

	loanDomain "metric-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ? AND status = ?", borrowerID, loanDomain.StatusPending).
		Order("requested_at DESC, id DESC").
		First(&out).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("requested_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListByLender(ctx context.Context, lenderID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("lender_id = ?", lenderID).
		Order("funded_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("requested_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// Transition is a compare-and-set on (status, version): a concurrent writer
// that got there first leaves RowsAffected at zero. Edges outside the
// lifecycle are refused before touching the row.
func (r *LoanRepository) Transition(ctx context.Context, l *loanDomain.Loan, from loanDomain.Status) error {
	if !loanDomain.CanTransition(from, l.Status) {
		return loanDomain.ErrConflict
	}
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("loan_id = ? AND status = ? AND version = ?", l.LoanID, from, l.Version).
		Updates(map[string]any{
			"status":        l.Status,
			"lender_id":     l.LenderID,
			"repaid_amount": l.RepaidAmount,
			"funded_at":     l.FundedAt,
			"repaid_at":     l.RepaidAt,
			"defaulted_at":  l.DefaultedAt,
			"version":       l.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrConflict
	}
	l.Version++
	return nil
}

func (r *LoanRepository) CreateRepaymentPlan(ctx context.Context, p *loanDomain.RepaymentPlan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LoanRepository) GetRepaymentPlanByLoanID(ctx context.Context, loanID string) (*loanDomain.RepaymentPlan, error) {
	var out loanDomain.RepaymentPlan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrPlanNotFound)
	}
	return &out, nil
}
