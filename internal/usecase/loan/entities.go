package loan

import (
	"time"

	"github.com/shopspring/decimal"

	domain "metric-backend/internal/domain/loan"
)

// Policy bounds what a borrower may request and how an uncovered default
// is rescheduled.
type Policy struct {
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	MinDuration          int
	MaxDuration          int
	FallbackInstallments int
	Timeout              time.Duration
}

type RequestLoanInput struct {
	BorrowerID string           `json:"-"`
	Amount     decimal.Decimal  `json:"amount"`
	Duration   int              `json:"duration"`
	Collateral *decimal.Decimal `json:"collateral,omitempty"`
}

type QuoteInput struct {
	UserID     string
	Amount     decimal.Decimal
	Duration   int
	Collateral *decimal.Decimal
}

type RepayInput struct {
	BorrowerID string           `json:"-"`
	LoanID     string           `json:"-"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

type LoanDTO struct {
	LoanID       string           `json:"loan_id"`
	BorrowerID   string           `json:"borrower_id"`
	LenderID     string           `json:"lender_id,omitempty"`
	Amount       decimal.Decimal  `json:"amount"`
	Duration     int              `json:"duration"`
	InterestRate decimal.Decimal  `json:"interest_rate"`
	CreditScore  int              `json:"credit_score"`
	Collateral   *decimal.Decimal `json:"collateral,omitempty"`
	Status       string           `json:"status"`
	RepaidAmount decimal.Decimal  `json:"repaid_amount"`
	TotalDue     decimal.Decimal  `json:"total_due"`
	RemainingDue decimal.Decimal  `json:"remaining_due"`
	RequestedAt  time.Time        `json:"requested_at"`
	FundedAt     *time.Time       `json:"funded_at,omitempty"`
	RepaidAt     *time.Time       `json:"repaid_at,omitempty"`
	DefaultedAt  *time.Time       `json:"defaulted_at,omitempty"`
}

type RequestResult struct {
	LoanID       string          `json:"loan_id"`
	Score        int             `json:"score"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Loan         *LoanDTO        `json:"loan"`
}

type QuoteDTO struct {
	Score          int             `json:"score"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MaxLoanCap     decimal.Decimal `json:"max_loan_cap"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
}

type RepayResult struct {
	LoanID       string          `json:"loan_id"`
	Status       string          `json:"status"`
	Paid         decimal.Decimal `json:"paid"`
	RepaidAmount decimal.Decimal `json:"repaid_amount"`
	RemainingDue decimal.Decimal `json:"remaining_due"`
	Score        *int            `json:"new_score,omitempty"`
}

type DefaultResult struct {
	LoanID        string                `json:"loan_id"`
	PayoutAmount  decimal.Decimal       `json:"payout_amount"`
	Score         *int                  `json:"new_score,omitempty"`
	RepaymentPlan *domain.RepaymentPlan `json:"repayment_plan,omitempty"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	out := &LoanDTO{
		LoanID:       l.LoanID,
		BorrowerID:   l.BorrowerID,
		LenderID:     l.Lender(),
		Amount:       l.Amount,
		Duration:     l.Duration,
		InterestRate: l.InterestRate,
		CreditScore:  l.CreditScore,
		Status:       string(l.Status),
		RepaidAmount: l.RepaidAmount,
		TotalDue:     l.TotalDue(),
		RemainingDue: l.RemainingDue(),
		RequestedAt:  l.RequestedAt,
		FundedAt:     l.FundedAt,
		RepaidAt:     l.RepaidAt,
		DefaultedAt:  l.DefaultedAt,
	}
	if l.Collateral.Valid {
		c := l.Collateral.Decimal
		out.Collateral = &c
	}
	return out
}

func toDTOs(ls []domain.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out
}
