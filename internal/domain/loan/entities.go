package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFunded    Status = "funded"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

// CanTransition reports whether from -> to is an edge of
// pending -> funded -> {repaid | defaulted}. A partial repayment keeps the
// loan funded, so funded -> funded is allowed too.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusFunded
	case StatusFunded:
		return to == StatusFunded || to == StatusRepaid || to == StatusDefaulted
	}
	return false
}

type Loan struct {
	ID           uint64              `gorm:"primaryKey;column:id" json:"-"`
	LoanID       string              `gorm:"size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID   string              `gorm:"size:32;not null;index:idx_loans_borrower" json:"borrower_id"`
	LenderID     *string             `gorm:"size:32;index:idx_loans_lender" json:"lender_id,omitempty"`
	Amount       decimal.Decimal     `gorm:"type:decimal(18,2);not null" json:"amount"`
	Duration     int                 `gorm:"not null" json:"duration"`
	InterestRate decimal.Decimal     `gorm:"type:decimal(6,2);not null" json:"interest_rate"`
	CreditScore  int                 `gorm:"not null" json:"credit_score"`
	Collateral   decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"collateral"`
	Status       Status              `gorm:"size:16;not null;index:idx_loans_status" json:"status"`
	RepaidAmount decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0" json:"repaid_amount"`
	Version      int64               `gorm:"not null;default:0" json:"-"`
	RequestedAt  time.Time           `gorm:"not null" json:"requested_at"`
	FundedAt     *time.Time          `json:"funded_at,omitempty"`
	RepaidAt     *time.Time          `json:"repaid_at,omitempty"`
	DefaultedAt  *time.Time          `json:"defaulted_at,omitempty"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// TotalDue is principal plus simple interest over the loan's duration,
// amount * (1 + rate/100 * duration/12), rounded to cents.
func TotalDue(amount, ratePct decimal.Decimal, duration int) decimal.Decimal {
	interest := amount.Mul(ratePct).Mul(decimal.NewFromInt(int64(duration))).Div(hundred.Mul(twelve))
	return amount.Add(interest).Round(2)
}

func (l *Loan) TotalDue() decimal.Decimal { return TotalDue(l.Amount, l.InterestRate, l.Duration) }

func (l *Loan) RemainingDue() decimal.Decimal { return l.TotalDue().Sub(l.RepaidAmount) }

// Progress is repaidAmount / totalDue in [0, 1].
func (l *Loan) Progress() float64 {
	due := l.TotalDue()
	if !due.IsPositive() {
		return 0
	}
	p := l.RepaidAmount.Div(due).InexactFloat64()
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (l *Loan) Lender() string {
	if l.LenderID == nil {
		return ""
	}
	return *l.LenderID
}
