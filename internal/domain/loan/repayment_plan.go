package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const InstallmentPending InstallmentStatus = "pending"

// RepaymentPlan spreads the part of a defaulted principal that the insurance
// pool did not cover over weekly installments.
type RepaymentPlan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	PlanID          string          `gorm:"size:32;not null;uniqueIndex:ux_repayment_plans_plan_id" json:"plan_id"`
	LoanID          string          `gorm:"size:32;not null;uniqueIndex:ux_repayment_plans_loan_id" json:"loan_id"`
	BorrowerID      string          `gorm:"size:32;not null;index" json:"borrower_id"`
	LenderID        string          `gorm:"size:32;not null" json:"lender_id"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	Installments    []Installment   `gorm:"foreignKey:PlanID;references:PlanID" json:"installments"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (RepaymentPlan) TableName() string { return "repayment_plans" }

type Installment struct {
	ID      uint64            `gorm:"primaryKey;column:id" json:"-"`
	PlanID  string            `gorm:"size:32;not null;index" json:"-"`
	Seq     int               `gorm:"not null" json:"seq"`
	Amount  decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"amount"`
	DueDate time.Time         `gorm:"not null" json:"due_date"`
	Status  InstallmentStatus `gorm:"size:16;not null" json:"status"`
}

func (Installment) TableName() string { return "repayment_installments" }

// SplitInstallments divides remainder into n weekly cents-rounded parts
// starting one week after from. The last part absorbs the rounding residue
// so the parts always sum to remainder.
func SplitInstallments(remainder decimal.Decimal, n int, from time.Time) []Installment {
	if n <= 0 || !remainder.IsPositive() {
		return nil
	}
	part := remainder.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	out := make([]Installment, 0, n)
	allocated := decimal.Zero
	for i := 1; i <= n; i++ {
		amt := part
		if i == n {
			amt = remainder.Sub(allocated)
		}
		allocated = allocated.Add(amt)
		out = append(out, Installment{
			Seq:     i,
			Amount:  amt,
			DueDate: from.Add(time.Duration(i) * 7 * 24 * time.Hour),
			Status:  InstallmentPending,
		})
	}
	return out
}
