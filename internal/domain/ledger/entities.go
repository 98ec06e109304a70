package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxInitialContribution TxType = "INITIAL_CONTRIBUTION"
	TxContribution        TxType = "CONTRIBUTION"
	TxInsurancePayout     TxType = "INSURANCE_PAYOUT"
	TxLoanFunding         TxType = "LOAN_FUNDING"
	TxLoanRepayment       TxType = "LOAN_REPAYMENT"
	TxVouchReward         TxType = "VOUCH_REWARD"
)

// Transaction is an append-only audit entry. UserID is the party whose
// balance the entry is about; CounterpartyID the other side, if any.
type Transaction struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	TxID           string          `gorm:"size:32;not null;uniqueIndex:ux_transactions_tx_id" json:"tx_id"`
	Type           TxType          `gorm:"size:32;not null;index:idx_transactions_type_user" json:"type"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	UserID         string          `gorm:"size:32;index:idx_transactions_type_user" json:"user_id,omitempty"`
	CounterpartyID string          `gorm:"size:32" json:"counterparty_id,omitempty"`
	LoanID         string          `gorm:"size:32;index" json:"loan_id,omitempty"`
	Timestamp      time.Time       `gorm:"not null" json:"timestamp"`
}

func (Transaction) TableName() string { return "transactions" }
