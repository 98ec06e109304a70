package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Append(ctx context.Context, t *Transaction) error
	CountByType(ctx context.Context, typ TxType) (int64, error)
	SumByUser(ctx context.Context, userID string, types ...TxType) (decimal.Decimal, error)
	ListByLoan(ctx context.Context, loanID string) ([]Transaction, error)
}
