package insurance

import (
	"context"

	"github.com/shopspring/decimal"

	"metric-backend/internal/domain/apperr"
)

var ErrPoolExhausted = apperr.New(apperr.KindInsufficientFunds, "PoolExhausted", "insurance pool balance too low")

type Repository interface {
	// Ensure creates the singleton pool row if it does not exist yet.
	Ensure(ctx context.Context) error
	Get(ctx context.Context) (*Pool, error)
	GetForUpdate(ctx context.Context) (*Pool, error)
	Deposit(ctx context.Context, amount decimal.Decimal) error
	// Withdraw decrements only while the pool covers amount; otherwise ErrPoolExhausted.
	Withdraw(ctx context.Context, amount decimal.Decimal) error
}
