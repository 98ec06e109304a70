package mysql

import (
	"context"
	"time"

	ledgerDomain "metric-backend/internal/domain/ledger"
	"metric-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) Append(ctx context.Context, t *ledgerDomain.Transaction) error {
	if t.TxID == "" {
		t.TxID = id.NewID32()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LedgerRepository) CountByType(ctx context.Context, typ ledgerDomain.TxType) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ledgerDomain.Transaction{}).Where("type = ?", typ).Count(&n).Error
	return n, err
}

func (r *LedgerRepository) SumByUser(ctx context.Context, userID string, types ...ledgerDomain.TxType) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&ledgerDomain.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	var sum decimal.Decimal
	if err := q.Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *LedgerRepository) ListByLoan(ctx context.Context, loanID string) ([]ledgerDomain.Transaction, error) {
	var out []ledgerDomain.Transaction
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("id ASC").Find(&out).Error
	return out, err
}
