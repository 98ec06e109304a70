package mysql

import (
	"context"
	"errors"

	insuranceDomain "metric-backend/internal/domain/insurance"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PoolRepository stores the insurance pool as a single platform_meta row.
type PoolRepository struct{ db *gorm.DB }

func NewPoolRepository(db *gorm.DB) *PoolRepository { return &PoolRepository{db: db} }

func (r *PoolRepository) Ensure(ctx context.Context) error {
	p := insuranceDomain.Pool{DocID: insuranceDomain.PoolDocID, Balance: decimal.Zero}
	return r.db.WithContext(ctx).
		Where(insuranceDomain.Pool{DocID: insuranceDomain.PoolDocID}).
		FirstOrCreate(&p).Error
}

func (r *PoolRepository) Get(ctx context.Context) (*insuranceDomain.Pool, error) {
	return r.get(r.db.WithContext(ctx))
}

func (r *PoolRepository) GetForUpdate(ctx context.Context) (*insuranceDomain.Pool, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *PoolRepository) get(q *gorm.DB) (*insuranceDomain.Pool, error) {
	var out insuranceDomain.Pool
	err := q.Where("doc_id = ?", insuranceDomain.PoolDocID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no contribution yet: an empty pool
		return &insuranceDomain.Pool{DocID: insuranceDomain.PoolDocID, Balance: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PoolRepository) Deposit(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	res := r.deposit(ctx, amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if err := r.Ensure(ctx); err != nil {
		return err
	}
	return r.deposit(ctx, amount).Error
}

func (r *PoolRepository) deposit(ctx context.Context, amount decimal.Decimal) *gorm.DB {
	return r.db.WithContext(ctx).Model(&insuranceDomain.Pool{}).
		Where("doc_id = ?", insuranceDomain.PoolDocID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
}

func (r *PoolRepository) Withdraw(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&insuranceDomain.Pool{}).
		Where("doc_id = ? AND balance >= ?", insuranceDomain.PoolDocID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return insuranceDomain.ErrPoolExhausted
	}
	return nil
}
