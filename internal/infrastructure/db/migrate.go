package db

import (
	"context"

	"metric-backend/internal/domain/insurance"
	"metric-backend/internal/domain/ledger"
	"metric-backend/internal/domain/loan"
	"metric-backend/internal/domain/user"
	"metric-backend/internal/domain/vouch"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&user.LinkedAccount{},
		&loan.Loan{},
		&loan.RepaymentPlan{},
		&loan.Installment{},
		&insurance.Pool{},
		&ledger.Transaction{},
		&vouch.Vouch{},
	}
}

// Migrate brings the schema up to date and seeds the insurance pool row.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return err
	}
	pool := insurance.Pool{DocID: insurance.PoolDocID, Balance: decimal.Zero}
	return db.WithContext(ctx).
		Where(insurance.Pool{DocID: insurance.PoolDocID}).
		FirstOrCreate(&pool).Error
}
