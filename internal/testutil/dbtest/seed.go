package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"metric-backend/internal/domain/insurance"
	"metric-backend/internal/domain/user"
)

// SeedUser inserts a user with the given balance and role.
func SeedUser(t testing.TB, gdb *gorm.DB, userID string, balance decimal.Decimal) *user.User {
	t.Helper()
	u := &user.User{UserID: userID, Role: user.RoleBoth, Balance: balance}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", userID, err)
	}
	return u
}

// SetPool overwrites the insurance pool balance.
func SetPool(t testing.TB, gdb *gorm.DB, balance decimal.Decimal) {
	t.Helper()
	err := gdb.Model(&insurance.Pool{}).
		Where("doc_id = ?", insurance.PoolDocID).
		UpdateColumn("balance", balance).Error
	if err != nil {
		t.Fatalf("seed pool: %v", err)
	}
}

// Balance reads a user's balance rounded to cents.
func Balance(t testing.TB, gdb *gorm.DB, userID string) decimal.Decimal {
	t.Helper()
	var u user.User
	if err := gdb.Where("user_id = ?", userID).First(&u).Error; err != nil {
		t.Fatalf("load user %s: %v", userID, err)
	}
	return u.Balance.Round(2)
}

// PoolBalance reads the insurance pool balance rounded to cents.
func PoolBalance(t testing.TB, gdb *gorm.DB) decimal.Decimal {
	t.Helper()
	var p insurance.Pool
	if err := gdb.Where("doc_id = ?", insurance.PoolDocID).First(&p).Error; err != nil {
		t.Fatalf("load pool: %v", err)
	}
	return p.Balance.Round(2)
}
