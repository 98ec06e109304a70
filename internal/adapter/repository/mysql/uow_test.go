package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"metric-backend/internal/domain/ledger"
	loanDomain "metric-backend/internal/domain/loan"
	"metric-backend/internal/domain/uow"
	"metric-backend/internal/testutil/dbtest"

	"github.com/shopspring/decimal"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "U1", decimal.NewFromInt(100))
	u := NewGormUoW(db)
	ctx := context.Background()

	err := u.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Users.Debit(ctx, "U1", decimal.NewFromInt(40)); err != nil {
			return err
		}
		if err := r.Pool.Deposit(ctx, decimal.NewFromInt(40)); err != nil {
			return err
		}
		return r.Ledger.Append(ctx, &ledger.Transaction{Type: ledger.TxContribution, Amount: decimal.NewFromInt(40), UserID: "U1"})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if got := dbtest.Balance(t, db, "U1"); !got.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance = %s, want 60", got)
	}
	if got := dbtest.PoolBalance(t, db); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("pool = %s, want 40", got)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "U1", decimal.NewFromInt(100))
	u := NewGormUoW(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := u.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Users.Debit(ctx, "U1", decimal.NewFromInt(40)); err != nil {
			return err
		}
		if err := r.Pool.Deposit(ctx, decimal.NewFromInt(40)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if got := dbtest.Balance(t, db, "U1"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100 after rollback", got)
	}
	if got := dbtest.PoolBalance(t, db); !got.IsZero() {
		t.Fatalf("pool = %s, want 0 after rollback", got)
	}
}

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := dbtest.Open(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	l := makeLoan("B1", time.Now().UTC())
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := u.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, got *loanDomain.Loan) error {
		if got.LoanID != l.LoanID {
			t.Fatalf("locked loan = %s, want %s", got.LoanID, l.LoanID)
		}
		lender := "L1"
		got.Status, got.LenderID = loanDomain.StatusFunded, &lender
		return r.Loans.Transition(ctx, got, loanDomain.StatusPending)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	got, err := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID)
	if err != nil || got.Status != loanDomain.StatusFunded {
		t.Fatalf("after commit: %+v, %v", got, err)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := dbtest.Open(t)
	u := NewGormUoW(db)
	ctx := context.Background()
	boom := errors.New("boom")

	l := makeLoan("B1", time.Now().UTC())
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := u.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, got *loanDomain.Loan) error {
		got.Status = loanDomain.StatusFunded
		if err := r.Loans.Transition(ctx, got, loanDomain.StatusPending); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	got, err := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID)
	if err != nil || got.Status != loanDomain.StatusPending || got.Version != 0 {
		t.Fatalf("after rollback: %+v, %v", got, err)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	u := NewGormUoW(dbtest.Open(t))
	called := false
	err := u.WithinLoanTx(context.Background(), "missing", func(uow.Repos, *loanDomain.Loan) error {
		called = true
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if called {
		t.Fatal("fn must not run when the loan is missing")
	}
}
