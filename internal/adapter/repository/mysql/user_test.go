package mysql

import (
	"context"
	"errors"
	"sync"
	"testing"

	userDomain "metric-backend/internal/domain/user"
	"metric-backend/internal/testutil/dbtest"

	"github.com/shopspring/decimal"
)

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &userDomain.User{UserID: "U1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &userDomain.User{UserID: "U1"}); !errors.Is(err, userDomain.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
	if _, err := repo.GetByUserID(ctx, "U2"); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUserRepository_DebitNeverOverdraws(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "U1", decimal.NewFromInt(100))
	repo := NewUserRepository(db)
	ctx := context.Background()

	// ten concurrent debits of 30 against 100: exactly three fit
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Debit(ctx, "U1", decimal.NewFromInt(30))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, userDomain.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 3 {
		t.Fatalf("successful debits = %d, want 3", ok)
	}
	if got := dbtest.Balance(t, db, "U1"); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance = %s, want 10", got)
	}
}

func TestUserRepository_CreditMissingUser(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	if err := repo.Credit(context.Background(), "ghost", decimal.NewFromInt(1)); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUserRepository_VouchCountAndFlags(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "U1", decimal.Zero)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for want := 1; want <= 2; want++ {
		n, err := repo.IncrementVouchCount(ctx, "U1")
		if err != nil || n != want {
			t.Fatalf("IncrementVouchCount = %d, %v; want %d", n, err, want)
		}
	}
	if err := repo.SetFlag(ctx, "U1", userDomain.FlagWalletLocked, true); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if err := repo.SetFlag(ctx, "U1", "balance", true); err == nil {
		t.Fatal("SetFlag must reject non-flag columns")
	}
	u, err := repo.GetByUserID(ctx, "U1")
	if err != nil || !u.WalletLocked || u.VouchCount != 2 {
		t.Fatalf("user = %+v, %v", u, err)
	}
}

func TestUserRepository_LinkedAccounts(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	a := &userDomain.LinkedAccount{UserID: "U1", Provider: userDomain.ProviderWallet, Address: "0xabc"}
	if err := repo.CreateLinkedAccount(ctx, a); err != nil {
		t.Fatalf("CreateLinkedAccount: %v", err)
	}
	dup := &userDomain.LinkedAccount{UserID: "U2", Provider: userDomain.ProviderWallet, Address: "0xabc"}
	if err := repo.CreateLinkedAccount(ctx, dup); !errors.Is(err, userDomain.ErrAddressInUse) {
		t.Fatalf("want ErrAddressInUse, got %v", err)
	}
	list, err := repo.ListLinkedAccounts(ctx, "U1")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListLinkedAccounts = %v, %v", list, err)
	}
}
