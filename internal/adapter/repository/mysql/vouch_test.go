package mysql

import (
	"context"
	"errors"
	"testing"

	vouchDomain "metric-backend/internal/domain/vouch"
	"metric-backend/internal/testutil/dbtest"
)

func TestVouchRepository_UniquePair(t *testing.T) {
	repo := NewVouchRepository(dbtest.Open(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &vouchDomain.Vouch{VoucherID: "A", VoucheeID: "B"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &vouchDomain.Vouch{VoucherID: "A", VoucheeID: "B"}); !errors.Is(err, vouchDomain.ErrAlreadyVouched) {
		t.Fatalf("want ErrAlreadyVouched, got %v", err)
	}
	// the reverse direction is a different pair
	if err := repo.Create(ctx, &vouchDomain.Vouch{VoucherID: "B", VoucheeID: "A"}); err != nil {
		t.Fatalf("reverse Create: %v", err)
	}

	ok, err := repo.Exists(ctx, "A", "B")
	if err != nil || !ok {
		t.Fatalf("Exists(A,B) = %v, %v", ok, err)
	}
	ok, err = repo.Exists(ctx, "A", "C")
	if err != nil || ok {
		t.Fatalf("Exists(A,C) = %v, %v", ok, err)
	}
}
