package vouch

import "context"

type Repository interface {
	// Create relies on the pair uniqueness; a duplicate yields ErrAlreadyVouched.
	Create(ctx context.Context, v *Vouch) error
	Exists(ctx context.Context, voucherID, voucheeID string) (bool, error)
}
