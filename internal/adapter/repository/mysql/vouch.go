package mysql

import (
	"context"
	"errors"

	vouchDomain "metric-backend/internal/domain/vouch"

	"gorm.io/gorm"
)

type VouchRepository struct{ db *gorm.DB }

func NewVouchRepository(db *gorm.DB) *VouchRepository { return &VouchRepository{db: db} }

// Create leans on ux_vouches_pair; the gorm connection must be opened with
// TranslateError so the driver's unique violation surfaces as ErrDuplicatedKey.
func (r *VouchRepository) Create(ctx context.Context, v *vouchDomain.Vouch) error {
	err := r.db.WithContext(ctx).Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return vouchDomain.ErrAlreadyVouched
	}
	return err
}

func (r *VouchRepository) Exists(ctx context.Context, voucherID, voucheeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&vouchDomain.Vouch{}).
		Where("voucher_id = ? AND vouchee_id = ?", voucherID, voucheeID).
		Count(&n).Error
	return n > 0, err
}
