package vouch

import (
	"time"

	"metric-backend/internal/domain/apperr"
)

var (
	ErrAlreadyVouched      = apperr.New(apperr.KindDuplicate, "AlreadyVouched", "you have already vouched for this user")
	ErrSelfVouchNotAllowed = apperr.New(apperr.KindValidation, "SelfVouchNotAllowed", "you cannot vouch for yourself")
)

// Vouch is unique per ordered (voucher, vouchee) pair.
type Vouch struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	VoucherID string    `gorm:"column:voucher_id;size:32;not null;uniqueIndex:ux_vouches_pair"`
	VoucheeID string    `gorm:"column:vouchee_id;size:32;not null;uniqueIndex:ux_vouches_pair;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Vouch) TableName() string { return "vouches" }
