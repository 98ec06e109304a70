package insurance

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolDocID keys the singleton pool row in platform_meta.
const PoolDocID = "insurancePool"

type Pool struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	DocID     string          `gorm:"size:32;not null;uniqueIndex:ux_platform_meta_doc_id" json:"-"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Pool) TableName() string { return "platform_meta" }
