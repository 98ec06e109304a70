package insurance

import "github.com/shopspring/decimal"

type ContributeInput struct {
	UserID string          `json:"-"`
	Amount decimal.Decimal `json:"amount"`
}

type SummaryDTO struct {
	Balance          decimal.Decimal `json:"balance"`
	DefaultsCovered  int64           `json:"defaults_covered"`
	UserContribution decimal.Decimal `json:"user_contribution"`
}
