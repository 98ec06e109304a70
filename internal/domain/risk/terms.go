package risk

import "github.com/shopspring/decimal"

// InterestRate maps a score to an annual percentage rate.
func InterestRate(score int) decimal.Decimal {
	switch {
	case score >= 750:
		return decimal.NewFromInt(5)
	case score >= 600:
		return decimal.NewFromInt(10)
	default:
		return decimal.NewFromInt(15)
	}
}

// Verification carries the trust flags that widen the loan cap.
type Verification struct {
	Identity    bool
	SocialProof bool
}

var verificationBoost = decimal.RequireFromString("0.25")

// LoanCap is score*100, raised 25% per verification flag, plus the pledged collateral.
func LoanCap(score int, v Verification, collateral decimal.Decimal) decimal.Decimal {
	mult := decimal.NewFromInt(1)
	if v.Identity {
		mult = mult.Add(verificationBoost)
	}
	if v.SocialProof {
		mult = mult.Add(verificationBoost)
	}
	base := decimal.NewFromInt(int64(score) * 100).Mul(mult)
	if collateral.IsPositive() {
		base = base.Add(collateral)
	}
	return base.Round(2)
}
