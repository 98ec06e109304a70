// Package risk derives the heuristic creditworthiness score and the loan
// terms quoted from it. Everything here is pure: the caller passes an
// explicit snapshot of history and balance.
package risk

import (
	"math"

	"github.com/shopspring/decimal"

	"metric-backend/internal/domain/loan"
)

const (
	MinScore  = 300
	MaxScore  = 850
	BaseScore = 650

	coldStartAdjustment = 50

	defaultPenalty      = 200
	repaidBonus         = 40
	reliabilityWeight   = 50
	progressWeight      = 25
	highLeveragePenalty = 40
	lowLeverageBonus    = 20
	highLeverageRatio   = 0.5
	lowLeverageRatio    = 0.1
	maxActiveLoans      = 2
	excessActivePenalty = 30
	longDurationMonths  = 18
	longDurationPenalty = 15
	collateralWeight    = 50
)

// LowBalanceThreshold applies to a cold-start score computed without a request.
var LowBalanceThreshold = decimal.NewFromInt(1000)

// Request is the loan being priced. A zero Amount or Duration means "current
// score, no new request" and disables the terms that depend on them.
type Request struct {
	Amount     decimal.Decimal
	Duration   int
	Collateral decimal.Decimal
}

// Score returns a value in [MinScore, MaxScore]. Same inputs, same score.
func Score(history []loan.Loan, balance decimal.Decimal, req Request) int {
	score := float64(BaseScore)

	if len(history) == 0 {
		switch {
		case req.Amount.IsPositive():
			if balance.GreaterThan(req.Amount.Mul(decimal.NewFromInt(2))) {
				score += coldStartAdjustment
			} else if balance.LessThan(req.Amount) {
				score -= coldStartAdjustment
			}
		case balance.LessThan(LowBalanceThreshold):
			score -= coldStartAdjustment
		}
		return clamp(score)
	}

	var repaid, defaulted int
	var active []*loan.Loan
	for i := range history {
		switch history[i].Status {
		case loan.StatusRepaid:
			repaid++
		case loan.StatusDefaulted:
			defaulted++
		case loan.StatusFunded:
			active = append(active, &history[i])
		}
	}
	total := len(history)

	score -= float64(defaultPenalty * defaulted)
	score += float64(repaidBonus * repaid)
	score += reliabilityWeight * float64(total-defaulted) / float64(total)

	for _, l := range active {
		score += progressWeight * l.Progress()
	}

	if req.Amount.IsPositive() {
		ratio := req.Amount.InexactFloat64() / (balance.InexactFloat64() + 1)
		if ratio > highLeverageRatio {
			score -= highLeveragePenalty
		} else if ratio < lowLeverageRatio {
			score += lowLeverageBonus
		}
	}

	if n := len(active); n > maxActiveLoans {
		score -= float64(excessActivePenalty * (n - maxActiveLoans))
	}

	if req.Duration > longDurationMonths {
		score -= longDurationPenalty
	}

	if req.Amount.IsPositive() && req.Collateral.IsPositive() {
		coverage := math.Min(req.Collateral.Div(req.Amount).InexactFloat64(), 1)
		score += collateralWeight * coverage
	}

	return clamp(score)
}

func clamp(score float64) int {
	return int(math.Round(math.Max(MinScore, math.Min(score, MaxScore))))
}
