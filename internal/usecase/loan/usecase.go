// Package loan is the lifecycle engine: request, fund, repay and default,
// each one atomic unit against the ledger store.
package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"metric-backend/internal/domain/apperr"
	"metric-backend/internal/domain/ledger"
	domain "metric-backend/internal/domain/loan"
	"metric-backend/internal/domain/risk"
	"metric-backend/internal/domain/uow"
	"metric-backend/internal/domain/user"
	"metric-backend/internal/usecase"
	"metric-backend/pkg/id"
)

// repayTolerance absorbs round-off when a borrower pays "everything".
var repayTolerance = decimal.RequireFromString("0.01")

// Payouter compensates the lender of a defaulted loan inside the caller's
// transaction. RecordPayout runs after the commit.
type Payouter interface {
	PayoutTx(ctx context.Context, r uow.Repos, l *domain.Loan) (decimal.Decimal, error)
	RecordPayout(ctx context.Context, payout decimal.Decimal)
}

type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	pool   Payouter
	policy Policy
	rec    usecase.Recorder
	now    func() time.Time
}

// NewUsecase: repos serve reads outside a transaction, tx the state transitions.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, pool Payouter, p Policy, rec usecase.Recorder) *Usecase {
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Second
	}
	if p.FallbackInstallments <= 0 {
		p.FallbackInstallments = 4
	}
	return &Usecase{repos: repos, uow: tx, pool: pool, policy: p, rec: rec, now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) validateRequest(amount decimal.Decimal, duration int, collateral *decimal.Decimal) error {
	if amount.LessThan(u.policy.MinAmount) || amount.GreaterThan(u.policy.MaxAmount) {
		return apperr.Invalid("amount", fmt.Sprintf("must be between %s and %s", u.policy.MinAmount, u.policy.MaxAmount))
	}
	if duration < u.policy.MinDuration || duration > u.policy.MaxDuration {
		return apperr.Invalid("duration", fmt.Sprintf("must be between %d and %d months", u.policy.MinDuration, u.policy.MaxDuration))
	}
	if collateral != nil && collateral.IsNegative() {
		return apperr.Invalid("collateral", "must not be negative")
	}
	return nil
}

func collateralOf(c *decimal.Decimal) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	return c.Round(2)
}

func (u *Usecase) Request(ctx context.Context, in RequestLoanInput) (*RequestResult, error) {
	fields := []zap.Field{zap.String("borrower_id", in.BorrowerID), zap.String("amount", in.Amount.String())}
	if err := u.validateRequest(in.Amount, in.Duration, in.Collateral); err != nil {
		return nil, u.rec.Done("request", err, fields...)
	}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	amount := in.Amount.Round(2)
	collateral := collateralOf(in.Collateral)
	var out *RequestResult

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// the borrower row lock serializes concurrent requests
		borrower, err := r.Users.GetByUserIDForUpdate(ctx, in.BorrowerID)
		if err != nil {
			return err
		}

		// one open request per borrower
		switch _, err := r.Loans.GetPendingLoanByBorrowerID(ctx, in.BorrowerID); {
		case err == nil:
			return domain.ErrPendingLoanExists
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		history, err := r.Loans.ListByBorrower(ctx, in.BorrowerID)
		if err != nil {
			return err
		}
		score := risk.Score(history, borrower.Balance, risk.Request{Amount: amount, Duration: in.Duration, Collateral: collateral})
		limit := risk.LoanCap(score, risk.Verification{Identity: borrower.IdentityVerified, SocialProof: borrower.SocialProofVerified}, collateral)
		if amount.GreaterThan(limit) {
			return apperr.Invalid("amount", fmt.Sprintf("exceeds loan cap of %s", limit.StringFixed(2)))
		}

		l := &domain.Loan{
			LoanID:       id.NewID32(),
			BorrowerID:   in.BorrowerID,
			Amount:       amount,
			Duration:     in.Duration,
			InterestRate: risk.InterestRate(score),
			CreditScore:  score,
			Status:       domain.StatusPending,
			RepaidAmount: decimal.Zero,
			RequestedAt:  u.now(),
		}
		if in.Collateral != nil {
			l.Collateral = decimal.NewNullDecimal(collateral)
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		out = &RequestResult{LoanID: l.LoanID, Score: score, InterestRate: l.InterestRate, Loan: toDTO(l)}
		return nil
	})
	if err = u.rec.Done("request", err, fields...); err != nil {
		return nil, err
	}
	u.rec.Metrics.Score(out.Score)
	return out, nil
}

// Quote prices a prospective request without persisting anything. A zero
// amount quotes the user's current score.
func (u *Usecase) Quote(ctx context.Context, in QuoteInput) (*QuoteDTO, error) {
	if in.Amount.IsNegative() {
		return nil, apperr.Invalid("amount", "must not be negative")
	}
	if in.Duration < 0 {
		return nil, apperr.Invalid("duration", "must not be negative")
	}
	if in.Collateral != nil && in.Collateral.IsNegative() {
		return nil, apperr.Invalid("collateral", "must not be negative")
	}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	collateral := collateralOf(in.Collateral)
	borrower, score, err := u.score(ctx, in.UserID, risk.Request{Amount: in.Amount, Duration: in.Duration, Collateral: collateral})
	if err != nil {
		return nil, u.rec.Done("quote", err, zap.String("user_id", in.UserID))
	}
	rate := risk.InterestRate(score)
	return &QuoteDTO{
		Score:          score,
		InterestRate:   rate,
		MaxLoanCap:     risk.LoanCap(score, risk.Verification{Identity: borrower.IdentityVerified, SocialProof: borrower.SocialProofVerified}, collateral),
		TotalRepayment: domain.TotalDue(in.Amount, rate, in.Duration),
	}, nil
}

// CurrentScore recomputes the user's score with no pending request.
func (u *Usecase) CurrentScore(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()
	_, score, err := u.score(ctx, userID, risk.Request{})
	if err != nil {
		return 0, u.rec.Done("score", err, zap.String("user_id", userID))
	}
	return score, nil
}

func (u *Usecase) score(ctx context.Context, userID string, req risk.Request) (*user.User, int, error) {
	usr, err := u.repos.Users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	history, err := u.repos.Loans.ListByBorrower(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	score := risk.Score(history, usr.Balance, req)
	u.rec.Metrics.Score(score)
	return usr, score, nil
}

// currentScoreAfter is the post-commit recomputation; a read failure there
// must not turn a committed transition into an error, so it yields nil.
func (u *Usecase) currentScoreAfter(ctx context.Context, userID string) *int {
	_, score, err := u.score(ctx, userID, risk.Request{})
	if err != nil {
		u.rec.Logger().Error("score recomputation failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return &score
}

func (u *Usecase) Fund(ctx context.Context, lenderID, loanID string) (*LoanDTO, error) {
	fields := []zap.Field{zap.String("lender_id", lenderID), zap.String("loan_id", loanID)}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	var out *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusPending {
			return domain.ErrNotFundable
		}
		if l.BorrowerID == lenderID {
			return apperr.Invalid("loan_id", "cannot fund your own loan")
		}
		if _, err := r.Users.GetByUserID(ctx, lenderID); err != nil {
			return err
		}

		if err := r.Users.Debit(ctx, lenderID, l.Amount); err != nil {
			return err
		}
		if err := r.Users.Credit(ctx, l.BorrowerID, l.Amount); err != nil {
			return err
		}
		if err := r.Ledger.Append(ctx, &ledger.Transaction{
			Type:           ledger.TxLoanFunding,
			Amount:         l.Amount,
			UserID:         lenderID,
			CounterpartyID: l.BorrowerID,
			LoanID:         l.LoanID,
		}); err != nil {
			return err
		}

		now := u.now()
		lender := lenderID
		l.Status = domain.StatusFunded
		l.LenderID = &lender
		l.FundedAt = &now
		if err := r.Loans.Transition(ctx, l, domain.StatusPending); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	err = lost(err, domain.ErrNotFundable)
	if err = u.rec.Done("fund", err, fields...); err != nil {
		return nil, err
	}
	u.rec.Metrics.Transferred(string(ledger.TxLoanFunding), out.Amount)
	return out, nil
}

func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*RepayResult, error) {
	fields := []zap.Field{zap.String("borrower_id", in.BorrowerID), zap.String("loan_id", in.LoanID)}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, u.rec.Done("repay", domain.ErrInvalidAmount, fields...)
	}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	var out *RepayResult
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusFunded || l.BorrowerID != in.BorrowerID {
			return domain.ErrNotRepayable
		}
		remaining := l.RemainingDue()
		amount := remaining
		if in.Amount != nil {
			amount = in.Amount.Round(2)
		}
		if !amount.IsPositive() || amount.GreaterThan(remaining.Add(repayTolerance)) {
			return domain.ErrInvalidAmount
		}
		if amount.GreaterThan(remaining) {
			amount = remaining
		}

		if err := r.Users.Debit(ctx, l.BorrowerID, amount); err != nil {
			return err
		}
		if err := r.Users.Credit(ctx, l.Lender(), amount); err != nil {
			return err
		}
		if err := r.Ledger.Append(ctx, &ledger.Transaction{
			Type:           ledger.TxLoanRepayment,
			Amount:         amount,
			UserID:         l.BorrowerID,
			CounterpartyID: l.Lender(),
			LoanID:         l.LoanID,
		}); err != nil {
			return err
		}

		l.RepaidAmount = l.RepaidAmount.Add(amount)
		if l.RepaidAmount.GreaterThanOrEqual(l.TotalDue()) {
			now := u.now()
			l.Status = domain.StatusRepaid
			l.RepaidAt = &now
		}
		if err := r.Loans.Transition(ctx, l, domain.StatusFunded); err != nil {
			return err
		}
		out = &RepayResult{
			LoanID:       l.LoanID,
			Status:       string(l.Status),
			Paid:         amount,
			RepaidAmount: l.RepaidAmount,
			RemainingDue: l.RemainingDue(),
		}
		return nil
	})
	err = lost(err, domain.ErrNotRepayable)
	if err = u.rec.Done("repay", err, fields...); err != nil {
		return nil, err
	}
	u.rec.Metrics.Transferred(string(ledger.TxLoanRepayment), out.Paid)
	out.Score = u.currentScoreAfter(ctx, in.BorrowerID)
	return out, nil
}

func (u *Usecase) Default(ctx context.Context, borrowerID, loanID string) (*DefaultResult, error) {
	fields := []zap.Field{zap.String("borrower_id", borrowerID), zap.String("loan_id", loanID)}
	ctx, cancel := context.WithTimeout(ctx, u.policy.Timeout)
	defer cancel()

	var out *DefaultResult
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusFunded || l.BorrowerID != borrowerID {
			return domain.ErrNotDefaultable
		}
		now := u.now()
		l.Status = domain.StatusDefaulted
		l.DefaultedAt = &now

		if err := r.Users.SetFlag(ctx, borrowerID, user.FlagWalletLocked, true); err != nil {
			return err
		}
		payout, err := u.pool.PayoutTx(ctx, r, l)
		if err != nil {
			return err
		}
		out = &DefaultResult{LoanID: l.LoanID, PayoutAmount: payout}

		if remainder := l.Amount.Sub(payout); remainder.IsPositive() {
			plan := &domain.RepaymentPlan{
				PlanID:          id.NewID32(),
				LoanID:          l.LoanID,
				BorrowerID:      l.BorrowerID,
				LenderID:        l.Lender(),
				RemainingAmount: remainder,
			}
			plan.Installments = domain.SplitInstallments(remainder, u.policy.FallbackInstallments, now)
			for i := range plan.Installments {
				plan.Installments[i].PlanID = plan.PlanID
			}
			if err := r.Loans.CreateRepaymentPlan(ctx, plan); err != nil {
				return err
			}
			out.RepaymentPlan = plan
		}
		return r.Loans.Transition(ctx, l, domain.StatusFunded)
	})
	err = lost(err, domain.ErrNotDefaultable)
	if err = u.rec.Done("default", err, append(fields, zap.Bool("covered", out != nil && out.PayoutAmount.IsPositive()))...); err != nil {
		return nil, err
	}
	u.pool.RecordPayout(ctx, out.PayoutAmount)
	out.Score = u.currentScoreAfter(ctx, borrowerID)
	return out, nil
}

// lost maps a lost compare-and-set onto the operation's own precondition
// error. A missing loan stays ErrNotFound.
func lost(err, precondition error) error {
	if errors.Is(err, domain.ErrConflict) {
		return precondition
	}
	return err
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repos.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, u.rec.Done("get", err, zap.String("loan_id", loanID))
	}
	return toDTO(l), nil
}

func (u *Usecase) ListPending(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.repos.Loans.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, u.rec.Done("list_pending", err)
	}
	return toDTOs(ls), nil
}

// ListMine returns the borrower's loans, newest first.
func (u *Usecase) ListMine(ctx context.Context, borrowerID string) ([]LoanDTO, error) {
	ls, err := u.repos.Loans.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, u.rec.Done("list_mine", err)
	}
	return toDTOs(ls), nil
}

func (u *Usecase) ListFundedByMe(ctx context.Context, lenderID string) ([]LoanDTO, error) {
	ls, err := u.repos.Loans.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, u.rec.Done("list_funded", err)
	}
	return toDTOs(ls), nil
}

func (u *Usecase) GetRepaymentPlan(ctx context.Context, loanID string) (*domain.RepaymentPlan, error) {
	p, err := u.repos.Loans.GetRepaymentPlanByLoanID(ctx, loanID)
	if err != nil {
		return nil, u.rec.Done("repayment_plan", err, zap.String("loan_id", loanID))
	}
	return p, nil
}
