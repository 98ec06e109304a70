// Package insurance runs the community pool: contributions in, capped
// payouts to lenders out on default.
package insurance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"metric-backend/internal/domain/apperr"
	"metric-backend/internal/domain/ledger"
	"metric-backend/internal/domain/loan"
	"metric-backend/internal/domain/uow"
	"metric-backend/internal/usecase"
)

type Usecase struct {
	uow        uow.UnitOfWork
	repos      uow.Repos
	payoutRate decimal.Decimal
	timeout    time.Duration
	rec        usecase.Recorder
}

// NewUsecase: repos serve reads outside a transaction, tx the atomic flows.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, payoutRate decimal.Decimal, timeout time.Duration, rec usecase.Recorder) *Usecase {
	return &Usecase{uow: tx, repos: repos, payoutRate: payoutRate, timeout: timeout, rec: rec}
}

// PayoutTx pays the lender of l min(amount*payoutRate, pool) inside the
// caller's transaction and returns what was paid. An empty pool pays zero.
func (u *Usecase) PayoutTx(ctx context.Context, r uow.Repos, l *loan.Loan) (decimal.Decimal, error) {
	pool, err := r.Pool.GetForUpdate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	desired := l.Amount.Mul(u.payoutRate).Round(2)
	payout := decimal.Min(desired, pool.Balance)
	if !payout.IsPositive() {
		return decimal.Zero, nil
	}
	if err := r.Pool.Withdraw(ctx, payout); err != nil {
		return decimal.Zero, err
	}
	if err := r.Users.Credit(ctx, l.Lender(), payout); err != nil {
		return decimal.Zero, err
	}
	if err := r.Ledger.Append(ctx, &ledger.Transaction{
		Type:           ledger.TxInsurancePayout,
		Amount:         payout,
		UserID:         l.Lender(),
		CounterpartyID: l.BorrowerID,
		LoanID:         l.LoanID,
	}); err != nil {
		return decimal.Zero, err
	}
	return payout, nil
}

// RecordPayout counts a payout once the transaction that made it has
// committed.
func (u *Usecase) RecordPayout(ctx context.Context, payout decimal.Decimal) {
	if !payout.IsPositive() {
		return
	}
	u.rec.Metrics.Payout()
	u.rec.Metrics.Transferred(string(ledger.TxInsurancePayout), payout)
	u.observePool(ctx)
}

// RecordContribution counts a committed contribution.
func (u *Usecase) RecordContribution(ctx context.Context, typ ledger.TxType, amount decimal.Decimal) {
	u.rec.Metrics.Transferred(string(typ), amount)
	u.observePool(ctx)
}

func (u *Usecase) observePool(ctx context.Context) {
	pool, err := u.repos.Pool.Get(ctx)
	if err != nil {
		u.rec.Logger().Warn("pool balance read failed", zap.Error(err))
		return
	}
	u.rec.Metrics.PoolBalance(pool.Balance)
}

// ContributeTx moves amount from userID's balance into the pool inside the
// caller's transaction.
func (u *Usecase) ContributeTx(ctx context.Context, r uow.Repos, userID string, amount decimal.Decimal, typ ledger.TxType) error {
	if err := r.Users.Debit(ctx, userID, amount); err != nil {
		return err
	}
	if err := r.Pool.Deposit(ctx, amount); err != nil {
		return err
	}
	return r.Ledger.Append(ctx, &ledger.Transaction{Type: typ, Amount: amount, UserID: userID})
}

func (u *Usecase) Contribute(ctx context.Context, in ContributeInput) (*SummaryDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, u.rec.Done("contribute", apperr.Invalid("amount", "must be greater than zero"))
	}
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	amount := in.Amount.Round(2)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUserID(ctx, in.UserID); err != nil {
			return err
		}
		return u.ContributeTx(ctx, r, in.UserID, amount, ledger.TxContribution)
	})
	if err = u.rec.Done("contribute", err, zap.String("user_id", in.UserID), zap.String("amount", in.Amount.String())); err != nil {
		return nil, err
	}
	u.rec.Metrics.Transferred(string(ledger.TxContribution), amount)
	return u.Summary(ctx, in.UserID)
}

// Summary reports the pool; userID may be empty for an anonymous view.
func (u *Usecase) Summary(ctx context.Context, userID string) (*SummaryDTO, error) {
	pool, err := u.repos.Pool.Get(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	covered, err := u.repos.Ledger.CountByType(ctx, ledger.TxInsurancePayout)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := &SummaryDTO{Balance: pool.Balance, DefaultsCovered: covered, UserContribution: decimal.Zero}
	if userID != "" {
		sum, err := u.repos.Ledger.SumByUser(ctx, userID, ledger.TxInitialContribution, ledger.TxContribution)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out.UserContribution = sum
	}
	u.rec.Metrics.PoolBalance(pool.Balance)
	return out, nil
}
