package loan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"metric-backend/internal/domain/apperr"
	"metric-backend/internal/domain/ledger"
	domain "metric-backend/internal/domain/loan"
	"metric-backend/internal/domain/uow"
	"metric-backend/internal/domain/user"
	"metric-backend/internal/testutil/loanmock"
	"metric-backend/internal/testutil/uowmock"
	"metric-backend/internal/testutil/usermock"
	"metric-backend/internal/usecase"
)

type stubPool struct {
	paid     decimal.Decimal
	recorded []decimal.Decimal
}

func (s *stubPool) PayoutTx(context.Context, uow.Repos, *domain.Loan) (decimal.Decimal, error) {
	return s.paid, nil
}

func (s *stubPool) RecordPayout(_ context.Context, payout decimal.Decimal) {
	s.recorded = append(s.recorded, payout)
}

// ledgerStub accepts every append.
type ledgerStub struct{ appended []ledger.Transaction }

func (l *ledgerStub) Append(_ context.Context, t *ledger.Transaction) error {
	l.appended = append(l.appended, *t)
	return nil
}

func (l *ledgerStub) CountByType(context.Context, ledger.TxType) (int64, error) {
	return int64(len(l.appended)), nil
}

func (l *ledgerStub) SumByUser(context.Context, string, ...ledger.TxType) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (l *ledgerStub) ListByLoan(context.Context, string) ([]ledger.Transaction, error) {
	return l.appended, nil
}

func mockedUsecase(loans *loanmock.Repo, users *usermock.Repo) *Usecase {
	repos := uow.Repos{Loans: loans, Users: users, Ledger: &ledgerStub{}}
	return NewUsecase(repos, uowmock.Forwarding(repos), &stubPool{paid: decimal.Zero}, testPolicy(), usecase.Recorder{})
}

func existingUser(_ context.Context, userID string) (*user.User, error) {
	return &user.User{UserID: userID, Balance: dec("5000")}, nil
}

func TestFund_LostCompareAndSetIsNotFundable(t *testing.T) {
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: loanID, BorrowerID: borrowerID, Amount: dec("1000"), Status: domain.StatusPending}, nil
		},
		TransitionFn: func(context.Context, *domain.Loan, domain.Status) error { return domain.ErrConflict },
	}
	uc := mockedUsecase(loans, &usermock.Repo{GetByUserIDFn: existingUser})

	_, err := uc.Fund(context.Background(), lenderID, "L1")
	require.ErrorIs(t, err, domain.ErrNotFundable)
}

func TestRepay_LostCompareAndSetIsNotRepayable(t *testing.T) {
	lender := lenderID
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: loanID, BorrowerID: borrowerID, LenderID: &lender, Amount: dec("1000"),
				InterestRate: dec("10"), Duration: 12, Status: domain.StatusFunded}, nil
		},
		TransitionFn: func(context.Context, *domain.Loan, domain.Status) error { return domain.ErrConflict },
	}
	uc := mockedUsecase(loans, &usermock.Repo{GetByUserIDFn: existingUser})

	_, err := uc.Repay(context.Background(), RepayInput{BorrowerID: borrowerID, LoanID: "L1"})
	require.ErrorIs(t, err, domain.ErrNotRepayable)
}

func TestFund_StorageFailureIsInternal(t *testing.T) {
	boom := errors.New("connection reset")
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: loanID, BorrowerID: borrowerID, Amount: dec("1000"), Status: domain.StatusPending}, nil
		},
	}
	users := &usermock.Repo{
		GetByUserIDFn: existingUser,
		DebitFn:       func(context.Context, string, decimal.Decimal) error { return boom },
	}
	uc := mockedUsecase(loans, users)

	_, err := uc.Fund(context.Background(), lenderID, "L1")
	require.ErrorIs(t, err, apperr.ErrInternal)
	require.ErrorIs(t, err, boom)
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestDefault_NoPlanWhenFullyCovered(t *testing.T) {
	lender := lenderID
	var planCreated bool
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: loanID, BorrowerID: borrowerID, LenderID: &lender, Amount: dec("1000"),
				InterestRate: dec("10"), Duration: 12, Status: domain.StatusFunded}, nil
		},
		CreateRepaymentPlanFn: func(context.Context, *domain.RepaymentPlan) error {
			planCreated = true
			return nil
		},
	}
	users := &usermock.Repo{GetByUserIDFn: existingUser}
	repos := uow.Repos{Loans: loans, Users: users, Ledger: &ledgerStub{}}
	pool := &stubPool{paid: dec("1000")}
	uc := NewUsecase(repos, uowmock.Forwarding(repos), pool, testPolicy(), usecase.Recorder{})

	res, err := uc.Default(context.Background(), borrowerID, "L1")
	require.NoError(t, err)
	require.True(t, res.PayoutAmount.Equal(dec("1000")))
	require.Nil(t, res.RepaymentPlan)
	require.False(t, planCreated)
	require.Len(t, pool.recorded, 1)
	require.True(t, pool.recorded[0].Equal(dec("1000")))
}

func TestDefault_FailedTransitionRecordsNoPayout(t *testing.T) {
	lender := lenderID
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: loanID, BorrowerID: borrowerID, LenderID: &lender, Amount: dec("1000"),
				InterestRate: dec("10"), Duration: 12, Status: domain.StatusFunded}, nil
		},
		TransitionFn: func(context.Context, *domain.Loan, domain.Status) error { return domain.ErrConflict },
	}
	repos := uow.Repos{Loans: loans, Users: &usermock.Repo{GetByUserIDFn: existingUser}, Ledger: &ledgerStub{}}
	pool := &stubPool{paid: dec("1000")}
	uc := NewUsecase(repos, uowmock.Forwarding(repos), pool, testPolicy(), usecase.Recorder{})

	_, err := uc.Default(context.Background(), borrowerID, "L1")
	require.ErrorIs(t, err, domain.ErrNotDefaultable)
	require.Empty(t, pool.recorded)
}

func TestRequest_LocksBorrowerRow(t *testing.T) {
	locked := false
	users := &usermock.Repo{
		GetByUserIDForUpdateFn: func(ctx context.Context, userID string) (*user.User, error) {
			locked = true
			return existingUser(ctx, userID)
		},
		GetByUserIDFn: func(context.Context, string) (*user.User, error) {
			t.Error("borrower read without a row lock")
			return nil, user.ErrNotFound
		},
	}
	loans := &loanmock.Repo{
		GetPendingLoanByBorrowerIDFn: func(context.Context, string) (*domain.Loan, error) {
			if !locked {
				t.Error("pending check ran before the borrower row was locked")
			}
			return nil, domain.ErrNotFound
		},
	}

	res, err := mockedUsecase(loans, users).Request(context.Background(), RequestLoanInput{BorrowerID: borrowerID, Amount: dec("1000"), Duration: 12})
	require.NoError(t, err)
	require.True(t, locked)
	require.NotEmpty(t, res.LoanID)
}

func TestRepay_ScoreOmittedWhenRecomputationFails(t *testing.T) {
	lender := lenderID
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: loanID, BorrowerID: borrowerID, LenderID: &lender, Amount: dec("1000"),
				InterestRate: dec("10"), Duration: 12, Status: domain.StatusFunded, RepaidAmount: decimal.Zero}, nil
		},
		ListByBorrowerFn: func(context.Context, string) ([]domain.Loan, error) {
			return nil, errors.New("replica unavailable")
		},
	}
	uc := mockedUsecase(loans, &usermock.Repo{GetByUserIDFn: existingUser})

	res, err := uc.Repay(context.Background(), RepayInput{BorrowerID: borrowerID, LoanID: "L1"})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusRepaid), res.Status)
	require.Nil(t, res.Score)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	require.NotContains(t, string(b), "new_score")
}
