package loan

import "metric-backend/internal/domain/apperr"

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "LoanNotFound", "loan not found")
	ErrNotFundable       = apperr.New(apperr.KindStateConflict, "LoanNotFundable", "loan not found or already funded")
	ErrNotRepayable      = apperr.New(apperr.KindStateConflict, "LoanNotRepayable", "loan not found or not in a repayable state")
	ErrNotDefaultable    = apperr.New(apperr.KindStateConflict, "LoanNotDefaultable", "loan not found or not in a state that can be defaulted")
	ErrPendingLoanExists = apperr.New(apperr.KindStateConflict, "PendingLoanExists", "borrower already has a pending loan")
	ErrPlanNotFound      = apperr.New(apperr.KindNotFound, "RepaymentPlanNotFound", "repayment plan not found")

	// ErrConflict is returned by conditional writes whose expected state no
	// longer holds. Use cases translate it into the operation's LoanNot* error.
	ErrConflict = apperr.New(apperr.KindStateConflict, "LoanConflict", "loan modified by another transaction")

	ErrInvalidAmount = apperr.New(apperr.KindValidation, "InvalidAmount", "repayment amount must be positive and not exceed the remaining due")
)
