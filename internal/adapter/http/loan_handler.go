package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"metric-backend/internal/adapter/middleware"
	"metric-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	Amount     decimal.Decimal  `json:"amount" validate:"gt=0,dec2"`
	Duration   int              `json:"duration" validate:"gt=0"`
	Collateral *decimal.Decimal `json:"collateral,omitempty" validate:"omitempty,gte=0,dec2"`
}

type repayReq struct {
	Amount *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gt=0,dec2"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	var req requestLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Request(c.Request().Context(), loan.RequestLoanInput{
		BorrowerID: middleware.UserID(c),
		Amount:     req.Amount,
		Duration:   req.Duration,
		Collateral: req.Collateral,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// RiskScore quotes a prospective loan from the query string, or returns the
// caller's current score when no amount is given.
func (h *LoanHandler) RiskScore(c echo.Context) error {
	userID := middleware.UserID(c)
	rawAmount := c.QueryParam("amount")
	if rawAmount == "" {
		score, err := h.uc.CurrentScore(c.Request().Context(), userID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]int{"score": score})
	}

	in := loan.QuoteInput{UserID: userID}
	var details []FieldError
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		details = append(details, FieldError{Field: "amount", Message: "must be a number"})
	}
	in.Amount = amount
	if raw := c.QueryParam("duration"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, FieldError{Field: "duration", Message: "must be an integer"})
		}
		in.Duration = n
	}
	if raw := c.QueryParam("collateral"); raw != "" {
		col, err := decimal.NewFromString(raw)
		if err != nil {
			details = append(details, FieldError{Field: "collateral", Message: "must be a number"})
		}
		in.Collateral = &col
	}
	if len(details) > 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query", Code: "BadRequest", Details: details})
	}

	q, err := h.uc.Quote(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListPending(c echo.Context) error {
	out, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListMine(c echo.Context) error {
	out, err := h.uc.ListMine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListFundedByMe(c echo.Context) error {
	out, err := h.uc.ListFundedByMe(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Fund(c echo.Context) error {
	dto, err := h.uc.Fund(c.Request().Context(), middleware.UserID(c), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Repay(c.Request().Context(), loan.RepayInput{
		BorrowerID: middleware.UserID(c),
		LoanID:     c.Param("loan_id"),
		Amount:     req.Amount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Default(c echo.Context) error {
	res, err := h.uc.Default(c.Request().Context(), middleware.UserID(c), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) RepaymentPlan(c echo.Context) error {
	plan, err := h.uc.GetRepaymentPlan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}
