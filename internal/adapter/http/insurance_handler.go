package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"metric-backend/internal/adapter/middleware"
	"metric-backend/internal/usecase/insurance"
)

type InsuranceHandler struct{ uc *insurance.Usecase }

func NewInsuranceHandler(uc *insurance.Usecase) *InsuranceHandler {
	return &InsuranceHandler{uc: uc}
}

type contributeReq struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
}

func (h *InsuranceHandler) Summary(c echo.Context) error {
	out, err := h.uc.Summary(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InsuranceHandler) Contribute(c echo.Context) error {
	var req contributeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.Contribute(c.Request().Context(), insurance.ContributeInput{
		UserID: middleware.UserID(c),
		Amount: req.Amount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
