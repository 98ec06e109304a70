package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"metric-backend/internal/adapter/middleware"
	domain "metric-backend/internal/domain/user"
	"metric-backend/internal/usecase/trust"
)

type TrustHandler struct{ uc *trust.Usecase }

func NewTrustHandler(uc *trust.Usecase) *TrustHandler { return &TrustHandler{uc: uc} }

type vouchReq struct {
	VoucheeID string `json:"vouchee_id" validate:"required,hex32"`
}

type verificationReq struct {
	Kind string `json:"kind" validate:"required,oneof=identity social"`
}

func (h *TrustHandler) Vouch(c echo.Context) error {
	var req vouchReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.RecordVouch(c.Request().Context(), trust.VouchInput{
		VoucherID: middleware.UserID(c),
		VoucheeID: req.VoucheeID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *TrustHandler) SetVerification(c echo.Context) error {
	var req verificationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.SetVerification(c.Request().Context(), middleware.UserID(c), domain.VerificationKind(req.Kind))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
