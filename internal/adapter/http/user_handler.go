package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"metric-backend/internal/adapter/middleware"
	domain "metric-backend/internal/domain/user"
	"metric-backend/internal/usecase/user"
)

type UserHandler struct{ uc *user.Usecase }

func NewUserHandler(uc *user.Usecase) *UserHandler { return &UserHandler{uc: uc} }

type selectRoleReq struct {
	Role string `json:"role" validate:"required,oneof=borrower lender both"`
}

// SignIn answers 201 the first time a user id is seen and 200 afterwards.
func (h *UserHandler) SignIn(c echo.Context) error {
	var req user.SignInInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.UserID = middleware.UserID(c)
	p, created, err := h.uc.SignIn(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, p)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *UserHandler) Me(c echo.Context) error {
	p, err := h.uc.Profile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *UserHandler) SelectRole(c echo.Context) error {
	var req selectRoleReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.SelectRole(c.Request().Context(), middleware.UserID(c), domain.Role(req.Role))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *UserHandler) LinkAccount(c echo.Context) error {
	var req user.LinkAccountInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.UserID = middleware.UserID(c)
	p, err := h.uc.LinkAccount(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}
