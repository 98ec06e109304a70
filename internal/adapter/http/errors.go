package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"metric-backend/internal/domain/apperr"
)

func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStateConflict, apperr.KindInsufficientFunds, apperr.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a use case error. Internal causes never reach the client.
func writeError(c echo.Context, err error) error {
	status := statusOf(err)
	resp := ErrorResponse{Error: err.Error(), Code: apperr.Code(err)}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		resp.Error = "validation failed"
		resp.Details = []FieldError{{Field: ve.Field, Message: ve.Message}}
	}
	if status == http.StatusInternalServerError {
		resp.Error = apperr.ErrInternal.Msg
		resp.Code = apperr.ErrInternal.Code
	}
	return c.JSON(status, resp)
}

// bindAndValidate decodes the body into dst: malformed input is 400,
// rule violations are 422.
func bindAndValidate(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: "BadRequest"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    "ValidationError",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
