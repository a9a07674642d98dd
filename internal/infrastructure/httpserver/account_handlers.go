package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pitchapp/pitch-api/internal/core/domain/account"
	"github.com/pitchapp/pitch-api/internal/infrastructure/httpserver/helpers"
)

// requestPasswordReset issues a one-time password reset token and emails its
// redemption link. The account must match on both username and email and be
// active.
func (s *Server) requestPasswordReset(c echo.Context) error {
	var req account.RequestPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username field is required")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email field is required")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.accountSvc.RequestPasswordReset(c.Request().Context(), &req); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "A password reset link was sent to your email.",
	})
}

// changePassword redeems a password reset token.
func (s *Server) changePassword(c echo.Context) error {
	token := c.Param("token")

	var req account.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := s.accountSvc.RedeemPasswordReset(c.Request().Context(), token, &req); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Your password was successfully changed.",
	})
}

// requestInfoChange issues a one-time info change token for the logged-in
// account and emails its redemption link.
func (s *Server) requestInfoChange(c echo.Context) error {
	accountID, err := helpers.GetAccountIDFromContext(c)
	if err != nil {
		return err
	}

	if err := s.accountSvc.RequestInfoChange(c.Request().Context(), accountID); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "A confirmation link was sent to your email.",
	})
}

// changeInfo redeems an info change token and applies the partial update.
func (s *Server) changeInfo(c echo.Context) error {
	token := c.Param("token")

	var req account.ChangeInfoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	acct, err := s.accountSvc.RedeemInfoChange(c.Request().Context(), token, &req)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Your account details were successfully updated.",
		"user":    acct.Profile(),
	})
}
