package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
)

// mapServiceError converts a service-layer error into the HTTP error the
// request boundary answers with. Every service error carries one of the
// apperrors sentinels; anything else is treated as an internal failure.
func mapServiceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrMailDispatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperrors.ErrPersistence):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
