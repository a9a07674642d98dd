package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pitchapp/pitch-api/internal/infrastructure/httpserver/helpers"
)

const defaultPageSize = 20

// listPitches returns a paginated pitch listing.
func (s *Server) listPitches(c echo.Context) error {
	limit := defaultPageSize
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
		}
		offset = n
	}

	pitches, total, err := s.pitchSvc.ListPitches(c.Request().Context(), limit, offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pitches": pitches,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// getPitch returns a single pitch by id.
func (s *Server) getPitch(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pitch id")
	}

	p, err := s.pitchSvc.GetPitch(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, p)
}

// listFavorites returns the logged-in account's favorite pitches.
func (s *Server) listFavorites(c echo.Context) error {
	accountID, err := helpers.GetAccountIDFromContext(c)
	if err != nil {
		return err
	}

	favorites, err := s.pitchSvc.ListFavorites(c.Request().Context(), accountID)
	if err != nil {
		return mapServiceError(err)
	}

	if len(favorites) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "There are no favorite pitches.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"favorites": favorites,
	})
}

// toggleFavorite flips the favorite mark for (account, pitch).
func (s *Server) toggleFavorite(c echo.Context) error {
	accountID, err := helpers.GetAccountIDFromContext(c)
	if err != nil {
		return err
	}

	pitchID, err := strconv.ParseInt(c.Param("pitch_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pitch id")
	}

	result, err := s.pitchSvc.ToggleFavorite(c.Request().Context(), accountID, pitchID)
	if err != nil {
		return mapServiceError(err)
	}

	verb := "unliked"
	if result.Liked {
		verb = "liked"
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"liked":   result.Liked,
		"message": fmt.Sprintf("You %s '%s' pitch.", verb, result.PitchTitle),
	})
}
