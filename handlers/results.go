package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ZeMendes2393/sailscore/service"
)

type submitResultsRequest struct {
	Results []service.ResultInput `json:"results" validate:"dive"`
}

// SubmitResults replaces the results of a race. ?scope is "all" (default)
// or the id of one fleet of the race's fleet set.
func (h *Handler) SubmitResults(c echo.Context) error {
	raceID, err := idParam(c, "raceID")
	if err != nil {
		return err
	}
	scope := strings.TrimSpace(c.QueryParam("scope"))
	if scope == "" {
		scope = service.ScopeAll
	}

	var req submitResultsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.svc.SubmitResults(c.Request().Context(), raceID, scope, req.Results)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// RaceResults returns the stored results of a race.
func (h *Handler) RaceResults(c echo.Context) error {
	raceID, err := idParam(c, "raceID")
	if err != nil {
		return err
	}
	out, err := h.svc.RaceResults(c.Request().Context(), raceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
