package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Standings returns the overall standings of a class. Officers see every
// race unless ?published=true.
func (h *Handler) Standings(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	published, err := boolQuery(c, "published", false)
	if err != nil {
		return err
	}
	out, err := h.svc.Standings(c.Request().Context(), classID, published)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// PublicStandings returns the standings over the published races only.
func (h *Handler) PublicStandings(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	out, err := h.svc.Standings(c.Request().Context(), classID, true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// StandingsWorkbook downloads the standings as an xlsx workbook.
func (h *Handler) StandingsWorkbook(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	published, err := boolQuery(c, "published", false)
	if err != nil {
		return err
	}
	body, err := h.svc.StandingsWorkbook(c.Request().Context(), classID, published)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="class-%d-standings.xlsx"`, classID))
	return c.Blob(http.StatusOK, xlsxContentType, body)
}
