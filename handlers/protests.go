package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZeMendes2393/sailscore/service"
)

// SubmitProtest lodges a protest and returns it with its regatta-wide number.
func (h *Handler) SubmitProtest(c echo.Context) error {
	regattaID, err := idParam(c, "regattaID")
	if err != nil {
		return err
	}
	var in service.ProtestInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.svc.SubmitProtest(c.Request().Context(), regattaID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}
