package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZeMendes2393/sailscore/scoring"
	"github.com/ZeMendes2393/sailscore/service"
)

type publicationRequest struct {
	PublishedRaces *int `json:"published_races" validate:"required"`
}

type codesRequest struct {
	Codes []service.CodeInput `json:"codes" validate:"dive"`
}

// Publication returns how many races of a class are public.
func (h *Handler) Publication(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	out, err := h.svc.Publication(c.Request().Context(), classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// SetPublication sets the published race count of a class.
func (h *Handler) SetPublication(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	var req publicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.SetPublication(c.Request().Context(), classID, *req.PublishedRaces)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// DiscardRule returns the discard configuration of a class.
func (h *Handler) DiscardRule(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	rule, err := h.svc.DiscardRule(c.Request().Context(), classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rule)
}

// SetDiscardRule replaces the discard configuration of a class.
func (h *Handler) SetDiscardRule(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	var rule scoring.DiscardRule
	if err := bind(c, &rule); err != nil {
		return err
	}
	out, err := h.svc.SetDiscardRule(c.Request().Context(), classID, rule)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ClassCodes(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	out, err := h.svc.ClassCodes(c.Request().Context(), classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SetClassCodes(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	var req codesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.SetClassCodes(c.Request().Context(), classID, req.Codes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RegattaCodes(c echo.Context) error {
	regattaID, err := idParam(c, "regattaID")
	if err != nil {
		return err
	}
	out, err := h.svc.RegattaCodes(c.Request().Context(), regattaID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SetRegattaCodes(c echo.Context) error {
	regattaID, err := idParam(c, "regattaID")
	if err != nil {
		return err
	}
	var req codesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.SetRegattaCodes(c.Request().Context(), regattaID, req.Codes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
