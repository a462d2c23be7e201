package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZeMendes2393/sailscore/service"
)

type attachRacesRequest struct {
	RaceIDs []int64 `json:"race_ids" validate:"required,min=1,dive,gt=0"`
}

type publishRequest struct {
	PublicTitle string `json:"public_title" validate:"max=120"`
}

// CreateQualifying splits the confirmed and paid entries of a class into
// randomly drawn fleets.
func (h *Handler) CreateQualifying(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	var in service.QualifyingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	set, err := h.svc.CreateQualifying(c.Request().Context(), classID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, set)
}

// Reshuffle seeds a new qualifying set from the current standings.
func (h *Handler) Reshuffle(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	var in service.ReshuffleInput
	if err := bind(c, &in); err != nil {
		return err
	}
	set, err := h.svc.Reshuffle(c.Request().Context(), classID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, set)
}

// Finals slices the standings into finals groups.
func (h *Handler) Finals(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	var in service.FinalsInput
	if err := bind(c, &in); err != nil {
		return err
	}
	set, err := h.svc.Finals(c.Request().Context(), classID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, set)
}

// FleetSets lists every fleet set of a class.
func (h *Handler) FleetSets(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	sets, err := h.svc.FleetSets(c.Request().Context(), classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sets)
}

// PublicFleetSets lists the published fleet sets of a class with rosters.
func (h *Handler) PublicFleetSets(c echo.Context) error {
	classID, err := idParam(c, "classID")
	if err != nil {
		return err
	}
	sets, err := h.svc.PublicFleetSets(c.Request().Context(), classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sets)
}

// AttachRaces links races to a fleet set.
func (h *Handler) AttachRaces(c echo.Context) error {
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	var req attachRacesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	set, err := h.svc.AttachRaces(c.Request().Context(), setID, req.RaceIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set)
}

// PublishFleetSet makes a fleet set public, optionally under a title.
func (h *Handler) PublishFleetSet(c echo.Context) error {
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	var req publishRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	set, err := h.svc.PublishFleetSet(c.Request().Context(), setID, req.PublicTitle)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set)
}

// UnpublishFleetSet hides a fleet set again.
func (h *Handler) UnpublishFleetSet(c echo.Context) error {
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	set, err := h.svc.UnpublishFleetSet(c.Request().Context(), setID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set)
}

// DeleteFleetSet removes a fleet set. Sets whose races hold scored results
// need ?force=true.
func (h *Handler) DeleteFleetSet(c echo.Context) error {
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	force, err := boolQuery(c, "force", false)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteFleetSet(c.Request().Context(), setID, force); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
