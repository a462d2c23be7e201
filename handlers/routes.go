package handlers

import (
	"github.com/labstack/echo/v4"

	mw "github.com/ZeMendes2393/sailscore/middleware"
	"github.com/ZeMendes2393/sailscore/models"
)

// Register mounts every API route on e. public wraps the unauthenticated
// read endpoints (rate limiting in production).
func (h *Handler) Register(e *echo.Echo, public ...echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)
	e.POST("/api/signin", h.Signin)

	pub := e.Group("/api/public", public...)
	pub.GET("/classes/:classID/standings", h.PublicStandings)
	pub.GET("/classes/:classID/fleet-sets", h.PublicFleetSets)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(h.JWTKey), mw.RequireRole(models.RoleOfficer, models.RoleAdmin))

	api.PUT("/races/:raceID/results", h.SubmitResults)
	api.GET("/races/:raceID/results", h.RaceResults)

	api.GET("/classes/:classID/standings", h.Standings)
	api.GET("/classes/:classID/standings.xlsx", h.StandingsWorkbook)

	api.POST("/classes/:classID/fleet-sets/qualifying", h.CreateQualifying)
	api.POST("/classes/:classID/fleet-sets/reshuffle", h.Reshuffle)
	api.POST("/classes/:classID/fleet-sets/finals", h.Finals)
	api.GET("/classes/:classID/fleet-sets", h.FleetSets)
	api.PUT("/fleet-sets/:setID/races", h.AttachRaces)
	api.POST("/fleet-sets/:setID/publish", h.PublishFleetSet)
	api.POST("/fleet-sets/:setID/unpublish", h.UnpublishFleetSet)
	api.DELETE("/fleet-sets/:setID", h.DeleteFleetSet)

	api.GET("/classes/:classID/publication", h.Publication)
	api.PUT("/classes/:classID/publication", h.SetPublication)
	api.GET("/classes/:classID/discards", h.DiscardRule)
	api.PUT("/classes/:classID/discards", h.SetDiscardRule)
	api.GET("/classes/:classID/scoring-codes", h.ClassCodes)
	api.PUT("/classes/:classID/scoring-codes", h.SetClassCodes)
	api.GET("/regattas/:regattaID/scoring-codes", h.RegattaCodes)
	api.PUT("/regattas/:regattaID/scoring-codes", h.SetRegattaCodes)

	api.POST("/regattas/:regattaID/protests", h.SubmitProtest)

	api.POST("/users", h.CreateUser, mw.RequireRole(models.RoleAdmin))
}
