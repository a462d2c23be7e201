package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
	"github.com/ZeMendes2393/sailscore/service"
)

// Scoring is the application surface the routes call into. *service.Service
// satisfies it.
type Scoring interface {
	SubmitResults(ctx context.Context, raceID int64, scope string, input []service.ResultInput) (*service.RaceResults, error)
	RaceResults(ctx context.Context, raceID int64) (*service.RaceResults, error)

	Standings(ctx context.Context, classID int64, publishedOnly bool) (*service.ClassStandings, error)
	StandingsWorkbook(ctx context.Context, classID int64, publishedOnly bool) ([]byte, error)

	CreateQualifying(ctx context.Context, classID int64, in service.QualifyingInput) (*models.FleetSet, error)
	Reshuffle(ctx context.Context, classID int64, in service.ReshuffleInput) (*models.FleetSet, error)
	Finals(ctx context.Context, classID int64, in service.FinalsInput) (*models.FleetSet, error)
	FleetSets(ctx context.Context, classID int64) ([]models.FleetSet, error)
	PublicFleetSets(ctx context.Context, classID int64) ([]service.PublicFleetSet, error)
	AttachRaces(ctx context.Context, setID int64, raceIDs []int64) (*models.FleetSet, error)
	PublishFleetSet(ctx context.Context, setID int64, title string) (*models.FleetSet, error)
	UnpublishFleetSet(ctx context.Context, setID int64) (*models.FleetSet, error)
	DeleteFleetSet(ctx context.Context, setID int64, force bool) error

	Publication(ctx context.Context, classID int64) (*service.Publication, error)
	SetPublication(ctx context.Context, classID int64, k int) (*service.Publication, error)
	DiscardRule(ctx context.Context, classID int64) (scoring.DiscardRule, error)
	SetDiscardRule(ctx context.Context, classID int64, rule scoring.DiscardRule) (scoring.DiscardRule, error)
	RegattaCodes(ctx context.Context, regattaID int64) (*service.CodeTable, error)
	ClassCodes(ctx context.Context, classID int64) (*service.CodeTable, error)
	SetRegattaCodes(ctx context.Context, regattaID int64, codes []service.CodeInput) (*service.CodeTable, error)
	SetClassCodes(ctx context.Context, classID int64, codes []service.CodeInput) (*service.CodeTable, error)

	SubmitProtest(ctx context.Context, regattaID int64, in service.ProtestInput) (*models.Protest, error)

	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	CreateUser(ctx context.Context, username, password, role string) (*models.User, error)
}

var _ Scoring = (*service.Service)(nil)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	svc     Scoring
	JWTKey  []byte
	isAdmin func(username string) bool
}

// New creates a Handler. isAdmin grants the admin role at sign-in to
// usernames listed in the configuration; it may be nil.
func New(svc Scoring, jwtKey []byte, isAdmin func(string) bool) *Handler {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Handler{svc: svc, JWTKey: jwtKey, isAdmin: isAdmin}
}

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(apperr.CodeInvalidRequest, "invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

// bind decodes the request body into v and runs the registered validator.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation(apperr.CodeInvalidRequest, "malformed request body")
	}
	return c.Validate(v)
}

func boolQuery(c echo.Context, name string, def bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation(apperr.CodeInvalidRequest, "invalid %s %q", name, raw)
	}
	return b, nil
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
