package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZeMendes2393/sailscore/apperr"
	mw "github.com/ZeMendes2393/sailscore/middleware"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/service"
	"github.com/ZeMendes2393/sailscore/store"
)

var testKey = []byte("test-signing-key")

// fakeScoring implements Scoring; methods without a Func panic through the
// nil embedded interface.
type fakeScoring struct {
	Scoring

	SubmitResultsFunc   func(ctx context.Context, raceID int64, scope string, input []service.ResultInput) (*service.RaceResults, error)
	StandingsFunc       func(ctx context.Context, classID int64, publishedOnly bool) (*service.ClassStandings, error)
	DeleteFleetSetFunc  func(ctx context.Context, setID int64, force bool) error
	SetPublicationFunc  func(ctx context.Context, classID int64, k int) (*service.Publication, error)
	AuthenticateFunc    func(ctx context.Context, username, password string) (*models.User, error)
	CreateUserFunc      func(ctx context.Context, username, password, role string) (*models.User, error)
	PublishFleetSetFunc func(ctx context.Context, setID int64, title string) (*models.FleetSet, error)
}

func (f *fakeScoring) SubmitResults(ctx context.Context, raceID int64, scope string, input []service.ResultInput) (*service.RaceResults, error) {
	return f.SubmitResultsFunc(ctx, raceID, scope, input)
}

func (f *fakeScoring) Standings(ctx context.Context, classID int64, publishedOnly bool) (*service.ClassStandings, error) {
	return f.StandingsFunc(ctx, classID, publishedOnly)
}

func (f *fakeScoring) DeleteFleetSet(ctx context.Context, setID int64, force bool) error {
	return f.DeleteFleetSetFunc(ctx, setID, force)
}

func (f *fakeScoring) SetPublication(ctx context.Context, classID int64, k int) (*service.Publication, error) {
	return f.SetPublicationFunc(ctx, classID, k)
}

func (f *fakeScoring) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return f.AuthenticateFunc(ctx, username, password)
}

func (f *fakeScoring) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	return f.CreateUserFunc(ctx, username, password, role)
}

func (f *fakeScoring) PublishFleetSet(ctx context.Context, setID int64, title string) (*models.FleetSet, error) {
	return f.PublishFleetSetFunc(ctx, setID, title)
}

func newServer(svc Scoring) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(e)
	New(svc, testKey, func(u string) bool { return u == "root" }).Register(e)
	return e
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := mw.NewToken("officer", role, testKey, tokenTTL)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, e *echo.Echo, method, target, body, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSubmitResultsPassesScopeAndRows(t *testing.T) {
	var gotScope string
	var gotRows []service.ResultInput
	svc := &fakeScoring{
		SubmitResultsFunc: func(_ context.Context, raceID int64, scope string, input []service.ResultInput) (*service.RaceResults, error) {
			assert.Equal(t, int64(7), raceID)
			gotScope, gotRows = scope, input
			return &service.RaceResults{Race: &models.Race{ID: raceID}}, nil
		},
	}
	e := newServer(svc)
	body := `{"results":[{"sail_number":"101","country_code":"POR","position":1},{"sail_number":"102","code":"DNF"}]}`

	rec := do(t, e, http.MethodPut, "/api/races/7/results", body, token(t, models.RoleOfficer))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.ScopeAll, gotScope)
	require.Len(t, gotRows, 2)
	assert.Equal(t, "POR", gotRows[0].CountryCode)
	assert.Equal(t, "DNF", gotRows[1].Code)

	rec = do(t, e, http.MethodPut, "/api/races/7/results?scope=42", body, token(t, models.RoleOfficer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", gotScope)
}

func TestSubmitResultsRejectsNegativePosition(t *testing.T) {
	svc := &fakeScoring{
		SubmitResultsFunc: func(context.Context, int64, string, []service.ResultInput) (*service.RaceResults, error) {
			t.Fatal("service called with an invalid payload")
			return nil, nil
		},
	}
	e := newServer(svc)

	rec := do(t, e, http.MethodPut, "/api/races/7/results", `{"results":[{"sail_number":"1","position":-2}]}`, token(t, models.RoleOfficer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.CodeInvalidRequest, decode(t, rec)["code"])
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Validation(apperr.CodeDuplicateBoatInPayload, "dup"), http.StatusBadRequest, apperr.CodeDuplicateBoatInPayload},
		{"not found", apperr.NotFound("race", 7), http.StatusNotFound, apperr.CodeNotFound},
		{"store not found", store.ErrNotFound, http.StatusNotFound, apperr.CodeNotFound},
		{"precondition", apperr.Precondition(apperr.CodeUnscoredRacesRemain, "blocked").With("race_ids", []int64{7}), http.StatusConflict, apperr.CodeUnscoredRacesRemain},
		{"configuration", apperr.Configuration(apperr.CodeCodeNotConfigured, "RDG"), http.StatusUnprocessableEntity, apperr.CodeCodeNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeScoring{
				SubmitResultsFunc: func(context.Context, int64, string, []service.ResultInput) (*service.RaceResults, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newServer(svc), http.MethodPut, "/api/races/7/results", `{"results":[]}`, token(t, models.RoleOfficer))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestPreconditionDetailsInBody(t *testing.T) {
	svc := &fakeScoring{
		DeleteFleetSetFunc: func(_ context.Context, setID int64, force bool) error {
			if force {
				return nil
			}
			return apperr.Precondition(apperr.CodeFleetSetHasResults, "set has results").With("scored_results", 4)
		},
	}
	e := newServer(svc)

	rec := do(t, e, http.MethodDelete, "/api/fleet-sets/3", "", token(t, models.RoleOfficer))
	require.Equal(t, http.StatusConflict, rec.Code)
	details, ok := decode(t, rec)["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 4, details["scored_results"])

	rec = do(t, e, http.MethodDelete, "/api/fleet-sets/3?force=true", "", token(t, models.RoleOfficer))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPublicStandingsArePublishedOnly(t *testing.T) {
	var published bool
	svc := &fakeScoring{
		StandingsFunc: func(_ context.Context, classID int64, publishedOnly bool) (*service.ClassStandings, error) {
			published = publishedOnly
			return &service.ClassStandings{ClassID: classID}, nil
		},
	}
	e := newServer(svc)

	rec := do(t, e, http.MethodGet, "/api/public/classes/5/standings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, published)

	rec = do(t, e, http.MethodGet, "/api/classes/5/standings", "", token(t, models.RoleOfficer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, published)

	rec = do(t, e, http.MethodGet, "/api/classes/5/standings?published=yes", "", token(t, models.RoleOfficer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newServer(&fakeScoring{})

	rec := do(t, e, http.MethodGet, "/api/classes/5/standings", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/classes/5/standings", "", "garbage")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/classes/5/standings", "", token(t, "spectator"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSetPublicationRequiresCount(t *testing.T) {
	var got int
	svc := &fakeScoring{
		SetPublicationFunc: func(_ context.Context, classID int64, k int) (*service.Publication, error) {
			got = k
			return &service.Publication{ClassID: classID, PublishedRaces: k, TotalRaces: 6}, nil
		},
	}
	e := newServer(svc)

	rec := do(t, e, http.MethodPut, "/api/classes/5/publication", `{}`, token(t, models.RoleOfficer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPut, "/api/classes/5/publication", `{"published_races":0}`, token(t, models.RoleOfficer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, got)
}

func TestPublishFleetSetWithoutBody(t *testing.T) {
	title := "unset"
	svc := &fakeScoring{
		PublishFleetSetFunc: func(_ context.Context, setID int64, got string) (*models.FleetSet, error) {
			title = got
			return &models.FleetSet{ID: setID}, nil
		},
	}
	rec := do(t, newServer(svc), http.MethodPost, "/api/fleet-sets/9/publish", "", token(t, models.RoleOfficer))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "", title)
}

func TestSignin(t *testing.T) {
	svc := &fakeScoring{
		AuthenticateFunc: func(_ context.Context, username, password string) (*models.User, error) {
			if password != "pw" {
				return nil, service.ErrInvalidCredentials
			}
			return &models.User{Username: username, Role: models.RoleOfficer}, nil
		},
	}
	e := newServer(svc)

	rec := do(t, e, http.MethodPost, "/api/signin", `{"username":"root","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, models.RoleAdmin, body["role"])

	// the issued token opens protected routes
	svc.StandingsFunc = func(context.Context, int64, bool) (*service.ClassStandings, error) {
		return &service.ClassStandings{}, nil
	}
	rec = do(t, e, http.MethodGet, "/api/classes/1/standings", "", body["token"].(string))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/signin", `{"username":"root","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/signin", `{"username":"root"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserIsAdminOnly(t *testing.T) {
	svc := &fakeScoring{
		CreateUserFunc: func(_ context.Context, username, _, role string) (*models.User, error) {
			return &models.User{ID: 2, Username: username, Role: role}, nil
		},
	}
	e := newServer(svc)
	body := `{"username":"rc","password":"longenough"}`

	rec := do(t, e, http.MethodPost, "/api/users", body, token(t, models.RoleOfficer))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/users", body, token(t, models.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.RoleOfficer, decode(t, rec)["role"])
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(&fakeScoring{}), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
