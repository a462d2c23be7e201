package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/service"
	"github.com/ZeMendes2393/sailscore/store"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPrecondition:
		return http.StatusConflict
	case apperr.KindConfiguration:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders domain errors as {code, message, details} and
// defers everything else to echo's default handler.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he := toHTTPError(err); he != nil {
			err = he
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func toHTTPError(err error) *echo.HTTPError {
	if e, ok := apperr.As(err); ok {
		return echo.NewHTTPError(status(e.Kind), errorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		}).SetInternal(err)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errorBody{
			Code:    apperr.CodeNotFound,
			Message: "not found",
		}).SetInternal(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password").SetInternal(err)
	}
	return nil
}
