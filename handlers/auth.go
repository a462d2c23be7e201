package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	mw "github.com/ZeMendes2393/sailscore/middleware"
	"github.com/ZeMendes2393/sailscore/models"
)

const tokenTTL = 30 * 24 * time.Hour

type credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type newUser struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin officer"`
}

// Signin validates credentials and returns a JWT token valid for 30 days.
func (h *Handler) Signin(c echo.Context) error {
	var creds credentials
	if err := bind(c, &creds); err != nil {
		return err
	}

	user, err := h.svc.Authenticate(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		return err
	}

	role := user.Role
	if h.isAdmin(user.Username) {
		role = models.RoleAdmin
	}
	token, err := mw.NewToken(user.Username, role, h.JWTKey, tokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token, "role": role})
}

// CreateUser registers an officer or admin. Admin only.
func (h *Handler) CreateUser(c echo.Context) error {
	var in newUser
	if err := bind(c, &in); err != nil {
		return err
	}
	if in.Role == "" {
		in.Role = models.RoleOfficer
	}

	user, err := h.svc.CreateUser(c.Request().Context(), strings.TrimSpace(in.Username), in.Password, in.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}
