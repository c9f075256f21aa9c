// Package handler exposes account registration, login and profile endpoints.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/user"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Handler serves account endpoints
type Handler struct {
	users  *user.Service
	tokens *auth.TokenManager
}

// NewHandler creates a new account handler
func NewHandler(users *user.Service, tokens *auth.TokenManager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// Register creates an account and returns an access token
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.users.Register(c.Request().Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return httpx.Error(c, err)
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, loginResponse{Token: token, User: toResponse(u)})
}

// Login verifies credentials and returns an access token
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return httpx.Error(c, err)
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: toResponse(u)})
}

// Me returns the acting user's profile
func (h *Handler) Me(c echo.Context) error {
	u, err := h.users.Get(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(u))
}

// UpdateProfile edits the acting user's name and email
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.users.UpdateProfile(c.Request().Context(), auth.UserID(c), req.Name, req.Email)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(u))
}

// UpdatePassword changes the acting user's password after verifying the
// current one
func (h *Handler) UpdatePassword(c echo.Context) error {
	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	u, err := h.users.Get(ctx, auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	if _, err := h.users.Authenticate(ctx, u.Email, req.CurrentPassword); err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return httpx.Error(c, err)
	}

	if err := h.users.UpdatePassword(ctx, u.ID, req.NewPassword); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
