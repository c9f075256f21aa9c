// Package handler exposes parcel CRUD endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/parcel"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type createRequest struct {
	Name        string          `json:"name"`
	Location    *string         `json:"location"`
	Area        decimal.Decimal `json:"area"`
	AreaUnit    string          `json:"area_unit"`
	Description *string         `json:"description"`
}

type updateRequest struct {
	Name        *string          `json:"name"`
	Location    *string          `json:"location"`
	Area        *decimal.Decimal `json:"area"`
	AreaUnit    *string          `json:"area_unit"`
	Description *string          `json:"description"`
}

type parcelResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Location    *string         `json:"location,omitempty"`
	Area        decimal.Decimal `json:"area"`
	AreaUnit    string          `json:"area_unit"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toResponse(p *parcel.Parcel) parcelResponse {
	return parcelResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Location:    p.Location,
		Area:        p.Area,
		AreaUnit:    string(p.AreaUnit),
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Handler serves parcel endpoints
type Handler struct {
	parcels *parcel.Service
}

// NewHandler creates a new parcel handler
func NewHandler(parcels *parcel.Service) *Handler {
	return &Handler{parcels: parcels}
}

// Create registers a new parcel
func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.parcels.Create(c.Request().Context(), auth.UserID(c), parcel.CreateInput{
		Name:        req.Name,
		Location:    req.Location,
		Area:        req.Area,
		AreaUnit:    req.AreaUnit,
		Description: req.Description,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toResponse(p))
}

// Get returns one parcel
func (h *Handler) Get(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.parcels.Get(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(p))
}

// List returns the acting user's parcels
func (h *Handler) List(c echo.Context) error {
	parcels, err := h.parcels.List(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]parcelResponse, 0, len(parcels))
	for _, p := range parcels {
		out = append(out, toResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Update edits a parcel
func (h *Handler) Update(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.parcels.Update(c.Request().Context(), auth.UserID(c), id, parcel.UpdateInput{
		Name:        req.Name,
		Location:    req.Location,
		Area:        req.Area,
		AreaUnit:    req.AreaUnit,
		Description: req.Description,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(p))
}

// Delete removes a parcel
func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.parcels.Delete(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
