// Package handler exposes the input catalog endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type inputRequest struct {
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Supplier    *string         `json:"supplier"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description *string         `json:"description"`
}

type inputResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Supplier    *string         `json:"supplier,omitempty"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toResponse(in *input.Input) inputResponse {
	return inputResponse{
		ID:          in.ID.String(),
		Name:        in.Name,
		Kind:        string(in.Kind),
		Supplier:    in.Supplier,
		Unit:        in.Unit,
		UnitPrice:   in.UnitPrice,
		Description: in.Description,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
}

func toResponses(inputs []*input.Input) []inputResponse {
	out := make([]inputResponse, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, toResponse(in))
	}
	return out
}

// Handler serves input catalog endpoints
type Handler struct {
	inputs *input.Service
}

// NewHandler creates a new input handler
func NewHandler(inputs *input.Service) *Handler {
	return &Handler{inputs: inputs}
}

func (r inputRequest) toInput() input.CreateInput {
	return input.CreateInput{
		Name:        r.Name,
		Kind:        r.Kind,
		Supplier:    r.Supplier,
		Unit:        r.Unit,
		UnitPrice:   r.UnitPrice,
		Description: r.Description,
	}
}

// Create registers a new catalog input
func (h *Handler) Create(c echo.Context) error {
	var req inputRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in, err := h.inputs.Create(c.Request().Context(), auth.UserID(c), req.toInput())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toResponse(in))
}

// Get returns one catalog input
func (h *Handler) Get(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	in, err := h.inputs.Get(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(in))
}

// List returns the acting user's catalog, optionally fuzzy-filtered by the
// q query parameter
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	if q := c.QueryParam("q"); q != "" {
		inputs, err := h.inputs.Search(ctx, userID, q)
		if err != nil {
			return httpx.Error(c, err)
		}
		return c.JSON(http.StatusOK, toResponses(inputs))
	}

	inputs, err := h.inputs.List(ctx, userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponses(inputs))
}

// Units returns the suggested unit spellings
func (h *Handler) Units(c echo.Context) error {
	return c.JSON(http.StatusOK, input.SuggestedUnits)
}

// Update edits a catalog input
func (h *Handler) Update(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req inputRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in, err := h.inputs.Update(c.Request().Context(), auth.UserID(c), id, req.toInput())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(in))
}

// Delete removes a catalog input
func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.inputs.Delete(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
