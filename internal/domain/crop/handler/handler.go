// Package handler exposes crop type and growth stage endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/crop"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type cropTypeRequest struct {
	Name                  string           `json:"name"`
	Description           *string          `json:"description"`
	SowingDensityPerHa    *decimal.Decimal `json:"sowing_density_per_ha"`
	EstimatedDurationDays *int             `json:"estimated_duration_days"`
	RowSpacing            *decimal.Decimal `json:"row_spacing"`
	PlantSpacing          *decimal.Decimal `json:"plant_spacing"`
}

type cropTypeResponse struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Description           *string          `json:"description,omitempty"`
	SowingDensityPerHa    *decimal.Decimal `json:"sowing_density_per_ha,omitempty"`
	EstimatedDurationDays *int             `json:"estimated_duration_days,omitempty"`
	RowSpacing            *decimal.Decimal `json:"row_spacing,omitempty"`
	PlantSpacing          *decimal.Decimal `json:"plant_spacing,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

type stageRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DurationDays *int    `json:"duration_days"`
}

type stageResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	DurationDays *int      `json:"duration_days,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toCropTypeResponse(ct *crop.CropType) cropTypeResponse {
	return cropTypeResponse{
		ID:                    ct.ID.String(),
		Name:                  ct.Name,
		Description:           ct.Description,
		SowingDensityPerHa:    ct.SowingDensityPerHa,
		EstimatedDurationDays: ct.EstimatedDurationDays,
		RowSpacing:            ct.RowSpacing,
		PlantSpacing:          ct.PlantSpacing,
		CreatedAt:             ct.CreatedAt,
		UpdatedAt:             ct.UpdatedAt,
	}
}

func toStageResponse(st *crop.Stage) stageResponse {
	return stageResponse{
		ID:           st.ID.String(),
		Name:         st.Name,
		Description:  st.Description,
		DurationDays: st.DurationDays,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}
}

// Handler serves crop type and stage endpoints
type Handler struct {
	crops *crop.Service
}

// NewHandler creates a new crop handler
func NewHandler(crops *crop.Service) *Handler {
	return &Handler{crops: crops}
}

func (r cropTypeRequest) toInput() crop.CropTypeInput {
	return crop.CropTypeInput{
		Name:                  r.Name,
		Description:           r.Description,
		SowingDensityPerHa:    r.SowingDensityPerHa,
		EstimatedDurationDays: r.EstimatedDurationDays,
		RowSpacing:            r.RowSpacing,
		PlantSpacing:          r.PlantSpacing,
	}
}

// CreateCropType registers a new crop type
func (h *Handler) CreateCropType(c echo.Context) error {
	var req cropTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ct, err := h.crops.CreateCropType(c.Request().Context(), auth.UserID(c), req.toInput())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toCropTypeResponse(ct))
}

// GetCropType returns one crop type
func (h *Handler) GetCropType(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	ct, err := h.crops.GetCropType(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toCropTypeResponse(ct))
}

// ListCropTypes returns the acting user's crop types
func (h *Handler) ListCropTypes(c echo.Context) error {
	cropTypes, err := h.crops.ListCropTypes(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]cropTypeResponse, 0, len(cropTypes))
	for _, ct := range cropTypes {
		out = append(out, toCropTypeResponse(ct))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateCropType edits a crop type
func (h *Handler) UpdateCropType(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req cropTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ct, err := h.crops.UpdateCropType(c.Request().Context(), auth.UserID(c), id, req.toInput())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toCropTypeResponse(ct))
}

// DeleteCropType removes a crop type
func (h *Handler) DeleteCropType(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.crops.DeleteCropType(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateStage registers a new growth stage
func (h *Handler) CreateStage(c echo.Context) error {
	var req stageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	st, err := h.crops.CreateStage(c.Request().Context(), auth.UserID(c), crop.StageInput{
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toStageResponse(st))
}

// GetStage returns one growth stage
func (h *Handler) GetStage(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	st, err := h.crops.GetStage(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toStageResponse(st))
}

// ListStages returns the acting user's growth stages
func (h *Handler) ListStages(c echo.Context) error {
	stages, err := h.crops.ListStages(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]stageResponse, 0, len(stages))
	for _, st := range stages {
		out = append(out, toStageResponse(st))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStage edits a growth stage
func (h *Handler) UpdateStage(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req stageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	st, err := h.crops.UpdateStage(c.Request().Context(), auth.UserID(c), id, crop.StageInput{
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toStageResponse(st))
}

// DeleteStage removes a growth stage
func (h *Handler) DeleteStage(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.crops.DeleteStage(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
