// Package handler exposes sowing and stage-log endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/tracking"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type sowingRequest struct {
	ActualDate *string `json:"actual_date"`
	Notes      *string `json:"notes"`
}

type sowingResponse struct {
	ID         string    `json:"id"`
	PlanningID string    `json:"planning_id"`
	ActualDate string    `json:"actual_date"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type createStageLogRequest struct {
	StageID     uuid.UUID `json:"stage_id"`
	ActualStart *string   `json:"actual_start"`
	ActualEnd   *string   `json:"actual_end"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
}

type updateStageLogRequest struct {
	ActualStart *string `json:"actual_start"`
	ActualEnd   *string `json:"actual_end"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

type stageLogResponse struct {
	ID          string    `json:"id"`
	PlanningID  string    `json:"planning_id"`
	StageID     string    `json:"stage_id"`
	ActualStart *string   `json:"actual_start,omitempty"`
	ActualEnd   *string   `json:"actual_end,omitempty"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toSowingResponse(sw *tracking.Sowing) sowingResponse {
	return sowingResponse{
		ID:         sw.ID.String(),
		PlanningID: sw.PlanningID.String(),
		ActualDate: httpx.FormatDate(sw.ActualDate),
		Notes:      sw.Notes,
		CreatedAt:  sw.CreatedAt,
		UpdatedAt:  sw.UpdatedAt,
	}
}

func toStageLogResponse(l *tracking.StageLog) stageLogResponse {
	return stageLogResponse{
		ID:          l.ID.String(),
		PlanningID:  l.PlanningID.String(),
		StageID:     l.StageID.String(),
		ActualStart: httpx.FormatDatePtr(l.ActualStart),
		ActualEnd:   httpx.FormatDatePtr(l.ActualEnd),
		Status:      string(l.Status),
		Notes:       l.Notes,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// Handler serves sowing and stage-log endpoints
type Handler struct {
	tracking *tracking.Service
}

// NewHandler creates a new tracking handler
func NewHandler(svc *tracking.Service) *Handler {
	return &Handler{tracking: svc}
}

// CreateSowing records a sowing event under a planning
func (h *Handler) CreateSowing(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req sowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actualDate, err := httpx.ParseDatePtr(req.ActualDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actual_date")
	}

	in := tracking.CreateSowingInput{PlanningID: planningID, Notes: req.Notes}
	if actualDate != nil {
		in.ActualDate = *actualDate
	}

	sw, err := h.tracking.RecordSowing(c.Request().Context(), auth.UserID(c), in)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toSowingResponse(sw))
}

// ListSowings returns the sowings recorded under a planning
func (h *Handler) ListSowings(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	sowings, err := h.tracking.ListSowings(c.Request().Context(), planningID, auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]sowingResponse, 0, len(sowings))
	for _, sw := range sowings {
		out = append(out, toSowingResponse(sw))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateSowing edits a sowing record
func (h *Handler) UpdateSowing(c echo.Context) error {
	id, err := httpx.PathID(c, "sowing_id")
	if err != nil {
		return err
	}

	var req sowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actualDate, err := httpx.ParseDatePtr(req.ActualDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actual_date")
	}

	sw, err := h.tracking.UpdateSowing(c.Request().Context(), id, auth.UserID(c), actualDate, req.Notes)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toSowingResponse(sw))
}

// DeleteSowing removes a sowing record
func (h *Handler) DeleteSowing(c echo.Context) error {
	id, err := httpx.PathID(c, "sowing_id")
	if err != nil {
		return err
	}

	if err := h.tracking.DeleteSowing(c.Request().Context(), id, auth.UserID(c)); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateStageLog opens a stage log under a planning
func (h *Handler) CreateStageLog(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req createStageLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actualStart, err := httpx.ParseDatePtr(req.ActualStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actual_start")
	}
	actualEnd, err := httpx.ParseDatePtr(req.ActualEnd)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actual_end")
	}

	l, err := h.tracking.OpenStageLog(c.Request().Context(), auth.UserID(c), tracking.CreateStageLogInput{
		PlanningID:  planningID,
		StageID:     req.StageID,
		ActualStart: actualStart,
		ActualEnd:   actualEnd,
		Status:      req.Status,
		Notes:       req.Notes,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toStageLogResponse(l))
}

// ListStageLogs returns the stage logs under a planning
func (h *Handler) ListStageLogs(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	logs, err := h.tracking.ListStageLogs(c.Request().Context(), planningID, auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]stageLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toStageLogResponse(l))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStageLog edits a stage log
func (h *Handler) UpdateStageLog(c echo.Context) error {
	id, err := httpx.PathID(c, "log_id")
	if err != nil {
		return err
	}

	var req updateStageLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actualStart, err := httpx.ParseDatePtr(req.ActualStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actual_start")
	}
	actualEnd, err := httpx.ParseDatePtr(req.ActualEnd)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid actual_end")
	}

	l, err := h.tracking.UpdateStageLog(c.Request().Context(), id, auth.UserID(c), tracking.UpdateStageLogInput{
		ActualStart: actualStart,
		ActualEnd:   actualEnd,
		Status:      req.Status,
		Notes:       req.Notes,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toStageLogResponse(l))
}

// DeleteStageLog removes a stage log
func (h *Handler) DeleteStageLog(c echo.Context) error {
	id, err := httpx.PathID(c, "log_id")
	if err != nil {
		return err
	}

	if err := h.tracking.DeleteStageLog(c.Request().Context(), id, auth.UserID(c)); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
