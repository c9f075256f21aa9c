// Package handler exposes planning and line-item endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
	"github.com/FACorreiaa/agroplan/internal/domain/planning/service"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type createPlanningRequest struct {
	ParcelID         uuid.UUID `json:"parcel_id"`
	CropTypeID       uuid.UUID `json:"crop_type_id"`
	StageID          uuid.UUID `json:"stage_id"`
	Name             string    `json:"name"`
	StartDate        string    `json:"start_date"`
	EstimatedEndDate *string   `json:"estimated_end_date"`
	Description      *string   `json:"description"`
	State            *string   `json:"state"`
}

type updatePlanningRequest struct {
	ParcelID         *uuid.UUID `json:"parcel_id"`
	CropTypeID       *uuid.UUID `json:"crop_type_id"`
	StageID          *uuid.UUID `json:"stage_id"`
	Name             *string    `json:"name"`
	StartDate        *string    `json:"start_date"`
	EstimatedEndDate *string    `json:"estimated_end_date"`
	Description      *string    `json:"description"`
	State            *string    `json:"state"`
}

type planningResponse struct {
	ID               string          `json:"id"`
	ParcelID         string          `json:"parcel_id"`
	CropTypeID       string          `json:"crop_type_id"`
	StageID          string          `json:"stage_id"`
	Name             string          `json:"name"`
	StartDate        string          `json:"start_date"`
	EstimatedEndDate *string         `json:"estimated_end_date,omitempty"`
	SeedCount        decimal.Decimal `json:"seed_count"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	Description      *string         `json:"description,omitempty"`
	State            string          `json:"state"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type createLineItemRequest struct {
	InputID      uuid.UUID       `json:"input_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	RecordedDate *string         `json:"recorded_date"`
	Notes        *string         `json:"notes"`
}

type updateLineItemRequest struct {
	InputID      *uuid.UUID       `json:"input_id"`
	Quantity     *decimal.Decimal `json:"quantity"`
	RecordedDate *string          `json:"recorded_date"`
	Notes        *string          `json:"notes"`
}

type lineItemResponse struct {
	ID           string          `json:"id"`
	PlanningID   string          `json:"planning_id"`
	InputID      string          `json:"input_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	RecordedDate string          `json:"recorded_date"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type recalculateResponse struct {
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

func toPlanningResponse(p *repository.Planning) planningResponse {
	return planningResponse{
		ID:               p.ID.String(),
		ParcelID:         p.ParcelID.String(),
		CropTypeID:       p.CropTypeID.String(),
		StageID:          p.StageID.String(),
		Name:             p.Name,
		StartDate:        httpx.FormatDate(p.StartDate),
		EstimatedEndDate: httpx.FormatDatePtr(p.EstimatedEndDate),
		SeedCount:        p.SeedCount,
		EstimatedCost:    p.EstimatedCost,
		Description:      p.Description,
		State:            string(p.State),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toLineItemResponse(item *repository.LineItem) lineItemResponse {
	return lineItemResponse{
		ID:           item.ID.String(),
		PlanningID:   item.PlanningID.String(),
		InputID:      item.InputID.String(),
		Quantity:     item.Quantity,
		Subtotal:     item.Subtotal,
		RecordedDate: httpx.FormatDate(item.RecordedDate),
		Notes:        item.Notes,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// Handler serves planning and line-item endpoints
type Handler struct {
	plannings *service.PlanningService
	lineItems *service.LineItemService
}

// NewHandler creates a new planning handler
func NewHandler(plannings *service.PlanningService, lineItems *service.LineItemService) *Handler {
	return &Handler{plannings: plannings, lineItems: lineItems}
}

// Create registers a new planning
func (h *Handler) Create(c echo.Context) error {
	var req createPlanningRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	startDate, err := httpx.ParseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
	}
	endDate, err := httpx.ParseDatePtr(req.EstimatedEndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid estimated_end_date")
	}

	p, err := h.plannings.Create(c.Request().Context(), auth.UserID(c), service.CreatePlanningInput{
		ParcelID:         req.ParcelID,
		CropTypeID:       req.CropTypeID,
		StageID:          req.StageID,
		Name:             req.Name,
		StartDate:        startDate,
		EstimatedEndDate: endDate,
		Description:      req.Description,
		State:            req.State,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toPlanningResponse(p))
}

// Get returns one planning
func (h *Handler) Get(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.plannings.Get(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toPlanningResponse(p))
}

// List returns the acting user's plannings
func (h *Handler) List(c echo.Context) error {
	plannings, err := h.plannings.List(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]planningResponse, 0, len(plannings))
	for _, p := range plannings {
		out = append(out, toPlanningResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Update edits a planning
func (h *Handler) Update(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req updatePlanningRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	startDate, err := httpx.ParseDatePtr(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
	}
	endDate, err := httpx.ParseDatePtr(req.EstimatedEndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid estimated_end_date")
	}

	p, err := h.plannings.Update(c.Request().Context(), auth.UserID(c), id, service.UpdatePlanningInput{
		ParcelID:         req.ParcelID,
		CropTypeID:       req.CropTypeID,
		StageID:          req.StageID,
		Name:             req.Name,
		StartDate:        startDate,
		EstimatedEndDate: endDate,
		Description:      req.Description,
		State:            req.State,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toPlanningResponse(p))
}

// Delete removes a planning and, through the schema, its dependents
func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.plannings.Delete(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateLineItem records an input consumption under a planning
func (h *Handler) CreateLineItem(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	var req createLineItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	recordedDate, err := httpx.ParseDatePtr(req.RecordedDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recorded_date")
	}

	item, err := h.lineItems.Create(c.Request().Context(), auth.UserID(c), service.CreateLineItemInput{
		PlanningID:   planningID,
		InputID:      req.InputID,
		Quantity:     req.Quantity,
		RecordedDate: recordedDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, toLineItemResponse(item))
}

// ListLineItems returns the line-items of a planning
func (h *Handler) ListLineItems(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.lineItems.ListByPlanning(c.Request().Context(), auth.UserID(c), planningID)
	if err != nil {
		return httpx.Error(c, err)
	}

	out := make([]lineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toLineItemResponse(item))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateLineItem edits a line-item
func (h *Handler) UpdateLineItem(c echo.Context) error {
	id, err := httpx.PathID(c, "item_id")
	if err != nil {
		return err
	}

	var req updateLineItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	recordedDate, err := httpx.ParseDatePtr(req.RecordedDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recorded_date")
	}

	item, err := h.lineItems.Update(c.Request().Context(), auth.UserID(c), id, service.UpdateLineItemInput{
		InputID:      req.InputID,
		Quantity:     req.Quantity,
		RecordedDate: recordedDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, toLineItemResponse(item))
}

// DeleteLineItem removes a line-item
func (h *Handler) DeleteLineItem(c echo.Context) error {
	id, err := httpx.PathID(c, "item_id")
	if err != nil {
		return err
	}

	if err := h.lineItems.Delete(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Recalculate forces a cost recompute for a planning
func (h *Handler) Recalculate(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	total, err := h.lineItems.Recalculate(c.Request().Context(), auth.UserID(c), planningID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, recalculateResponse{EstimatedCost: total})
}
