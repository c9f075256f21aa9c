// Package handler exposes cost report endpoints.
package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/report"
	"github.com/FACorreiaa/agroplan/pkg/httpx"
)

type rowResponse struct {
	InputName    string          `json:"input"`
	Kind         string          `json:"kind"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	RecordedDate string          `json:"recorded_date"`
}

type reportResponse struct {
	PlanningID    string          `json:"planning_id"`
	PlanningName  string          `json:"planning_name"`
	State         string          `json:"state"`
	SeedCount     decimal.Decimal `json:"seed_count"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Rows          []rowResponse   `json:"rows"`
}

// Handler serves cost report endpoints
type Handler struct {
	reports *report.Service
}

// NewHandler creates a new report handler
func NewHandler(reports *report.Service) *Handler {
	return &Handler{reports: reports}
}

// Get returns a planning's cost report as JSON
func (h *Handler) Get(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	r, err := h.reports.BuildCostReport(c.Request().Context(), planningID, auth.UserID(c))
	if err != nil {
		return httpx.Error(c, err)
	}

	resp := reportResponse{
		PlanningID:    r.PlanningID.String(),
		PlanningName:  r.PlanningName,
		State:         string(r.State),
		SeedCount:     r.SeedCount,
		EstimatedCost: r.EstimatedCost,
		Rows:          make([]rowResponse, 0, len(r.Rows)),
	}
	for _, row := range r.Rows {
		resp.Rows = append(resp.Rows, rowResponse(row))
	}
	return c.JSON(http.StatusOK, resp)
}

// ExportCSV streams a planning's cost report as a CSV download
func (h *Handler) ExportCSV(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "cost-report-"+planningID.String()+".csv"))

	if err := h.reports.ExportCSV(c.Request().Context(), c.Response(), planningID, auth.UserID(c)); err != nil {
		if !c.Response().Committed {
			return httpx.Error(c, err)
		}
		return err
	}
	return nil
}

// ExportXLSX streams a planning's cost report as an XLSX download
func (h *Handler) ExportXLSX(c echo.Context) error {
	planningID, err := httpx.PathID(c, "id")
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "cost-report-"+planningID.String()+".xlsx"))

	if err := h.reports.ExportXLSX(c.Request().Context(), c.Response(), planningID, auth.UserID(c)); err != nil {
		if !c.Response().Committed {
			return httpx.Error(c, err)
		}
		return err
	}
	return nil
}
