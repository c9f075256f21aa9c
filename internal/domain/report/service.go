// Package report builds per-planning cost reports and exports them as CSV or
// XLSX spreadsheets.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/agroplan/internal/common"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	planningrepo "github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
)

// Row is one line-item in a cost report
type Row struct {
	InputName    string          `csv:"input"`
	Kind         string          `csv:"kind"`
	Unit         string          `csv:"unit"`
	Quantity     decimal.Decimal `csv:"quantity"`
	UnitPrice    decimal.Decimal `csv:"unit_price"`
	Subtotal     decimal.Decimal `csv:"subtotal"`
	RecordedDate string          `csv:"recorded_date"`
}

// CostReport is the full cost breakdown of one planning
type CostReport struct {
	PlanningID    uuid.UUID
	PlanningName  string
	State         planningrepo.State
	SeedCount     decimal.Decimal
	EstimatedCost decimal.Decimal
	Rows          []Row
}

// Service builds and exports cost reports
type Service struct {
	plannings planningrepo.PlanningRepository
	lineItems planningrepo.LineItemRepository
	inputs    input.Repository
	logger    *slog.Logger
}

// NewService creates a new report service
func NewService(
	plannings planningrepo.PlanningRepository,
	lineItems planningrepo.LineItemRepository,
	inputs input.Repository,
	logger *slog.Logger,
) *Service {
	return &Service{plannings: plannings, lineItems: lineItems, inputs: inputs, logger: logger}
}

// BuildCostReport assembles the cost breakdown of a planning the caller owns
func (s *Service) BuildCostReport(ctx context.Context, planningID, userID uuid.UUID) (*CostReport, error) {
	p, err := s.plannings.GetByID(ctx, planningID)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(p, userID); err != nil {
		return nil, err
	}

	items, err := s.lineItems.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, err
	}

	report := &CostReport{
		PlanningID:    p.ID,
		PlanningName:  p.Name,
		State:         p.State,
		SeedCount:     p.SeedCount,
		EstimatedCost: p.EstimatedCost,
	}

	// Inputs repeat across line-items, so resolve each one once.
	resolved := make(map[uuid.UUID]*input.Input)
	for _, item := range items {
		in, ok := resolved[item.InputID]
		if !ok {
			in, err = s.inputs.GetByID(ctx, item.InputID)
			if err != nil {
				return nil, err
			}
			resolved[item.InputID] = in
		}

		report.Rows = append(report.Rows, Row{
			InputName:    in.Name,
			Kind:         string(in.Kind),
			Unit:         in.Unit,
			Quantity:     item.Quantity,
			UnitPrice:    in.UnitPrice,
			Subtotal:     item.Subtotal,
			RecordedDate: item.RecordedDate.Format("2006-01-02"),
		})
	}
	return report, nil
}

// ExportCSV writes a planning's cost report as CSV
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, planningID, userID uuid.UUID) error {
	report, err := s.BuildCostReport(ctx, planningID, userID)
	if err != nil {
		return err
	}

	if err := gocsv.Marshal(&report.Rows, w); err != nil {
		return fmt.Errorf("failed to write csv report: %w", err)
	}

	s.logger.Info("cost report exported",
		slog.String("planning_id", planningID.String()),
		slog.String("format", "csv"),
		slog.Int("rows", len(report.Rows)))
	return nil
}

const reportSheet = "Cost Report"

// ExportXLSX writes a planning's cost report as an XLSX workbook
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer, planningID, userID uuid.UUID) error {
	report, err := s.BuildCostReport(ctx, planningID, userID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("failed to set up workbook: %w", err)
	}

	header := []any{"Input", "Kind", "Unit", "Quantity", "Unit price", "Subtotal", "Recorded"}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		values := []any{
			row.InputName,
			row.Kind,
			row.Unit,
			row.Quantity.String(),
			row.UnitPrice.String(),
			row.Subtotal.String(),
			row.RecordedDate,
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	totalCell, err := excelize.CoordinatesToCellName(1, len(report.Rows)+3)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	total := []any{"Estimated cost", "", "", "", "", report.EstimatedCost.String(), ""}
	if err := f.SetSheetRow(reportSheet, totalCell, &total); err != nil {
		return fmt.Errorf("failed to write total row: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("cost report exported",
		slog.String("planning_id", planningID.String()),
		slog.String("format", "xlsx"),
		slog.Int("rows", len(report.Rows)))
	return nil
}
