package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	"github.com/FACorreiaa/agroplan/internal/domain/crop"
	crophandler "github.com/FACorreiaa/agroplan/internal/domain/crop/handler"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	inputhandler "github.com/FACorreiaa/agroplan/internal/domain/input/handler"
	"github.com/FACorreiaa/agroplan/internal/domain/parcel"
	parcelhandler "github.com/FACorreiaa/agroplan/internal/domain/parcel/handler"
	planninghandler "github.com/FACorreiaa/agroplan/internal/domain/planning/handler"
	planningrepo "github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
	planningservice "github.com/FACorreiaa/agroplan/internal/domain/planning/service"
	"github.com/FACorreiaa/agroplan/internal/domain/report"
	reporthandler "github.com/FACorreiaa/agroplan/internal/domain/report/handler"
	"github.com/FACorreiaa/agroplan/internal/domain/tracking"
	trackinghandler "github.com/FACorreiaa/agroplan/internal/domain/tracking/handler"
	"github.com/FACorreiaa/agroplan/internal/domain/user"
	userhandler "github.com/FACorreiaa/agroplan/internal/domain/user/handler"
	"github.com/FACorreiaa/agroplan/internal/router"
	"github.com/FACorreiaa/agroplan/pkg/config"
	"github.com/FACorreiaa/agroplan/pkg/db"
	"github.com/FACorreiaa/agroplan/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	UserRepo     user.Repository
	ParcelRepo   parcel.Repository
	CropTypeRepo crop.CropTypeRepository
	StageRepo    crop.StageRepository
	InputRepo    input.Repository
	PlanningRepo planningrepo.PlanningRepository
	LineItemRepo planningrepo.LineItemRepository
	TrackingRepo tracking.Repository

	// Services
	TokenManager    *auth.TokenManager
	UserService     *user.Service
	ParcelService   *parcel.Service
	CropService     *crop.Service
	InputService    *input.Service
	PlanningService *planningservice.PlanningService
	LineItemService *planningservice.LineItemService
	TrackingService *tracking.Service
	ReportService   *report.Service

	// Handlers
	Handlers router.Handlers
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	deps.initRepositories()
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
	})
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.UserRepo = user.NewPostgresRepository(d.DB.Pool)
	d.ParcelRepo = parcel.NewPostgresRepository(d.DB.Pool)
	d.CropTypeRepo = crop.NewPostgresCropTypeRepository(d.DB.Pool)
	d.StageRepo = crop.NewPostgresStageRepository(d.DB.Pool)
	d.InputRepo = input.NewPostgresRepository(d.DB.Pool)
	d.PlanningRepo = planningrepo.NewPostgresPlanningRepository(d.DB.Pool)
	d.LineItemRepo = planningrepo.NewPostgresLineItemRepository(d.DB.Pool)
	d.TrackingRepo = tracking.NewPostgresRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	if d.Config.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	d.TokenManager = auth.NewTokenManager(d.Config.Auth.JWTSecret, d.Config.Auth.AccessTokenTTL)

	d.ParcelService = parcel.NewService(d.ParcelRepo, d.Logger)
	d.CropService = crop.NewService(d.CropTypeRepo, d.StageRepo, d.Logger)
	d.InputService = input.NewService(d.InputRepo, d.Logger)

	// New accounts are provisioned with the default stages and crop types.
	d.UserService = user.NewService(d.UserRepo, d.CropService, d.Logger)

	d.PlanningService = planningservice.NewPlanningService(
		d.PlanningRepo,
		d.LineItemRepo,
		d.ParcelRepo,
		d.CropTypeRepo,
		d.StageRepo,
		d.InputRepo,
		d.Logger,
	)
	d.LineItemService = planningservice.NewLineItemService(
		d.LineItemRepo,
		d.PlanningRepo,
		d.InputRepo,
		d.Metrics,
		d.Logger,
	)
	d.TrackingService = tracking.NewService(d.TrackingRepo, d.PlanningRepo, d.Logger)
	d.ReportService = report.NewService(d.PlanningRepo, d.LineItemRepo, d.InputRepo, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.Handlers = router.Handlers{
		Users:     userhandler.NewHandler(d.UserService, d.TokenManager),
		Parcels:   parcelhandler.NewHandler(d.ParcelService),
		Crops:     crophandler.NewHandler(d.CropService),
		Inputs:    inputhandler.NewHandler(d.InputService),
		Plannings: planninghandler.NewHandler(d.PlanningService, d.LineItemService),
		Tracking:  trackinghandler.NewHandler(d.TrackingService),
		Reports:   reporthandler.NewHandler(d.ReportService),
	}

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
