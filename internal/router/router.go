// Package router assembles the echo server: middleware, public endpoints and
// the authenticated API surface.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/FACorreiaa/agroplan/internal/domain/auth"
	crophandler "github.com/FACorreiaa/agroplan/internal/domain/crop/handler"
	inputhandler "github.com/FACorreiaa/agroplan/internal/domain/input/handler"
	parcelhandler "github.com/FACorreiaa/agroplan/internal/domain/parcel/handler"
	planninghandler "github.com/FACorreiaa/agroplan/internal/domain/planning/handler"
	reporthandler "github.com/FACorreiaa/agroplan/internal/domain/report/handler"
	trackinghandler "github.com/FACorreiaa/agroplan/internal/domain/tracking/handler"
	userhandler "github.com/FACorreiaa/agroplan/internal/domain/user/handler"
	"github.com/FACorreiaa/agroplan/pkg/config"
	"github.com/FACorreiaa/agroplan/pkg/metrics"
)

// Handlers groups the domain handlers wired into the router
type Handlers struct {
	Users     *userhandler.Handler
	Parcels   *parcelhandler.Handler
	Crops     *crophandler.Handler
	Inputs    *inputhandler.Handler
	Plannings *planninghandler.Handler
	Tracking  *trackinghandler.Handler
	Reports   *reporthandler.Handler
}

// New builds the echo server with all routes registered
func New(cfg *config.Config, m *metrics.Metrics, tokens *auth.TokenManager, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	if cfg.Server.RateLimitPerSecond > 0 {
		e.Use(RateLimit(float64(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst))
	}
	if cfg.Observability.MetricsEnabled {
		e.Use(m.Middleware())
		e.GET(cfg.Observability.MetricsPath, m.Handler())
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/register", h.Users.Register)
	e.POST("/auth/login", h.Users.Login)

	api := e.Group("/api/v1", auth.Middleware(tokens))

	api.GET("/me", h.Users.Me)
	api.PUT("/me", h.Users.UpdateProfile)
	api.PUT("/me/password", h.Users.UpdatePassword)

	api.POST("/parcels", h.Parcels.Create)
	api.GET("/parcels", h.Parcels.List)
	api.GET("/parcels/:id", h.Parcels.Get)
	api.PUT("/parcels/:id", h.Parcels.Update)
	api.DELETE("/parcels/:id", h.Parcels.Delete)

	api.POST("/crop-types", h.Crops.CreateCropType)
	api.GET("/crop-types", h.Crops.ListCropTypes)
	api.GET("/crop-types/:id", h.Crops.GetCropType)
	api.PUT("/crop-types/:id", h.Crops.UpdateCropType)
	api.DELETE("/crop-types/:id", h.Crops.DeleteCropType)

	api.POST("/stages", h.Crops.CreateStage)
	api.GET("/stages", h.Crops.ListStages)
	api.GET("/stages/:id", h.Crops.GetStage)
	api.PUT("/stages/:id", h.Crops.UpdateStage)
	api.DELETE("/stages/:id", h.Crops.DeleteStage)

	api.POST("/inputs", h.Inputs.Create)
	api.GET("/inputs", h.Inputs.List)
	api.GET("/inputs/units", h.Inputs.Units)
	api.GET("/inputs/:id", h.Inputs.Get)
	api.PUT("/inputs/:id", h.Inputs.Update)
	api.DELETE("/inputs/:id", h.Inputs.Delete)

	api.POST("/plannings", h.Plannings.Create)
	api.GET("/plannings", h.Plannings.List)
	api.GET("/plannings/:id", h.Plannings.Get)
	api.PUT("/plannings/:id", h.Plannings.Update)
	api.DELETE("/plannings/:id", h.Plannings.Delete)
	api.POST("/plannings/:id/recalculate", h.Plannings.Recalculate)

	api.POST("/plannings/:id/line-items", h.Plannings.CreateLineItem)
	api.GET("/plannings/:id/line-items", h.Plannings.ListLineItems)
	api.PUT("/line-items/:item_id", h.Plannings.UpdateLineItem)
	api.DELETE("/line-items/:item_id", h.Plannings.DeleteLineItem)

	api.POST("/plannings/:id/sowings", h.Tracking.CreateSowing)
	api.GET("/plannings/:id/sowings", h.Tracking.ListSowings)
	api.PUT("/sowings/:sowing_id", h.Tracking.UpdateSowing)
	api.DELETE("/sowings/:sowing_id", h.Tracking.DeleteSowing)

	api.POST("/plannings/:id/stage-logs", h.Tracking.CreateStageLog)
	api.GET("/plannings/:id/stage-logs", h.Tracking.ListStageLogs)
	api.PUT("/stage-logs/:log_id", h.Tracking.UpdateStageLog)
	api.DELETE("/stage-logs/:log_id", h.Tracking.DeleteStageLog)

	api.GET("/plannings/:id/report", h.Reports.Get)
	api.GET("/plannings/:id/report.csv", h.Reports.ExportCSV)
	api.GET("/plannings/:id/report.xlsx", h.Reports.ExportXLSX)

	return e
}
