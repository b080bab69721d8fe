package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventos/internal/delivery/http/helpers"
	"eventos/internal/domain"
)

// DashboardSuccessResponse is the success response envelope for GET /dashboard (200).
type DashboardSuccessResponse struct {
	Data  *domain.Dashboard `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AnalyticsSuccessResponse is the success response envelope for GET /dashboard/analytics (200).
type AnalyticsSuccessResponse struct {
	Data  *domain.Analytics `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AnalyticsController serves the organizer dashboard.
type AnalyticsController struct {
	Logger  *slog.Logger
	Service domain.AnalyticsService
}

// NewAnalyticsController creates an AnalyticsController.
func NewAnalyticsController(logger *slog.Logger, svc domain.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Logger: logger, Service: svc}
}

// Dashboard godoc
// @Summary Dashboard summary
// @Description Total events, total RSVPs and the five most recently created events.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.DashboardSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /dashboard [get]
func (c *AnalyticsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	dashboard, err := c.Service.Dashboard(r.Context(), ownerID)
	if err != nil {
		writeInternalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, dashboard)
}

// Analytics godoc
// @Summary RSVP analytics
// @Description Status breakdown, daily RSVP growth over the last seven active days, and the five latest RSVPs.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.AnalyticsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /dashboard/analytics [get]
func (c *AnalyticsController) Analytics(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	analytics, err := c.Service.Analytics(r.Context(), ownerID)
	if err != nil {
		writeInternalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, analytics)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the data payload for GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthController reports liveness and database reachability.
type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
}

// NewHealthController creates a HealthController.
func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 503 {object} helpers.APIResponse "error.code: internal_error"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "database unreachable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
