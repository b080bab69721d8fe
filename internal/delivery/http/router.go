package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventos/internal/delivery/http/controllers"
	"eventos/internal/delivery/http/middleware"
	"eventos/internal/domain"
)

// Controllers groups the route handlers.
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Event     *controllers.EventController
	Public    *controllers.PublicController
	Analytics *controllers.AnalyticsController
	Health    *controllers.HealthController
}

// RouterConfig holds what the router needs besides the controllers.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier
	// ResetLimiter guards forgot-password and reset-password, which share one budget.
	ResetLimiter *middleware.RateLimiter
	// RSVPLimiter guards public RSVP submission.
	RSVPLimiter *middleware.RateLimiter
	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	CORSAllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(cfg RouterConfig, c Controllers) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	limitReset := limitWith(cfg.ResetLimiter)
	limitRSVP := limitWith(cfg.RSVPLimiter)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/forgot-password", limitReset(c.Auth.ForgotPassword))
	mux.HandleFunc("POST /auth/reset-password", limitReset(c.Auth.ResetPassword))

	// Current user
	mux.HandleFunc("GET /users/me", auth(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(c.User.UpdateMe))
	mux.HandleFunc("POST /users/me/password", auth(c.User.ChangePassword))

	// Events (organizer)
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(c.Event.ListAttendees))

	// Public event page
	mux.HandleFunc("GET /public/events/{slug}", c.Public.GetEventBySlug)
	mux.HandleFunc("POST /public/events/{eventID}/rsvp", limitRSVP(c.Public.SubmitRSVP))

	// Dashboard
	mux.HandleFunc("GET /dashboard", auth(c.Analytics.Dashboard))
	mux.HandleFunc("GET /dashboard/analytics", auth(c.Analytics.Analytics))

	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func limitWith(l *middleware.RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return l.Limit
}

// NewHandler returns the router wrapped in the request middleware chain:
// panic recovery, request ID, access logging, then CORS.
func NewHandler(cfg RouterConfig, c Controllers) http.Handler {
	var h http.Handler = NewRouter(cfg, c)
	h = middleware.CORS(cfg.CORSAllowedOrigins, h)
	h = middleware.LoggingMiddleware(cfg.Logger, h)
	h = middleware.RequestID(h)
	h = middleware.Recover(cfg.Logger, h)
	return h
}
