package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventos/config"
	_ "eventos/docs"
	"eventos/internal/adapters/auth"
	"eventos/internal/adapters/email"
	httpdelivery "eventos/internal/delivery/http"
	"eventos/internal/delivery/http/controllers"
	"eventos/internal/delivery/http/middleware"
	"eventos/internal/jobs"
	"eventos/internal/repository/postgres"
	"eventos/internal/resettoken"
	"eventos/internal/services"
	"eventos/internal/slug"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
	serviceTimeout  = 5 * time.Second
)

// @title           EventOS API
// @version         1.0
// @description     Event pages, RSVPs and organizer analytics.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	logger.Info("database connection established")

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	tokenRepo := postgres.NewPasswordResetTokenRepository(db)

	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	jwt := auth.NewJWT(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
			Endpoint:           cfg.Email.SESEndpoint,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), cfg.BaseURL, logger)

	tokens := resettoken.NewManager(tokenRepo)
	userService := services.NewUserService(userRepo, hasher, jwt, cfg.JWTExpiry, serviceTimeout)
	resetService := services.NewPasswordResetService(userRepo, tokens, emailService, hasher, logger, serviceTimeout)
	eventService := services.NewEventService(eventRepo, slug.NewResolver(eventRepo), serviceTimeout)
	rsvpService := services.NewRSVPService(rsvpRepo, eventRepo, serviceTimeout)
	analyticsService := services.NewAnalyticsService(eventRepo, rsvpRepo, serviceTimeout)

	limiterCfg := middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}
	resetLimiter := middleware.NewRateLimiter(limiterCfg)
	rsvpLimiter := middleware.NewRateLimiter(limiterCfg)

	handler := httpdelivery.NewHandler(httpdelivery.RouterConfig{
		Logger:             logger,
		Verifier:           jwt,
		ResetLimiter:       resetLimiter,
		RSVPLimiter:        rsvpLimiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, httpdelivery.Controllers{
		Auth:      controllers.NewAuthController(logger, userService, resetService),
		User:      controllers.NewUserController(logger, userService),
		Event:     controllers.NewEventController(logger, eventService, rsvpService),
		Public:    controllers.NewPublicController(logger, eventService, rsvpService),
		Analytics: controllers.NewAnalyticsController(logger, analyticsService),
		Health:    controllers.NewHealthController(logger, db),
	})

	scheduler := jobs.NewScheduler(logger, tokens, resetLimiter, rsvpLimiter)
	if err := scheduler.Register(cfg.TokenPurgeSchedule); err != nil {
		return err
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		<-scheduler.Stop().Done()
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		logger.Warn("scheduled jobs still running at shutdown")
	}
	logger.Info("server stopped")
	return nil
}
