package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/config"
	"github.com/worknest/worknest-engine/pkg/database"
	"github.com/worknest/worknest-engine/pkg/handlers"
	"github.com/worknest/worknest-engine/pkg/logging"
	"github.com/worknest/worknest-engine/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)))

	db, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	jwksClient, err := auth.NewJWKSClient(ctx, &auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWKS client: %w", err)
	}
	defer jwksClient.Close()

	if !cfg.Auth.EnableVerification {
		logger.Warn("JWT signature verification is disabled; do not run like this in production")
	}

	mux := newRouter(cfg, db, newApp(redisClient, logger), jwksClient, logger)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting worknest-engine",
			zap.String("addr", server.Addr),
			zap.Bool("tls", cfg.TLSCertPath != ""))

		var err error
		if cfg.TLSCertPath != "" {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newRouter wires handlers onto a ServeMux. Authenticated routes run
// RequireAuth, then the request-scoped connection, then user provisioning.
func newRouter(cfg *config.Config, db *database.DB, a *app, validator auth.TokenValidator, logger *zap.Logger) *http.ServeMux {
	auditor := audit.NewSecurityAuditor(logger)

	cookieSettings := auth.DeriveCookieSettings(cfg.BaseURL, cfg.Auth.CookieDomain)
	sessions := auth.NewSessionStore(cfg.Auth.SessionSecret, cookieSettings)

	authMiddleware := auth.NewMiddleware(auth.NewAuthService(validator, sessions, logger), logger)
	authMiddleware.OnFailure(func(r *http.Request, err error) {
		auditor.LogAuthFailure(audit.AuthFailureDetails{
			Path:   r.URL.Path,
			Reason: logging.SanitizeError(err),
		}, r.RemoteAddr)
	})

	usersHandler := handlers.NewUsersHandler(a.users, sessions, auditor, logger)
	withScope := database.WithRequestScope(db, logger)
	scope := func(next http.HandlerFunc) http.HandlerFunc {
		return withScope(usersHandler.Provision(next))
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	usersHandler.RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewProjectsHandler(a.projects, a.activities, auditor, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewTasksHandler(a.tasks, auditor, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewInvitationsHandler(a.invitations, auditor, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewNotificationsHandler(a.notifications, auditor, logger).RegisterRoutes(mux, authMiddleware, scope)

	return mux
}
