package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"scholarshipserver/internal/auth"
	"scholarshipserver/internal/config"
	"scholarshipserver/internal/domain"
	"scholarshipserver/internal/email"
	"scholarshipserver/internal/httpapi"
	"scholarshipserver/internal/service"
	"scholarshipserver/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	if cfg.DBDSN == "" {
		logger.Error("APP_DB_DSN is required")
		os.Exit(1)
	}

	if err := postgres.Migrate(cfg.DBDSN); err != nil {
		logger.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
	if err != nil {
		logger.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	users := postgres.NewUsersStore(pgPool)
	programs := postgres.NewProgramsStore(pgPool)
	applications := postgres.NewApplicationsStore(pgPool)

	if err := bootstrapAdminUser(context.Background(), logger, users, cfg); err != nil {
		logger.Error("bootstrap admin failed", "err", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	mailer := &email.Mailer{
		Settings: email.Settings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			TLSMode:  cfg.SMTP.TLSMode,
		},
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
	}

	authSvc := &service.AuthService{
		Users:         users,
		Tokens:        tokens,
		Mail:          mailer,
		ResetTokenTTL: cfg.ResetTokenTTL,
		ResetURLBase:  cfg.ResetURLBase(),
	}
	applicationSvc := &service.ApplicationService{
		Applications: applications,
		Programs:     programs,
	}
	programSvc := &service.ProgramService{Programs: programs}
	adminSvc := &service.AdminService{
		Users:        users,
		Applications: applications,
		Programs:     programs,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:       logger,
		IsProd:       cfg.IsProd(),
		DBPing:       pgPool.Ping,
		Auth:         authSvc,
		Applications: applicationSvc,
		Programs:     programSvc,
		Admin:        adminSvc,
		Tokens:       tokens,
		Metrics:      httpapi.NewMetrics(reg),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

// bootstrapAdminUser seeds the first ADMIN from the environment. A
// fresh deployment has no elevation path otherwise, since registration
// always produces USER accounts.
func bootstrapAdminUser(ctx context.Context, logger *slog.Logger, users *postgres.UsersStore, cfg config.Config) error {
	if cfg.AdminBootstrapPassword == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	_, err := users.GetUserByEmail(ctx, cfg.AdminBootstrapEmail)
	if err == nil {
		logger.Info("admin bootstrap: user already exists", "email", cfg.AdminBootstrapEmail)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("admin bootstrap: lookup user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminBootstrapPassword)
	if err != nil {
		return fmt.Errorf("admin bootstrap: hash password: %w", err)
	}

	_, err = users.CreateUser(ctx, cfg.AdminBootstrapName, cfg.AdminBootstrapEmail, hash, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Info("admin bootstrap: user already exists", "email", cfg.AdminBootstrapEmail)
			return nil
		}
		return fmt.Errorf("admin bootstrap: create user: %w", err)
	}

	logger.Info("admin bootstrap: created admin user", "email", cfg.AdminBootstrapEmail)
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
