package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"scholarshipserver/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth         *service.AuthService
	Applications *service.ApplicationService
	Programs     *service.ProgramService
	Admin        *service.AdminService
	Tokens       service.TokenIssuer

	Metrics *Metrics
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	a := &api{
		logger:         logger,
		isProd:         opts.IsProd,
		dbPing:         opts.DBPing,
		authSvc:        opts.Auth,
		applicationSvc: opts.Applications,
		programSvc:     opts.Programs,
		adminSvc:       opts.Admin,
		tokens:         opts.Tokens,
		// 10 credential attempts per key per 5 minutes.
		credLimiter: newKeyedLimiter(rate.Limit(10.0/300.0), 10),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /auth/register", a.handleAuthRegister)
	mux.HandleFunc("POST /auth/login", a.handleAuthLogin)
	mux.HandleFunc("GET /auth/me", a.requireAuth(a.handleAuthMe))
	mux.HandleFunc("POST /auth/forgot-password", a.handleAuthForgot)
	mux.HandleFunc("PUT /auth/reset-password/{resetToken}", a.handleAuthReset)

	mux.HandleFunc("POST /api/applications/apply/{programId}", a.requireAuth(a.handleApplicationsApply))
	mux.HandleFunc("GET /api/applications/my", a.requireAuth(a.handleApplicationsMy))
	mux.HandleFunc("GET /api/applications", a.requireAdmin(a.handleApplicationsList))
	mux.HandleFunc("PUT /api/applications/{id}", a.requireAdmin(a.handleApplicationsUpdateStatus))
	mux.HandleFunc("DELETE /api/applications/{id}", a.requireAdmin(a.handleApplicationsDelete))

	// Program listing stays public so applicants can browse before
	// signing in; mutations are admin only.
	mux.HandleFunc("GET /api/admin/programs", a.handleProgramsList)
	mux.HandleFunc("POST /api/admin/programs", a.requireAdmin(a.handleProgramsCreate))
	mux.HandleFunc("PUT /api/admin/programs/{id}", a.requireAdmin(a.handleProgramsUpdate))
	mux.HandleFunc("DELETE /api/admin/programs/{id}", a.requireAdmin(a.handleProgramsDelete))

	mux.HandleFunc("GET /api/admin/users", a.requireAdmin(a.handleAdminUsersList))
	mux.HandleFunc("DELETE /api/admin/users/{id}", a.requireAdmin(a.handleAdminUsersDelete))
	mux.HandleFunc("PUT /api/admin/users/{id}/role", a.requireAdmin(a.handleAdminUsersSetRole))
	mux.HandleFunc("GET /api/admin/dashboard/counts", a.requireAdmin(a.handleAdminDashboardCounts))
	mux.HandleFunc("GET /api/admin/users/count", a.requireAdmin(a.handleAdminUsersCount))
	mux.HandleFunc("GET /api/admin/applications/count", a.requireAdmin(a.handleAdminApplicationsCount))
	mux.HandleFunc("GET /api/admin/programs/count", a.requireAdmin(a.handleAdminProgramsCount))

	var h http.Handler = mux
	h = metrics.Middleware()(h)
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc        *service.AuthService
	applicationSvc *service.ApplicationService
	programSvc     *service.ProgramService
	adminSvc       *service.AdminService
	tokens         service.TokenIssuer

	credLimiter *keyedLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
