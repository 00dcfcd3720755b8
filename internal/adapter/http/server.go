package adapthttp

import (
	"net/http"

	"fitcore/internal/app"
	"fitcore/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups the application services the HTTP adapter drives.
type Services struct {
	Progress *app.ProgressService
	Goals    *app.GoalsService
	Ledger   *app.LedgerService
	Auth     *app.AuthService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	progress *app.ProgressService
	goals    *app.GoalsService
	ledger   *app.LedgerService
	authSvc  *app.AuthService

	metrics  *metrics.Manager
	gatherer prometheus.Gatherer

	oidcConfig  *OIDCConfig
	webDir      string
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(svc Services, m *metrics.Manager, webDir string) *Server {
	if m == nil {
		m = metrics.NewTestManager()
	}
	return &Server{
		progress:   svc.Progress,
		goals:      svc.Goals,
		ledger:     svc.Ledger,
		authSvc:    svc.Auth,
		metrics:    m,
		oidcConfig: &OIDCConfig{},
		webDir:     webDir,
	}
}

// WithoutAuth serves every request as the local user. Meant for tests and
// single-user deployments behind a trusted proxy.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// WithOIDC enables single sign-on.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	if cfg != nil {
		s.oidcConfig = cfg
	}
	return s
}

// WithGatherer exposes g on /metrics.
func (s *Server) WithGatherer(g prometheus.Gatherer) *Server {
	s.gatherer = g
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("POST /auth/login", s.handleLogin)
	api.HandleFunc("POST /auth/logout", s.handleLogout)
	api.HandleFunc("POST /auth/setup", s.handleSetupUser)
	api.HandleFunc("GET /auth/config", s.handleConfig)
	api.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)

	api.Handle("GET /profile", s.protect(s.handleGetProfile))
	api.Handle("PUT /profile", s.protect(s.handlePutProfile))
	api.Handle("GET /goals", s.protect(s.handleGoals))

	api.Handle("GET /programs", s.protect(s.handleListPrograms))
	api.Handle("POST /programs", s.protect(s.handleSaveProgram))
	api.Handle("GET /programs/{id}", s.protect(s.handleGetProgram))
	api.Handle("GET /programs/{id}/summary", s.protect(s.handleProgramSummary))
	api.Handle("POST /programs/{id}/workouts/{workoutID}/complete", s.protect(s.handleCompleteWorkout))
	api.Handle("POST /programs/{id}/exercises/{exerciseID}/complete", s.protect(s.handleCompleteExercise))
	api.Handle("PUT /programs/{id}/weeks/{number}/lock", s.protect(s.handleLockWeek))

	api.Handle("GET /nutrition/day", s.protect(s.handleNutritionDay))
	api.Handle("POST /nutrition/entries", s.protect(s.handleAddEntry))
	api.Handle("DELETE /nutrition/entries/{id}", s.protect(s.handleDeleteEntry))
	api.Handle("GET /nutrition/range", s.protect(s.handleNutritionRange))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.gatherer != nil {
		root.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	root.Handle("/", spaFromDisk(s.webDir))

	var h http.Handler = root
	h = s.loggingMiddleware(h)
	h = s.requestMetrics(h)
	h = s.panicRecovery(h)
	return withNoCache(h)
}

func (s *Server) protect(h http.HandlerFunc) http.Handler {
	return s.authMiddleware(h)
}
