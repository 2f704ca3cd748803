package handler

import (
	"log/slog"
	"net/http"

	"github.com/wadjakorntonsri/go-devlinks/pkg/config"
	"github.com/wadjakorntonsri/go-devlinks/pkg/logging"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

// NewRouter creates and configures the main application router. A nil
// limiter gets one built from cfg.
func NewRouter(cfg *config.Config, logger *slog.Logger, profiles ports.ProfileService, editor ports.EditorService, limiter *RateLimiter) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = NewRateLimiter(cfg.PublicRateLimitRPS, cfg.PublicRateLimitBurst)
	}

	// Initialize Handlers
	eh := NewEditorHandler(editor, profiles, logger)
	ph := NewProfileHandler(profiles, logger)
	authHandler := NewAuthHandler(cfg, profiles, editor, logger)

	// Initialize Middleware
	mw := NewMiddleware(cfg, logger)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("GET /u/{id}", limiter.Middleware(http.HandlerFunc(ph.GetPublicProfile)))
	mux.HandleFunc("GET /api/platforms", ph.Platforms)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/profile", ph.GetProfile)
	protectedMux.HandleFunc("PUT /api/v1/profile", ph.UpdateProfile)
	protectedMux.HandleFunc("GET /api/v1/preview", eh.Preview)
	protectedMux.HandleFunc("GET /api/v1/links", eh.SavedLinks)
	protectedMux.HandleFunc("POST /api/v1/validate", eh.Validate)

	// Draft Routes
	protectedMux.HandleFunc("GET /api/v1/draft", eh.Draft)
	protectedMux.HandleFunc("POST /api/v1/draft/links", eh.AddLink)
	protectedMux.HandleFunc("PATCH /api/v1/draft/links/{position}", eh.EditLink)
	protectedMux.HandleFunc("DELETE /api/v1/draft/links/{position}", eh.RemoveLink)
	protectedMux.HandleFunc("POST /api/v1/draft/save", eh.Save)
	protectedMux.HandleFunc("POST /api/v1/draft/reload", eh.Reload)

	// protectedMux holds full paths, so the /api/v1/ prefix dispatches straight to it.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	var h http.Handler = mux
	h = Recover(logger)(h)
	h = logging.RequestLogger(logger)(h)
	h = RequestID(logger)(h)
	return h
}
