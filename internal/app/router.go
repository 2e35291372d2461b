package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carmine-visuals/carmine-web/internal/admin"
	"github.com/carmine-visuals/carmine-web/internal/auth"
	"github.com/carmine-visuals/carmine-web/internal/news"
	"github.com/carmine-visuals/carmine-web/internal/observability"
	"github.com/carmine-visuals/carmine-web/internal/pages"
	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/view"
	"github.com/carmine-visuals/carmine-web/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	PagesHandler   *pages.Handler
	AuthHandler    *auth.Handler
	NewsHandler    *news.Handler
	AdminHandler   *admin.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router serving the whole site.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Group(func(r chi.Router) {
			r.Use(accountEventRecorder(params.Metrics))
			params.AuthHandler.MountRoutes(r)
		})
	} else {
		params.AuthHandler.MountRoutes(r)
	}
	params.PagesHandler.MountRoutes(r)
	params.NewsHandler.MountRoutes(r)
	params.AdminHandler.MountRoutes(r)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// accountEventRecorder counts successful lifecycle transitions by observing
// the response status of the account endpoints.
func accountEventRecorder(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/register" && ww.Status() == http.StatusSeeOther:
				metrics.AccountEvent("registered")
			case r.Method == http.MethodPost && r.URL.Path == "/login" && ww.Status() == http.StatusSeeOther:
				metrics.AccountEvent("login")
			case r.Method == http.MethodGet && r.URL.Path == "/activate" && ww.Status() == http.StatusOK:
				metrics.AccountEvent("activated")
			}
		})
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// browsers keep assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
