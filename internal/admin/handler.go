package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carmine-visuals/carmine-web/internal/auth"
	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/store"
	"github.com/carmine-visuals/carmine-web/internal/view"
)

// Handler serves the superuser admin panel.
type Handler struct {
	logger      *slog.Logger
	service     *auth.Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *auth.Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrfManager: csrf}
}

// MountRoutes registers the admin routes. Every route is gated on the
// superuser flag from the session snapshot.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSuperuser)
		r.Get("/admin", h.showUsers)
		r.Post("/admin/toggle-role/{id}", h.handleToggleSuper)
	})
}

type usersPageData struct {
	Users []store.User
}

func (h *Handler) showUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		http.Error(w, shared.UserSafeMessage(err), http.StatusInternalServerError)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var user *shared.CurrentUser
	if sess != nil {
		flash = sess.PopFlash()
		user = sess.CurrentUser()
	}
	viewData := view.TemplateData{
		Title:       "Admin",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Data:        usersPageData{Users: users},
	}
	if err := h.templates.Render(w, "pages/admin_users.html", viewData); err != nil {
		h.logger.Error("render admin users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleToggleSuper(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	actor := shared.CurrentUserFromContext(r.Context())
	next, err := h.service.ToggleSuperuser(r.Context(), actor, targetID)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrForbidden):
			http.Error(w, shared.UserSafeMessage(err), http.StatusForbidden)
		case errors.Is(err, shared.ErrNotFound):
			http.NotFound(w, r)
		default:
			http.Error(w, shared.UserSafeMessage(err), http.StatusInternalServerError)
		}
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		message := "Superuser access revoked."
		if next {
			message = "Superuser access granted."
		}
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ShowUsersForTest exposes the listing handler for tests.
func (h *Handler) ShowUsersForTest(w http.ResponseWriter, r *http.Request) {
	h.showUsers(w, r)
}

// HandleToggleSuperForTest exposes the toggle handler for tests.
func (h *Handler) HandleToggleSuperForTest(w http.ResponseWriter, r *http.Request) {
	h.handleToggleSuper(w, r)
}
