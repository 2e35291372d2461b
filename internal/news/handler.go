package news

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/store"
	"github.com/carmine-visuals/carmine-web/internal/view"
)

// Handler serves the public news pages.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrfManager: csrf}
}

// MountRoutes registers news routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/news", h.showList)
	r.Get("/news/{id}", h.showItem)
}

type listPageData struct {
	Posts []store.Post
}

type itemPageData struct {
	Post *store.Post
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, shared.UserSafeMessage(err), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/news.html", "News", listPageData{Posts: posts})
}

func (h *Handler) showItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, shared.UserSafeMessage(err), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/news_item.html", post.Title, itemPageData{Post: post})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var user *shared.CurrentUser
	if sess != nil {
		flash = sess.PopFlash()
		user = sess.CurrentUser()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render news page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ShowListForTest exposes the listing handler for tests.
func (h *Handler) ShowListForTest(w http.ResponseWriter, r *http.Request) {
	h.showList(w, r)
}
