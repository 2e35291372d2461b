package pages

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carmine-visuals/carmine-web/internal/auth"
	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/view"
)

// ContactNotifier forwards contact submissions to the site inbox. Delivery is
// best-effort: failure is logged and never fails the request.
type ContactNotifier interface {
	SendContact(ctx context.Context, name, email, service, message string) error
}

// Handler serves the static marketing pages, the contact form and the
// logged-in dashboard.
type Handler struct {
	logger      *slog.Logger
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	notifier    ContactNotifier
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance. The notifier may be nil; the
// operational log is always written regardless.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, notifier ContactNotifier) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		templates:   templates,
		csrfManager: csrf,
		notifier:    notifier,
		validator:   validator.New(),
	}
}

// MountRoutes registers the page routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showHome)
	r.Get("/services", h.showServices)
	r.Get("/gallery", h.showGallery)
	r.Get("/contact", h.showContact)
	r.Post("/contact", h.handleContact)
	r.With(auth.RequireAuthenticated).Get("/dashboard", h.showDashboard)
}

type contactForm struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Service string
	Message string `validate:"required"`
}

type contactPageData struct {
	Form    contactForm
	Errors  map[string]string
	Success bool
}

func (h *Handler) showHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/home.html", "Carmine Visuals", nil)
}

func (h *Handler) showServices(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/services.html", "Services", nil)
}

func (h *Handler) showGallery(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/gallery.html", "Gallery", nil)
}

func (h *Handler) showContact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/contact.html", "Contact", contactPageData{})
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := contactForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Service: r.PostFormValue("service"),
		Message: r.PostFormValue("message"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Name":
				errs["Name"] = "Name is required."
			case "Email":
				errs["Email"] = "A valid email address is required."
			case "Message":
				errs["Message"] = "Message is required."
			}
		}
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusBadRequest, "pages/contact.html", "Contact", contactPageData{Form: form, Errors: errs})
		return
	}

	// Submissions are not persisted; the operational log is the fallback inbox.
	h.logger.Info("contact form submission",
		slog.String("name", form.Name),
		slog.String("email", form.Email),
		slog.String("service", form.Service),
		slog.String("message", form.Message))

	if h.notifier != nil {
		if err := h.notifier.SendContact(r.Context(), form.Name, form.Email, form.Service, form.Message); err != nil {
			h.logger.Warn("contact notification dispatch failed", slog.Any("error", err))
		}
	}

	h.render(w, r, http.StatusOK, "pages/contact.html", "Contact", contactPageData{Success: true})
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/dashboard.html", "Dashboard", nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
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
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		if status == http.StatusOK {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// ShowHomeForTest exposes the home handler for tests.
func (h *Handler) ShowHomeForTest(w http.ResponseWriter, r *http.Request) {
	h.showHome(w, r)
}

// HandleContactForTest exposes the contact POST handler for tests.
func (h *Handler) HandleContactForTest(w http.ResponseWriter, r *http.Request) {
	h.handleContact(w, r)
}
