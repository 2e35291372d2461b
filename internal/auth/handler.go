package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/view"
)

// Handler wires HTTP endpoints for the account lifecycle.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers the account routes on the provided router. The
// credential POSTs get a tighter rate limit than the global one to slow
// down guessing.
func (h *Handler) MountRoutes(r chi.Router) {
	credentialLimit := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint))
	r.Get("/register", h.showRegister)
	r.With(credentialLimit).Post("/register", h.handleRegister)
	r.Get("/login", h.showLogin)
	r.With(credentialLimit).Post("/login", h.handleLogin)
	r.Get("/activate", h.handleActivate)
	r.Get("/logout", h.handleLogout)
}

type registerForm struct {
	Username  string `validate:"required"`
	Password  string `validate:"required,min=6"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Phone     string
	AgeRaw    string
}

type registerPageData struct {
	Form  registerForm
	Error string
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Error  string
	Notice string
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, registerPageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := registerForm{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
		AgeRaw:    r.PostFormValue("age"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.renderRegister(w, r, http.StatusBadRequest, registerPageData{
			Form:  form,
			Error: "Please fill in all required fields with valid values.",
		})
		return
	}

	var age *int
	if form.AgeRaw != "" {
		parsed, err := strconv.Atoi(form.AgeRaw)
		if err != nil || parsed < 0 {
			h.renderRegister(w, r, http.StatusBadRequest, registerPageData{
				Form:  form,
				Error: "Age must be a number.",
			})
			return
		}
		age = &parsed
	}

	err := h.service.Register(r.Context(), RegisterInput{
		Username:  form.Username,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Phone:     form.Phone,
		Age:       age,
	})
	if err != nil {
		h.renderRegister(w, r, http.StatusBadRequest, registerPageData{
			Form:  form,
			Error: shared.UserSafeMessage(err),
		})
		return
	}

	// Registration never establishes a session; the account stays pending
	// until the activation link is visited.
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{
			Kind:    "success",
			Message: "Registration successful. Check your email for the activation link.",
		})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.service.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, loginPageData{
			Form:  loginForm{Username: form.Username},
			Error: shared.UserSafeMessage(err),
		})
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetCurrentUser(shared.CurrentUser{
		ID:        user.ID,
		Username:  user.Username,
		Superuser: user.Superuser,
	})
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + user.Username + "."})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "activation token missing", http.StatusBadRequest)
		return
	}

	if err := h.service.Activate(r.Context(), token); err != nil {
		if errors.Is(err, shared.ErrActivationToken) {
			h.renderActivationError(w, r, shared.UserSafeMessage(err))
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.renderLogin(w, r, http.StatusOK, loginPageData{
		Notice: "Account activated. You can log in now.",
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, data registerPageData) {
	h.renderPage(w, r, "pages/register.html", "Register", status, data)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	h.renderPage(w, r, "pages/login.html", "Log in", status, data)
}

func (h *Handler) renderActivationError(w http.ResponseWriter, r *http.Request, message string) {
	h.renderPage(w, r, "pages/activation_error.html", "Activation failed", http.StatusBadRequest, struct {
		Message string
	}{Message: message})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page, title string, status int, data any) {
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

// ShowRegisterForTest exposes the GET handler for tests.
func (h *Handler) ShowRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.showRegister(w, r)
}

// HandleRegisterForTest exposes the POST handler for tests.
func (h *Handler) HandleRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.handleRegister(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleActivateForTest exposes the activation handler for tests.
func (h *Handler) HandleActivateForTest(w http.ResponseWriter, r *http.Request) {
	h.handleActivate(w, r)
}
