package auth

import (
	"net/http"

	"github.com/carmine-visuals/carmine-web/internal/shared"
)

// RequireAuthenticated redirects anonymous visitors to the login page.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.CurrentUserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser rejects requests whose session snapshot lacks the
// superuser flag. The flag is read from the snapshot taken at login, not
// re-fetched from the store.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := shared.CurrentUserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !user.Superuser {
			http.Error(w, shared.UserSafeMessage(shared.ErrForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
