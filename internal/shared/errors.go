package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates missing or malformed user input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateAccount indicates the username or email is already taken.
	ErrDuplicateAccount = errors.New("username or email already in use")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotActivated indicates a login attempt against a pending account.
	ErrAccountNotActivated = errors.New("account not activated")
	// ErrActivationToken indicates an invalid or expired activation token.
	ErrActivationToken = errors.New("activation link invalid or expired")
	// ErrForbidden indicates an authorization failure.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps domain errors to messages that may be rendered to the
// user. Anything outside the taxonomy collapses to a generic failure so raw
// store or crypto errors never reach a template.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "Missing required fields"
	case errors.Is(err, ErrDuplicateAccount):
		return "Username or email already in use"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrAccountNotActivated):
		return "Account not activated. Check your email for activation link."
	case errors.Is(err, ErrActivationToken):
		return "Activation link invalid or expired"
	case errors.Is(err, ErrForbidden):
		return "Forbidden: superuser only"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	default:
		return "Something went wrong. Please try again."
	}
}
