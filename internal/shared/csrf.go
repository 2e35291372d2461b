package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CSRFFormField is the hidden form field carrying the token.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token for requests without a form body.
	CSRFHeader = "X-CSRF-Token"

	csrfSessionKey = "csrf"
	csrfNonceSize  = 16
)

// CSRFManager issues per-session anti-forgery tokens. A token is a random
// nonce plus an HMAC tag binding the nonce to the session ID, so a token
// lifted from one session never verifies in another.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the session's token, minting one on first use.
func (m *CSRFManager) EnsureToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", ErrCSRFTokenMissing
	}
	if token := sess.Get(csrfSessionKey); token != "" {
		return token, nil
	}
	nonce := make([]byte, csrfNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(nonce) + "." + m.sign(sess.ID, nonce)
	sess.Set(csrfSessionKey, token)
	return token, nil
}

// VerifyToken checks a submitted token against the session copy and its
// session binding.
func (m *CSRFManager) VerifyToken(ctx context.Context, sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(csrfSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	encodedNonce, tag, ok := strings.Cut(token, ".")
	if !ok {
		return ErrCSRFTokenMismatch
	}
	nonce, err := base64.RawURLEncoding.DecodeString(encodedNonce)
	if err != nil {
		return ErrCSRFTokenMismatch
	}
	if !hmac.Equal([]byte(tag), []byte(m.sign(sess.ID, nonce))) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// TokenFromRequest extracts the submitted token, preferring the form field
// over the header.
func (m *CSRFManager) TokenFromRequest(r *http.Request) string {
	if token := r.PostFormValue(CSRFFormField); token != "" {
		return token
	}
	return r.Header.Get(CSRFHeader)
}

func (m *CSRFManager) sign(sessionID string, nonce []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(sessionID))
	_, _ = mac.Write([]byte{'.'})
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
