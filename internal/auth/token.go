package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carmine-visuals/carmine-web/internal/shared"
)

// ActivationClaims binds an activation token to one user id and email.
type ActivationClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
}

// TokenIssuer signs and verifies activation tokens. Tokens are bearer
// strings handed to the user out-of-band; nothing is persisted server-side,
// so rotating the secret invalidates every outstanding token.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer with the process-wide secret.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue creates a signed activation token for the given user.
func (t *TokenIssuer) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := ActivationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID,
		Email:  email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses tokenString and returns the bound user id and email.
// Malformed encoding, a bad signature and an elapsed expiry all collapse to
// shared.ErrActivationToken; callers have no reason to distinguish them.
func (t *TokenIssuer) Verify(tokenString string) (int64, string, error) {
	claims := &ActivationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, shared.ErrActivationToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", shared.ErrActivationToken
	}
	if claims.UserID == 0 {
		return 0, "", shared.ErrActivationToken
	}
	return claims.UserID, claims.Email, nil
}
