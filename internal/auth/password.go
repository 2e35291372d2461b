package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// HashPassword derives a bcrypt digest from the plaintext. The plaintext is
// never retained beyond this call.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// bcrypt's comparison is constant-time with respect to the digest.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
