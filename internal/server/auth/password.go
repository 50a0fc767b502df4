package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a one-way bcrypt hash from a plaintext password.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordVerifier is the opaque credential-matching capability consumed by
// the auth service. Implementations report only match/no-match.
type PasswordVerifier interface {
	Matches(raw, storedHash string) bool
}

// BcryptVerifier checks plaintext passwords against bcrypt hashes.
type BcryptVerifier struct{}

func (BcryptVerifier) Matches(raw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(raw)) == nil
}
