package access

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SecretMatcher compares a stored visibility secret with a candidate.
type SecretMatcher func(stored, candidate string) bool

// MatchSecret accepts a candidate equal to the stored secret. Secrets stored
// as bcrypt hashes are compared with bcrypt; everything else is compared
// byte for byte in constant time. Empty values never match.
func MatchSecret(stored, candidate string) bool {
	if stored == "" || candidate == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// HashSecret returns a bcrypt hash of secret for storage.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
