package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// 密码哈希成本：账户量小，默认成本足够
const passwordHashCost = bcrypt.DefaultCost

// HashPassword hashes an account credential for storage. Used on signup,
// profile password changes, admin resets and the bootstrap admin seed.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a login attempt against the stored hash. A nil
// return means the credential matches.
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}
