package patrol

import (
	"golang.org/x/crypto/bcrypt"
)

// hashPassword hashes a login password with bcrypt at the given cost.
func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// checkPassword reports whether password matches hash. Accounts without a hash never match.
func checkPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
