// Package auth provides password hashing and session token primitives.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a salted bcrypt hash of the given password.
// A cost of zero selects bcrypt.DefaultCost. Hashing is deliberately
// expensive; the cost is the brute-force resistance knob.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword checks the password against the stored hash.
// bcrypt's comparison is constant-time.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
