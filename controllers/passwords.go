package controllers

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

const legacyHashScheme = "scrypt"

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword checks bcrypt hashes and the older scrypt$salt$hash format.
// legacy is true when the stored hash should be replaced with bcrypt.
func verifyPassword(password, stored string) (ok bool, legacy bool) {
	if strings.HasPrefix(stored, legacyHashScheme+"$") {
		return verifyScrypt(password, stored), true
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
}

func verifyScrypt(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return false
	}

	expected, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}

	// N=16384, r=8, p=1 with the hex salt used as-is
	derived, err := scrypt.Key([]byte(password), []byte(parts[1]), 16384, 8, 1, len(expected))
	if err != nil || len(expected) != 64 {
		return false
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
