package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// PasswordDigest returns the hex SHA-256 of a password.
//
// A single unsalted round of a fast hash is a known weakness, kept because
// the bootstrap contract (the fixed default admin credentials) depends on
// reproducible output. Do not reuse this scheme for anything
// security-relevant; a salted KDF belongs there instead.
func PasswordDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
