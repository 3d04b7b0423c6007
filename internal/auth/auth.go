// Package auth contains handlers, services and models used to manage authentication
// and authorization.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the given plain password with bcrypt.
func HashPassword(pass string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordMatches reports whether the given plain password matches the hash.
func PasswordMatches(hashedPass, plainPass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPass), []byte(plainPass)) == nil
}
