// Package auth owns the two cryptographic concerns of the API:
// password hashing (this file) and JWT access tokens (jwt.go).
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt hash of the given password.
//
// bcrypt generates a fresh random salt on every call and embeds it in
// the output, so hashing the same password twice yields two different
// strings — and both verify. It is also deliberately SLOW (the cost
// factor is an exponent), which is exactly what you want for a login
// password: a few tens of milliseconds is unnoticeable at login time
// but ruinous for an offline brute-force attempt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
//
// Any failure — wrong password, truncated or garbage hash — comes back
// as plain false. Callers never learn WHY verification failed, which
// keeps login responses uniform.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
