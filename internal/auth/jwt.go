package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the ONE error Verify ever returns.
//
// Bad signature, expired, truncated, wrong algorithm, missing subject —
// the caller cannot tell them apart, and that is intentional: a 401
// response must not tell an attacker which part of their forged token
// was wrong.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the decoded token payload. We only use registered claims:
// Subject carries the username, ExpiresAt the expiry, ID a random jti.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed access tokens.
//
// The signing secret and token lifetime are constructor state, passed in
// from config at startup — not package-level globals. That keeps the
// manager trivially testable: each test builds its own with whatever
// secret and ttl the scenario needs.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager builds a manager around the process-wide signing
// secret and the configured token lifetime (30 minutes by default).
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Expiry returns the configured token lifetime, so the login handler can
// report it to the client as expires_in without reaching into config.
func (m *TokenManager) Expiry() time.Duration {
	return m.expiry
}

// Issue creates a signed token for the given username.
//
// The claim set is deliberately tiny:
//
//	sub — the username (looked up again on every protected request)
//	exp — now + configured expiry
//	iat — now
//	jti — a random UUID, so two tokens for the same user are distinct
func (m *TokenManager) Issue(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string.
//
// On success it returns the claim set. On ANY failure it returns
// ErrInvalidToken — see the note on the error above. The signing-method
// check inside the key function blocks the classic "alg: none" / RS256
// confusion attacks: only HMAC-family tokens are accepted.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// A syntactically valid token without a subject is useless to us —
	// there is nobody to resolve. Treat it as any other bad token.
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
