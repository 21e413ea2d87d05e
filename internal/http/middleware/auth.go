// Package middleware provides the authentication and authorization
// layer that sits in front of the protected element endpoints.
//
// MIDDLEWARE PATTERN:
// ───────────────────
// A middleware is just a function that takes an http.Handler and returns
// another http.Handler that runs some logic before (or instead of)
// calling the wrapped one. Chaining two of them gives the request
// pipeline for the admin routes:
//
//	Authenticate → RequireAdmin → actual handler
//
// Every failure stops the chain immediately — the wrapped handler is
// never entered, so a forbidden mutation can never partially execute.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/EnderPico/TabelaPeriodica/internal/auth"
	"github.com/EnderPico/TabelaPeriodica/internal/storage"
	"github.com/EnderPico/TabelaPeriodica/internal/types"
	"github.com/EnderPico/TabelaPeriodica/internal/utils/response"
)

// contextKey is a private type for context values. Using an unexported
// named type (instead of a plain string) guarantees no other package can
// collide with — or read — our key by accident.
type contextKey string

const userContextKey contextKey = "user"

// The 401 message is deliberately identical for every authentication
// failure: missing header, wrong scheme, bad signature, expired token,
// or a subject whose account no longer exists. A uniform message leaks
// nothing about which check rejected the request.
var errCouldNotValidate = errors.New("Could not validate credentials")

// UserFromContext extracts the authenticated user placed in the request
// context by Authenticate. The boolean follows the comma-ok idiom: false
// means the request never went through the middleware.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(userContextKey).(types.User)
	return user, ok
}

// Auth bundles the two collaborators the gate needs: the token manager
// to check signatures/expiry, and the user store to confirm the token's
// subject still exists. Both are injected at construction time.
type Auth struct {
	tokens *auth.TokenManager
	users  storage.UserStorage
}

// New builds the middleware with its dependencies.
func New(tokens *auth.TokenManager, users storage.UserStorage) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// Authenticate resolves the caller's identity from the Authorization
// header and stores the full user record in the request context.
//
// The sequence is strict:
//
//  1. Header must be present and use the Bearer scheme      → else 401
//  2. Token must verify (signature valid, not expired)      → else 401
//  3. The sub claim must resolve to an EXISTING user record → else 401
//
// Step 3 means a token outlives a deleted account only until it is next
// presented to a protected route. Tokens themselves are never revoked —
// there is no server-side token state at all.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			// Missing header, "Basic ...", or a bare "Bearer" all land here.
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errCouldNotValidate))
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errCouldNotValidate))
			return
		}

		// Re-resolve the subject on every request. The token proves who
		// the caller WAS at login; the lookup proves the account is
		// still there (and picks up its current role).
		user, err := a.users.GetUserByUsername(claims.Subject)
		if err != nil {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errCouldNotValidate))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects any authenticated caller whose role is not admin.
//
// Unlike the 401 above, the 403 message names what is missing — by this
// point the caller has already proven who they are, so telling them the
// admin role is required reveals nothing sensitive.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			// Route was wired without Authenticate in front — treat as
			// unauthenticated rather than letting the request through.
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errCouldNotValidate))
			return
		}

		if user.Role != types.RoleAdmin {
			response.WriteJSON(w, http.StatusForbidden,
				response.GeneralError(
					errors.New("Not enough permissions. Admin role required.")))
			return
		}

		next.ServeHTTP(w, r)
	})
}
