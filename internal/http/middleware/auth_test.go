package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EnderPico/TabelaPeriodica/internal/auth"
	"github.com/EnderPico/TabelaPeriodica/internal/storage"
	"github.com/EnderPico/TabelaPeriodica/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore satisfies storage.UserStorage with an in-memory map —
// exactly the kind of swap the storage interfaces exist for.
type fakeUserStore struct {
	users map[string]types.User
}

func (f *fakeUserStore) GetUserByUsername(username string) (types.User, error) {
	u, ok := f.users[username]
	if !ok {
		return types.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) CreateUser(username, passwordHash string, role types.Role) (types.User, error) {
	if _, ok := f.users[username]; ok {
		return types.User{}, storage.ErrDuplicateUsername
	}
	u := types.User{ID: int64(len(f.users) + 1), Username: username, PasswordHash: passwordHash, Role: role}
	f.users[username] = u
	return u, nil
}

func newTestGate(t *testing.T) (*Auth, *auth.TokenManager, *fakeUserStore) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute)
	users := &fakeUserStore{users: map[string]types.User{
		"admin":   {ID: 1, Username: "admin", Role: types.RoleAdmin},
		"student": {ID: 2, Username: "student", Role: types.RoleStudent},
	}}
	return New(tokens, users), tokens, users
}

// protected builds the full chain the admin routes use, ending in a
// handler that records the resolved user.
func protected(gate *Auth, got *types.User) http.Handler {
	return gate.Authenticate(gate.RequireAdmin(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := UserFromContext(r.Context()); ok {
				*got = u
			}
			w.WriteHeader(http.StatusOK)
		})))
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	gate, tokens, _ := newTestGate(t)
	expired := auth.NewTokenManager("test-secret", -time.Second)

	adminToken, err := tokens.Issue("admin")
	require.NoError(t, err)
	deadToken, err := expired.Issue("admin")
	require.NoError(t, err)
	ghostToken, err := tokens.Issue("ghost") // no such user record
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("other-secret", time.Hour).Issue("admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bare bearer", "Bearer"},
		{"garbage token", "Bearer invalid.token.here"},
		{"expired token", "Bearer " + deadToken},
		{"wrong signing key", "Bearer " + forged},
		{"deleted user", "Bearer " + ghostToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got types.User
			req := httptest.NewRequest(http.MethodPost, "/elements", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			protected(gate, &got).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			// Uniform message regardless of which check failed.
			assert.Contains(t, rec.Body.String(), "Could not validate credentials")
			assert.Empty(t, got.Username, "wrapped handler must not run")
		})
	}

	// Sanity: the admin token itself is fine.
	var got types.User
	req := httptest.NewRequest(http.MethodPost, "/elements", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	protected(gate, &got).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_StudentForbidden(t *testing.T) {
	t.Parallel()

	gate, tokens, _ := newTestGate(t)
	studentToken, err := tokens.Issue("student")
	require.NoError(t, err)

	var got types.User
	req := httptest.NewRequest(http.MethodPost, "/elements", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()

	protected(gate, &got).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin role required")
	assert.Empty(t, got.Username)
}

func TestAuthenticate_ResolvesCurrentUser(t *testing.T) {
	t.Parallel()

	gate, tokens, _ := newTestGate(t)
	adminToken, err := tokens.Issue("admin")
	require.NoError(t, err)

	var got types.User
	req := httptest.NewRequest(http.MethodDelete, "/elements/H", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()

	protected(gate, &got).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, types.RoleAdmin, got.Role)
}

func TestRequireAdmin_WithoutAuthenticate(t *testing.T) {
	t.Parallel()

	// A route wired with RequireAdmin but no Authenticate in front must
	// fail closed, not let the request through.
	gate, _, _ := newTestGate(t)

	req := httptest.NewRequest(http.MethodPost, "/elements", nil)
	rec := httptest.NewRecorder()
	gate.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
