// Package user contains the HTTP handlers for account registration and
// login. These are the only two account operations the API exposes —
// users are never updated or deleted once created.
//
// Both handlers follow the same closure/factory pattern as the element
// handlers: the factory receives dependencies once, the returned
// function runs per request.
package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/EnderPico/TabelaPeriodica/internal/auth"
	"github.com/EnderPico/TabelaPeriodica/internal/storage"
	"github.com/EnderPico/TabelaPeriodica/internal/types"
	"github.com/EnderPico/TabelaPeriodica/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Register handles POST /register
// Creates a new account with a bcrypt-hashed password.
//
// Request body (JSON) — role optional, defaults to "student":
//
//	{ "username": "testuser", "password": "password123" }
//
// Success response (201 Created):
//
//	{ "message": "User 'testuser' registered successfully",
//	  "user": { "id": 1, "username": "testuser", "role": "student" } }
//
// The response never contains the password or its hash.
//
// Error responses:
//
//	400 Bad Request    — empty/malformed body, or username already taken
//	422 Unprocessable  — validation failure (length, characters, role)
//
// ─────────────────────────────────────────────────────────────────────────────
func Register(users storage.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("registering a user")

		// ── Step 1: Decode JSON body ──────────────────────────────────
		var req types.RegisterRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// ── Step 2: Validate, then canonicalize ───────────────────────
		// Normalize lowercases the username and fills in the default
		// role, so every stored username has exactly one spelling.
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.ValidationError(validateErrs))
			return
		}
		if err := req.Normalize(); err != nil {
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.GeneralError(err))
			return
		}

		// ── Step 3: Hash the password ─────────────────────────────────
		// The plain password dies here; only the hash travels further.
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			// bcrypt only fails on absurd cost values or >72 byte inputs;
			// either way the client gets a generic server error, not the
			// internal detail.
			slog.Error("error hashing password", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("could not register user")))
			return
		}

		// ── Step 4: Persist ───────────────────────────────────────────
		created, err := users.CreateUser(req.Username, hash, req.Role)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateUsername) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(errors.New("Username already registered")))
				return
			}
			slog.Error("error creating user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("could not register user")))
			return
		}

		slog.Info("user registered",
			slog.String("username", created.Username),
			slog.String("role", string(created.Role)))
		response.WriteJSON(w, http.StatusCreated, types.RegisterResponse{
			Message: fmt.Sprintf("User '%s' registered successfully", created.Username),
			User:    types.PublicUser(created),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles POST /login
// Verifies credentials and issues a signed access token.
//
// Request body (JSON):
//
//	{ "username": "admin", "password": "admin123" }
//
// Success response (200 OK):
//
//	{ "message": "Login successful for user 'admin'",
//	  "access_token": "<jwt>", "token_type": "bearer",
//	  "expires_in": 1800, "user": { ... } }
//
// Error responses:
//
//	401 Unauthorized   — unknown username OR wrong password, with the
//	                     SAME message for both so the response cannot be
//	                     used to probe which usernames exist
//	422 Unprocessable  — missing/empty credentials
//
// ─────────────────────────────────────────────────────────────────────────────
func Login(users storage.UserStorage, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("logging in a user")

		var req types.LoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.ValidationError(validateErrs))
			return
		}

		// ── Authenticate ──────────────────────────────────────────────
		// Unknown user and wrong password take the same exit: one lookup,
		// one bcrypt comparison, one uniform 401.
		user, err := users.GetUserByUsername(req.Username)
		if err != nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errors.New("Invalid username or password")))
			return
		}

		// ── Issue the token ───────────────────────────────────────────
		token, err := tokens.Issue(user.Username)
		if err != nil {
			slog.Error("error issuing token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("could not log in")))
			return
		}

		slog.Info("user logged in", slog.String("username", user.Username))
		response.WriteJSON(w, http.StatusOK, types.LoginResponse{
			Message:     fmt.Sprintf("Login successful for user '%s'", user.Username),
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(tokens.Expiry().Seconds()),
			User:        types.PublicUser(user),
		})
	}
}
