// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and auth can all import types without depending
// on each other.
package types

// Role is a coarse authorization tag attached to every user.
// There are exactly two roles and no hierarchy: an admin can write
// elements, a student (and an anonymous caller) can only read them.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Element represents one chemical element of the periodic table.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (lowercase names match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package on inbound payloads.
//
// Both symbol and number are unique across the table; the storage layer
// enforces that with UNIQUE indexes and the handlers surface collisions
// as 400 responses.
type Element struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol" validate:"required,min=1,max=10"`
	Name   string `json:"name"   validate:"required,min=1,max=50"`
	Number int    `json:"number" validate:"required,gte=1,lte=118"`
	Info   string `json:"info"   validate:"max=500"`
}

// ElementPatch carries a partial update for PUT /elements/{symbol}.
//
// Every field is a POINTER so we can tell "field absent from the JSON"
// (nil — leave the stored value alone) apart from "field present with a
// zero value". validator's omitempty skips nil pointers entirely and
// applies the remaining rules to the pointed-at value otherwise.
type ElementPatch struct {
	Symbol *string `json:"symbol" validate:"omitempty,min=1,max=10"`
	Name   *string `json:"name"   validate:"omitempty,min=1,max=50"`
	Number *int    `json:"number" validate:"omitempty,gte=1,lte=118"`
	Info   *string `json:"info"   validate:"omitempty,max=500"`
}

// User represents an account in the system.
//
// PasswordHash stores the bcrypt hash, never the plain password, and the
// json:"-" tag guarantees it can never leak into a JSON response even if
// someone encodes the struct directly. API responses use UserResponse
// instead, which simply has no password field at all.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// UserResponse is the public view of a user: id, username, role.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// PublicUser converts a stored User into its API-safe representation.
func PublicUser(u User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// RegisterRequest is the payload for POST /register.
// Role is optional and defaults to "student" when omitted — students can
// self-register, admins are created explicitly.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Role     Role   `json:"role"     validate:"omitempty,oneof=admin student"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned by POST /register on success.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse is returned by POST /login on success.
// ExpiresIn is the token lifetime in whole seconds (1800 for the default
// 30 minute expiry) so clients can schedule a re-login without decoding
// the token themselves.
type LoginResponse struct {
	Message     string       `json:"message"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// ElementResponse is returned by the element write endpoints: a human
// readable confirmation plus the stored record.
type ElementResponse struct {
	Message string  `json:"message"`
	Element Element `json:"element"`
}

// DeleteResponse confirms a deletion by echoing the removed symbol.
type DeleteResponse struct {
	Message string `json:"message"`
	Symbol  string `json:"symbol"`
}
