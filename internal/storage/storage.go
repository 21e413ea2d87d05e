// Package storage defines the store interfaces — contracts that any
// database backend must satisfy to work with this application.
//
// WHY INTERFACES?
// ───────────────
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on these interfaces:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake/mock that satisfies the interface.
//     No real database needed for unit tests.
//
// This is the Dependency Inversion Principle in practice.
package storage

import (
	"errors"

	"github.com/EnderPico/TabelaPeriodica/internal/types"
)

// Sentinel errors returned by store implementations.
//
// Handlers match these with errors.Is to pick the right HTTP status:
// not-found → 404, duplicates → 400. Every implementation must return
// exactly these values (possibly wrapped with %w) for those conditions.
var (
	ErrElementNotFound = errors.New("element not found")
	ErrDuplicateSymbol = errors.New("element with this symbol already exists")
	ErrDuplicateNumber = errors.New("element with this atomic number already exists")

	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already registered")
)

// ElementStorage is the contract for the periodic-table records.
//
// Symbols are stored uppercase (the types layer canonicalizes them), so
// "case-insensitive lookup" means the implementation uppercases its
// argument before comparing.
type ElementStorage interface {
	// GetElements returns every element in the database.
	// Returns an empty slice (not nil) if there are no elements.
	GetElements() ([]types.Element, error)

	// GetElementBySymbol fetches one element by its chemical symbol,
	// case-insensitively. Returns ErrElementNotFound if absent.
	GetElementBySymbol(symbol string) (types.Element, error)

	// CreateElement inserts a new element and returns it with its
	// generated ID. The symbol uniqueness check runs BEFORE the atomic
	// number check, so when both collide the symbol conflict is the one
	// reported (ErrDuplicateSymbol / ErrDuplicateNumber).
	CreateElement(el types.Element) (types.Element, error)

	// UpdateElement applies a partial patch to the element found by
	// case-insensitive symbol lookup. Nil patch fields keep the stored
	// value. Changing symbol or number re-runs the uniqueness check
	// against OTHER rows only — renaming an element to its own symbol
	// is not a conflict. Returns ErrElementNotFound or a duplicate error.
	UpdateElement(symbol string, patch types.ElementPatch) (types.Element, error)

	// DeleteElement removes the element found by case-insensitive symbol
	// lookup and returns its stored (uppercase) symbol as confirmation.
	DeleteElement(symbol string) (string, error)
}

// UserStorage is the contract for account records.
//
// Lookups are exact-match: the types layer lowercases usernames at
// registration, so the store never needs to normalize anything.
type UserStorage interface {
	// GetUserByUsername fetches one user by exact username.
	// Returns ErrUserNotFound if absent.
	GetUserByUsername(username string) (types.User, error)

	// CreateUser persists a new account with an already-hashed password.
	// Returns ErrDuplicateUsername if the username is taken.
	CreateUser(username, passwordHash string, role types.Role) (types.User, error)
}
