// Package sqlite provides a SQLite-backed implementation of the
// storage.ElementStorage and storage.UserStorage interfaces using Go's
// standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process no installation beyond the
// driver. It is fast enough for most projects and trivial to set up.
//
// UNIQUENESS STRATEGY:
// ────────────────────
// Symbol, atomic number username all carry UNIQUE indexes. Each
// create/update runs its application-level duplicate check and the write
// inside ONE transaction; the check produces the friendly error message,
// the index is the guarantee if two writers race between check and write.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/EnderPico/TabelaPeriodica/internal/config"
	"github.com/EnderPico/TabelaPeriodica/internal/storage"
	"github.com/EnderPico/TabelaPeriodica/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	// Without this the sql.Open("sqlite3", ...) call would fail with
	// "unknown driver".
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of both store interfaces.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at the path specified in cfg.StoragePath,
// creates the elements and users tables if they do not already exist,
// and returns a ready-to-use *SQLite.
//
// Naming convention: New() acts as a constructor. Go has no constructors,
// so the community convention is a package-level New() function that
// returns an initialised instance (and an error as the second value).
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	// The first actual connection happens on the first query.
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. If the table already exists nothing happens.
	//
	// Both unique columns get UNIQUE constraints so the database itself
	// rejects a duplicate even if two requests pass the application-level
	// check at the same moment.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS elements (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT    NOT NULL UNIQUE,
			name   TEXT    NOT NULL,
			number INTEGER NOT NULL UNIQUE,
			info   TEXT    NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create elements table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'student'
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create users table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// InitSampleData seeds the elements table with a couple of starter
// records the first time the application runs. A non-empty table is
// left completely alone, so restarting the server never duplicates or
// resurrects anything.
func (s *SQLite) InitSampleData() error {
	var count int
	if err := s.Db.QueryRow("SELECT COUNT(*) FROM elements").Scan(&count); err != nil {
		return fmt.Errorf("InitSampleData: count: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []types.Element{
		{Symbol: "H", Name: "Hydrogen", Number: 1,
			Info: "The lightest and most abundant element in the universe. Essential for water and organic compounds."},
		{Symbol: "He", Name: "Helium", Number: 2,
			Info: "A noble gas that is lighter than air. Used in balloons and as a coolant for superconducting magnets."},
	}
	for _, el := range samples {
		// Seeds take the same canonicalization path as client input:
		// symbols are stored uppercase, and the case-insensitive lookups
		// rely on that. Inserting "He" verbatim would leave a row no
		// GET /elements/he (or /He, or /HE) could ever find.
		if err := el.Normalize(); err != nil {
			return fmt.Errorf("InitSampleData: normalize %s: %w", el.Symbol, err)
		}
		if _, err := s.CreateElement(el); err != nil {
			return fmt.Errorf("InitSampleData: seed %s: %w", el.Symbol, err)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Element storage
// ─────────────────────────────────────────────────────────────────────────────

// GetElements returns all element rows as a slice.
//
// Query (unlike QueryRow) returns *sql.Rows — a cursor over multiple rows.
// We iterate with rows.Next() which advances the cursor and returns false
// when there are no more rows. Always defer rows.Close() to release the
// database connection.
func (s *SQLite) GetElements() ([]types.Element, error) {
	rows, err := s.Db.Query(
		// Explicitly list columns — never use SELECT * in production code.
		// If a column is added later, SELECT * would break Scan's ordering.
		"SELECT id, symbol, name, number, info FROM elements",
	)
	if err != nil {
		return nil, fmt.Errorf("GetElements: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice.
	// Returning [] instead of null in JSON is better API behaviour.
	elements := make([]types.Element, 0)

	for rows.Next() {
		var el types.Element
		if err := rows.Scan(&el.ID, &el.Symbol, &el.Name, &el.Number, &el.Info); err != nil {
			return nil, fmt.Errorf("GetElements: scan row: %w", err)
		}
		elements = append(elements, el)
	}

	// rows.Err() captures any error that occurred during iteration.
	// This is separate from Scan errors.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetElements: rows iteration: %w", err)
	}

	return elements, nil
}

// GetElementBySymbol fetches exactly one element row matched by symbol.
//
// Symbols are stored uppercase, so uppercasing the argument here is what
// makes GET /elements/h and GET /elements/H hit the same record.
func (s *SQLite) GetElementBySymbol(symbol string) (types.Element, error) {
	var el types.Element

	// QueryRow returns exactly one row. If the query finds no match the
	// error surfaces only when you call Scan.
	err := s.Db.QueryRow(
		"SELECT id, symbol, name, number, info FROM elements WHERE symbol = ? LIMIT 1",
		strings.ToUpper(symbol),
	).Scan(&el.ID, &el.Symbol, &el.Name, &el.Number, &el.Info)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// sql.ErrNoRows is the sentinel for "nothing matched"; map it
			// to our own sentinel so handlers never import database/sql.
			return types.Element{}, storage.ErrElementNotFound
		}
		return types.Element{}, fmt.Errorf("GetElementBySymbol: scan: %w", err)
	}

	return el, nil
}

// CreateElement inserts a new row after checking both unique fields.
//
// The whole check-then-insert sequence runs inside one transaction.
// The symbol check runs first, so if a request collides on BOTH fields
// the caller is told about the symbol.
func (s *SQLite) CreateElement(el types.Element) (types.Element, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Element{}, fmt.Errorf("CreateElement: begin: %w", err)
	}
	// Rollback after a successful Commit is a harmless no-op, so a single
	// deferred Rollback covers every early-error return path below.
	defer tx.Rollback()

	var exists int

	// Check 1: symbol must be free.
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM elements WHERE symbol = ?", el.Symbol,
	).Scan(&exists)
	if err != nil {
		return types.Element{}, fmt.Errorf("CreateElement: check symbol: %w", err)
	}
	if exists > 0 {
		return types.Element{}, storage.ErrDuplicateSymbol
	}

	// Check 2: atomic number must be free.
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM elements WHERE number = ?", el.Number,
	).Scan(&exists)
	if err != nil {
		return types.Element{}, fmt.Errorf("CreateElement: check number: %w", err)
	}
	if exists > 0 {
		return types.Element{}, storage.ErrDuplicateNumber
	}

	result, err := tx.Exec(
		"INSERT INTO elements (symbol, name, number, info) VALUES (?, ?, ?, ?)",
		el.Symbol, el.Name, el.Number, el.Info,
	)
	if err != nil {
		return types.Element{}, fmt.Errorf("CreateElement: exec: %w", err)
	}

	// LastInsertId returns the auto-generated primary key of the new row.
	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Element{}, fmt.Errorf("CreateElement: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Element{}, fmt.Errorf("CreateElement: commit: %w", err)
	}

	el.ID = lastID
	return el, nil
}

// UpdateElement applies a partial patch to one element.
//
// PARTIAL UPDATE SEMANTICS:
// ─────────────────────────
// Each nil pointer in the patch means "keep the stored value". A present
// symbol or number that actually CHANGES the record re-runs the matching
// uniqueness check, excluding the row being updated — updating Hydrogen's
// info must not trip over Hydrogen's own symbol.
func (s *SQLite) UpdateElement(symbol string, patch types.ElementPatch) (types.Element, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Element{}, fmt.Errorf("UpdateElement: begin: %w", err)
	}
	defer tx.Rollback()

	// Load the current record inside the transaction so the collision
	// checks and the write see the same snapshot.
	var cur types.Element
	err = tx.QueryRow(
		"SELECT id, symbol, name, number, info FROM elements WHERE symbol = ? LIMIT 1",
		strings.ToUpper(symbol),
	).Scan(&cur.ID, &cur.Symbol, &cur.Name, &cur.Number, &cur.Info)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Element{}, storage.ErrElementNotFound
		}
		return types.Element{}, fmt.Errorf("UpdateElement: load: %w", err)
	}

	updated := cur
	if patch.Symbol != nil {
		updated.Symbol = *patch.Symbol
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Number != nil {
		updated.Number = *patch.Number
	}
	if patch.Info != nil {
		updated.Info = *patch.Info
	}

	var exists int

	// Re-check symbol uniqueness only when the symbol actually changes.
	if updated.Symbol != cur.Symbol {
		err = tx.QueryRow(
			"SELECT COUNT(*) FROM elements WHERE symbol = ? AND id != ?",
			updated.Symbol, cur.ID,
		).Scan(&exists)
		if err != nil {
			return types.Element{}, fmt.Errorf("UpdateElement: check symbol: %w", err)
		}
		if exists > 0 {
			return types.Element{}, storage.ErrDuplicateSymbol
		}
	}

	// Same for the atomic number.
	if updated.Number != cur.Number {
		err = tx.QueryRow(
			"SELECT COUNT(*) FROM elements WHERE number = ? AND id != ?",
			updated.Number, cur.ID,
		).Scan(&exists)
		if err != nil {
			return types.Element{}, fmt.Errorf("UpdateElement: check number: %w", err)
		}
		if exists > 0 {
			return types.Element{}, storage.ErrDuplicateNumber
		}
	}

	_, err = tx.Exec(
		"UPDATE elements SET symbol = ?, name = ?, number = ?, info = ? WHERE id = ?",
		updated.Symbol, updated.Name, updated.Number, updated.Info, cur.ID,
	)
	if err != nil {
		return types.Element{}, fmt.Errorf("UpdateElement: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Element{}, fmt.Errorf("UpdateElement: commit: %w", err)
	}

	return updated, nil
}

// DeleteElement removes one element row found by case-insensitive symbol
// lookup and returns the stored symbol as confirmation.
func (s *SQLite) DeleteElement(symbol string) (string, error) {
	// Resolve first so we can both detect "not found" and return the
	// canonical (uppercase) spelling rather than whatever the URL had.
	el, err := s.GetElementBySymbol(symbol)
	if err != nil {
		return "", err
	}

	_, err = s.Db.Exec("DELETE FROM elements WHERE id = ?", el.ID)
	if err != nil {
		return "", fmt.Errorf("DeleteElement: exec: %w", err)
	}

	return el.Symbol, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// User storage
// ─────────────────────────────────────────────────────────────────────────────

// GetUserByUsername fetches one user by exact username match.
// No normalization happens here: registration lowercased the stored
// value, and callers are expected to pass what the client sent.
func (s *SQLite) GetUserByUsername(username string) (types.User, error) {
	var u types.User

	err := s.Db.QueryRow(
		"SELECT id, username, password_hash, role FROM users WHERE username = ? LIMIT 1",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, storage.ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("GetUserByUsername: scan: %w", err)
	}

	return u, nil
}

// CreateUser inserts a new account row. The password arrives already
// hashed — this layer never sees a plain-text password.
func (s *SQLite) CreateUser(username, passwordHash string, role types.Role) (types.User, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.User{}, fmt.Errorf("CreateUser: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM users WHERE username = ?", username,
	).Scan(&exists)
	if err != nil {
		return types.User{}, fmt.Errorf("CreateUser: check username: %w", err)
	}
	if exists > 0 {
		return types.User{}, storage.ErrDuplicateUsername
	}

	result, err := tx.Exec(
		"INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)",
		username, passwordHash, role,
	)
	if err != nil {
		return types.User{}, fmt.Errorf("CreateUser: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.User{}, fmt.Errorf("CreateUser: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, fmt.Errorf("CreateUser: commit: %w", err)
	}

	return types.User{
		ID:           lastID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}, nil
}
