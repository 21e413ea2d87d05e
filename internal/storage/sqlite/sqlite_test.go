package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/EnderPico/TabelaPeriodica/internal/config"
	"github.com/EnderPico/TabelaPeriodica/internal/storage"
	"github.com/EnderPico/TabelaPeriodica/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh database file per test under t.TempDir(),
// which the test framework deletes automatically. A file (rather than
// :memory:) matters here: database/sql pools connections, and every new
// connection to :memory: would see its own empty database.
func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Db.Close() })
	return db
}

func hydrogen() types.Element {
	return types.Element{Symbol: "H", Name: "Hydrogen", Number: 1, Info: "Lightest element"}
}

func TestCreateAndGetElement(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	created, err := db.CreateElement(hydrogen())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := db.GetElementBySymbol("H")
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestGetElementBySymbol_CaseInsensitive(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := db.CreateElement(hydrogen())
	require.NoError(t, err)

	lower, err := db.GetElementBySymbol("h")
	require.NoError(t, err)
	upper, err := db.GetElementBySymbol("H")
	require.NoError(t, err)
	assert.Equal(t, upper, lower, "GET by 'h' and 'H' must return the identical record")
}

func TestGetElements_EmptySliceNotNil(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	elements, err := db.GetElements()
	require.NoError(t, err)
	assert.NotNil(t, elements)
	assert.Empty(t, elements)
}

func TestCreateElement_SymbolConflictBeforeNumberConflict(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := db.CreateElement(hydrogen())
	require.NoError(t, err)

	// Collides on symbol only.
	_, err = db.CreateElement(types.Element{Symbol: "H", Name: "Hydrogenish", Number: 2})
	assert.ErrorIs(t, err, storage.ErrDuplicateSymbol)

	// Collides on number only.
	_, err = db.CreateElement(types.Element{Symbol: "X", Name: "Xenonish", Number: 1})
	assert.ErrorIs(t, err, storage.ErrDuplicateNumber)

	// Collides on BOTH: the symbol check runs first, so it wins.
	_, err = db.CreateElement(types.Element{Symbol: "H", Name: "Hydrogen", Number: 1})
	assert.ErrorIs(t, err, storage.ErrDuplicateSymbol)
}

func TestUpdateElement_PartialPatch(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := db.CreateElement(hydrogen())
	require.NoError(t, err)

	// Only info is present; everything else must survive untouched.
	info := "Updated description"
	updated, err := db.UpdateElement("h", types.ElementPatch{Info: &info})
	require.NoError(t, err)

	assert.Equal(t, "H", updated.Symbol)
	assert.Equal(t, "Hydrogen", updated.Name)
	assert.Equal(t, 1, updated.Number)
	assert.Equal(t, "Updated description", updated.Info)
}

func TestUpdateElement_NotFound(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	info := "x"
	_, err := db.UpdateElement("Zz", types.ElementPatch{Info: &info})
	assert.ErrorIs(t, err, storage.ErrElementNotFound)
}

func TestUpdateElement_UniquenessExcludesSelf(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := db.CreateElement(hydrogen())
	require.NoError(t, err)
	_, err = db.CreateElement(types.Element{Symbol: "HE", Name: "Helium", Number: 2})
	require.NoError(t, err)

	// Re-asserting the element's own symbol and number is NOT a conflict.
	sym := "H"
	num := 1
	_, err = db.UpdateElement("H", types.ElementPatch{Symbol: &sym, Number: &num})
	require.NoError(t, err)

	// Moving onto ANOTHER element's symbol or number is.
	otherSym := "HE"
	_, err = db.UpdateElement("H", types.ElementPatch{Symbol: &otherSym})
	assert.ErrorIs(t, err, storage.ErrDuplicateSymbol)

	otherNum := 2
	_, err = db.UpdateElement("H", types.ElementPatch{Number: &otherNum})
	assert.ErrorIs(t, err, storage.ErrDuplicateNumber)
}

func TestDeleteElement(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := db.CreateElement(hydrogen())
	require.NoError(t, err)

	// Lookup is case-insensitive; the confirmation echoes the canonical
	// stored symbol, not the URL spelling.
	deleted, err := db.DeleteElement("h")
	require.NoError(t, err)
	assert.Equal(t, "H", deleted)

	_, err = db.GetElementBySymbol("H")
	assert.ErrorIs(t, err, storage.ErrElementNotFound)

	_, err = db.DeleteElement("H")
	assert.ErrorIs(t, err, storage.ErrElementNotFound)
}

func TestInitSampleData_SeedsOnceOnly(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	require.NoError(t, db.InitSampleData())
	first, err := db.GetElements()
	require.NoError(t, err)
	assert.Len(t, first, 2)

	// Running again against a populated table must change nothing.
	require.NoError(t, db.InitSampleData())
	second, err := db.GetElements()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInitSampleData_SeedsAreReachableBySymbol(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	require.NoError(t, db.InitSampleData())

	// The seeded rows must obey the same canonical-storage contract as
	// client-created ones: any casing of the symbol resolves them.
	for _, sym := range []string{"h", "H", "he", "He", "HE"} {
		got, err := db.GetElementBySymbol(sym)
		require.NoError(t, err, "lookup %q", sym)
		assert.Equal(t, strings.ToUpper(sym), got.Symbol)
	}

	helium, err := db.GetElementBySymbol("he")
	require.NoError(t, err)
	assert.Equal(t, "Helium", helium.Name)
	assert.Equal(t, 2, helium.Number)

	// And creating another Helium must collide, not slip past uniqueness.
	_, err = db.CreateElement(types.Element{
		Symbol: "HE", Name: "Helium", Number: 2,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateSymbol)
}

func TestCreateAndGetUser(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	created, err := db.CreateUser("alice", "$2a$10$fakehash", types.RoleStudent)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	// Exact-match lookup: the store does NOT normalize case, the types
	// layer already lowercased everything at registration time.
	_, err = db.GetUserByUsername("Alice")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := db.CreateUser("alice", "hash1", types.RoleStudent)
	require.NoError(t, err)

	_, err = db.CreateUser("alice", "hash2", types.RoleAdmin)
	assert.ErrorIs(t, err, storage.ErrDuplicateUsername)
}
