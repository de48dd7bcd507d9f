package localstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"after3am/backend/internal/localstore"
)

func setupSQLiteStore(t *testing.T) (*localstore.SQLiteStore, *sql.DB, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	return localstore.NewSQLiteStore(db), db, mockDB
}

func TestSQLiteStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Existing key", func(t *testing.T) {
		store, db, mockDB := setupSQLiteStore(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT value FROM entries WHERE key = ?").
			WithArgs("lastMode").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("dream"))

		value, ok, err := store.Get(ctx, "lastMode")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dream", value)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - Missing key", func(t *testing.T) {
		store, db, mockDB := setupSQLiteStore(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT value FROM entries").
			WithArgs("conversationHistory").
			WillReturnError(sql.ErrNoRows)

		value, ok, err := store.Get(ctx, "conversationHistory")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, value)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Query error", func(t *testing.T) {
		store, db, mockDB := setupSQLiteStore(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT value FROM entries").WillReturnError(errors.New("disk I/O error"))

		_, _, err := store.Get(ctx, "lastMode")
		assert.ErrorContains(t, err, "disk I/O error")
	})
}

func TestSQLiteStore_SetAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Set upserts", func(t *testing.T) {
		store, db, mockDB := setupSQLiteStore(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectExec("INSERT INTO entries").
			WithArgs("lastMode", "tarot").
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, store.Set(ctx, "lastMode", "tarot"))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Delete", func(t *testing.T) {
		store, db, mockDB := setupSQLiteStore(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectExec("DELETE FROM entries").
			WithArgs("conversationHistory").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Delete(ctx, "conversationHistory"))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Set failure is wrapped", func(t *testing.T) {
		store, db, mockDB := setupSQLiteStore(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectExec("INSERT INTO entries").WillReturnError(errors.New("database is locked"))

		err := store.Set(ctx, "lastMode", "tarot")
		assert.ErrorContains(t, err, `could not write "lastMode"`)
	})
}

// TestStores_Contract runs the same scenario against every implementation.
func TestStores_Contract(t *testing.T) {
	fileStore, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	defer func() { _ = fileStore.Close() }()

	stores := map[string]localstore.Store{
		"memory": localstore.NewMemoryStore(),
		"sqlite": fileStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "k", "v1"))
			require.NoError(t, store.Set(ctx, "k", "v2"))
			v, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)

			require.NoError(t, store.Delete(ctx, "k"))
			require.NoError(t, store.Delete(ctx, "k"))
			_, ok, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
