//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facepk/internal/database"
	"github.com/saturnino-fabrica-de-software/facepk/internal/database/dbtest"
)

func TestMigratorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dsn := dbtest.StartPostgres(t)
	db, err := database.OpenSQL(context.Background(), dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	t.Run("Up runs migrations successfully", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, dbtest.DBName)
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		require.NoError(t, migrator.Up())
		// second run is a no-op
		require.NoError(t, migrator.Up())

		assertTableExists(t, db, "rounds")
	})

	t.Run("Version returns current version", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, dbtest.DBName)
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		version, dirty, err := migrator.Version()
		require.NoError(t, err)
		assert.False(t, dirty, "migration should not be dirty")
		assert.Equal(t, uint(1), version)
	})

	t.Run("rounds table has correct columns", func(t *testing.T) {
		columns := getTableColumns(t, db, "rounds")
		for _, col := range []string{
			"id", "predicted_key", "guess_key", "guess_display", "confidence",
			"matched", "correct", "verdict", "backend", "latency_ms", "created_at",
		} {
			assert.Contains(t, columns, col, "rounds should have column %s", col)
		}
	})

	t.Run("Down rolls back", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, dbtest.DBName)
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		require.NoError(t, migrator.Down())
		version, _, err := migrator.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
	})

	t.Run("MigrateUp reapplies", func(t *testing.T) {
		require.NoError(t, database.MigrateUp(context.Background(), dsn, dbtest.DBName))
		assertTableExists(t, db, "rounds")
	})
}

func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)

	require.NoError(t, err)
	assert.True(t, exists, "table %s should exist", tableName)
}

func getTableColumns(t *testing.T, db *sql.DB, tableName string) []string {
	t.Helper()

	rows, err := db.Query(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var col string
		require.NoError(t, rows.Scan(&col))
		columns = append(columns, col)
	}
	require.NoError(t, rows.Err())

	return columns
}
