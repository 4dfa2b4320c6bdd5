package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}

	assert.Positive(t, up)
	assert.Equal(t, up, down, "every migration needs a down file")
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig("postgres://localhost/facepk")
	assert.Equal(t, "postgres://localhost/facepk", cfg.DSN)
	assert.Greater(t, cfg.MaxConns, cfg.MinConns)
}

func TestDatabaseName(t *testing.T) {
	name, err := DatabaseName("postgres://user:pw@localhost:5432/facepk?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "facepk", name)

	name, err = DatabaseName("host=localhost user=test dbname=rounds")
	require.NoError(t, err)
	assert.Equal(t, "rounds", name)

	_, err = DatabaseName("::not a dsn::")
	assert.Error(t, err)
}
