package postgres

import (
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/internal/infrastructure/postgres/migrations"
)

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("get module: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("connection refused")))
}

func TestCodigosDeErrorPostgres(t *testing.T) {
	unique := fmt.Errorf("insert subscription: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("upsert organization module: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(unique))
	assert.False(t, isForeignKeyViolation(errors.New("timeout")))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("6f1c2a9e-3b7d-4c1e-9f0a-2d5e8b7c4a31"))
	assert.False(t, validID("org-1"))
	assert.False(t, validID(""))
}

func TestMigrationFiles_OrdenadosYSoloSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("SELECT 2")},
		"001_a.sql": {Data: []byte("SELECT 1")},
		"README.md": {Data: []byte("-")},
		"sub/x.sql": {Data: []byte("SELECT 3")},
	}
	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestMigrationFiles_Embebidas(t *testing.T) {
	files, err := migrationFiles(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_entitlements.sql", files[0])
}
