package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/weather-favourites/internal/database/migrations"
)

func TestDSN(t *testing.T) {
	dsn := DSN("app", "secret", "db", "3306", "weather")
	assert.Contains(t, dsn, "app:secret@tcp(db:3306)/weather")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDSN_NoPassword(t *testing.T) {
	assert.Contains(t, DSN("app", "", "db", "3306", "weather"), "app@tcp(db:3306)/weather")
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_users.sql", "00002_favourite_locations.sql"}, names)
}

func TestFavouriteOwnerIsBinaryCollated(t *testing.T) {
	raw, err := fs.ReadFile(migrations.FS, "00002_favourite_locations.sql")
	require.NoError(t, err)

	var ownerCol string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "owner_id ") {
			ownerCol = line
			break
		}
	}
	require.NotEmpty(t, ownerCol)
	assert.Contains(t, ownerCol, "VARCHAR(64)")
	assert.Contains(t, ownerCol, "COLLATE utf8mb4_bin")
	assert.Contains(t, ownerCol, "NOT NULL")
}

func TestMigrate_UsesSeam(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUp
	defer func() { gooseUp = orig }()

	var gotDir string
	gooseUp = func(ctx context.Context, d *sql.DB, dir string) error {
		gotDir = dir
		return errors.New("boom")
	}

	err = Migrate(context.Background(), db)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, ".", gotDir)
}
