package migrations

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrator_EmbeddedUp(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db)
	ctx := context.Background()

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001"}, applied)

	// second run is a no-op
	applied, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM analyses"))
	assert.Zero(t, count)
}

func TestMigrator_Status(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	files := fstest.MapFS{
		"001_first.sql":  {Data: []byte("CREATE TABLE first (id TEXT);")},
		"002_second.sql": {Data: []byte("CREATE TABLE second (id TEXT);")},
		"notes.txt":      {Data: []byte("ignored")},
		"bogus.sql":      {Data: []byte("ignored")},
	}
	m := NewMigratorFS(db, files)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, StatePending, statuses[0].State)

	_, err = m.Up(ctx)
	require.NoError(t, err)

	files["002_second.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE second (id TEXT, extra TEXT);")}
	statuses, err = m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []MigrationStatus{
		{Version: "001", Name: "first", State: StateApplied},
		{Version: "002", Name: "second", State: StateModified},
	}, statuses)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	m := NewMigratorFS(db, fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE ok (id TEXT);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE (;")},
	})

	applied, err := m.Up(ctx)
	assert.Error(t, err)
	assert.Equal(t, []string{"001"}, applied)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePending, statuses[1].State)
}
