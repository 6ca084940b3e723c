package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	all, err := loadMigrations(migrationFS, "migrations")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)
	for i, m := range all {
		assert.Equal(t, i+1, m.version, "versions are contiguous from 1")
		_, err := migrationFS.ReadFile(m.file)
		assert.NoError(t, err)
	}
	assert.Equal(t, "sermons", all[0].name)
}

func TestLoadMigrations_OrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"m/010_tags.sql":    {Data: []byte("SELECT 1")},
		"m/002_status.sql":  {Data: []byte("SELECT 1")},
		"m/README.md":       {Data: []byte("notes")},
		"m/001_sermons.sql": {Data: []byte("SELECT 1")},
	}
	all, err := loadMigrations(fsys, "m")
	require.NoError(t, err)

	var versions []int
	for _, m := range all {
		versions = append(versions, m.version)
	}
	assert.Equal(t, []int{1, 2, 10}, versions)
	assert.Equal(t, "m/010_tags.sql", all[2].file)
}

func TestLoadMigrations_RejectsBadNames(t *testing.T) {
	_, err := loadMigrations(fstest.MapFS{"m/init.sql": {Data: nil}}, "m")
	assert.ErrorContains(t, err, "NNN_name.sql")

	_, err = loadMigrations(fstest.MapFS{"m/abc_init.sql": {Data: nil}}, "m")
	assert.ErrorContains(t, err, "bad version")

	_, err = loadMigrations(fstest.MapFS{
		"m/001_a.sql": {Data: nil},
		"m/1_b.sql":   {Data: nil},
	}, "m")
	assert.ErrorContains(t, err, "share version 1")
}

func TestPendingMigrations(t *testing.T) {
	all := []migration{{version: 1}, {version: 2}, {version: 3}}

	assert.Len(t, pendingMigrations(all, map[int]bool{}), 3)
	assert.Empty(t, pendingMigrations(all, map[int]bool{1: true, 2: true, 3: true}))

	pending := pendingMigrations(all, map[int]bool{1: true})
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].version)
}
