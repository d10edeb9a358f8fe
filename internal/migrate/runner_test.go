package migrate

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_product_mappings_up.sql": {Data: []byte("SELECT 2")},
		"0001_installations_up.sql":    {Data: []byte("SELECT 1")},
		"0001_installations_down.sql":  {Data: []byte("SELECT 0")},
		"notes.md":                     {Data: []byte("ignored")},
		"draft_up.sql":                 {Data: []byte("ignored")},
		"nested/0010_later_up.sql":     {Data: []byte("SELECT 10")},
	}

	got, err := Discover(fsys)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].Version)
	assert.Equal(t, int64(2), got[1].Version)
	assert.Equal(t, int64(10), got[2].Version)
	assert.Equal(t, "nested/0010_later_up.sql", got[2].Path)
}

func TestDiscover_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a_up.sql": {Data: []byte("SELECT 1")},
		"0001_b_up.sql": {Data: []byte("SELECT 1")},
	}
	_, err := Discover(fsys)
	assert.ErrorContains(t, err, "duplicate migration version 1")
}

func TestRunner_EmptyDir(t *testing.T) {
	_, err := Runner{}.fsys()
	assert.Error(t, err)
}

func TestRepositoryMigrations(t *testing.T) {
	got, err := Discover(os.DirFS("../../db/migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, int64(1), got[0].Version)
}
