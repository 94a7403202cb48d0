package questlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCategoryFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadMissingDirYieldsEmptyList(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, l.Categories())
}

func TestLoadParsesCategories(t *testing.T) {
	dir := t.TempDir()
	writeCategoryFile(t, dir, "forest.yaml", `
menu_id: 1
name: Forest
quests:
  - item_id: 10
    name: Into the Woods
    short_description: A quick run
  - item_id: 11
    name: Lost Trail
`)

	l, err := Load(dir)
	require.NoError(t, err)

	cats := l.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Forest", cats[0].Name)
	assert.Equal(t, uint32(1), cats[0].MenuID)
	assert.Len(t, cats[0].Quests, 2)

	q, ok := l.Quest(10)
	require.True(t, ok)
	assert.Equal(t, "Into the Woods", q.Name)

	_, ok = l.Quest(999)
	assert.False(t, ok, "lookup of an unknown quest id should fail")
}

func TestReloadReplacesCatalogAtomically(t *testing.T) {
	dir := t.TempDir()
	writeCategoryFile(t, dir, "a.yaml", "menu_id: 1\nname: A\n")

	l, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, l.Categories(), 1)

	writeCategoryFile(t, dir, "b.yaml", "menu_id: 2\nname: B\n")
	require.NoError(t, l.Reload(dir))
	assert.Len(t, l.Categories(), 2)
}
