package authsync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileCache_WriteReadRoundTrip(t *testing.T) {
	c := NewFileCache(t.TempDir())

	p := &Profile{
		UserID:    "u1",
		Nickname:  "aidos",
		City:      "Almaty",
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
	}
	c.Write("u1", p)

	got, ok := c.Read("u1")
	require.True(t, ok)
	require.Equal(t, p, got)
}

func TestFileCache_ReadAbsent(t *testing.T) {
	c := NewFileCache(t.TempDir())

	got, ok := c.Read("ghost")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestFileCache_ReadGarbageAsAbsence(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)

	// Битый файл трактуется как отсутствие снапшота, а не ошибка.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u1"+cacheExt), []byte("{broken"), 0o600))

	_, ok := c.Read("u1")
	require.False(t, ok)
}

func TestFileCache_Clear(t *testing.T) {
	c := NewFileCache(t.TempDir())

	c.Write("u1", &Profile{UserID: "u1"})
	c.Clear("u1")

	_, ok := c.Read("u1")
	require.False(t, ok)

	// Повторная очистка безопасна.
	c.Clear("u1")
}

func TestFileCache_WipeRemovesAllSnapshots(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)

	c.Write("u1", &Profile{UserID: "u1"})
	c.Write("u2", &Profile{UserID: "u2"})

	// Посторонний файл в каталоге не трогается.
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o600))

	c.Wipe()

	_, ok := c.Read("u1")
	require.False(t, ok)
	_, ok = c.Read("u2")
	require.False(t, ok)

	_, err := os.Stat(other)
	require.NoError(t, err)
}

func TestFileCache_SanitizesUserIDInPath(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)

	c.Write("../evil", &Profile{UserID: "../evil"})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, ok := c.Read("../evil")
	require.True(t, ok)
	require.Equal(t, "../evil", got.UserID)
}
