package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRead(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("cases.json", []byte(`[{"id":"c1"}]`))
	require.NoError(t, err)

	data, found, err := s.Read("cases.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"c1"}]`, string(data))

	_, err = s.Save("cases.json", []byte(`[]`))
	require.NoError(t, err)
	data, _, err = s.Read("cases.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(filepath.Dir(s.Path("cases.json")))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLocalStorageReadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	data, found, err := s.Read("students.json")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestLocalStorageDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("a.json", []byte("{}"))
	require.NoError(t, err)
	require.NoError(t, s.Delete("a.json"))
	require.NoError(t, s.Delete("a.json"))

	_, found, err := s.Read("a.json")
	require.NoError(t, err)
	assert.False(t, found)
}
