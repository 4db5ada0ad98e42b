package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, WriteJSON(path, map[string]any{"reason": "a < b", "n": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": 1,\n  \"reason\": \"a < b\"\n}\n", string(data))
}

func TestWriteJSON_Unencodable(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "bad.json"), map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
