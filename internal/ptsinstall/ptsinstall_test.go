package ptsinstall

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExtractDir(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "not-hex"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "1A2B3C4"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "1A2B3CD"), nil, 0o644)) // file, not dir

	dir, err := findExtractDir(tmp)
	require.NoError(t, err)
	assert.Equal(t, "1A2B3C4", dir)
}

func TestFindExtractDirNotFound(t *testing.T) {
	tmp := t.TempDir()
	_, err := findExtractDir(tmp)
	assert.Error(t, err)
}

func TestLowercaseExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A2DP.PIXITX"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "already.pixitx"), []byte("x"), 0o644))

	require.NoError(t, lowercaseExtensions(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"A2DP.pixitx", "already.pixitx"}, names)
}
