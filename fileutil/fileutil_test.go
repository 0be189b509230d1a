package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/nofuture/fileutil"
)

func TestGlobEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", fileutil.GlobEscape("hello"))
	assert.Equal(t, "Artist - Title [[]2015]", fileutil.GlobEscape("Artist - Title [2015]"))
	assert.Equal(t, "what[?]", fileutil.GlobEscape("what?"))
	assert.Equal(t, "[*]", fileutil.GlobEscape("*"))
}

func TestGlobBase(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "downloads [2015]")
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.zip"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.rar"), nil, 0o644))

	matches, err := fileutil.GlobBase(dir, "*.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.zip")}, matches)
}

func TestMkdirAllIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	staging, output := filepath.Join(root, "staging"), filepath.Join(root, "formatted")

	require.NoError(t, fileutil.MkdirAll(staging, output))
	require.NoError(t, fileutil.MkdirAll(staging, output))
	assert.DirExists(t, staging)
	assert.DirExists(t, output)

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, fileutil.MkdirAll(file))
}

func TestMove(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "staging", "Artist - Title [2015]")
	require.NoError(t, os.MkdirAll(src, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(src, "01 track.mp3"), []byte("data"), 0o644))

	dst := filepath.Join(root, "formatted", "Label", "[CAT001] Artist - Title (2015)")
	require.NoError(t, fileutil.Move(src, dst))

	assert.NoDirExists(t, src)
	assert.FileExists(t, filepath.Join(dst, "01 track.mp3"))
}

func TestMoveCollision(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.MkdirAll(src, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(src, "new"), nil, 0o644))
	require.NoError(t, os.MkdirAll(dst, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "old"), nil, 0o644))

	err := fileutil.Move(src, dst)
	assert.ErrorIs(t, err, fileutil.ErrDestinationExists)

	// nothing merged or removed
	assert.FileExists(t, filepath.Join(src, "new"))
	assert.FileExists(t, filepath.Join(dst, "old"))
	assert.NoFileExists(t, filepath.Join(dst, "new"))
}

func TestExists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ok, err := fileutil.Exists(root)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fileutil.Exists(filepath.Join(root, "nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}
