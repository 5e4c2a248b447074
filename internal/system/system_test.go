package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/home/me", ExpandPath("~", "/home/me"))
	assert.Equal(t, "/home/me/.config/nvim", ExpandPath("~/.config/nvim", "/home/me"))
	assert.Equal(t, "/etc/shells", ExpandPath("/etc/shells", "/home/me"))
	assert.Equal(t, "~other/x", ExpandPath("~other/x", "/home/me"))
}

func TestOSFileSystem_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs := NewOSFileSystem()

	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o755))

	link := filepath.Join(dir, "link")
	require.NoError(t, fs.CreateSymlink(src, link))

	isLink, target := fs.IsSymlink(link)
	assert.True(t, isLink)
	assert.Equal(t, src, target)
	assert.False(t, fs.IsDir(link), "IsDir must not follow symlinks")
	assert.True(t, fs.IsDir(src))

	isLink, _ = fs.IsSymlink(src)
	assert.False(t, isLink)

	require.NoError(t, fs.Remove(link))
	assert.False(t, fs.Exists(link))
	assert.True(t, fs.Exists(src))
}

func TestExecRunner_Run(t *testing.T) {
	t.Parallel()

	r := NewExecRunner()
	sh, err := r.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	res, err := r.Run(context.Background(), sh, "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)

	_, err = r.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
