package system

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the subset of filesystem operations probes and link actions need.
type FileSystem interface {
	Exists(path string) bool
	IsDir(path string) bool
	IsSymlink(path string) (isLink bool, target string)
	CreateSymlink(target, link string) error
	Rename(oldPath, newPath string) error
	Remove(path string) error
	MkdirAll(path string, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem is the real filesystem.
type OSFileSystem struct{}

// NewOSFileSystem creates an OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Exists reports whether anything, including a dangling symlink, is at path.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path is a real directory (symlinks are not followed).
func (OSFileSystem) IsDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

// IsSymlink reports whether path is a symlink and where it points.
func (OSFileSystem) IsSymlink(path string) (bool, string) {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false, ""
	}
	target, err := os.Readlink(path)
	if err != nil {
		return true, ""
	}
	return true, target
}

// CreateSymlink creates link pointing at target.
func (OSFileSystem) CreateSymlink(target, link string) error {
	return os.Symlink(target, link)
}

// Rename moves oldPath to newPath.
func (OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Remove deletes a file or an empty directory or a symlink.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// MkdirAll creates path and any missing parents.
func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ReadFile reads a whole file.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

var _ FileSystem = OSFileSystem{}

// ExpandPath expands a leading ~ to home.
func ExpandPath(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
