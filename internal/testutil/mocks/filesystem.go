package mocks

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"setup-dotfiles/internal/system"
)

// FileSystem is a thread-safe, map-backed test double for system.FileSystem.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	symlinks map[string]string
	dirs     map[string]bool
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		symlinks: make(map[string]string),
		dirs:     make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (fs *FileSystem) AddFile(path, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = []byte(content)
}

// AddSymlink adds a symlink to the mock filesystem.
func (fs *FileSystem) AddSymlink(link, target string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.symlinks[link] = target
}

// AddDir adds a directory to the mock filesystem.
func (fs *FileSystem) AddDir(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
}

// Exists checks for a file, symlink or directory.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, file := fs.files[path]
	_, link := fs.symlinks[path]
	return file || link || fs.dirs[path]
}

// IsDir checks for a directory.
func (fs *FileSystem) IsDir(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.dirs[path]
}

// IsSymlink checks for a symlink and returns its target.
func (fs *FileSystem) IsSymlink(path string) (bool, string) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if target, ok := fs.symlinks[path]; ok {
		return true, target
	}
	return false, ""
}

// CreateSymlink fails like os.Symlink when something already occupies link.
func (fs *FileSystem) CreateSymlink(target, link string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, file := fs.files[link]
	_, sym := fs.symlinks[link]
	if file || sym || fs.dirs[link] {
		return &os.LinkError{Op: "symlink", Old: target, New: link, Err: os.ErrExist}
	}
	fs.symlinks[link] = target
	return nil
}

// Rename moves a file, symlink, or directory tree.
func (fs *FileSystem) Rename(oldPath, newPath string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if content, ok := fs.files[oldPath]; ok {
		fs.files[newPath] = content
		delete(fs.files, oldPath)
		return nil
	}
	if target, ok := fs.symlinks[oldPath]; ok {
		fs.symlinks[newPath] = target
		delete(fs.symlinks, oldPath)
		return nil
	}
	if fs.dirs[oldPath] {
		prefix := oldPath + "/"
		for p := range fs.dirs {
			if p == oldPath || strings.HasPrefix(p, prefix) {
				fs.dirs[newPath+strings.TrimPrefix(p, oldPath)] = true
				delete(fs.dirs, p)
			}
		}
		for p, content := range fs.files {
			if strings.HasPrefix(p, prefix) {
				fs.files[newPath+strings.TrimPrefix(p, oldPath)] = content
				delete(fs.files, p)
			}
		}
		return nil
	}
	return fmt.Errorf("file not found: %s", oldPath)
}

// Remove removes a path.
func (fs *FileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, path)
	delete(fs.symlinks, path)
	delete(fs.dirs, path)
	return nil
}

// MkdirAll records a directory.
func (fs *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
	return nil
}

// ReadFile reads a file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if content, ok := fs.files[path]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

var _ system.FileSystem = (*FileSystem)(nil)
