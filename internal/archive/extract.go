// Package archive unpacks downloaded release archives.
package archive

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"setup-dotfiles/internal/logger"
)

// ErrUnsafePath is returned for entries that would land outside the destination.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Supported lists the archive suffixes Extract understands.
var Supported = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar", ".zip", ".7z"}

// IsSupported reports whether name has a known archive suffix.
func IsSupported(name string) bool {
	for _, ext := range Supported {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return true
		}
	}
	return false
}

// Extract unpacks src into dest and returns the regular files written, in archive order.
func Extract(src, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] %s is a zip archive\n", src)
		return extractZip(src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] %s is a 7z archive\n", src)
		return extract7z(src, dest)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"):
		logger.Debug("[DEBUG] %s is a tar archive\n", src)
		return extractTar(src, lower, dest)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", src)
	}
}

// extractTar handles tar and its compressed variants.
func extractTar(src, lower, dest string) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		reader = xzr
	}

	var written []string
	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return written, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return written, err
			}
			written = append(written, target)
		default:
			logger.Debug("[DEBUG] Skipping tar entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
	return written, nil
}

// extractZip extracts a .zip archive.
func extractZip(src, dest string) ([]string, error) {
	// Non-local names are rejected per entry by safeJoin below.
	r, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, err
	}
	defer r.Close()

	var written []string
	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return written, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return written, err
		}
		err = writeFile(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// extract7z handles .7z extraction using the sevenzip library.
func extract7z(src, dest string) ([]string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	var written []string
	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return written, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return written, err
		}
		err = writeFile(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// safeJoin joins name onto dest, rejecting absolute names and ".." escapes.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
