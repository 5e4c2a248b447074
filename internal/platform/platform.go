// Package platform classifies the host into one of the supported provisioning targets.
package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Platform is one of the closed set of supported hosts.
type Platform string

const (
	// MacOS is any Darwin host.
	MacOS Platform = "macos"
	// Ubuntu covers the ubuntu/debian family.
	Ubuntu Platform = "ubuntu"
	// Arch covers the arch/manjaro family.
	Arch Platform = "arch"
)

// All lists the supported platforms in display order.
var All = []Platform{MacOS, Ubuntu, Arch}

// DefaultOSReleasePath is where Linux distributions publish their identity.
const DefaultOSReleasePath = "/etc/os-release"

// ErrUnsupportedPlatform is matched by every UnsupportedPlatformError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError reports a kernel or distribution outside the supported set.
// Err is set when the distribution could not be identified at all.
type UnsupportedPlatformError struct {
	Kernel   string
	DistroID string
	Err      error
}

func (e *UnsupportedPlatformError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("unsupported platform: kernel %q, distribution unknown: %v", e.Kernel, e.Err)
	case e.DistroID == "":
		return fmt.Sprintf("unsupported platform: kernel %q", e.Kernel)
	default:
		return fmt.Sprintf("unsupported platform: kernel %q, distribution %q", e.Kernel, e.DistroID)
	}
}

// Is lets errors.Is match against ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

func (e *UnsupportedPlatformError) Unwrap() error {
	return e.Err
}

// distroFamilies maps os-release IDs to their platform bucket.
var distroFamilies = map[string]Platform{
	"ubuntu":  Ubuntu,
	"debian":  Ubuntu,
	"arch":    Arch,
	"manjaro": Arch,
}

// Classify maps a kernel name (runtime.GOOS style) and a distribution ID to a Platform.
func Classify(kernel, distroID string) (Platform, error) {
	kernel = strings.ToLower(strings.TrimSpace(kernel))
	distroID = strings.ToLower(strings.TrimSpace(distroID))

	switch kernel {
	case "darwin":
		return MacOS, nil
	case "linux":
		if p, ok := distroFamilies[distroID]; ok {
			return p, nil
		}
	}
	return "", &UnsupportedPlatformError{Kernel: kernel, DistroID: distroID}
}

// Parse converts a platform name as written in configuration into a Platform.
func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (want one of macos, ubuntu, arch)", s)
}

// String returns the platform name.
func (p Platform) String() string {
	return string(p)
}

// IsLinux reports whether the platform is one of the Linux buckets.
func (p Platform) IsLinux() bool {
	return p == Ubuntu || p == Arch
}

// Detector inspects the running host.
type Detector struct {
	// GOOS is the kernel signal; defaults to runtime.GOOS.
	GOOS string
	// OSReleasePath is read on Linux to find the distribution ID.
	OSReleasePath string
}

// NewDetector returns a Detector for the current host.
func NewDetector() *Detector {
	return &Detector{
		GOOS:          runtime.GOOS,
		OSReleasePath: DefaultOSReleasePath,
	}
}

// Detect classifies the host. It does no caching; callers run it once per provisioning run.
func (d *Detector) Detect() (Platform, error) {
	if d.GOOS != "linux" {
		return Classify(d.GOOS, "")
	}

	id, err := ReadDistroID(d.OSReleasePath)
	if err != nil {
		return "", &UnsupportedPlatformError{Kernel: d.GOOS, Err: fmt.Errorf("read %s: %w", d.OSReleasePath, err)}
	}
	return Classify(d.GOOS, id)
}

// ReadDistroID returns the ID field of an os-release file.
func ReadDistroID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ParseDistroID(data)
}

// ParseDistroID extracts ID from os-release content (KEY=value lines, optionally quoted).
func ParseDistroID(data []byte) (string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:       true,
		SkipUnrecognizableLines:   true,
		UnescapeValueDoubleQuotes: true,
	}, data)
	if err != nil {
		return "", fmt.Errorf("parse os-release: %w", err)
	}
	id := strings.Trim(cfg.Section(ini.DefaultSection).Key("ID").String(), `"'`)
	return strings.ToLower(id), nil
}
