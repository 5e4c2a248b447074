package config

import (
	"setup-dotfiles/internal/platform"
)

// Kind says which package manager channel installs a package.
type Kind string

const (
	// KindFormula is a Homebrew formula.
	KindFormula Kind = "formula"
	// KindCask is a Homebrew cask (GUI apps, fonts).
	KindCask Kind = "cask"
	// KindSystem is a native Linux package (apt or pacman).
	KindSystem Kind = "system"
)

// PackageSpec is one entry of the platform package table.
// Packages of the same kind carry no ordering among themselves.
type PackageSpec struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Kind Kind   `yaml:"kind" toml:"kind" json:"kind"`
}

// Platforms restricts an entry to some platforms. Empty means every platform.
type Platforms []platform.Platform

// Includes reports whether p is allowed.
func (ps Platforms) Includes(p platform.Platform) bool {
	if len(ps) == 0 {
		return true
	}
	for _, candidate := range ps {
		if candidate == p {
			return true
		}
	}
	return false
}

// Link is a dotfile symlink: Target (in $HOME) points at Source (in the dotfiles tree).
type Link struct {
	Source    string
	Target    string
	Platforms Platforms
}

// Service is a companion background service kept running across reboots.
type Service struct {
	Name      string
	Platforms Platforms
}

// Font is a release archive of font files fetched from GitHub.
// - Repo: GitHub repo, e.g. ryanoasis/nerd-fonts.
// - Tag: release tag, e.g. v3.2.1.
// - Asset: archive name within the release, e.g. JetBrainsMono.tar.xz.
type Font struct {
	Name      string
	Repo      string
	Tag       string
	Asset     string
	Platforms Platforms
}

// Setting is a macOS user default written with `defaults write`.
// Type is one of bool, int, float or string; empty means string.
type Setting struct {
	Domain string `yaml:"domain" toml:"domain"`
	Key    string `yaml:"key" toml:"key"`
	Type   string `yaml:"type" toml:"type"`
	Value  string `yaml:"value" toml:"value"`
}

// Config is the static provisioning data consumed by the step list.
type Config struct {
	DotfilesRoot string
	Packages     map[platform.Platform][]PackageSpec
	Links        []Link
	Services     []Service
	Wallpaper    string
	Fonts        []Font
	Settings     []Setting
}

// PackagesFor returns the package table row for p.
func (c *Config) PackagesFor(p platform.Platform) []PackageSpec {
	return c.Packages[p]
}

// LinksFor returns the links eligible on p.
func (c *Config) LinksFor(p platform.Platform) []Link {
	var out []Link
	for _, l := range c.Links {
		if l.Platforms.Includes(p) {
			out = append(out, l)
		}
	}
	return out
}

// ServicesFor returns the services eligible on p.
func (c *Config) ServicesFor(p platform.Platform) []Service {
	var out []Service
	for _, s := range c.Services {
		if s.Platforms.Includes(p) {
			out = append(out, s)
		}
	}
	return out
}

// FontsFor returns the fonts eligible on p.
func (c *Config) FontsFor(p platform.Platform) []Font {
	var out []Font
	for _, f := range c.Fonts {
		if f.Platforms.Includes(p) {
			out = append(out, f)
		}
	}
	return out
}

// rawConfig mirrors the on-disk layout shared by the YAML and TOML formats.
type rawConfig struct {
	DotfilesRoot string                   `yaml:"dotfiles_root" toml:"dotfiles_root"`
	Packages     map[string][]PackageSpec `yaml:"packages" toml:"packages"`
	Links        []rawLink                `yaml:"links" toml:"links"`
	Services     []rawService             `yaml:"services" toml:"services"`
	Wallpaper    string                   `yaml:"wallpaper" toml:"wallpaper"`
	Fonts        []rawFont                `yaml:"fonts" toml:"fonts"`
	Settings     []Setting                `yaml:"settings" toml:"settings"`
}

type rawLink struct {
	Source    string   `yaml:"source" toml:"source"`
	Target    string   `yaml:"target" toml:"target"`
	Platforms []string `yaml:"platforms" toml:"platforms"`
}

type rawService struct {
	Name      string   `yaml:"name" toml:"name"`
	Platforms []string `yaml:"platforms" toml:"platforms"`
}

type rawFont struct {
	Name      string   `yaml:"name" toml:"name"`
	Repo      string   `yaml:"repo" toml:"repo"`
	Tag       string   `yaml:"tag" toml:"tag"`
	Asset     string   `yaml:"asset" toml:"asset"`
	Platforms []string `yaml:"platforms" toml:"platforms"`
}
