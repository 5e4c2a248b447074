package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"setup-dotfiles/internal/logger"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/system"
)

//go:embed default.yaml
var defaultConfig []byte

// Load reads the provisioning config at path, or the embedded default when path is empty.
// The format follows the extension: .toml is TOML, anything else YAML.
// home is used to expand "~" in paths.
func Load(path, home string) (*Config, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		logger.Debug("[DEBUG] Using embedded default config\n")
		data = defaultConfig
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var raw rawConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", displayName(path), err)
	}

	cfg, err := raw.resolve(home)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", displayName(path), err)
	}
	return cfg, nil
}

func displayName(path string) string {
	if path == "" {
		return "(embedded default)"
	}
	return path
}

// resolve validates the raw document and turns it into a Config with absolute paths.
func (r rawConfig) resolve(home string) (*Config, error) {
	if r.DotfilesRoot == "" {
		return nil, fmt.Errorf("dotfiles_root is required")
	}
	root := system.ExpandPath(r.DotfilesRoot, home)

	cfg := &Config{
		DotfilesRoot: root,
		Packages:     make(map[platform.Platform][]PackageSpec),
	}

	for key, pkgs := range r.Packages {
		p, err := platform.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("packages: %w", err)
		}
		for _, pkg := range pkgs {
			if err := validatePackage(p, pkg); err != nil {
				return nil, err
			}
		}
		cfg.Packages[p] = pkgs
	}

	for i, l := range r.Links {
		if l.Source == "" || l.Target == "" {
			return nil, fmt.Errorf("links[%d]: source and target are required", i)
		}
		ps, err := parsePlatforms(l.Platforms)
		if err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
		cfg.Links = append(cfg.Links, Link{
			Source:    underRoot(root, home, l.Source),
			Target:    system.ExpandPath(l.Target, home),
			Platforms: ps,
		})
	}

	for i, s := range r.Services {
		if s.Name == "" {
			return nil, fmt.Errorf("services[%d]: name is required", i)
		}
		ps, err := parsePlatforms(s.Platforms)
		if err != nil {
			return nil, fmt.Errorf("services[%d]: %w", i, err)
		}
		cfg.Services = append(cfg.Services, Service{Name: s.Name, Platforms: ps})
	}

	for i, f := range r.Fonts {
		if f.Name == "" || f.Repo == "" || f.Tag == "" || f.Asset == "" {
			return nil, fmt.Errorf("fonts[%d]: name, repo, tag and asset are required", i)
		}
		ps, err := parsePlatforms(f.Platforms)
		if err != nil {
			return nil, fmt.Errorf("fonts[%d]: %w", i, err)
		}
		cfg.Fonts = append(cfg.Fonts, Font{Name: f.Name, Repo: f.Repo, Tag: f.Tag, Asset: f.Asset, Platforms: ps})
	}

	for i, st := range r.Settings {
		if st.Domain == "" || st.Key == "" {
			return nil, fmt.Errorf("settings[%d]: domain and key are required", i)
		}
		switch st.Type {
		case "", "string", "bool", "int", "float":
		default:
			return nil, fmt.Errorf("settings[%d]: unknown type %q", i, st.Type)
		}
		cfg.Settings = append(cfg.Settings, st)
	}

	if r.Wallpaper != "" {
		cfg.Wallpaper = underRoot(root, home, r.Wallpaper)
	}

	return cfg, nil
}

// validatePackage checks that the package kind is installable on p.
func validatePackage(p platform.Platform, pkg PackageSpec) error {
	if pkg.Name == "" {
		return fmt.Errorf("packages.%s: package with empty name", p)
	}
	switch pkg.Kind {
	case KindFormula, KindCask:
		if p != platform.MacOS {
			return fmt.Errorf("packages.%s: %s is a %s, only valid on macos", p, pkg.Name, pkg.Kind)
		}
	case KindSystem:
		if !p.IsLinux() {
			return fmt.Errorf("packages.%s: %s is a system package, only valid on linux", p, pkg.Name)
		}
	default:
		return fmt.Errorf("packages.%s: %s has unknown kind %q", p, pkg.Name, pkg.Kind)
	}
	return nil
}

func parsePlatforms(names []string) (Platforms, error) {
	var ps Platforms
	for _, n := range names {
		p, err := platform.Parse(n)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// underRoot resolves p against the dotfiles root unless it is already absolute or ~-relative.
func underRoot(root, home, p string) string {
	expanded := system.ExpandPath(p, home)
	if filepath.IsAbs(expanded) {
		return expanded
	}
	return filepath.Join(root, expanded)
}
