// Package config holds the static configuration monoscope runs with: where the
// monorepo lives, which category directories to walk, and the naming
// conventions the extractor and health checks rely on.
//
// Settings is the mutable, file-shaped input. Config is the validated,
// immutable value built from it once at startup and handed to every component.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"monoscope/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "monoscope" // application name used for config directory

// Environment overrides, applied after the config file.
const (
	EnvRoot   = "MONOSCOPE_ROOT"
	EnvVendor = "MONOSCOPE_VENDOR"
)

const defaultMaxFileSize int64 = 2 * 1024 * 1024

var ErrInvalidConfig = errors.New("invalid configuration")

// Settings mirrors the YAML configuration file.
type Settings struct {
	// Root is the monorepo root directory.
	Root                  string   `yaml:"root"`
	Vendor                string   `yaml:"vendor"`
	Categories            []string `yaml:"categories"`
	UtilityPackages       []string `yaml:"utility_packages"`
	NamespacePrefix       string   `yaml:"namespace_prefix"`
	RecommendedDependency string   `yaml:"recommended_dependency"`
	MaxFileSize           int64    `yaml:"max_file_size"`

	// ComponentsKey names the array in each package config that registers
	// UI components.
	ComponentsKey string `yaml:"components_key"`
}

// DefaultSettings returns Settings with the conventional category layout.
func DefaultSettings() Settings {
	return Settings{
		Vendor:                "monorepo",
		Categories:            []string{"crud", "utility", "blade", "api", "template", "meta"},
		UtilityPackages:       []string{"core", "support", "helpers", "testing"},
		NamespacePrefix:       "Monorepo",
		RecommendedDependency: "core",
		MaxFileSize:           defaultMaxFileSize,
		ComponentsKey:         "livewire",
	}
}

// Config is the validated configuration. All accessors return copies so a
// Config can be shared freely after construction.
type Config struct {
	root                  string
	vendor                string
	categories            []string
	utilityPackages       []string
	namespacePrefix       string
	recommendedDependency string
	maxFileSize           int64
	componentsKey         string
}

// New validates s, fills unset optional fields from DefaultSettings and
// returns the resulting Config.
func New(s Settings) (Config, error) {
	def := DefaultSettings()

	root := strings.TrimSpace(s.Root)
	if root == "" {
		return Config{}, fmt.Errorf("%w: repository root is required", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return Config{}, fmt.Errorf("%w: cannot resolve root %q: %v", ErrInvalidConfig, root, err)
	}

	categories := s.Categories
	if categories == nil {
		categories = def.Categories
	}
	if len(categories) == 0 {
		return Config{}, fmt.Errorf("%w: at least one category is required", ErrInvalidConfig)
	}
	for _, c := range categories {
		if strings.TrimSpace(c) == "" || strings.ContainsAny(c, `/\`) {
			return Config{}, fmt.Errorf("%w: bad category name %q", ErrInvalidConfig, c)
		}
	}

	componentsKey := firstNonEmpty(s.ComponentsKey, def.ComponentsKey)
	if strings.ContainsAny(componentsKey, "'\"\n") {
		return Config{}, fmt.Errorf("%w: bad components key %q", ErrInvalidConfig, componentsKey)
	}

	utility := s.UtilityPackages
	if utility == nil {
		utility = def.UtilityPackages
	}

	cfg := Config{
		root:                  abs,
		vendor:                strings.Trim(firstNonEmpty(s.Vendor, def.Vendor), "/"),
		categories:            slices.Clone(categories),
		utilityPackages:       slices.Clone(utility),
		namespacePrefix:       strings.TrimRight(firstNonEmpty(s.NamespacePrefix, def.NamespacePrefix), `\`),
		recommendedDependency: firstNonEmpty(s.RecommendedDependency, def.RecommendedDependency),
		maxFileSize:           s.MaxFileSize,
		componentsKey:         componentsKey,
	}
	if cfg.maxFileSize <= 0 {
		cfg.maxFileSize = def.MaxFileSize
	}
	return cfg, nil
}

func (c Config) Root() string                  { return c.root }
func (c Config) Vendor() string                { return c.vendor }
func (c Config) Categories() []string          { return slices.Clone(c.categories) }
func (c Config) UtilityPackages() []string     { return slices.Clone(c.utilityPackages) }
func (c Config) NamespacePrefix() string       { return c.namespacePrefix }
func (c Config) RecommendedDependency() string { return c.recommendedDependency }
func (c Config) MaxFileSize() int64            { return c.maxFileSize }
func (c Config) ComponentsKey() string         { return c.componentsKey }

// IsUtility reports whether name is on the utility allowlist.
func (c Config) IsUtility(name string) bool {
	return slices.Contains(c.utilityPackages, name)
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// Load reads Settings from the standard location. A missing file is not an
// error: defaults are returned so the root can still come from the
// environment or flags.
func Load() (Settings, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logging.Debug("No config file, using defaults", "path", path)
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom loads Settings from a specific path, layered over the defaults
func LoadFrom(path string) (Settings, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	s := DefaultSettings()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return s, nil
}

// ApplyEnv overlays environment overrides onto s.
func ApplyEnv(s *Settings) {
	if v := strings.TrimSpace(os.Getenv(EnvRoot)); v != "" {
		s.Root = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVendor)); v != "" {
		s.Vendor = v
	}
	if v := strings.TrimSpace(os.Getenv("MONOSCOPE_MAX_FILE_SIZE")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.MaxFileSize = n
		} else {
			logging.Warn("Ignoring invalid MONOSCOPE_MAX_FILE_SIZE", "value", v)
		}
	}
}

// SaveTo writes s as YAML to path, creating parent directories.
func (s Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
