// Package manifest reads a package's composer.json declaration.
//
// Read distinguishes three outcomes: a parsed Manifest, ErrNoManifest when the
// directory simply is not a package, and ErrMalformedManifest when the file
// exists but cannot be decoded. Discovery skips both error cases for that one
// package and keeps going.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FileName is the manifest file expected at every package root.
const FileName = "composer.json"

var (
	// ErrNoManifest means the directory has no manifest and is not a package.
	ErrNoManifest = errors.New("no manifest")

	// ErrMalformedManifest means the manifest exists but is not valid JSON of
	// the expected shape.
	ErrMalformedManifest = errors.New("malformed manifest")
)

// AutoloadEntry is one PSR-4 mapping in declaration order.
type AutoloadEntry struct {
	Namespace string
	Path      string
}

// Manifest is the subset of composer.json the extractor needs.
type Manifest struct {
	// Identity is the raw declared package name (e.g. "monorepo/widget"),
	// possibly empty.
	Identity string

	// Autoload lists PSR-4 entries in file order. Only the first is used.
	Autoload []AutoloadEntry

	// Dependencies are the required packages from the same vendor, with the
	// vendor prefix removed, in file order.
	Dependencies []string

	vendorPrefix string
}

// Object-valued fields stay raw because PHP's json_encode writes an empty
// associative array as [].
type rawManifest struct {
	Name     string          `json:"name"`
	Require  json.RawMessage `json:"require"`
	Autoload json.RawMessage `json:"autoload"`
}

type rawAutoload struct {
	PSR4 json.RawMessage `json:"psr-4"`
}

// Read loads root/composer.json. vendor selects which required packages count
// as monorepo dependencies.
func Read(root, vendor string) (*Manifest, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data, vendor)
}

// Parse decodes manifest bytes.
func Parse(data []byte, vendor string) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	prefix := strings.Trim(vendor, "/") + "/"
	m := &Manifest{Identity: strings.TrimSpace(raw.Name), vendorPrefix: prefix}

	var autoload rawAutoload
	if err := decodeObject(raw.Autoload, &autoload); err != nil {
		return nil, fmt.Errorf("%w: autoload: %v", ErrMalformedManifest, err)
	}

	psr4 := orderedmap.New[string, any]()
	if err := decodeObject(autoload.PSR4, psr4); err != nil {
		return nil, fmt.Errorf("%w: psr-4: %v", ErrMalformedManifest, err)
	}
	for pair := psr4.Oldest(); pair != nil; pair = pair.Next() {
		m.Autoload = append(m.Autoload, AutoloadEntry{
			Namespace: pair.Key,
			Path:      autoloadPath(pair.Value),
		})
	}

	requires := orderedmap.New[string, string]()
	if err := decodeObject(raw.Require, requires); err != nil {
		return nil, fmt.Errorf("%w: require: %v", ErrMalformedManifest, err)
	}
	for pair := requires.Oldest(); pair != nil; pair = pair.Next() {
		if dep, ok := strings.CutPrefix(pair.Key, prefix); ok && dep != "" {
			m.Dependencies = append(m.Dependencies, dep)
		}
	}

	return m, nil
}

// decodeObject unmarshals a JSON object into v. Absent, null and empty-array
// values leave v untouched.
func decodeObject(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return errors.New("expected an object, got a non-empty array")
	}
	return json.Unmarshal(trimmed, v)
}

// ShortName returns the identity without the organization prefix, or "" when
// the manifest declares no identity. Identities from other vendors are
// returned whole.
func (m *Manifest) ShortName() string {
	if short, ok := strings.CutPrefix(m.Identity, m.vendorPrefix); ok {
		return short
	}
	return m.Identity
}

// HasAutoload reports whether any PSR-4 namespace is declared.
func (m *Manifest) HasAutoload() bool {
	return len(m.Autoload) > 0
}

// PrimaryNamespace returns the first PSR-4 namespace with trailing
// separators removed, and whether one exists.
func (m *Manifest) PrimaryNamespace() (string, bool) {
	if !m.HasAutoload() {
		return "", false
	}
	return strings.TrimRight(m.Autoload[0].Namespace, `\`), true
}

// autoloadPath accepts both "src/" and ["src/", "lib/"] forms.
func autoloadPath(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case []any:
		if len(p) > 0 {
			if s, ok := p[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
