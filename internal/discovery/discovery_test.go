package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"monoscope/internal/catalog"
	"monoscope/internal/config"
	"monoscope/internal/extract"
	"monoscope/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDirStructure(t *testing.T, structure map[string]string) string {
	t.Helper()

	tempDir := t.TempDir()
	for path, content := range structure {
		fullPath := filepath.Join(tempDir, filepath.FromSlash(path))
		if strings.HasSuffix(path, "/") {
			require.NoError(t, os.MkdirAll(fullPath, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
	return tempDir
}

func newDiscoverer(t *testing.T, root string, categories ...string) *Discoverer {
	t.Helper()
	s := config.Settings{Root: root}
	if len(categories) > 0 {
		s.Categories = categories
	}
	cfg, err := config.New(s)
	require.NoError(t, err)
	logger, _ := logging.NewTestLogger()
	return New(cfg, extract.New(cfg), logger)
}

func packageNames(pkgs []catalog.PackageDescription) []string {
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, p.Category+"/"+p.Name)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"crud/widget/composer.json":    `{"name": "monorepo/widget", "autoload": {"psr-4": {"W\\": "src/"}}}`,
		"crud/billing/composer.json":   `{"name": "monorepo/billing", "autoload": {"psr-4": {"B\\": "src/"}}}`,
		"crud/emptyreq/composer.json":  `{"name": "monorepo/emptyreq", "require": [], "autoload": {"psr-4": {"E\\": "src/"}}}`,
		"crud/_skeleton/composer.json": `{"name": "monorepo/skeleton"}`,
		"crud/.hidden/composer.json":   `{"name": "monorepo/hidden"}`,
		"crud/notes/README.md":         "not a package",
		"crud/broken/composer.json":    `{"name": `,
		"blade/forms/composer.json":    `{"name": "monorepo/forms"}`,
		"unlisted/x/composer.json":     `{"name": "monorepo/x"}`,
		"crud/README.md":               "file, not a dir",
	})

	result, err := newDiscoverer(t, root, "blade", "crud", "api").Discover()
	require.NoError(t, err)

	assert.Equal(t, []string{"blade/forms", "crud/billing", "crud/emptyreq", "crud/widget"}, packageNames(result.Packages))
	assert.Equal(t, catalog.KindBlade, result.Packages[0].Kind)

	var skipped []string
	for _, s := range result.Skipped {
		skipped = append(skipped, filepath.Base(s.Path))
	}
	assert.ElementsMatch(t, []string{"broken", "notes"}, skipped)
}

func TestDiscover_Idempotent(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"crud/widget/composer.json":         `{"name": "monorepo/widget", "autoload": {"psr-4": {"W\\": "src/"}}}`,
		"crud/widget/src/Models/Widget.php": "<?php",
	})
	d := newDiscoverer(t, root)

	first, err := d.Discover()
	require.NoError(t, err)
	second, err := d.Discover()
	require.NoError(t, err)

	assert.Equal(t, first.Packages, second.Packages)
}

func TestDiscover_DumpsPackagesAtDebug(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"crud/widget/composer.json": `{"name": "monorepo/widget", "autoload": {"psr-4": {"W\\": "src/"}}}`,
	})
	cfg, err := config.New(config.Settings{Root: root})
	require.NoError(t, err)
	logger, buf := logging.NewTestLogger()

	_, err = New(cfg, extract.New(cfg), logger).Discover()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Object dump")
	assert.Contains(t, buf.String(), "name=widget")
}

func TestDiscover_RootErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := newDiscoverer(t, missing).Discover()
	assert.ErrorIs(t, err, ErrRootUnreadable)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = newDiscoverer(t, file).Discover()
	assert.ErrorIs(t, err, ErrRootUnreadable)
}

func TestDiscover_EmptyRoot(t *testing.T) {
	result, err := newDiscoverer(t, t.TempDir()).Discover()
	require.NoError(t, err)
	assert.Empty(t, result.Packages)
	assert.Empty(t, result.Skipped)
}
