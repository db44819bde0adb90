// Package discovery walks the monorepo's category directories and extracts a
// description for every package it finds.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"monoscope/internal/catalog"
	"monoscope/internal/config"
	"monoscope/internal/extract"
	"monoscope/internal/logging"
	"monoscope/internal/manifest"
	"monoscope/pkg/fileops"
)

// ErrRootUnreadable is the only fatal discovery error.
var ErrRootUnreadable = errors.New("repository root unreadable")

// Skipped records a candidate directory that did not yield a package.
type Skipped struct {
	Path   string
	Reason string
}

// Result is the outcome of one full pass, packages in discovery order.
type Result struct {
	Packages []catalog.PackageDescription
	Skipped  []Skipped
}

// Discoverer drives the manifest reader and extractor over a monorepo.
type Discoverer struct {
	cfg       config.Config
	extractor *extract.Extractor
	logger    *logging.AppLogger
}

func New(cfg config.Config, extractor *extract.Extractor, logger *logging.AppLogger) *Discoverer {
	return &Discoverer{cfg: cfg, extractor: extractor, logger: logger}
}

// Discover runs one full pass. Categories are visited in configured order and
// packages within a category in directory-name order.
//
// Per-package problems (no manifest, malformed manifest) are logged and
// recorded in Result.Skipped. Only an unreadable root aborts the pass.
func (d *Discoverer) Discover() (*Result, error) {
	start := time.Now()
	defer d.logger.LogPerformance("discovery", start)

	root := d.cfg.Root()
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}

	result := &Result{}
	for _, category := range d.cfg.Categories() {
		d.discoverCategory(filepath.Join(root, category), category, result)
	}

	d.logger.Info("Discovery completed",
		"root", root,
		"packages", len(result.Packages),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (d *Discoverer) discoverCategory(dir, category string, result *Result) {
	if !fileops.IsDir(dir) {
		d.logger.Debug("Category directory absent", "category", category, "path", dir)
		return
	}

	entries, err := fileops.ListEntries(dir, fileops.PackageDirs)
	if err != nil {
		d.logger.Warn("Cannot read category directory, skipping", "category", category, "error", err)
		result.Skipped = append(result.Skipped, Skipped{Path: dir, Reason: err.Error()})
		return
	}

	for _, entry := range entries {
		pkg, err := d.discoverPackage(entry.Path, category)
		if err != nil {
			if errors.Is(err, manifest.ErrNoManifest) {
				d.logger.Debug("Not a package, skipping", "path", entry.Path)
			} else {
				d.logger.Warn("Skipping package", "path", entry.Path, "error", err)
			}
			result.Skipped = append(result.Skipped, Skipped{Path: entry.Path, Reason: err.Error()})
			continue
		}
		d.logger.Debug("Discovered package", "name", pkg.Name, "category", category, "kind", pkg.Kind)
		d.logger.DebugObject(pkg.Name, pkg)
		result.Packages = append(result.Packages, pkg)
	}
}

func (d *Discoverer) discoverPackage(dir, category string) (catalog.PackageDescription, error) {
	m, err := manifest.Read(dir, d.cfg.Vendor())
	if err != nil {
		return catalog.PackageDescription{}, err
	}
	return d.extractor.Extract(dir, category, m), nil
}
