// Package query answers read-only questions about indexed packages.
//
// Most operations read only the cached descriptions. FindTraitUsages and
// Relationships re-read model source text on every call, because trait usage
// and associations are not captured at extraction time. Health re-probes the
// package directory. A file that disappears between discovery and a query is
// treated as absent for that probe.
package query

import (
	"errors"
	"fmt"
	"strings"

	"monoscope/internal/catalog"
	"monoscope/internal/config"
	"monoscope/internal/extract"
	"monoscope/internal/index"
	"monoscope/internal/logging"
)

var ErrEmptyQuery = errors.New("query must not be empty")

// Source is the read side of the package index.
type Source interface {
	Get(name string) (catalog.PackageDescription, error)
	All() []catalog.PackageDescription
}

var _ Source = (*index.Index)(nil)

// Engine evaluates queries against a Source.
type Engine struct {
	src    Source
	cfg    config.Config
	layout extract.Layout
	text   extract.TextExtractor
	logger *logging.AppLogger
}

// New builds an Engine sharing the extractor's layout and text heuristics.
func New(src Source, cfg config.Config, x *extract.Extractor, logger *logging.AppLogger) *Engine {
	return &Engine{
		src:    src,
		cfg:    cfg,
		layout: x.Layout(),
		text:   x.TextExtractor(),
		logger: logger,
	}
}

// Lookup returns the named package. Unknown names yield an error wrapping
// index.ErrPackageNotFound.
func (e *Engine) Lookup(name string) (catalog.PackageDescription, error) {
	return e.src.Get(strings.TrimSpace(name))
}

// ListFilter restricts List by exact category and/or kind. Empty fields
// match everything.
type ListFilter struct {
	Category string
	Kind     catalog.Kind
}

// List returns package summaries in index order.
func (e *Engine) List(f ListFilter) []catalog.Summary {
	out := []catalog.Summary{}
	for _, p := range e.src.All() {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Kind != "" && p.Kind != f.Kind {
			continue
		}
		out = append(out, p.Summarize())
	}
	return out
}

// MatchKind says which field of a package a search hit came from.
type MatchKind string

const (
	MatchPackage   MatchKind = "package"
	MatchModel     MatchKind = "model"
	MatchTrait     MatchKind = "trait"
	MatchComponent MatchKind = "component"
)

// Match is one search hit.
type Match struct {
	Package  string    `json:"package"`
	Category string    `json:"category"`
	Kind     MatchKind `json:"kind"`
	Value    string    `json:"value"`
}

// Search reports every package name, model, trait and UI component that
// contains query, case-insensitively. Hits are unranked: index order, and
// within a package name, models, traits, components in that order.
func (e *Engine) Search(query string) ([]Match, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}

	out := []Match{}
	for _, p := range e.src.All() {
		hit := func(kind MatchKind, value string) {
			if strings.Contains(strings.ToLower(value), q) {
				out = append(out, Match{Package: p.Name, Category: p.Category, Kind: kind, Value: value})
			}
		}
		hit(MatchPackage, p.Name)
		for _, m := range p.Models {
			hit(MatchModel, m)
		}
		for _, tr := range p.Traits {
			hit(MatchTrait, tr)
		}
		for _, c := range p.UIComponents {
			hit(MatchComponent, c)
		}
	}
	return out, nil
}

func (e *Engine) lookupBoth(a, b string) (catalog.PackageDescription, catalog.PackageDescription, error) {
	pa, err := e.Lookup(a)
	if err != nil {
		return pa, catalog.PackageDescription{}, err
	}
	pb, err := e.Lookup(b)
	if err != nil {
		return pa, pb, err
	}
	return pa, pb, nil
}

func percent(passed, total int) int {
	if total == 0 {
		return 100
	}
	// round half up on non-negative integers
	return (passed*200 + total) / (2 * total)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
