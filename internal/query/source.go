package query

import (
	"errors"
	"fmt"
	"strings"

	"monoscope/internal/catalog"
	"monoscope/internal/extract"
	"monoscope/pkg/fileops"
)

var ErrModelNotFound = errors.New("model not found")

// TraitUsage is a model file that appears to use a trait.
type TraitUsage struct {
	Package string `json:"package"`
	Model   string `json:"model"`
	File    string `json:"file"`
}

// FindTraitUsages re-scans model files for "use <trait>" / "use Has<trait>".
// Packages that declare a matching trait themselves are skipped so the
// defining package never reports its own declaration site.
func (e *Engine) FindTraitUsages(trait string) ([]TraitUsage, error) {
	trait = strings.TrimSpace(trait)
	if trait == "" {
		return nil, ErrEmptyQuery
	}

	out := []TraitUsage{}
	for _, p := range e.src.All() {
		if declaresTrait(p, trait) {
			continue
		}
		for _, f := range e.modelFiles(p) {
			text := fileops.ReadTextOrEmpty(f.Path, e.cfg.MaxFileSize())
			if text != "" && e.text.UsesTrait(text, trait) {
				out = append(out, TraitUsage{Package: p.Name, Model: f.Stem(), File: f.Path})
			}
		}
	}
	e.logger.Debug("Trait usage scan", "trait", trait, "matches", len(out))
	return out, nil
}

func declaresTrait(p catalog.PackageDescription, trait string) bool {
	needle := strings.ToLower(trait)
	for _, t := range p.Traits {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// ModelRelationships is the result of Relationships.
type ModelRelationships struct {
	Package string `json:"package"`
	Model   string `json:"model"`
	File    string `json:"file"`
	catalog.RelationshipSet
}

// Relationships finds the first package, in index order, whose Models
// directory holds a file for model, and extracts its associations. Scanning
// stops at that first package even when later packages define a model with
// the same name.
func (e *Engine) Relationships(model string) (ModelRelationships, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return ModelRelationships{}, ErrEmptyQuery
	}

	for _, p := range e.src.All() {
		for _, f := range e.modelFiles(p) {
			if f.Stem() != model && f.Name != model {
				continue
			}
			text := fileops.ReadTextOrEmpty(f.Path, e.cfg.MaxFileSize())
			return ModelRelationships{
				Package:         p.Name,
				Model:           f.Stem(),
				File:            f.Path,
				RelationshipSet: e.text.Relationships(text),
			}, nil
		}
	}
	return ModelRelationships{}, fmt.Errorf("%w: %s", ErrModelNotFound, model)
}

// modelFiles lists the source files directly under a package's Models
// directory, live. An unreadable directory has no models.
func (e *Engine) modelFiles(p catalog.PackageDescription) []fileops.Entry {
	entries, err := fileops.ListEntries(extract.In(p.RootPath, e.layout.ModelsDir), e.layout.SourceFiles())
	if err != nil {
		return nil
	}
	return entries
}
