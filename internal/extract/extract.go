// Package extract turns one package directory into a catalog.PackageDescription.
//
// Extraction is shallow: presence checks on conventional paths, file counts,
// and a few regex passes over specific files (see TextExtractor). Nothing is
// parsed into a syntax tree, so results may contain false positives and
// false negatives on unusual formatting.
package extract

import (
	"path/filepath"
	"strings"
	"unicode"

	"monoscope/internal/catalog"
	"monoscope/internal/config"
	"monoscope/internal/manifest"
	"monoscope/pkg/fileops"
)

// Extractor builds package descriptions from a fixed configuration.
type Extractor struct {
	cfg    config.Config
	layout Layout
	text   TextExtractor
}

// New returns an Extractor using DefaultLayout and the regex TextExtractor.
func New(cfg config.Config) *Extractor {
	return &Extractor{cfg: cfg, layout: DefaultLayout, text: NewPatternExtractor(cfg.ComponentsKey())}
}

// WithTextExtractor swaps the text heuristics.
func (e *Extractor) WithTextExtractor(t TextExtractor) *Extractor {
	e.text = t
	return e
}

func (e *Extractor) Layout() Layout              { return e.layout }
func (e *Extractor) TextExtractor() TextExtractor { return e.text }

// Extract describes the package rooted at root within category. m must be the
// manifest already read from root.
func (e *Extractor) Extract(root, category string, m *manifest.Manifest) catalog.PackageDescription {
	name := m.ShortName()
	if name == "" {
		name = filepath.Base(root)
	}

	l := e.layout
	p := catalog.PackageDescription{
		Name:          name,
		Category:      category,
		RootPath:      root,
		Kind:          ClassifyKind(category, name, m.HasAutoload(), e.cfg.IsUtility),
		HasAPI:        fileops.IsFile(In(root, l.APIRoutes)),
		HasExports:    fileops.IsDir(In(root, l.ExportsDir)),
		HasImports:    fileops.IsDir(In(root, l.ImportsDir)),
		ContractCount: fileops.CountGlob(In(root, l.ContractsDir), l.ContractGlob),
		UIComponents:  e.uiComponents(root, name),
		Models:        nonNil(fileops.Stems(In(root, l.ModelsDir), l.SourceFiles())),
		Traits:        nonNil(fileops.Stems(In(root, l.TraitsDir), l.SourceFiles())),
		Dependencies:  nonNil(append([]string(nil), m.Dependencies...)),
		Namespace:     e.namespace(name, m),
	}
	return p
}

func (e *Extractor) uiComponents(root, name string) []string {
	text := fileops.ReadTextOrEmpty(e.layout.ConfigFile(root, name), e.cfg.MaxFileSize())
	if text == "" {
		return []string{}
	}
	return nonNil(e.text.UIComponents(text))
}

func (e *Extractor) namespace(name string, m *manifest.Manifest) string {
	if ns, ok := m.PrimaryNamespace(); ok {
		return ns
	}
	return e.cfg.NamespacePrefix() + `\` + PascalCase(name)
}

// ClassifyKind assigns a package kind. Category signals are checked first,
// then the utility allowlist, then the manifest shape.
func ClassifyKind(category, name string, hasAutoload bool, isUtility func(string) bool) catalog.Kind {
	switch category {
	case "blade":
		return catalog.KindBlade
	case "api":
		return catalog.KindAPI
	case "template":
		return catalog.KindTemplate
	}
	if isUtility != nil && isUtility(name) {
		return catalog.KindUtility
	}
	if !hasAutoload {
		return catalog.KindMeta
	}
	return catalog.KindCRUD
}

// PascalCase turns "user-profile_v2" into "UserProfileV2".
func PascalCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
