package query

import (
	"path/filepath"
	"slices"
	"strings"

	"monoscope/internal/extract"
	"monoscope/pkg/fileops"

	"github.com/bmatcuk/doublestar"
)

// Test suites counted by Coverage, keyed by the first directory under tests/.
var Suites = []string{"Unit", "Feature", "Livewire"}

// CoverageReport describes a package's test tree.
type CoverageReport struct {
	Package        string         `json:"package"`
	HasTestCase    bool           `json:"hasTestCase"`
	HasExampleTest bool           `json:"hasExampleTest"`
	Total          int            `json:"total"`
	BySuite        map[string]int `json:"bySuite"`
	Files          []string       `json:"files"`
	Models         []string       `json:"models"`
	CoveredModels  []string       `json:"coveredModels"`
}

// Coverage walks the package's tests directory for *Test.php files. A model
// counts as covered when its name appears anywhere in a test file path.
func (e *Engine) Coverage(name string) (CoverageReport, error) {
	p, err := e.Lookup(name)
	if err != nil {
		return CoverageReport{}, err
	}

	tests := extract.In(p.RootPath, e.layout.TestsDir)
	r := CoverageReport{
		Package:       p.Name,
		BySuite:       map[string]int{},
		Files:         []string{},
		Models:        p.Models,
		CoveredModels: []string{},
	}
	for _, s := range Suites {
		r.BySuite[s] = 0
	}
	if !fileops.IsDir(tests) {
		return r, nil
	}

	r.HasTestCase = fileops.IsFile(filepath.Join(tests, "TestCase.php"))
	r.HasExampleTest = fileops.IsFile(filepath.Join(tests, "ExampleTest.php"))

	matches, err := doublestar.Glob(filepath.Join(tests, "**", "*Test.php"))
	if err != nil {
		e.logger.Debug("Test glob failed", "package", p.Name, "error", err)
		return r, nil
	}
	for _, m := range matches {
		rel, err := filepath.Rel(tests, m)
		if err != nil {
			continue
		}
		r.Files = append(r.Files, filepath.ToSlash(rel))
	}
	slices.Sort(r.Files)
	r.Files = slices.Compact(r.Files)
	r.Total = len(r.Files)

	for _, f := range r.Files {
		suite, _, nested := strings.Cut(f, "/")
		if nested && slices.Contains(Suites, suite) {
			r.BySuite[suite]++
		}
	}
	for _, m := range p.Models {
		if slices.ContainsFunc(r.Files, func(f string) bool { return strings.Contains(f, m) }) {
			r.CoveredModels = append(r.CoveredModels, m)
		}
	}
	return r, nil
}
