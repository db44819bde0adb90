package query

import (
	"bufio"
	"bytes"
	"slices"
	"strings"

	"monoscope/internal/catalog"
	"monoscope/internal/extract"
	"monoscope/pkg/fileops"

	"github.com/adrg/frontmatter"
)

// Band is a coarse health rating.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
	BandCritical  Band = "critical"
)

// BandFor maps a 0-100 score onto a Band.
func BandFor(score int) Band {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 75:
		return BandGood
	case score >= 50:
		return BandFair
	case score >= 25:
		return BandPoor
	default:
		return BandCritical
	}
}

// HealthReport is the result of Health.
type HealthReport struct {
	Package         string       `json:"package"`
	Kind            catalog.Kind `json:"kind"`
	Checks          []Check      `json:"checks"`
	Score           int          `json:"score"`
	Band            Band         `json:"band"`
	Recommendations []string     `json:"recommendations"`
	DocSummary      string       `json:"docSummary,omitempty"`
}

// Passed counts passing checks.
func (h HealthReport) Passed() int {
	n := 0
	for _, c := range h.Checks {
		if c.Passed {
			n++
		}
	}
	return n
}

type readmeMatter struct {
	Description string `yaml:"description"`
	Title       string `yaml:"title"`
}

// Health probes the package directory for structural conventions and, for
// CRUD packages, adds the four audit checks.
func (e *Engine) Health(name string) (HealthReport, error) {
	p, err := e.Lookup(name)
	if err != nil {
		return HealthReport{}, err
	}

	l := e.layout
	root := p.RootPath
	r := HealthReport{Package: p.Name, Kind: p.Kind, Recommendations: []string{}}

	switch {
	case fileops.IsDir(extract.In(root, l.ContractsDir)):
		r.Checks = append(r.Checks, Check{Name: "contracts-dir", Passed: true, Detail: "Contracts directory present"})
	case fileops.IsDir(extract.In(root, l.LegacyContracts)):
		r.Checks = append(r.Checks, Check{Name: "contracts-dir", Passed: false, Detail: "Uses legacy Interfaces directory instead of Contracts"})
		r.Recommendations = append(r.Recommendations, "Rename "+l.LegacyContracts+" to "+l.ContractsDir)
	default:
		r.Checks = append(r.Checks, Check{Name: "contracts-dir", Passed: false, Detail: "Missing Contracts directory"})
	}

	r.Checks = append(r.Checks,
		presence("tests", fileops.IsFile(extract.In(root, l.TestCase)), "Test infrastructure present", "Missing "+l.TestCase),
		presence("config", fileops.IsFile(l.ConfigFile(root, p.Name)), "Config file present", "Missing config/"+p.Name+".php"),
		presence("docs", fileops.IsFile(extract.In(root, l.AgentDocs)), "Documentation present", "Missing "+l.AgentDocs+" documentation"),
	)

	if readme := extract.In(root, l.Readme); fileops.IsFile(readme) {
		r.DocSummary = e.docSummary(readme)
	}

	if p.Kind == catalog.KindCRUD {
		r.Checks = append(r.Checks, crudChecks(p)...)

		dep := e.cfg.RecommendedDependency()
		if dep != "" && dep != p.Name && !slices.Contains(p.Dependencies, dep) {
			r.Recommendations = append(r.Recommendations, "Add dependency on "+e.cfg.Vendor()+"/"+dep)
		}
	}

	r.Score = percent(r.Passed(), len(r.Checks))
	r.Band = BandFor(r.Score)
	return r, nil
}

// docSummary prefers a frontmatter description, then title, then the first
// markdown heading.
func (e *Engine) docSummary(path string) string {
	text := fileops.ReadTextOrEmpty(path, e.cfg.MaxFileSize())
	if text == "" {
		return ""
	}

	var matter readmeMatter
	body, err := frontmatter.Parse(strings.NewReader(text), &matter)
	if err != nil {
		e.logger.Debug("Unparseable README frontmatter", "path", path, "error", err)
		body = []byte(text)
	}
	if s := strings.TrimSpace(matter.Description); s != "" {
		return s
	}
	if s := strings.TrimSpace(matter.Title); s != "" {
		return s
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
