// Package report renders query results as text.
//
// A Renderer is bound to an output. Rendering for a terminal applies
// lipgloss styles; Plain output, used for MCP tool results and when stdout is
// not a terminal, carries no escape sequences.
package report

import (
	"fmt"
	"io"
	"strings"

	"monoscope/internal/catalog"
	"monoscope/internal/index"
	"monoscope/internal/query"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const (
	markPass = "✓"
	markFail = "✗"
	markDiff = "≠"
	markWarn = "⚠"
)

// Renderer formats query results.
type Renderer struct {
	width int

	title lipgloss.Style
	pass  lipgloss.Style
	fail  lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

// NewRenderer styles output for w, detecting its color profile.
func NewRenderer(w io.Writer) *Renderer {
	return newRenderer(lipgloss.NewRenderer(w))
}

// Plain returns a Renderer that never emits escape sequences.
func Plain() *Renderer {
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))
	r.SetColorProfile(termenv.Ascii)
	return newRenderer(r)
}

func newRenderer(r *lipgloss.Renderer) *Renderer {
	return &Renderer{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		pass:  r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("9")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#FFA500")),
		muted: r.NewStyle().Faint(true),
	}
}

// WithWidth wraps free-form text (summaries, recommendations) at width
// columns. Zero disables wrapping.
func (r *Renderer) WithWidth(width int) *Renderer {
	r.width = width
	return r
}

func (r *Renderer) wrap(s string) string {
	if r.width <= 0 {
		return s
	}
	return wordwrap.String(s, r.width)
}

func (r *Renderer) mark(ok bool, text string) string {
	if ok {
		return r.pass.Render(markPass) + " " + text
	}
	return r.fail.Render(markFail) + " " + text
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func bullets(b *strings.Builder, items []string, format func(string) string) {
	if len(items) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, it := range items {
		b.WriteString(format(it) + "\n")
	}
}

// NotFound is the user-visible message for an unknown identifier.
func NotFound(what, name string) string {
	return fmt.Sprintf("%s '%s' not found", what, name)
}

// Package renders a full description.
func (r *Renderer) Package(p catalog.PackageDescription) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Package: "+p.Category+"/"+p.Name) + "\n\n")
	fmt.Fprintf(&b, "Kind:         %s\n", p.Kind)
	fmt.Fprintf(&b, "Namespace:    %s\n", p.Namespace)
	fmt.Fprintf(&b, "Path:         %s\n", r.muted.Render(p.RootPath))
	fmt.Fprintf(&b, "API routes:   %t\n", p.HasAPI)
	fmt.Fprintf(&b, "Exports:      %t\n", p.HasExports)
	fmt.Fprintf(&b, "Imports:      %t\n", p.HasImports)
	fmt.Fprintf(&b, "Contracts:    %d\n", p.ContractCount)
	fmt.Fprintf(&b, "Models:       %s\n", orNone(p.Models))
	fmt.Fprintf(&b, "Traits:       %s\n", orNone(p.Traits))
	fmt.Fprintf(&b, "Components:   %s\n", orNone(p.UIComponents))
	fmt.Fprintf(&b, "Dependencies: %s\n", orNone(p.Dependencies))
	return b.String()
}

// Summaries renders a listing table.
func (r *Renderer) Summaries(ss []catalog.Summary) string {
	if len(ss) == 0 {
		return "No packages found\n"
	}
	nameW, catW := len("NAME"), len("CATEGORY")
	for _, s := range ss {
		nameW = max(nameW, len(s.Name))
		catW = max(catW, len(s.Category))
	}

	var b strings.Builder
	row := func(name, cat, kind, api, contracts string) {
		fmt.Fprintf(&b, "%-*s  %-*s  %-8s  %-3s  %s\n", nameW, name, catW, cat, kind, api, contracts)
	}
	row("NAME", "CATEGORY", "KIND", "API", "CONTRACTS")
	for _, s := range ss {
		api := "-"
		if s.HasAPI {
			api = "yes"
		}
		row(s.Name, s.Category, string(s.Kind), api, fmt.Sprint(s.ContractCount))
	}
	return b.String()
}

var matchLabels = map[query.MatchKind]string{
	query.MatchPackage:   "Package",
	query.MatchModel:     "Model",
	query.MatchTrait:     "Trait",
	query.MatchComponent: "Component",
}

// Matches renders search hits.
func (r *Renderer) Matches(q string, ms []query.Match) string {
	if len(ms) == 0 {
		return fmt.Sprintf("No results for '%s'\n", q)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s':\n", q)
	for _, m := range ms {
		if m.Kind == query.MatchPackage {
			fmt.Fprintf(&b, "%s: %s/%s\n", matchLabels[m.Kind], m.Category, m.Package)
			continue
		}
		fmt.Fprintf(&b, "%s: %s/%s -> %s\n", matchLabels[m.Kind], m.Category, m.Package, m.Value)
	}
	return b.String()
}

// TraitUsages renders trait usage hits.
func (r *Renderer) TraitUsages(trait string, us []query.TraitUsage) string {
	if len(us) == 0 {
		return fmt.Sprintf("No usages of '%s' found\n", trait)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Files using '%s':\n", trait)
	for _, u := range us {
		fmt.Fprintf(&b, "%s %s\n", u.File, r.muted.Render("("+u.Package+"/"+u.Model+")"))
	}
	return b.String()
}

// Relationships renders one model's associations.
func (r *Renderer) Relationships(m query.ModelRelationships) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Relationships: "+m.Package+"/"+m.Model) + "\n")
	fmt.Fprintf(&b, "File: %s\n\n", r.muted.Render(m.File))
	fmt.Fprintf(&b, "belongsTo:  %s\n", orNone(m.BelongsTo))
	fmt.Fprintf(&b, "hasMany:    %s\n", orNone(m.HasMany))
	fmt.Fprintf(&b, "morphTo:    %s\n", orNone(m.MorphTo))
	fmt.Fprintf(&b, "morphMany:  %s\n", orNone(m.MorphMany))
	return b.String()
}

// Audit renders an audit report.
func (r *Renderer) Audit(a query.AuditReport) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Audit: "+a.Package) + "\n")
	fmt.Fprintf(&b, "Kind: %s\n", a.Kind)
	fmt.Fprintf(&b, "Score: %d%%\n", a.Score)
	if !a.Applicable {
		b.WriteString(r.muted.Render("Not a CRUD package; no checks apply.") + "\n")
		return b.String()
	}

	b.WriteString("\nPassed:\n")
	bullets(&b, a.Passed, func(s string) string { return r.mark(true, s) })
	b.WriteString("\nIssues:\n")
	bullets(&b, a.Issues, func(s string) string { return r.mark(false, s) })
	return b.String()
}

// Compare renders a comparison.
func (r *Renderer) Compare(c query.Comparison) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Package Comparison: "+c.A+" vs "+c.B) + "\n")

	b.WriteString("\nSimilarities:\n")
	bullets(&b, c.Similarities(), func(s string) string { return r.mark(true, s) })
	b.WriteString("\nDifferences:\n")
	bullets(&b, c.Differences(), func(s string) string { return r.warn.Render(markDiff) + " " + s })

	b.WriteString("\nDependencies:\n")
	fmt.Fprintf(&b, "- Shared: %s\n", orNone(c.SharedDeps))
	fmt.Fprintf(&b, "- %s only: %s\n", c.A, orNone(c.OnlyADeps))
	fmt.Fprintf(&b, "- %s only: %s\n", c.B, orNone(c.OnlyBDeps))

	metricW, aW := len("Metric"), len(c.A)
	for _, row := range c.Counts {
		metricW = max(metricW, len(row.Metric))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-*s  %-*s  %s\n", metricW, "Metric", aW, c.A, c.B)
	for _, row := range c.Counts {
		fmt.Fprintf(&b, "%-*s  %-*d  %d\n", metricW, row.Metric, aW, row.A, row.B)
	}
	return b.String()
}

var bandLabels = map[query.Band]string{
	query.BandExcellent: "Excellent",
	query.BandGood:      "Good",
	query.BandFair:      "Fair",
	query.BandPoor:      "Poor",
	query.BandCritical:  "Critical",
}

// Health renders a health report.
func (r *Renderer) Health(h query.HealthReport) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Package Health: "+h.Package) + "\n\n")
	fmt.Fprintf(&b, "Overall Health: %s (%d%%)\n", bandLabels[h.Band], h.Score)
	fmt.Fprintf(&b, "Kind: %s\n", h.Kind)
	fmt.Fprintf(&b, "Checks passed: %d/%d\n", h.Passed(), len(h.Checks))
	if h.DocSummary != "" {
		b.WriteString("\n" + r.wrap(h.DocSummary) + "\n")
	}

	b.WriteString("\nChecks:\n")
	for _, c := range h.Checks {
		b.WriteString(r.mark(c.Passed, c.Detail) + "\n")
	}

	if len(h.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range h.Recommendations {
			b.WriteString(r.warn.Render(markWarn) + " " + r.wrap(rec) + "\n")
		}
	}
	return b.String()
}

// Coverage renders a test coverage report.
func (r *Renderer) Coverage(c query.CoverageReport) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Test Coverage: "+c.Package) + "\n\n")
	b.WriteString("Base Infrastructure:\n")
	b.WriteString(r.mark(c.HasTestCase, "TestCase.php") + "\n")
	b.WriteString(r.mark(c.HasExampleTest, "ExampleTest.php") + "\n")

	b.WriteString("\nTest Counts:\n")
	fmt.Fprintf(&b, "- Total: %d\n", c.Total)
	for _, s := range query.Suites {
		fmt.Fprintf(&b, "- %s: %d\n", s, c.BySuite[s])
	}

	fmt.Fprintf(&b, "\nModel Coverage: %d/%d\n", len(c.CoveredModels), len(c.Models))
	fmt.Fprintf(&b, "Models: %s\n", orNone(c.Models))
	fmt.Fprintf(&b, "Covered: %s\n", orNone(c.CoveredModels))

	b.WriteString("\nTest Files:\n")
	if len(c.Files) == 0 {
		b.WriteString("No tests found\n")
	}
	for _, f := range c.Files {
		b.WriteString("- " + f + "\n")
	}
	return b.String()
}

// Reloaded reports a completed reload.
func (r *Renderer) Reloaded(s index.Snapshot) string {
	return fmt.Sprintf("Index reloaded: %d packages (%d skipped) at revision %s\n",
		s.Packages, s.Skipped, s.Revision)
}
