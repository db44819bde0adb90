package report

import (
	"strings"
	"testing"

	"monoscope/internal/catalog"
	"monoscope/internal/index"
	"monoscope/internal/query"
	"monoscope/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlain_NoEscapes(t *testing.T) {
	out := Plain().Audit(query.AuditReport{
		Package:    "widget",
		Kind:       catalog.KindCRUD,
		Applicable: true,
		Passed:     []string{"Has API routes"},
		Issues:     []string{"Missing exports"},
		Score:      50,
	})
	assert.NotContains(t, out, "\x1b[")
}

func TestAudit(t *testing.T) {
	out := Plain().Audit(query.AuditReport{
		Package:    "widget",
		Kind:       catalog.KindCRUD,
		Applicable: true,
		Passed:     []string{"Has API routes"},
		Issues:     []string{"Missing exports", "Missing imports", "Only 3 contracts (need 8-13+)"},
		Score:      25,
	})

	assert.Equal(t, `Audit: widget
Kind: crud
Score: 25%

Passed:
✓ Has API routes

Issues:
✗ Missing exports
✗ Missing imports
✗ Only 3 contracts (need 8-13+)
`, out)
}

func TestAudit_NotApplicable(t *testing.T) {
	out := Plain().Audit(query.AuditReport{Package: "forms", Kind: catalog.KindBlade, Score: 100})
	assert.Contains(t, out, "Score: 100%")
	assert.Contains(t, out, "Not a CRUD package")
	assert.NotContains(t, out, "Issues:")
}

func TestCompare(t *testing.T) {
	out := Plain().Compare(query.Comparison{
		A: "widget",
		B: "billing",
		Aspects: []query.Aspect{
			{Name: "kind", Similar: true, A: "crud", B: "crud"},
			{Name: "exports", A: "no", B: "yes"},
		},
		SharedDeps: []string{},
		OnlyADeps:  []string{"billing"},
		OnlyBDeps:  []string{"core", "addresses"},
		Counts:     []query.CountRow{{Metric: "Models", A: 1, B: 2}},
	})

	assert.Contains(t, out, "Package Comparison: widget vs billing")
	assert.Contains(t, out, "✓ Same kind (crud)")
	assert.Contains(t, out, "≠ Different exports (no vs yes)")
	assert.Contains(t, out, "- Shared: None\n")
	assert.Contains(t, out, "- widget only: billing\n")
	assert.Contains(t, out, "- billing only: core, addresses\n")
	assert.Contains(t, out, "Models  1       2\n")
}

func TestHealth(t *testing.T) {
	out := Plain().WithWidth(20).Health(query.HealthReport{
		Package: "legacy",
		Kind:    catalog.KindCRUD,
		Checks: []query.Check{
			{Name: "contracts-dir", Detail: "Uses legacy Interfaces directory instead of Contracts"},
			{Name: "docs", Passed: true, Detail: "Documentation present"},
		},
		Score:           50,
		Band:            query.BandFair,
		Recommendations: []string{"Add dependency on monorepo/core"},
		DocSummary:      "Legacy things kept around for old callers",
	})

	assert.Contains(t, out, "Overall Health: Fair (50%)")
	assert.Contains(t, out, "Checks passed: 1/2")
	assert.Contains(t, out, "✗ Uses legacy Interfaces directory instead of Contracts")
	assert.Contains(t, out, "✓ Documentation present")
	assert.Contains(t, out, "⚠ Add dependency on")
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Legacy") {
			assert.LessOrEqual(t, len(line), 20)
		}
	}
}

func TestMatches(t *testing.T) {
	r := Plain()
	assert.Equal(t, "No results for 'zzz'\n", r.Matches("zzz", nil))

	out := r.Matches("address", []query.Match{
		{Package: "addresses", Category: "crud", Kind: query.MatchPackage, Value: "addresses"},
		{Package: "forms", Category: "blade", Kind: query.MatchComponent, Value: "address-form"},
	})
	assert.Equal(t, "Search results for 'address':\nPackage: crud/addresses\nComponent: blade/forms -> address-form\n", out)
}

func TestTraitUsages(t *testing.T) {
	r := Plain()
	assert.Equal(t, "No usages of 'Foo' found\n", r.TraitUsages("Foo", nil))

	out := r.TraitUsages("Addresses", []query.TraitUsage{{Package: "billing", Model: "Invoice", File: "/x/Invoice.php"}})
	assert.Equal(t, "Files using 'Addresses':\n/x/Invoice.php (billing/Invoice)\n", out)
}

func TestRelationships(t *testing.T) {
	out := Plain().Relationships(query.ModelRelationships{
		Package: "billing",
		Model:   "Customer",
		File:    "/x/Customer.php",
		RelationshipSet: catalog.RelationshipSet{
			BelongsTo: []string{"Company::class"},
			HasMany:   []string{},
			MorphTo:   []string{catalog.MorphToSentinel},
			MorphMany: []string{},
		},
	})
	assert.Contains(t, out, "belongsTo:  Company::class\n")
	assert.Contains(t, out, "hasMany:    None\n")
	assert.Contains(t, out, "morphTo:    (polymorphic)\n")
}

func TestSummaries(t *testing.T) {
	r := Plain()
	assert.Equal(t, "No packages found\n", r.Summaries(nil))

	out := r.Summaries([]catalog.Summary{
		{Name: "widget", Category: "crud", Kind: catalog.KindCRUD, HasAPI: true, ContractCount: 3},
		{Name: "forms", Category: "blade", Kind: catalog.KindBlade},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Equal(t, "widget  crud      crud      yes  3", lines[1])
	assert.Equal(t, "forms   blade     blade     -    0", lines[2])
}

func TestCoverage(t *testing.T) {
	out := Plain().Coverage(query.CoverageReport{
		Package:       "billing",
		HasTestCase:   true,
		Total:         1,
		BySuite:       map[string]int{"Unit": 1, "Feature": 0, "Livewire": 0},
		Files:         []string{"Unit/InvoiceTest.php"},
		Models:        []string{"Customer", "Invoice"},
		CoveredModels: []string{"Invoice"},
	})
	assert.Contains(t, out, "✓ TestCase.php\n✗ ExampleTest.php\n")
	assert.Contains(t, out, "- Unit: 1\n")
	assert.Contains(t, out, "Model Coverage: 1/2\n")
	assert.Contains(t, out, "- Unit/InvoiceTest.php\n")
}

func TestReloaded(t *testing.T) {
	out := Plain().Reloaded(index.Snapshot{
		Packages: 8,
		Skipped:  1,
		Revision: repository.Revision{Hash: "0123456789abcdef", Branch: "main"},
	})
	assert.Equal(t, "Index reloaded: 8 packages (1 skipped) at revision 0123456789ab (main)\n", out)
}

func TestNotFound(t *testing.T) {
	assert.Equal(t, "Package 'ghost' not found", NotFound("Package", "ghost"))
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Billing\n\nInvoices and payments.", "notty", 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Billing")
	assert.Contains(t, out, "Invoices and payments.")
}

func TestDetectStyle_Env(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "light")
	assert.Equal(t, "light", DetectStyle(0))
}
