package query

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"monoscope/internal/config"
	"monoscope/internal/discovery"
	"monoscope/internal/extract"
	"monoscope/internal/index"
	"monoscope/internal/logging"
	"monoscope/internal/repository"

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

func composer(name string, autoload bool, deps ...string) string {
	var req []string
	for _, d := range deps {
		req = append(req, fmt.Sprintf("%q: \"*\"", "monorepo/"+d))
	}
	s := fmt.Sprintf(`{"name": "monorepo/%s", "require": {%s}`, name, strings.Join(req, ", "))
	if autoload {
		s += fmt.Sprintf(`, "autoload": {"psr-4": {"Monorepo\\%s\\": "src/"}}`, extract.PascalCase(name))
	}
	return s + "}"
}

func contracts(pkg string, n int) map[string]string {
	m := map[string]string{}
	for i := 0; i < n; i++ {
		m[fmt.Sprintf("%s/src/Contracts/Contract%d.php", pkg, i)] = "<?php interface X {}"
	}
	return m
}

// fixtureMonorepo lays out a small monorepo covering every query path.
func fixtureMonorepo() map[string]string {
	s := map[string]string{
		"crud/widget/composer.json":         composer("widget", true, "billing"),
		"crud/widget/routes/api.php":        "<?php",
		"crud/widget/src/Models/Widget.php": "<?php class Widget extends Model { use HasAddresses; }",
		"crud/widget/config/widget.php":     `<?php return ['livewire' => ['widget-card' => Card::class, 'address-picker' => Picker::class]];`,
		"crud/widget/README.md":             "---\ndescription: Widgets for everyone\n---\n# Widget\n",
		"crud/widget/CLAUDE.md":             "# Widget conventions",

		"crud/billing/composer.json":           composer("billing", true, "core", "addresses"),
		"crud/billing/routes/api.php":          "<?php",
		"crud/billing/src/Exports/":            "",
		"crud/billing/src/Imports/":            "",
		"crud/billing/src/Traits/Billable.php": "<?php trait Billable {}",
		"crud/billing/src/Models/Invoice.php":  "<?php class Invoice { use HasAddresses; use Billable; }",
		"crud/billing/src/Models/Customer.php": "<?php class Customer {\n  function company() { return $this->belongsTo(Company::class); }\n  function contacts() { return $this->hasMany(Contact::class); }\n}",
		"crud/billing/src/Models/README.md":    "Billing models use HasAddresses.",
		"crud/billing/tests/TestCase.php":      "<?php",
		"crud/billing/config/billing.php":      "<?php return [];",
		"crud/billing/README.md":               "# Billing\n\nInvoices.",
		"crud/billing/CLAUDE.md":               "# Billing conventions",

		"crud/addresses/composer.json":               composer("addresses", true, "core"),
		"crud/addresses/src/Traits/HasAddresses.php": "<?php trait HasAddresses {}",
		"crud/addresses/src/Models/Address.php":      "<?php class Address { use HasAddresses; }",
		"crud/addresses/src/Contracts/":              "",

		"crud/crm/composer.json":           composer("crm", true, "core"),
		"crud/crm/src/Models/Customer.php": "<?php class Customer { function deals() { return $this->hasMany(Deal::class); } }",
		"crud/crm/tests/Unit/":              "",
		"crud/crm/README.md":                "# CRM",

		"crud/legacy/composer.json":            composer("legacy", true),
		"crud/legacy/src/Interfaces/Thing.php": "<?php",
		"crud/legacy/src/Models/Thing.php":     "<?php class Thing { use Addresses; }",

		"blade/forms/composer.json":    composer("forms", false),
		"blade/forms/config/forms.php": `<?php return ['livewire' => ['form-input' => Input::class, 'address-form' => AddressForm::class]];`,
		"blade/tables/composer.json":   composer("tables", false),

		"utility/core/composer.json": composer("core", true),
		"utility/core/README.md":     "no heading here",
		"utility/core/CLAUDE.md":     "# Core conventions",
	}
	for k, v := range contracts("crud/widget", 3) {
		s[k] = v
	}
	for k, v := range contracts("crud/billing", 9) {
		s[k] = v
	}
	return s
}

func newEngine(t *testing.T, structure map[string]string) (*Engine, *index.Index, string) {
	t.Helper()

	root := createTempDirStructure(t, structure)
	cfg, err := config.New(config.Settings{Root: root})
	require.NoError(t, err)

	logger, _ := logging.NewTestLogger()
	x := extract.New(cfg)
	ix := index.New(root, discovery.New(cfg, x, logger), logger).
		WithRevisionFunc(func(string) (repository.Revision, error) { return repository.Revision{}, nil })
	require.NoError(t, ix.EnsureLoaded())

	return New(ix, cfg, x, logger), ix, root
}
