package extract

import (
	"path/filepath"

	"monoscope/pkg/fileops"
)

// Layout names the conventional locations probed inside a package root.
// Paths are relative to the package root and use forward slashes.
type Layout struct {
	APIRoutes       string
	SourceDir       string
	ExportsDir      string
	ImportsDir      string
	ContractsDir    string
	LegacyContracts string
	ContractGlob    string
	ModelsDir       string
	TraitsDir       string
	ConfigDir       string
	TestsDir        string
	TestCase        string
	Readme          string
	AgentDocs       string

	// SourceExt selects model and trait files.
	SourceExt string
}

// DefaultLayout is the Laravel-style package layout.
var DefaultLayout = Layout{
	APIRoutes:       "routes/api.php",
	SourceDir:       "src",
	ExportsDir:      "src/Exports",
	ImportsDir:      "src/Imports",
	ContractsDir:    "src/Contracts",
	LegacyContracts: "src/Interfaces",
	ContractGlob:    "**/*.php",
	ModelsDir:       "src/Models",
	TraitsDir:       "src/Traits",
	ConfigDir:       "config",
	TestsDir:        "tests",
	TestCase:        "tests/TestCase.php",
	Readme:          "README.md",
	AgentDocs:       "CLAUDE.md",
	SourceExt:       ".php",
}

// In joins a layout-relative path onto root.
func In(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// ConfigFile returns the per-package config file, named after the package.
func (l Layout) ConfigFile(root, name string) string {
	return filepath.Join(In(root, l.ConfigDir), name+".php")
}

// SourceFiles selects the source files directly inside a Models or Traits
// directory.
func (l Layout) SourceFiles() *fileops.ListOptions {
	return fileops.FilesWithExt(l.SourceExt)
}
