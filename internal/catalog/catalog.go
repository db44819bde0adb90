// Package catalog defines the normalized description of a monorepo package
// and the value types the query engine returns.
package catalog

import "slices"

// Kind classifies a package. Exactly one kind is assigned at extraction time.
type Kind string

const (
	KindCRUD     Kind = "crud"
	KindUtility  Kind = "utility"
	KindBlade    Kind = "blade"
	KindAPI      Kind = "api"
	KindTemplate Kind = "template"
	KindMeta     Kind = "meta"
)

// Kinds lists every valid Kind.
var Kinds = []Kind{KindCRUD, KindUtility, KindBlade, KindAPI, KindTemplate, KindMeta}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// PackageDescription is everything known about one discovered package.
// Records are immutable once inserted into the index; callers receive clones.
type PackageDescription struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	RootPath      string   `json:"rootPath"`
	Namespace     string   `json:"namespace"`
	Kind          Kind     `json:"kind"`
	HasAPI        bool     `json:"hasApi"`
	HasExports    bool     `json:"hasExports"`
	HasImports    bool     `json:"hasImports"`
	ContractCount int      `json:"contractCount"`
	UIComponents  []string `json:"uiComponents"`
	Models        []string `json:"models"`
	Traits        []string `json:"traits"`
	Dependencies  []string `json:"dependencies"`
}

// Clone returns a deep copy so the index contents cannot be mutated through
// a returned value.
func (p PackageDescription) Clone() PackageDescription {
	p.UIComponents = cloneNonNil(p.UIComponents)
	p.Models = cloneNonNil(p.Models)
	p.Traits = cloneNonNil(p.Traits)
	p.Dependencies = cloneNonNil(p.Dependencies)
	return p
}

// Summarize projects the fields shown in listings.
func (p PackageDescription) Summarize() Summary {
	return Summary{
		Name:          p.Name,
		Category:      p.Category,
		Kind:          p.Kind,
		HasAPI:        p.HasAPI,
		ContractCount: p.ContractCount,
	}
}

// HasModel reports whether the package declares a model with exactly name.
func (p PackageDescription) HasModel(name string) bool {
	return slices.Contains(p.Models, name)
}

// Summary is the listing projection of a PackageDescription.
type Summary struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Kind          Kind   `json:"kind"`
	HasAPI        bool   `json:"hasApi"`
	ContractCount int    `json:"contractCount"`
}

// MorphToSentinel stands in for a morphTo() declaration, which carries no
// target argument.
const MorphToSentinel = "(polymorphic)"

// RelationshipSet holds the raw association targets declared by one model.
type RelationshipSet struct {
	BelongsTo []string `json:"belongsTo"`
	HasMany   []string `json:"hasMany"`
	MorphTo   []string `json:"morphTo"`
	MorphMany []string `json:"morphMany"`
}

// Empty reports whether no relationship of any kind was found.
func (r RelationshipSet) Empty() bool {
	return len(r.BelongsTo) == 0 && len(r.HasMany) == 0 && len(r.MorphTo) == 0 && len(r.MorphMany) == 0
}

func cloneNonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
