package query

import (
	"fmt"
	"slices"
	"strconv"
)

// ContractTolerance is the largest contract count difference still treated as
// similar.
const ContractTolerance = 2

// Aspect is one compared property.
type Aspect struct {
	Name    string `json:"name"`
	Similar bool   `json:"similar"`
	A       string `json:"a"`
	B       string `json:"b"`
}

// Label renders the aspect from A's point of view.
func (a Aspect) Label() string {
	if a.Similar {
		if a.A == a.B {
			return fmt.Sprintf("Same %s (%s)", a.Name, a.A)
		}
		return fmt.Sprintf("Similar %s (%s vs %s)", a.Name, a.A, a.B)
	}
	return fmt.Sprintf("Different %s (%s vs %s)", a.Name, a.A, a.B)
}

// CountRow is one line of the count table.
type CountRow struct {
	Metric string `json:"metric"`
	A      int    `json:"a"`
	B      int    `json:"b"`
}

// Comparison is the result of Compare.
type Comparison struct {
	A          string     `json:"a"`
	B          string     `json:"b"`
	Aspects    []Aspect   `json:"aspects"`
	SharedDeps []string   `json:"sharedDependencies"`
	OnlyADeps  []string   `json:"onlyADependencies"`
	OnlyBDeps  []string   `json:"onlyBDependencies"`
	Counts     []CountRow `json:"counts"`
}

// Similarities returns the labels of similar aspects.
func (c Comparison) Similarities() []string {
	return c.labels(true)
}

// Differences returns the labels of differing aspects.
func (c Comparison) Differences() []string {
	return c.labels(false)
}

func (c Comparison) labels(similar bool) []string {
	out := []string{}
	for _, a := range c.Aspects {
		if a.Similar == similar {
			out = append(out, a.Label())
		}
	}
	return out
}

// Compare contrasts two packages. The similar/different classification is
// symmetric; swapping the arguments swaps only the A/B sides.
func (e *Engine) Compare(nameA, nameB string) (Comparison, error) {
	a, b, err := e.lookupBoth(nameA, nameB)
	if err != nil {
		return Comparison{}, err
	}

	diff := a.ContractCount - b.ContractCount
	if diff < 0 {
		diff = -diff
	}

	c := Comparison{
		A: a.Name,
		B: b.Name,
		Aspects: []Aspect{
			{Name: "kind", Similar: a.Kind == b.Kind, A: string(a.Kind), B: string(b.Kind)},
			{Name: "API routes", Similar: a.HasAPI == b.HasAPI, A: yesNo(a.HasAPI), B: yesNo(b.HasAPI)},
			{Name: "exports", Similar: a.HasExports == b.HasExports, A: yesNo(a.HasExports), B: yesNo(b.HasExports)},
			{Name: "contract count", Similar: diff <= ContractTolerance, A: strconv.Itoa(a.ContractCount), B: strconv.Itoa(b.ContractCount)},
		},
		SharedDeps: []string{},
		OnlyADeps:  []string{},
		OnlyBDeps:  []string{},
		Counts: []CountRow{
			{Metric: "Models", A: len(a.Models), B: len(b.Models)},
			{Metric: "Traits", A: len(a.Traits), B: len(b.Traits)},
			{Metric: "Components", A: len(a.UIComponents), B: len(b.UIComponents)},
			{Metric: "Contracts", A: a.ContractCount, B: b.ContractCount},
		},
	}

	for _, d := range a.Dependencies {
		if slices.Contains(b.Dependencies, d) {
			c.SharedDeps = append(c.SharedDeps, d)
		} else {
			c.OnlyADeps = append(c.OnlyADeps, d)
		}
	}
	for _, d := range b.Dependencies {
		if !slices.Contains(a.Dependencies, d) {
			c.OnlyBDeps = append(c.OnlyBDeps, d)
		}
	}
	return c, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

