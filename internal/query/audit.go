package query

import (
	"fmt"

	"monoscope/internal/catalog"
)

// MinContracts is the contract count a CRUD package is expected to reach.
const MinContracts = 8

// Check is one pass/fail line of an audit or health report.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// AuditReport scores a package against the CRUD package standard.
// Applicable is false for non-CRUD kinds, which always score 100.
type AuditReport struct {
	Package    string       `json:"package"`
	Kind       catalog.Kind `json:"kind"`
	Applicable bool         `json:"applicable"`
	Passed     []string     `json:"passed"`
	Issues     []string     `json:"issues"`
	Score      int          `json:"score"`
}

// Audit checks API routes, exports, imports and contract count. Only CRUD
// packages are audited; every other kind scores 100 with no checks.
func (e *Engine) Audit(name string) (AuditReport, error) {
	p, err := e.Lookup(name)
	if err != nil {
		return AuditReport{}, err
	}

	r := AuditReport{Package: p.Name, Kind: p.Kind, Passed: []string{}, Issues: []string{}, Score: 100}
	if p.Kind != catalog.KindCRUD {
		return r, nil
	}

	r.Applicable = true
	checks := crudChecks(p)
	for _, c := range checks {
		if c.Passed {
			r.Passed = append(r.Passed, c.Detail)
		} else {
			r.Issues = append(r.Issues, c.Detail)
		}
	}
	r.Score = percent(len(r.Passed), len(checks))
	return r, nil
}

// crudChecks evaluates the four CRUD standard checks from cached fields.
func crudChecks(p catalog.PackageDescription) []Check {
	return []Check{
		presence("api-routes", p.HasAPI, "Has API routes", "Missing API routes"),
		presence("exports", p.HasExports, "Has exports", "Missing exports"),
		presence("imports", p.HasImports, "Has imports", "Missing imports"),
		contractCheck(p.ContractCount),
	}
}

func presence(name string, ok bool, pass, fail string) Check {
	if ok {
		return Check{Name: name, Passed: true, Detail: pass}
	}
	return Check{Name: name, Passed: false, Detail: fail}
}

func contractCheck(n int) Check {
	if n >= MinContracts {
		return Check{Name: "contracts", Passed: true, Detail: "Has " + plural(n, "contract")}
	}
	return Check{Name: "contracts", Passed: false, Detail: fmt.Sprintf("Only %d contracts (need 8-13+)", n)}
}
