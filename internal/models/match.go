package models

import "github.com/samber/lo"

// Scope tells whether a project depends on a package directly or through
// another package
type Scope string

const (
	ScopeDirect     Scope = "direct"
	ScopeTransitive Scope = "transitive"
)

// DependencyMatch is one project in one namespace that uses a searched
// package. Field order is the JSON key order and the CSV column order.
type DependencyMatch struct {
	Namespace     string `json:"namespace" csv:"namespace"`
	ProjectName   string `json:"project_name" csv:"project_name"`
	ProjectGitURL string `json:"project_git_url" csv:"project_git_url"`
	Dependency    string `json:"dependency" csv:"dependency"`
	Scope         Scope  `json:"scope" csv:"scope"`
	ParentName    string `json:"parent_name" csv:"parent_name"`
	ParentVersion string `json:"parent_version" csv:"parent_version"`
}

// ResultSet accumulates matches for one run, grouped by the spec that
// produced them. Within a spec, matches keep API response order.
type ResultSet struct {
	Specs   []DependencySpec
	Matches map[DependencySpec][]DependencyMatch
	Skipped []NamespaceQueryError
}

// NewResultSet returns an empty ResultSet
func NewResultSet() *ResultSet {
	return &ResultSet{Matches: make(map[DependencySpec][]DependencyMatch)}
}

// AddSpec registers a searched spec so it is reported even with zero matches
func (r *ResultSet) AddSpec(spec DependencySpec) {
	if _, ok := r.Matches[spec]; ok {
		return
	}
	r.Specs = append(r.Specs, spec)
	r.Matches[spec] = nil
}

// Add appends matches found for spec
func (r *ResultSet) Add(spec DependencySpec, matches ...DependencyMatch) {
	r.AddSpec(spec)
	r.Matches[spec] = append(r.Matches[spec], matches...)
}

// Skip records a namespace query that failed
func (r *ResultSet) Skip(err NamespaceQueryError) {
	r.Skipped = append(r.Skipped, err)
}

// All returns every match in spec order
func (r *ResultSet) All() []DependencyMatch {
	all := make([]DependencyMatch, 0, r.Len())
	for _, spec := range r.Specs {
		all = append(all, r.Matches[spec]...)
	}
	return all
}

// Len returns the total number of matches
func (r *ResultSet) Len() int {
	n := 0
	for _, m := range r.Matches {
		n += len(m)
	}
	return n
}

// SkippedNamespaces returns the distinct namespaces that had at least one
// failed query
func (r *ResultSet) SkippedNamespaces() []string {
	return lo.Uniq(lo.Map(r.Skipped, func(e NamespaceQueryError, _ int) string {
		return e.Namespace
	}))
}
