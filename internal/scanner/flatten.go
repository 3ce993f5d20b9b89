package scanner

import (
	"strings"

	"github.com/ethanolivertroy/dep-usage/internal/clients"
	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// Flatten maps one raw dependency record to a DependencyMatch. queried is the
// namespace the query was sent to and is used when the record does not name
// its own namespace.
//
// A record is transitive only when it is indirect (see indirect) and has a
// parent that carries both a name and a version. Everything else is reported
// as direct with empty parent fields.
func Flatten(rec clients.DependencyMetadata, queried string, spec models.DependencySpec) models.DependencyMatch {
	match := models.DependencyMatch{
		Namespace:  rec.TenantMeta.Namespace,
		Dependency: spec.String(),
		Scope:      models.ScopeDirect,
	}
	if match.Namespace == "" {
		match.Namespace = queried
	}

	if project, ok := referencedProject(rec); ok {
		match.ProjectName = project.Meta.Name
		match.ProjectGitURL = gitURL(project)
	}

	if indirect(rec) {
		if name, version := parentOf(rec); name != "" && version != "" {
			match.Scope = models.ScopeTransitive
			match.ParentName = name
			match.ParentVersion = version
		}
	}

	return match
}

func referencedProject(rec clients.DependencyMetadata) (clients.Project, bool) {
	ref := rec.Meta.References.Project
	if ref == nil || len(ref.List.Objects) == 0 {
		return clients.Project{}, false
	}
	return ref.List.Objects[0], true
}

func gitURL(p clients.Project) string {
	if p.Spec.Git == nil {
		return ""
	}
	if p.Spec.Git.HTTPCloneURL != "" {
		return p.Spec.Git.HTTPCloneURL
	}
	return p.Spec.Git.WebURL
}

// indirect reports whether rec was pulled in by another package. Responses
// may omit a false "direct"; then a parent other than the importer itself
// marks the dependency as indirect.
func indirect(rec clients.DependencyMetadata) bool {
	data := rec.Spec.DependencyData
	if data.Direct != nil {
		return !*data.Direct
	}
	parent := strings.TrimSpace(data.ParentVersionName)
	return parent != "" && parent != strings.TrimSpace(rec.Spec.ImporterData.PackageVersionName)
}

// parentOf returns the package that pulls the dependency in, split into
// name and version
func parentOf(rec clients.DependencyMetadata) (string, string) {
	parent := strings.TrimSpace(rec.Spec.DependencyData.ParentVersionName)
	if parent == "" {
		parent = strings.TrimSpace(rec.Spec.ImporterData.PackageVersionName)
	}
	if parent == "" {
		return "", ""
	}
	return splitVersionName(parent)
}

// splitVersionName splits ecosystem://name@version (or name@version) into its
// package name and version. Either part is empty when it cannot be found.
func splitVersionName(s string) (string, string) {
	if strings.Contains(s, "://") {
		spec, err := models.ParseDependencySpec(s)
		if err != nil {
			return "", ""
		}
		return spec.PackageName(), spec.Version
	}

	idx := strings.LastIndex(s, "@")
	if idx <= 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}
