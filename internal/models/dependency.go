package models

import "strings"

const (
	schemeSep  = "://"
	versionSep = "@"
)

// DependencySpec identifies one package version to look up, written as
// ecosystem://name@version. Names may contain '@' (scoped npm packages)
// and ':' (maven group:artifact); the version follows the last '@'.
type DependencySpec struct {
	Ecosystem string
	Name      string
	Version   string
}

// ParseDependencySpec parses s into a DependencySpec. Ecosystem case is kept
// as given: "npm" and "NPM" are distinct lookups.
func ParseDependencySpec(s string) (DependencySpec, error) {
	raw := strings.TrimSpace(s)

	ecosystem, rest, ok := strings.Cut(raw, schemeSep)
	if !ok {
		return DependencySpec{}, &MalformedSpecError{Input: s, Reason: "missing '://'"}
	}

	idx := strings.LastIndex(rest, versionSep)
	if idx < 0 {
		return DependencySpec{}, &MalformedSpecError{Input: s, Reason: "missing '@' for version"}
	}

	spec := DependencySpec{
		Ecosystem: ecosystem,
		Name:      rest[:idx],
		Version:   rest[idx+len(versionSep):],
	}

	switch {
	case spec.Ecosystem == "":
		return DependencySpec{}, &MalformedSpecError{Input: s, Reason: "empty ecosystem"}
	case spec.Name == "":
		return DependencySpec{}, &MalformedSpecError{Input: s, Reason: "empty package name"}
	case spec.Version == "":
		return DependencySpec{}, &MalformedSpecError{Input: s, Reason: "empty version"}
	}

	return spec, nil
}

// ParseDependencyList parses a comma-separated list of specs. Blank entries
// are ignored; the first malformed entry fails the whole list.
func ParseDependencyList(list string) ([]DependencySpec, error) {
	var specs []DependencySpec
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		spec, err := ParseDependencySpec(part)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// PackageName returns the ecosystem-qualified package name, e.g. npm://lodash
func (d DependencySpec) PackageName() string {
	return d.Ecosystem + schemeSep + d.Name
}

// String returns the spec in ecosystem://name@version form
func (d DependencySpec) String() string {
	return d.PackageName() + versionSep + d.Version
}
