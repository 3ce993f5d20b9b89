package parsers

import (
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// PythonRequirementsParser parses requirements.txt files
type PythonRequirementsParser struct{}

// CanParse returns true for requirements.txt files
func (p *PythonRequirementsParser) CanParse(filename string) bool {
	return filename == "requirements.txt" ||
		strings.HasSuffix(filename, "-requirements.txt") ||
		strings.HasSuffix(filename, "_requirements.txt")
}

// pinnedPattern matches name==version, the only form that names one release
var pinnedPattern = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)\s*===?\s*([0-9][^\s,;]*)$`)

// requirementOption finds the first --option trailing a requirement
var requirementOption = regexp.MustCompile(`\s--[a-z]`)

// Parse extracts pinned dependencies from requirements.txt content
func (p *PythonRequirementsParser) Parse(filepath string, content []byte) ([]models.DependencySpec, error) {
	var deps []models.DependencySpec

	for _, line := range joinContinuations(string(content)) {
		line = strings.TrimSpace(line)

		// Skip empty lines, comments, and options
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		if idx := strings.Index(line, "#"); idx > 0 {
			line = strings.TrimSpace(line[:idx])
		}
		// Per-requirement options such as --hash=sha256:...
		if m := requirementOption.FindStringIndex(line); m != nil {
			line = strings.TrimSpace(line[:m[0]])
		}

		if name, version := parsePinned(line); name != "" {
			deps = append(deps, spec(EcosystemPyPI, name, version))
		}
	}

	return deps, nil
}

// joinContinuations splits content into logical lines, joining every line
// that ends in a backslash with the one after it
func joinContinuations(content string) []string {
	var lines []string
	var cur strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasSuffix(line, "\\") {
			cur.WriteString(strings.TrimSuffix(line, "\\"))
			cur.WriteString(" ")
			continue
		}
		cur.WriteString(line)
		lines = append(lines, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// PythonPyProjectParser parses pyproject.toml files
type PythonPyProjectParser struct{}

// CanParse returns true for pyproject.toml files
func (p *PythonPyProjectParser) CanParse(filename string) bool {
	return filename == "pyproject.toml"
}

// pyproject represents the structure of pyproject.toml
type pyproject struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]interface{} `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Parse extracts pinned dependencies from PEP 621 and Poetry tables
func (p *PythonPyProjectParser) Parse(filepath string, content []byte) ([]models.DependencySpec, error) {
	var proj pyproject
	if err := toml.Unmarshal(content, &proj); err != nil {
		return nil, err
	}

	var deps []models.DependencySpec

	for _, dep := range proj.Project.Dependencies {
		if name, version := parsePinned(dep); name != "" {
			deps = append(deps, spec(EcosystemPyPI, name, version))
		}
	}

	var poetry []models.DependencySpec
	for name, val := range proj.Tool.Poetry.Dependencies {
		if name == "python" {
			continue
		}
		if version := poetryPinnedVersion(val); version != "" {
			poetry = append(poetry, spec(EcosystemPyPI, strings.ToLower(name), version))
		}
	}
	sortSpecs(poetry)

	return append(deps, poetry...), nil
}

// parsePinned parses a PEP 508 requirement and returns it only when it pins
// an exact version. Names are lowercased; PyPI is case-insensitive.
func parsePinned(req string) (string, string) {
	// Remove extras
	if idx := strings.Index(req, "["); idx > 0 {
		if end := strings.Index(req, "]"); end > idx {
			req = req[:idx] + req[end+1:]
		}
	}

	// Remove environment markers
	if idx := strings.Index(req, ";"); idx > 0 {
		req = req[:idx]
	}

	matches := pinnedPattern.FindStringSubmatch(strings.TrimSpace(req))
	if matches == nil {
		return "", ""
	}
	return strings.ToLower(matches[1]), matches[2]
}

// poetryPinnedVersion returns the version of a Poetry constraint that names a
// single release: "1.2.3", "==1.2.3" or {version = "1.2.3"}
func poetryPinnedVersion(val interface{}) string {
	var v string
	switch t := val.(type) {
	case string:
		v = t
	case map[string]interface{}:
		v, _ = t["version"].(string)
	}

	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "==")
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "^~<>=!*, |") {
		return ""
	}
	return v
}
