package parsers

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// exactSemver matches a fully pinned npm version
var exactSemver = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.+-]+)?$`)

// NodePackageLockParser parses package-lock.json files
type NodePackageLockParser struct{}

// CanParse returns true for package-lock.json files
func (p *NodePackageLockParser) CanParse(filename string) bool {
	return filename == "package-lock.json"
}

type lockEntry struct {
	Version string `json:"version"`
	Dev     bool   `json:"dev"`
}

// packageLock represents the structure of package-lock.json (v1-v3)
type packageLock struct {
	LockfileVersion int                  `json:"lockfileVersion"`
	Packages        map[string]lockEntry `json:"packages"`
	Dependencies    map[string]lockEntry `json:"dependencies"`
}

// Parse extracts production dependencies from package-lock.json content
func (p *NodePackageLockParser) Parse(filepath string, content []byte) ([]models.DependencySpec, error) {
	var lock packageLock
	if err := json.Unmarshal(content, &lock); err != nil {
		return nil, err
	}

	var deps []models.DependencySpec
	seen := make(map[string]bool)

	for path, pkg := range lock.Packages {
		if path == "" || pkg.Dev || pkg.Version == "" {
			continue
		}

		// "node_modules/a/node_modules/@types/node" -> "@types/node"
		name := path
		if idx := strings.LastIndex(name, "node_modules/"); idx >= 0 {
			name = name[idx+len("node_modules/"):]
		}

		key := name + "@" + pkg.Version
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		deps = append(deps, spec(EcosystemNpm, name, pkg.Version))
	}

	// V1 format fallback
	if len(lock.Packages) == 0 {
		for name, pkg := range lock.Dependencies {
			if pkg.Dev || pkg.Version == "" {
				continue
			}
			deps = append(deps, spec(EcosystemNpm, name, pkg.Version))
		}
	}

	sortSpecs(deps)
	return deps, nil
}

// NodePackageJSONParser parses package.json files (direct dependencies only)
type NodePackageJSONParser struct{}

// CanParse returns true for package.json files
func (p *NodePackageJSONParser) CanParse(filename string) bool {
	return filename == "package.json"
}

type packageJSON struct {
	Dependencies map[string]string `json:"dependencies"`
}

// Parse extracts exactly pinned production dependencies from package.json.
// Ranges such as ^1.2.0 do not name a single version and are skipped.
func (p *NodePackageJSONParser) Parse(filepath string, content []byte) ([]models.DependencySpec, error) {
	var pkg packageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, err
	}

	var deps []models.DependencySpec
	for name, version := range pkg.Dependencies {
		if v, ok := exactNpmVersion(version); ok {
			deps = append(deps, spec(EcosystemNpm, name, v))
		}
	}

	sortSpecs(deps)
	return deps, nil
}

func exactNpmVersion(version string) (string, bool) {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "=")
	version = strings.TrimPrefix(version, "v")
	return version, exactSemver.MatchString(version)
}
