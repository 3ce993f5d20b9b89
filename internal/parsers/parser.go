package parsers

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// Ecosystem prefixes used in Endor package names
const (
	EcosystemPyPI = "pypi"
	EcosystemNpm  = "npm"
	EcosystemGo   = "go"
)

// Parser is the interface for dependency manifest parsers
type Parser interface {
	// CanParse returns true if this parser can handle the given filename
	CanParse(filename string) bool

	// Parse extracts pinned dependencies from the file content. Entries
	// without an exact version are skipped.
	Parse(filepath string, content []byte) ([]models.DependencySpec, error)
}

// GetAllParsers returns all available parsers. includeIndirect is passed to
// the go.mod parser.
func GetAllParsers(includeIndirect bool) []Parser {
	return []Parser{
		&PythonRequirementsParser{},
		&PythonPyProjectParser{},
		&NodePackageLockParser{},
		&NodePackageJSONParser{},
		&GoModParser{IncludeIndirect: includeIndirect},
	}
}

// ExpandManifests parses every manifest in paths and returns the distinct
// pinned dependencies they declare, in file order
func ExpandManifests(fs afero.Fs, paths []string, includeIndirect bool) ([]models.DependencySpec, error) {
	parsers := GetAllParsers(includeIndirect)

	var all []models.DependencySpec
	for _, path := range paths {
		specs, err := parseFile(fs, parsers, path)
		if err != nil {
			return nil, xerrors.Errorf("failed to parse manifest %s: %w", path, err)
		}
		all = append(all, specs...)
	}
	return lo.Uniq(all), nil
}

func parseFile(fs afero.Fs, parsers []Parser, path string) ([]models.DependencySpec, error) {
	filename := filepath.Base(path)

	for _, parser := range parsers {
		if !parser.CanParse(filename) {
			continue
		}
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, err
		}
		return parser.Parse(path, content)
	}

	return nil, fmt.Errorf("unsupported manifest %q", filename)
}

func spec(ecosystem, name, version string) models.DependencySpec {
	return models.DependencySpec{Ecosystem: ecosystem, Name: name, Version: version}
}

func sortSpecs(specs []models.DependencySpec) {
	slices.SortFunc(specs, func(a, b models.DependencySpec) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Version, b.Version))
	})
}
