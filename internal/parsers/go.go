package parsers

import (
	"golang.org/x/mod/modfile"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// GoModParser parses go.mod files
type GoModParser struct {
	IncludeIndirect bool // Whether to include indirect dependencies
}

// CanParse returns true for go.mod files
func (p *GoModParser) CanParse(filename string) bool {
	return filename == "go.mod"
}

// Parse extracts dependencies from go.mod content. Versions keep their
// leading "v", matching Go package version names.
func (p *GoModParser) Parse(filepath string, content []byte) ([]models.DependencySpec, error) {
	mod, err := modfile.Parse(filepath, content, nil)
	if err != nil {
		return nil, err
	}

	var deps []models.DependencySpec
	for _, req := range mod.Require {
		if req.Indirect && !p.IncludeIndirect {
			continue
		}
		deps = append(deps, spec(EcosystemGo, req.Mod.Path, req.Mod.Version))
	}

	return deps, nil
}
