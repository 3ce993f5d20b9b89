package scanner

import (
	"context"
	"errors"
	"log"

	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/cache"
	"github.com/ethanolivertroy/dep-usage/internal/clients"
	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// API is the part of the Endor client the scanner depends on
type API interface {
	Authenticate(ctx context.Context) error
	ListNamespaces(ctx context.Context, root string) ([]string, error)
	SearchDependency(ctx context.Context, namespace string, spec models.DependencySpec, traverse bool,
		yield func(page int, records []clients.DependencyMetadata) error) error
}

// Scanner runs the lookup of every spec across every namespace
type Scanner struct {
	config *models.Config
	api    API
}

// New creates a Scanner backed by the Endor API
func New(config *models.Config) *Scanner {
	var c *cache.Cache
	if !config.NoCache || config.ClearCache {
		var err error
		c, err = cache.New("dep-usage", config.CacheTTL)
		if err != nil {
			// Non-fatal: authenticate on every run instead
			log.Printf("Token cache disabled: %v", err)
			c = nil
		}
	}
	return NewWithAPI(config, clients.NewEndorClient(config, tokenCache(c, config)))
}

// tokenCache applies --clear-cache and --no-cache to c. It returns nil when
// tokens must not be cached for this run.
func tokenCache(c *cache.Cache, config *models.Config) *cache.Cache {
	if c == nil {
		return nil
	}
	if config.ClearCache {
		if err := c.Clear(); err != nil {
			log.Printf("Failed to clear token cache: %v", err)
		} else {
			log.Printf("Cleared cached tokens in %s", c.Dir)
		}
	}
	if config.NoCache {
		return nil
	}
	return c
}

// NewWithAPI creates a Scanner on top of api
func NewWithAPI(config *models.Config, api API) *Scanner {
	return &Scanner{config: config, api: api}
}

// Scan authenticates, enumerates namespaces and looks up every spec in
// every namespace, one at a time. A namespace whose query fails is recorded
// in the result set and the run carries on; authentication and enumeration
// failures are fatal, including a token the API stops accepting mid-run.
func (s *Scanner) Scan(ctx context.Context, specs []models.DependencySpec) (*models.ResultSet, error) {
	if err := s.api.Authenticate(ctx); err != nil {
		return nil, err
	}

	namespaces, err := s.namespaces(ctx)
	if err != nil {
		return nil, err
	}

	specs = lo.Uniq(specs)
	log.Printf("Searching %d namespace(s) for %d dependency(ies)", len(namespaces), len(specs))

	results := models.NewResultSet()
	for _, spec := range specs {
		results.AddSpec(spec)
		log.Printf("Searching for usage of %s...", spec)

		for _, ns := range namespaces {
			if err := s.searchNamespace(ctx, ns, spec, results); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

func (s *Scanner) namespaces(ctx context.Context) ([]string, error) {
	root := s.config.Namespace
	if s.config.Traverse {
		return []string{root}, nil
	}

	children, err := s.api.ListNamespaces(ctx, root)
	if err != nil {
		return nil, xerrors.Errorf("failed to enumerate namespaces: %w", err)
	}
	return lo.Uniq(append([]string{root}, children...)), nil
}

// searchNamespace returns an error only when the run itself must stop
func (s *Scanner) searchNamespace(ctx context.Context, ns string, spec models.DependencySpec, results *models.ResultSet) error {
	err := s.api.SearchDependency(ctx, ns, spec, s.config.Traverse, func(page int, records []clients.DependencyMetadata) error {
		log.Printf("  [%s] received %d record(s) on page %d", ns, len(records), page)
		for _, rec := range records {
			m := Flatten(rec, ns, spec)
			results.Add(spec, m)
			log.Printf("  Found usage of %s in project: %s in namespace: %s", spec, m.ProjectName, m.Namespace)
			if m.Scope == models.ScopeTransitive {
				log.Printf("    └── via %s@%s", m.ParentName, m.ParentVersion)
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// A rejected token fails every namespace alike
	var authErr *models.AuthError
	if errors.As(err, &authErr) {
		return err
	}

	var qerr *models.NamespaceQueryError
	if !errors.As(err, &qerr) {
		qerr = &models.NamespaceQueryError{Namespace: ns, Dependency: spec.String(), Err: err}
	}
	log.Printf("  Skipping namespace %s: %v", ns, qerr)
	results.Skip(*qerr)
	return nil
}
