package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

const (
	dependencyKind = "DependencyMetadata"
	projectKind    = "Project"

	dependencyMask = "uuid,meta.name,tenant_meta,spec.dependency_data,spec.importer_data"
	projectMask    = "uuid,meta.name,spec.git"
)

// QueryRequest is the body of the query API. A query lists one kind of
// object and may join referenced objects onto each result.
type QueryRequest struct {
	Meta QueryMeta        `json:"meta"`
	Spec QueryRequestSpec `json:"spec"`
}

type QueryMeta struct {
	Name string `json:"name"`
}

type QueryRequestSpec struct {
	QuerySpec QuerySpec `json:"query_spec"`
}

type QuerySpec struct {
	Kind           string           `json:"kind"`
	ListParameters ListParameters   `json:"list_parameters"`
	References     []QueryReference `json:"references,omitempty"`
}

type ListParameters struct {
	Filter    string `json:"filter,omitempty"`
	Mask      string `json:"mask,omitempty"`
	Traverse  bool   `json:"traverse,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

type QueryReference struct {
	ConnectFrom string    `json:"connect_from"`
	ConnectTo   string    `json:"connect_to"`
	QuerySpec   QuerySpec `json:"query_spec"`
}

type queryResponse struct {
	Spec struct {
		QueryResponse ListResponse[DependencyMetadata] `json:"query_response"`
	} `json:"spec"`
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteFilterValue renders s as a quoted string operand of a filter
func quoteFilterValue(s string) string {
	return `"` + filterEscaper.Replace(s) + `"`
}

// BuildDependencyFilter selects main-context dependency records of exactly
// spec's package and version
func BuildDependencyFilter(spec models.DependencySpec) string {
	return strings.Join([]string{
		"context.type==CONTEXT_TYPE_MAIN",
		"spec.dependency_data.package_name==" + quoteFilterValue(spec.PackageName()),
		"spec.dependency_data.resolved_version==" + quoteFilterValue(spec.Version),
	}, " and ")
}

// BuildDependencyQuery builds the query for spec with the owning project
// joined onto every record
func BuildDependencyQuery(spec models.DependencySpec, traverse bool, pageSize int) QueryRequest {
	return QueryRequest{
		Meta: QueryMeta{Name: "Dependencies with Project Info: " + spec.PackageName()},
		Spec: QueryRequestSpec{
			QuerySpec: QuerySpec{
				Kind: dependencyKind,
				ListParameters: ListParameters{
					Filter:   BuildDependencyFilter(spec),
					Mask:     dependencyMask,
					Traverse: traverse,
					PageSize: pageSize,
				},
				References: []QueryReference{{
					ConnectFrom: "spec.importer_data.project_uuid",
					ConnectTo:   "uuid",
					QuerySpec: QuerySpec{
						Kind:           projectKind,
						ListParameters: ListParameters{Mask: projectMask},
					},
				}},
			},
		},
	}
}

// SearchDependency pages through the dependency records of spec in
// namespace, handing each page to yield. Any failure is returned as a
// *models.NamespaceQueryError.
func (c *EndorClient) SearchDependency(ctx context.Context, namespace string, spec models.DependencySpec, traverse bool,
	yield func(page int, records []DependencyMetadata) error) error {
	query := BuildDependencyQuery(spec, traverse, c.pageSize)

	fetch := func(ctx context.Context, pageToken string) (Page[DependencyMetadata], error) {
		query.Spec.QuerySpec.ListParameters.PageToken = pageToken

		var resp queryResponse
		if err := c.do(ctx, "POST", namespacePath(namespace, "queries"), nil, query, &resp); err != nil {
			return Page[DependencyMetadata]{}, err
		}
		list := resp.Spec.QueryResponse.List
		return Page[DependencyMetadata]{
			Items:         list.Objects,
			NextPageToken: string(list.Response.NextPageToken),
		}, nil
	}

	if err := Paginate[DependencyMetadata](ctx, fetch, yield); err != nil {
		var authErr *models.AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		qerr := &models.NamespaceQueryError{
			Namespace:  namespace,
			Dependency: spec.String(),
			Err:        err,
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			qerr.Status = statusErr.Status
			qerr.Body = statusErr.Body
		}
		return qerr
	}
	return nil
}
