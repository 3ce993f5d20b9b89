package clients

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/xerrors"
)

// ListNamespaces returns the full names of every namespace below root that
// the authenticated identity can see, in API order. root itself is not
// included.
func (c *EndorClient) ListNamespaces(ctx context.Context, root string) ([]string, error) {
	fetch := func(ctx context.Context, pageToken string) (Page[Namespace], error) {
		query := url.Values{}
		query.Set("list_parameters.traverse", "true")
		query.Set("list_parameters.mask", "uuid,meta.name,tenant_meta")
		if c.pageSize > 0 {
			query.Set("list_parameters.page_size", strconv.Itoa(c.pageSize))
		}
		if pageToken != "" {
			query.Set("list_parameters.page_token", pageToken)
		}

		var resp ListResponse[Namespace]
		if err := c.do(ctx, "GET", namespacePath(root, "namespaces"), query, nil, &resp); err != nil {
			return Page[Namespace]{}, err
		}
		return Page[Namespace]{
			Items:         resp.List.Objects,
			NextPageToken: string(resp.List.Response.NextPageToken),
		}, nil
	}

	namespaces, err := CollectAll[Namespace](ctx, fetch)
	if err != nil {
		return nil, xerrors.Errorf("failed to list namespaces of %s: %w", root, err)
	}

	names := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		if name := ns.FullName(); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
