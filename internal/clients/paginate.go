package clients

import (
	"context"

	"golang.org/x/xerrors"
)

// Page is one page of a list endpoint
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// PageFetcher fetches the page that starts at pageToken ("" for the first)
type PageFetcher[T any] func(ctx context.Context, pageToken string) (Page[T], error)

// Paginate calls fetch until the API reports no further pages, handing every
// page to yield before requesting the next one. Pages are numbered from 1.
func Paginate[T any](ctx context.Context, fetch PageFetcher[T], yield func(page int, items []T) error) error {
	token := ""
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := fetch(ctx, token)
		if err != nil {
			return err
		}

		if err := yield(page, p.Items); err != nil {
			return err
		}

		if len(p.Items) == 0 || p.NextPageToken == "" {
			return nil
		}
		if p.NextPageToken == token {
			return xerrors.Errorf("page token %q did not advance after page %d", token, page)
		}
		token = p.NextPageToken
	}
}

// CollectAll drains fetch into a single slice
func CollectAll[T any](ctx context.Context, fetch PageFetcher[T]) ([]T, error) {
	var all []T
	err := Paginate(ctx, fetch, func(_ int, items []T) error {
		all = append(all, items...)
		return nil
	})
	return all, err
}
