package nofuture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.senan.xyz/nofuture/discogs"
	"go.senan.xyz/nofuture/release"
)

var ErrNoMatch = errors.New("no match")

// Catalog is the part of the Discogs client used to resolve releases.
type Catalog interface {
	Search(ctx context.Context, query string, typ discogs.ResultType) ([]discogs.SearchResult, error)
	GetRelease(ctx context.Context, id int) (*discogs.Release, error)
}

var _ Catalog = (*discogs.Client)(nil)

// ResolveRelease searches for searchTitle and takes the first result as the
// match. There is no scoring, so it's only as good as the Discogs ranking.
func ResolveRelease(ctx context.Context, catalog Catalog, searchTitle string) (release.Release, error) {
	if strings.TrimSpace(searchTitle) == "" {
		return release.Release{}, fmt.Errorf("%w: empty search title", ErrNoMatch)
	}

	results, err := catalog.Search(ctx, searchTitle, discogs.TypeRelease)
	if err != nil {
		return release.Release{}, fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return release.Release{}, fmt.Errorf("%w: nothing found for %q", ErrNoMatch, searchTitle)
	}
	first := results[0]

	full, err := catalog.GetRelease(ctx, first.ID)
	if err != nil {
		return release.Release{}, fmt.Errorf("get release %d: %w", first.ID, err)
	}
	r, err := release.FromDiscogs(full)
	if err != nil {
		return release.Release{}, fmt.Errorf("normalise release: %w", err)
	}
	return r, nil
}
