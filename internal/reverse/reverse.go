// Package reverse implements M3: given a target resource, finds every
// resource that references it by consulting the static ReverseSearch table
// instead of scanning every kind in the cluster.
package reverse

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/internal/platform"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// Discovery implements interfaces.ReverseDiscovery.
type Discovery struct {
	fetcher     interfaces.Fetcher
	log         interfaces.Logger
	concurrency int
}

// New creates a Discovery. concurrency bounds how many searcher kinds are
// listed in parallel for a single target.
func New(fetcher interfaces.Fetcher, log interfaces.Logger, concurrency int) *Discovery {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Discovery{fetcher: fetcher, log: log, concurrency: concurrency}
}

var _ interfaces.ReverseDiscovery = (*Discovery)(nil)

// FindReferencing lists every candidate searcher kind declared for
// target.Kind and keeps the instances whose reference field actually
// points back at target.
func (d *Discovery) FindReferencing(ctx context.Context, target domain.ResourceRef) ([]*domain.ResolvedResource, error) {
	candidates := platform.ReverseSearch[target.Kind]
	if len(candidates) == 0 {
		return nil, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, d.concurrency)
	matchesByCandidate := make([][]*domain.ResolvedResource, len(candidates))

	for i, candidate := range candidates {
		i, candidate := i, candidate
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			resources, err := d.fetcher.List(egCtx, candidate.APIVersion, candidate.SearcherKind, "", "")
			if err != nil {
				d.log.Warn("reverse discovery: list failed, skipping candidate kind",
					"kind", candidate.SearcherKind, "error", err.Error())
				return nil
			}

			var matches []*domain.ResolvedResource
			for _, res := range resources {
				if referencesTarget(res, candidate.RefField, target) {
					matches = append(matches, res)
				}
			}
			matchesByCandidate[i] = matches
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []*domain.ResolvedResource
	for _, matches := range matchesByCandidate {
		out = append(out, matches...)
	}
	return out, nil
}

// referencesTarget reports whether res carries an edge (extracted by the
// fetcher from refField) that points at target.
func referencesTarget(res *domain.ResolvedResource, refField string, target domain.ResourceRef) bool {
	for _, edge := range res.Edges {
		if edge.Dedup() == target.Dedup() {
			return true
		}
	}
	_ = refField // the edge list is already field-scoped by ExtractEdges
	return false
}
