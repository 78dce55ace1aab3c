// Package transitive implements M4: multi-hop chain discovery from a root
// resource, walking the declared transitive-chain table hop by hop with
// per-hop timeouts, intermediate caching, and circuit-breaker-guarded
// searches.
package transitive

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/internal/platform"
	functionerrors "github.com/crossplane/function-kubecore-schema-registry/pkg/errors"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// Config bounds how aggressively the engine walks transitive chains.
type Config struct {
	MaxDepth            int
	MaxResourcesPerType int
	TimeoutPerHop       time.Duration
	ParallelWorkers     int
	MemoryLimitMB       int
}

// Engine implements interfaces.TransitiveEngine.
type Engine struct {
	fetcher    interfaces.Fetcher
	breaker    interfaces.CircuitBreakerProvider
	interCache interfaces.IntermediateCache
	log        interfaces.Logger
	cfg        Config

	totalAPICalls       atomic.Int64
	failedAPICalls      atomic.Int64
	discoveredResources atomic.Int64
}

// New creates an Engine.
func New(fetcher interfaces.Fetcher, breakerPool interfaces.CircuitBreakerProvider, interCache interfaces.IntermediateCache, log interfaces.Logger, cfg Config) *Engine {
	if cfg.ParallelWorkers < 1 {
		cfg.ParallelWorkers = 1
	}
	return &Engine{fetcher: fetcher, breaker: breakerPool, interCache: interCache, log: log, cfg: cfg}
}

var _ interfaces.TransitiveEngine = (*Engine)(nil)

// Discover walks every declared chain rooted at root.Kind up to maxDepth
// hops (bounded additionally by the engine's own configured MaxDepth) and
// returns one TransitiveHit per distinct resource found at the end of a
// chain. A maxDepth of 0 or less disables discovery and returns nil.
func (e *Engine) Discover(ctx context.Context, root domain.ResourceRef, maxDepth int) ([]*domain.TransitiveHit, error) {
	if maxDepth <= 0 {
		return nil, nil
	}
	if maxDepth > e.cfg.MaxDepth {
		maxDepth = e.cfg.MaxDepth
	}

	chains := platform.TransitiveChains[root.Kind]
	if len(chains) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var hits []*domain.TransitiveHit

	eg, egCtx := errgroup.WithContext(ctx)
	for _, chain := range chains {
		chain := chain
		if len(chain.RefChain) > maxDepth {
			continue
		}
		eg.Go(func() error {
			chainHits, err := e.traverseChain(egCtx, root, chain)
			if err != nil {
				e.log.Warn("transitive discovery: chain failed, continuing with remaining chains",
					"targetKind", chain.TargetKind, "error", err.Error())
				return nil
			}
			mu.Lock()
			hits = append(hits, chainHits...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[domain.DedupKey]bool, len(hits))
	unique := hits[:0]
	for _, hit := range hits {
		if !seen[hit.Ref.Dedup()] {
			seen[hit.Ref.Dedup()] = true
			unique = append(unique, hit)
		}
	}
	return unique, nil
}

// traverseChain walks one declared chain hop by hop starting from root,
// returning a TransitiveHit for every resource reached at the final hop,
// capped at MaxResourcesPerType when that is positive.
func (e *Engine) traverseChain(ctx context.Context, root domain.ResourceRef, chain platform.TransitiveChainStep) ([]*domain.TransitiveHit, error) {
	current := []domain.ResourceRef{root}
	paths := map[domain.DedupKey][]domain.ResourceRef{root.Dedup(): {root}}

	for hop, refField := range chain.RefChain {
		if int64(e.discoveredResources.Load()) > int64(e.cfg.MemoryLimitMB)*1000 {
			e.log.Warn("transitive discovery: memory budget exceeded, truncating chain",
				"targetKind", chain.TargetKind)
			break
		}

		hopCtx, cancel := context.WithTimeout(ctx, e.cfg.TimeoutPerHop)
		next, nextPaths, err := e.findNextHop(hopCtx, current, paths, refField, hop)
		cancel()
		if err != nil {
			return nil, err
		}
		current = next
		paths = nextPaths
		if len(current) == 0 {
			return nil, nil
		}
	}

	if e.cfg.MaxResourcesPerType > 0 && len(current) > e.cfg.MaxResourcesPerType {
		current = current[:e.cfg.MaxResourcesPerType]
	}
	hits := make([]*domain.TransitiveHit, 0, len(current))
	for _, ref := range current {
		path := paths[ref.Dedup()]
		hit := &domain.TransitiveHit{
			Ref:           ref,
			Hops:          len(chain.RefChain),
			Method:        fmt.Sprintf("transitive-%d", len(chain.RefChain)),
			Path:          path,
			Intermediates: path[1 : len(path)-1],
		}
		hits = append(hits, hit)
	}
	e.discoveredResources.Add(int64(len(hits)))
	return hits, nil
}

// findNextHop finds every resource that references one of the current
// frontier via refField, using intermediate caching and a circuit breaker
// per searched kind.
func (e *Engine) findNextHop(ctx context.Context, current []domain.ResourceRef, paths map[domain.DedupKey][]domain.ResourceRef, refField string, hop int) ([]domain.ResourceRef, map[domain.DedupKey][]domain.ResourceRef, error) {
	configs := platform.SearchConfigsForRefField(refField)
	if len(configs) == 0 {
		return nil, nil, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.cfg.ParallelWorkers)
	var mu sync.Mutex
	next := make([]domain.ResourceRef, 0)
	nextPaths := make(map[domain.DedupKey][]domain.ResourceRef)

	for _, from := range current {
		from := from
		for _, cfg := range configs {
			cfg := cfg
			eg.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()

				cacheKey := fmt.Sprintf("%s|%s|%s|%d", from.Dedup(), cfg.Kind, refField, hop)
				var matches []domain.ResourceRef
				if cached, ok := e.interCache.Get(cacheKey); ok {
					matches = cached
				} else {
					found, err := e.searchWithBreaker(egCtx, cfg.Kind, cfg.APIVersion, from)
					if err != nil {
						return nil // a single failed candidate kind must not fail the whole hop
					}
					matches = found
					e.interCache.Set(cacheKey, matches)
				}

				mu.Lock()
				defer mu.Unlock()
				for _, m := range matches {
					key := m.Dedup()
					if _, seen := nextPaths[key]; seen {
						continue
					}
					parentPath := paths[from.Dedup()]
					path := append(append([]domain.ResourceRef{}, parentPath...), m)
					nextPaths[key] = path
					next = append(next, m)
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return next, nextPaths, nil
}

// searchWithBreaker lists resources of (kind, apiVersion) and keeps those
// whose edges reference target, guarded by a per-kind circuit breaker.
func (e *Engine) searchWithBreaker(ctx context.Context, kind, apiVersion string, target domain.ResourceRef) ([]domain.ResourceRef, error) {
	e.totalAPICalls.Add(1)

	result, err := e.breaker.Execute(kind, func() (interface{}, error) {
		return e.fetcher.List(ctx, apiVersion, kind, "", "")
	})
	if err != nil {
		e.failedAPICalls.Add(1)
		if functionerrors.IsErrorCode(err, functionerrors.ErrorCodeCircuitBreakerOpen) {
			return nil, nil
		}
		return nil, err
	}

	resources, _ := result.([]*domain.ResolvedResource)
	var matches []domain.ResourceRef
	for _, res := range resources {
		for _, edge := range res.Edges {
			if edge.Dedup() == target.Dedup() {
				matches = append(matches, res.Ref)
				break
			}
		}
	}
	return matches, nil
}

// Health reports the engine's aggregate call statistics and a derived
// healthy/unhealthy verdict.
func (e *Engine) Health() domain.TransitiveEngineHealth {
	total := e.totalAPICalls.Load()
	failed := e.failedAPICalls.Load()

	successRate := 1.0
	if total > 0 {
		successRate = float64(total-failed) / float64(total)
	}

	breakers := e.breaker.Snapshot()
	healthy := successRate >= 0.5
	openCount := 0
	for _, b := range breakers {
		if b.State == "open" {
			openCount++
		}
	}
	if openCount > len(breakers)/2 {
		healthy = false
	}

	return domain.TransitiveEngineHealth{
		TotalAPICalls:       total,
		FailedAPICalls:      failed,
		SuccessRate:         successRate,
		DiscoveredResources: e.discoveredResources.Load(),
		CacheEntries:        e.interCache.Size(),
		EstimatedMemoryMB:   float64(e.discoveredResources.Load()) / 1000.0,
		Breakers:            breakers,
		Healthy:             healthy,
	}
}
