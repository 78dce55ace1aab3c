// Package resolver implements M1, forward resolution: a breadth-first walk
// of a resource's outbound reference graph bounded by depth and resource
// count, with cycle detection (via pkg/graph's DFS cycle detector) and
// bounded parallel fan-out per level.
package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	functionerrors "github.com/crossplane/function-kubecore-schema-registry/pkg/errors"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/graph"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// Resolver implements interfaces.ResourceResolver.
type Resolver struct {
	fetcher     interfaces.Fetcher
	log         interfaces.Logger
	concurrency int
}

// New creates a Resolver. concurrency bounds how many Get calls run in
// parallel within a single BFS level.
func New(fetcher interfaces.Fetcher, log interfaces.Logger, concurrency int) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{fetcher: fetcher, log: log, concurrency: concurrency}
}

var _ interfaces.ResourceResolver = (*Resolver)(nil)

// Resolve walks the outbound reference graph from root breadth-first,
// stopping at maxDepth hops or maxResources total resources, whichever
// comes first. A reference cycle is detected and reported as an error
// rather than silently truncated, so composition authors see a clear
// failure instead of a partial, confusing graph.
func (r *Resolver) Resolve(ctx context.Context, root domain.ResourceRef, maxDepth, maxResources int) ([]*domain.ResolvedResource, error) {
	if maxDepth < 0 {
		maxDepth = 0
	}
	if maxResources <= 0 {
		maxResources = 1
	}

	visited := map[domain.DedupKey]bool{root.Dedup(): true}
	var mu sync.Mutex
	var results []*domain.ResolvedResource

	g := newGraphBuilder()

	frontier := []domain.ResourceRef{root}
	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		if len(results) >= maxResources {
			break
		}

		eg, egCtx := errgroup.WithContext(ctx)
		sem := make(chan struct{}, r.concurrency)
		resolvedThisLevel := make([]*domain.ResolvedResource, len(frontier))

		for i, ref := range frontier {
			i, ref := i, ref
			eg.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()

				res, err := r.fetcher.Get(egCtx, ref)
				if err != nil {
					// A failed reference (NotFound, Forbidden, or transient
					// after retries) is skipped; the rest of the walk goes on.
					r.log.Warn("forward resolution: skipping unreachable reference",
						"ref", ref.String(), "error", err.Error())
					return nil
				}
				res.ResolvedAt = time.Now()
				resolvedThisLevel[i] = res
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			return nil, functionerrors.Wrap(err, "forward resolution failed")
		}

		var next []domain.ResourceRef
		for _, res := range resolvedThisLevel {
			if res == nil {
				continue
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			g.addNode(res.Ref)
			for _, edge := range res.Edges {
				g.addEdge(res.Ref, edge)

				key := edge.Dedup()
				if visited[key] {
					continue
				}
				visited[key] = true
				if len(results)+len(next) >= maxResources {
					continue
				}
				next = append(next, edge)
			}
		}
		frontier = next
	}

	if cycle := g.detectCycle(); cycle != nil {
		return results, functionerrors.CircularDependencyError(cycle)
	}

	return results, nil
}

// graphBuilder incrementally assembles a pkg/graph.ResourceGraph from the
// refs visited during a BFS walk so cycle detection can reuse
// pkg/graph's DFS/Tarjan implementation instead of a bespoke one.
type graphBuilder struct {
	g        *graph.ResourceGraph
	edgeSeq  int
	detector *graph.DFSCycleDetector
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		g: &graph.ResourceGraph{
			Nodes:                make(map[graph.NodeID]*graph.ResourceNode),
			Edges:                make(map[graph.EdgeID]*graph.ResourceEdge),
			AdjacencyList:        make(map[graph.NodeID][]graph.EdgeID),
			ReverseAdjacencyList: make(map[graph.NodeID][]graph.EdgeID),
			Metadata:             &graph.GraphMetadata{CreatedAt: time.Now()},
		},
		detector: graph.NewDFSCycleDetector(64, false),
	}
}

func nodeID(ref domain.ResourceRef) graph.NodeID {
	return graph.NodeID(ref.String())
}

func (b *graphBuilder) addNode(ref domain.ResourceRef) {
	id := nodeID(ref)
	if _, ok := b.g.Nodes[id]; ok {
		return
	}
	b.g.Nodes[id] = &graph.ResourceNode{ID: id, DiscoveredAt: time.Now()}
}

func (b *graphBuilder) addEdge(from, to domain.ResourceRef) {
	b.addNode(from)
	b.addNode(to)

	fromID, toID := nodeID(from), nodeID(to)
	b.edgeSeq++
	edgeID := graph.EdgeID(fmt.Sprintf("e-%d", b.edgeSeq))
	b.g.Edges[edgeID] = &graph.ResourceEdge{
		ID:              edgeID,
		Source:          fromID,
		Target:          toID,
		RelationType:    graph.RelationTypeCustomRef,
		DiscoveredAt:    time.Now(),
		DetectionMethod: "spec-field",
	}
	b.g.AdjacencyList[fromID] = append(b.g.AdjacencyList[fromID], edgeID)
	b.g.ReverseAdjacencyList[toID] = append(b.g.ReverseAdjacencyList[toID], edgeID)
}

// detectCycle returns the node-id chain of the first detected cycle, or
// nil if the graph is acyclic.
func (b *graphBuilder) detectCycle() []string {
	result := b.detector.DetectCycles(b.g)
	if result == nil || !result.CyclesFound || len(result.Cycles) == 0 {
		return nil
	}
	chain := make([]string, 0, len(result.Cycles[0].Nodes))
	for _, n := range result.Cycles[0].Nodes {
		chain = append(chain, string(n))
	}
	return chain
}
