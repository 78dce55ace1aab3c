// Package query implements T1: the top-level orchestrator that turns an
// input query into a fully assembled PlatformContext, fanning out across
// requested schemas and merging the direct, reverse, and transitive
// discovery methods into one deduplicated result per schema.
package query

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/internal/platform"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// Processor implements interfaces.QueryProcessor.
type Processor struct {
	resolver   interfaces.ResourceResolver
	summarizer interfaces.Summarizer
	reverse    interfaces.ReverseDiscovery
	transitive interfaces.TransitiveEngine
	insights   interfaces.InsightsGenerator
	log        interfaces.Logger
}

// New creates a Processor wired with every downstream component.
func New(
	resolver interfaces.ResourceResolver,
	summarizer interfaces.Summarizer,
	reverse interfaces.ReverseDiscovery,
	transitive interfaces.TransitiveEngine,
	insights interfaces.InsightsGenerator,
	log interfaces.Logger,
) *Processor {
	return &Processor{
		resolver:   resolver,
		summarizer: summarizer,
		reverse:    reverse,
		transitive: transitive,
		insights:   insights,
		log:        log,
	}
}

var _ interfaces.QueryProcessor = (*Processor)(nil)

// Process resolves requestedSchemas (or every schema accessible to
// requestor.Kind when empty) against known seed references, merging
// direct, reverse, and transitive hits, then runs the insights generator
// over the assembled context.
func (p *Processor) Process(ctx context.Context, requestor domain.Requestor, requestedSchemas []string, opts interfaces.QueryOptions) (*domain.PlatformContext, error) {
	schemas := requestedSchemas
	if len(schemas) == 0 {
		for _, kind := range platform.AccessibleKinds[requestor.Kind] {
			schemas = append(schemas, platform.ShortName(kind))
		}
	}

	pc := domain.NewPlatformContext(requestor)
	pc.Relationships.Direct = directRelationships(requestor.Kind)

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for _, shortName := range schemas {
		shortName := shortName
		kind, ok := platform.KindForShortName(shortName)
		if !ok {
			continue
		}
		accessible := isAccessible(requestor.Kind, kind)

		eg.Go(func() error {
			block, err := p.buildSchemaBlock(egCtx, requestor, kind, accessible, opts)
			if err != nil {
				p.log.Warn("schema block failed, returning empty block", "schema", shortName, "error", err.Error())
				block = &domain.SchemaBlock{
					Metadata: domain.SchemaBlockMetadata{Kind: kind, Accessible: accessible},
				}
			}
			mu.Lock()
			pc.AvailableSchemas[shortName] = block
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	pc.Insights = p.insights.Generate(pc, opts)
	return pc, nil
}

// buildSchemaBlock resolves every instance of kind reachable from the
// known seed references via direct resolution, reverse discovery, and
// (when enabled) transitive traversal, deduplicating by identity.
func (p *Processor) buildSchemaBlock(ctx context.Context, requestor domain.Requestor, kind string, accessible bool, opts interfaces.QueryOptions) (*domain.SchemaBlock, error) {
	block := &domain.SchemaBlock{
		Metadata: domain.SchemaBlockMetadata{
			Kind:            kind,
			Accessible:      accessible,
			DiscoveryMethod: domain.DiscoveryDirect,
		},
	}
	if !accessible {
		return block, nil
	}

	if opts.IncludeFullSchemas {
		if schema, ok := p.summarizer.FullSchema(kind); ok {
			block.Metadata.FullSchema = schema
		}
	}

	seen := make(map[domain.DedupKey]bool)
	var methods []domain.DiscoveryMethod
	var directMatches []*domain.ResolvedResource

	// Forward path, step 1: known references for this kind are resolved
	// directly (a single-resource fetch per ref) rather than discovered by
	// first fetching the requestor and parsing its spec for the edge.
	for _, ref := range opts.References[kind] {
		if seen[ref.Dedup()] {
			continue
		}
		resolved, err := p.resolver.Resolve(ctx, ref, 0, 1)
		if err != nil {
			p.log.Warn("forward resolution of provided reference failed", "ref", ref.String(), "error", err.Error())
			continue
		}
		for _, res := range resolved {
			if res.Ref.Kind == kind && !seen[res.Ref.Dedup()] {
				seen[res.Ref.Dedup()] = true
				directMatches = append(directMatches, res)
			}
		}
	}

	seed := domain.ResourceRef{
		APIVersion: platform.APIVersionForKind(requestor.Kind),
		Kind:       requestor.Kind,
		Name:       requestor.Name,
		Namespace:  requestor.Namespace,
	}

	resolved, err := p.resolver.Resolve(ctx, seed, opts.TransitiveMaxDepth, opts.MaxResourcesPerType)
	if err != nil {
		p.log.Warn("forward resolution failed for schema block", "kind", kind, "error", err.Error())
	}
	for _, res := range resolved {
		if res.Ref.Kind == kind && !seen[res.Ref.Dedup()] {
			seen[res.Ref.Dedup()] = true
			directMatches = append(directMatches, res)
		}
	}
	if len(directMatches) > 0 {
		methods = append(methods, domain.DiscoveryDirect)
		for _, s := range p.summarizer.SummarizeMultiple(directMatches) {
			block.Instances = append(block.Instances, domain.SchemaInstance{Name: s.Name, Namespace: s.Namespace, Summary: s})
		}
	}

	if platform.HubKinds[requestor.Kind] {
		referencing, err := p.reverse.FindReferencing(ctx, seed)
		if err != nil {
			p.log.Warn("reverse discovery failed for schema block", "kind", kind, "error", err.Error())
		}
		var reverseMatches []*domain.ResolvedResource
		for _, res := range referencing {
			if res.Ref.Kind == kind && !seen[res.Ref.Dedup()] {
				seen[res.Ref.Dedup()] = true
				reverseMatches = append(reverseMatches, res)
			}
		}
		if len(reverseMatches) > 0 {
			methods = append(methods, domain.DiscoveryReverse)
			for _, s := range p.summarizer.SummarizeMultiple(reverseMatches) {
				block.Instances = append(block.Instances, domain.SchemaInstance{Name: s.Name, Namespace: s.Namespace, Summary: s})
			}
		}
	}

	if opts.EnableTransitiveDiscovery {
		hits, err := p.transitive.Discover(ctx, seed, opts.TransitiveMaxDepth)
		if err != nil {
			p.log.Warn("transitive discovery failed for schema block", "kind", kind, "error", err.Error())
		}
		var transitiveMatches []*domain.TransitiveHit
		for _, hit := range hits {
			if hit.Ref.Kind == kind && !seen[hit.Ref.Dedup()] {
				seen[hit.Ref.Dedup()] = true
				transitiveMatches = append(transitiveMatches, hit)
			}
		}
		if len(transitiveMatches) > 0 {
			methods = append(methods, domain.DiscoveryTransitive)
			for _, hit := range transitiveMatches {
				summary := &domain.ResourceSummary{
					Ref:               hit.Ref,
					Name:              hit.Ref.Name,
					Namespace:         hit.Ref.Namespace,
					DiscoveryHops:     hit.Hops,
					RelationshipChain: hit.RelationshipChain(),
				}
				block.Instances = append(block.Instances, domain.SchemaInstance{Name: hit.Ref.Name, Namespace: hit.Ref.Namespace, Summary: summary})
			}
		}
	}

	block.Metadata.DiscoveryMethod = mergeMethods(methods)
	return block, nil
}

func mergeMethods(methods []domain.DiscoveryMethod) domain.DiscoveryMethod {
	switch len(methods) {
	case 0:
		return domain.DiscoveryDirect
	case 1:
		return methods[0]
	default:
		return domain.DiscoveryHybrid
	}
}

func isAccessible(requestorKind, targetKind string) bool {
	for _, k := range platform.AccessibleKinds[requestorKind] {
		if k == targetKind {
			return true
		}
	}
	return false
}

func directRelationships(requestorKind string) []domain.DirectRelationship {
	edges := platform.OutboundEdges[requestorKind]
	rels := make([]domain.DirectRelationship, 0, len(edges))
	for relation, targets := range edges {
		for _, target := range targets {
			rels = append(rels, domain.DirectRelationship{
				Type:        string(relation),
				Cardinality: platform.Cardinality(requestorKind, target),
				Description: platform.DescribeKind(target),
			})
		}
	}
	return rels
}
