// Package interfaces declares the contracts each discovery layer exposes
// to its callers. Components are wired together by constructor injection
// in fn.go; nothing in this package performs I/O itself.
package interfaces

import (
	"context"
	"time"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
)

// Fetcher is the L3 Resource Fetcher: single-resource Get and label-based
// List against the Kubernetes API, with retry/backoff applied internally.
type Fetcher interface {
	Get(ctx context.Context, ref domain.ResourceRef) (*domain.ResolvedResource, error)
	List(ctx context.Context, apiVersion, kind, namespace string, labelSelector string) ([]*domain.ResolvedResource, error)
}

// ResponseCache is the L4 cache of fully-assembled PlatformContext
// responses, keyed by a fingerprint of the query.
type ResponseCache interface {
	Get(key string) (*domain.PlatformContext, bool)
	Set(key string, value *domain.PlatformContext)
	Stats() domain.CacheStats
	CleanupExpired() int
	Clear()
}

// IntermediateCache is the L5 cache of per-hop transitive-discovery
// results, distinct from ResponseCache because its entries are partial
// and keyed by (kind, ref, hop) rather than by whole-query fingerprint.
type IntermediateCache interface {
	Get(key string) ([]domain.ResourceRef, bool)
	Set(key string, value []domain.ResourceRef)
	Size() int
	Clear()
}

// CircuitBreakerProvider hands out a per-kind circuit breaker, lazily
// creating one on first use (L6).
type CircuitBreakerProvider interface {
	Execute(kind string, fn func() (interface{}, error)) (interface{}, error)
	Snapshot() map[string]domain.BreakerSnapshot
}

// ResourceResolver is M1: forward BFS resolution of a resource and its
// outbound reference graph.
type ResourceResolver interface {
	Resolve(ctx context.Context, root domain.ResourceRef, maxDepth, maxResources int) ([]*domain.ResolvedResource, error)
}

// Summarizer is M2: projects a ResolvedResource's body through a kind's
// schema into a ResourceSummary.
type Summarizer interface {
	Summarize(res *domain.ResolvedResource) (*domain.ResourceSummary, error)
	SummarizeMultiple(resources []*domain.ResolvedResource) []*domain.ResourceSummary
	// FullSchema returns the registered OpenAPI-shaped schema for kind, for
	// callers that opted into QueryOptions.IncludeFullSchemas.
	FullSchema(kind string) (*apiextensionsv1.JSONSchemaProps, bool)
}

// ReverseDiscovery is M3: finds resources that reference a given target,
// using the static ReverseSearch table to bound the candidate kinds.
type ReverseDiscovery interface {
	FindReferencing(ctx context.Context, target domain.ResourceRef) ([]*domain.ResolvedResource, error)
}

// TransitiveEngine is M4: multi-hop chain discovery from a root resource.
type TransitiveEngine interface {
	Discover(ctx context.Context, root domain.ResourceRef, maxDepth int) ([]*domain.TransitiveHit, error)
	Health() domain.TransitiveEngineHealth
}

// QueryProcessor is T1: the top-level orchestrator that turns an input
// query into a PlatformContext, fanning out across requested schemas.
type QueryProcessor interface {
	Process(ctx context.Context, requestor domain.Requestor, requestedSchemas []string, opts QueryOptions) (*domain.PlatformContext, error)
}

// QueryOptions carries the per-request knobs read from the Input CRD.
type QueryOptions struct {
	IncludeFullSchemas        bool
	IncludeSecurityAnalysis   bool
	IncludePerformanceAnalysis bool
	EnableTransitiveDiscovery bool
	TransitiveMaxDepth        int
	MaxResourcesPerType       int
	PerHopTimeout             time.Duration
	// References holds resource references already known to the caller,
	// keyed by target kind, merged from the input's explicit
	// context.references and the observed composite's harvested
	// spec.*Ref(s). The query processor seeds forward resolution from
	// these directly instead of discovering them via a live round-trip.
	References map[string][]domain.ResourceRef
}

// InsightsGenerator is T2: produces recommendations, validation rules, and
// suggested references for an assembled PlatformContext.
type InsightsGenerator interface {
	Generate(ctx *domain.PlatformContext, opts QueryOptions) domain.Insights
}

// Logger defines the contract for logging operations.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
