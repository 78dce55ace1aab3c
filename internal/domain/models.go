// Package domain holds the core value types shared by every discovery
// component: resource references, resolved bodies, summaries, and the
// platform context assembled for a single query.
package domain

import (
	"fmt"
	"time"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ResourceRef identifies a Kubernetes resource by coordinates rather than
// by a live handle. Namespace is empty for cluster-scoped kinds.
type ResourceRef struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Namespace  string `json:"namespace,omitempty"`
}

// String renders the human form kind[/namespace]/name.
func (r ResourceRef) String() string {
	if r.Namespace != "" {
		return fmt.Sprintf("%s/%s/%s", r.Kind, r.Namespace, r.Name)
	}
	return fmt.Sprintf("%s/%s", r.Kind, r.Name)
}

// Key returns the comparable value used for set membership and dedup.
// ResourceRef is already comparable (all fields are strings) so Key exists
// only to make call sites self-documenting.
func (r ResourceRef) Key() ResourceRef { return r }

// DedupKey is the coarser identity used by SchemaBlock/TransitiveHit
// deduplication, which ignores apiVersion.
type DedupKey struct {
	Kind      string
	Name      string
	Namespace string
}

// Dedup returns the (kind, name, namespace) identity of this reference.
func (r ResourceRef) Dedup() DedupKey {
	return DedupKey{Kind: r.Kind, Name: r.Name, Namespace: r.Namespace}
}

// ResolvedResource is a fetched body plus the outbound edges extracted
// from it. It is immutable once constructed by the forward resolver.
type ResolvedResource struct {
	Ref            ResourceRef
	Body           *unstructured.Unstructured
	Edges          []ResourceRef
	ResolvedAt     time.Time
	Cached         bool
}

// Age reports how long ago this resource was resolved.
func (r *ResolvedResource) Age() time.Duration { return time.Since(r.ResolvedAt) }

// OwnerRef mirrors the subset of metav1.OwnerReference the summarizer emits.
type OwnerRef struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	UID        string `json:"uid"`
}

// ResourceSummary is the schema-projected view of a ResolvedResource handed
// to the response builder.
type ResourceSummary struct {
	Ref             ResourceRef            `json:"-"`
	Spec            map[string]interface{} `json:"spec,omitempty"`
	Status          map[string]interface{} `json:"status,omitempty"`
	Name            string                 `json:"name"`
	Namespace       string                 `json:"namespace,omitempty"`
	Labels          map[string]string      `json:"labels,omitempty"`
	Annotations     map[string]string      `json:"annotations,omitempty"`
	OwnerReferences []OwnerRef             `json:"ownerReferences,omitempty"`
	Edges           []ResourceRef          `json:"-"`
	SchemaVersion   string                 `json:"schemaVersion,omitempty"`
	ExtractedAt     time.Time              `json:"-"`

	// DiscoveryHops/RelationshipChain are populated only for transitively
	// discovered instances; see TransitiveHit.
	DiscoveryHops     int    `json:"discoveryHops,omitempty"`
	RelationshipChain string `json:"relationshipChain,omitempty"`
}

// Age reports how long ago this summary was produced.
func (s *ResourceSummary) Age() time.Duration { return time.Since(s.ExtractedAt) }

// TransitiveHit is a resource discovered through a multi-hop chain walk.
type TransitiveHit struct {
	Ref           ResourceRef
	Hops          int
	Method        string // "transitive-<hops>"
	Path          []ResourceRef
	Intermediates []ResourceRef
	Summary       *ResourceSummary
}

// RelationshipChain renders the human "A(x) → B(y) → C(z)" path string
// used in ResourceSummary.RelationshipChain.
func (h *TransitiveHit) RelationshipChain() string {
	chain := ""
	for i, ref := range h.Path {
		if i > 0 {
			chain += " → "
		}
		chain += fmt.Sprintf("%s(%s)", ref.Kind, ref.Name)
	}
	return chain
}

// DiscoveryMethod enumerates how an instance ended up in a SchemaBlock.
type DiscoveryMethod string

const (
	DiscoveryDirect     DiscoveryMethod = "direct"
	DiscoveryReverse    DiscoveryMethod = "reverse"
	DiscoveryTransitive DiscoveryMethod = "transitive"
	DiscoveryHybrid     DiscoveryMethod = "hybrid"
)

// SchemaBlockMetadata describes one requested-schema section of the response.
type SchemaBlockMetadata struct {
	APIVersion       string          `json:"apiVersion"`
	Kind             string          `json:"kind"`
	Accessible       bool            `json:"accessible"`
	RelationshipPath []string        `json:"relationshipPath,omitempty"`
	DiscoveryMethod  DiscoveryMethod `json:"discoveryMethod"`
	// FullSchema is populated only when the query opted into
	// IncludeFullSchemas; it carries the registered OpenAPI-shaped schema
	// for the block's kind.
	FullSchema *apiextensionsv1.JSONSchemaProps `json:"fullSchema,omitempty"`
}

// SchemaInstance is one entry under a SchemaBlock's Instances list.
type SchemaInstance struct {
	Name      string           `json:"name"`
	Namespace string           `json:"namespace,omitempty"`
	Summary   *ResourceSummary `json:"summary"`
}

// SchemaBlock is the per-requested-name section of a PlatformContext.
type SchemaBlock struct {
	Metadata  SchemaBlockMetadata `json:"metadata"`
	Instances []SchemaInstance    `json:"instances"`
}

// DirectRelationship is one entry of PlatformContext.Relationships.Direct.
type DirectRelationship struct {
	Type        string `json:"type"`
	Cardinality string `json:"cardinality"`
	Description string `json:"description,omitempty"`
}

// Insight describes one recommendation entry.
type Insight struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	Impact     string `json:"impact"` // low | medium | high
	Rationale  string `json:"rationale"`
}

// ValidationRule describes one emitted validation rule.
type ValidationRule struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // warning | error
}

// SuggestedReference describes one suggested-reference entry.
type SuggestedReference struct {
	Type        string `json:"type"`
	Purpose     string `json:"purpose"`
	Description string `json:"description"`
}

// Insights is the bundle produced by the Insights Generator.
type Insights struct {
	Recommendations     []Insight            `json:"recommendations"`
	ValidationRules     []ValidationRule     `json:"validationRules"`
	SuggestedReferences []SuggestedReference `json:"suggestedReferences"`
}

// Requestor identifies the composite resource that issued the query.
type Requestor struct {
	Kind      string `json:"type"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// Relationships wraps the direct-relationship list.
type Relationships struct {
	Direct []DirectRelationship `json:"direct"`
}

// PlatformContext is the response core assembled by the Query Processor.
type PlatformContext struct {
	Requestor        Requestor              `json:"requestor"`
	AvailableSchemas map[string]*SchemaBlock `json:"availableSchemas"`
	Relationships    Relationships          `json:"relationships"`
	Insights         Insights               `json:"insights"`
}

// NewPlatformContext returns an empty, ready-to-fill context.
func NewPlatformContext(requestor Requestor) *PlatformContext {
	return &PlatformContext{
		Requestor:        requestor,
		AvailableSchemas: make(map[string]*SchemaBlock),
		Relationships:    Relationships{Direct: []DirectRelationship{}},
		Insights: Insights{
			Recommendations:     []Insight{},
			ValidationRules:     []ValidationRule{},
			SuggestedReferences: []SuggestedReference{},
		},
	}
}

// CacheStats reports cache occupancy and the documented
// hits/(hits+entries) hit-rate approximation.
type CacheStats struct {
	Entries         int     `json:"entries"`
	TotalHits       int64   `json:"totalHits"`
	HitRate         float64 `json:"hitRate"`
	OldestAgeSeconds float64 `json:"oldestEntryAge"`
	MaxEntries      int     `json:"maxEntries"`
	TTLSeconds      float64 `json:"ttlSeconds"`
}

// BreakerSnapshot is a point-in-time view of one kind's circuit breaker.
type BreakerSnapshot struct {
	Kind            string `json:"kind"`
	State           string `json:"state"`
	FailureCount    int64  `json:"failureCount"`
	LastFailureUnix int64  `json:"lastFailureUnix,omitempty"`
}

// TransitiveEngineHealth is a point-in-time snapshot of the transitive
// engine's call statistics and derived health verdict.
type TransitiveEngineHealth struct {
	TotalAPICalls      int64                      `json:"totalApiCalls"`
	FailedAPICalls     int64                      `json:"failedApiCalls"`
	SuccessRate        float64                    `json:"successRate"`
	DiscoveredResources int64                     `json:"discoveredResources"`
	CacheEntries       int                        `json:"cacheEntries"`
	EstimatedMemoryMB  float64                    `json:"estimatedMemoryMb"`
	Breakers           map[string]BreakerSnapshot `json:"circuitBreakers"`
	Healthy            bool                       `json:"healthy"`
}
