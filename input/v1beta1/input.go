// Package v1beta1 contains the input type for the composition-time
// context resolver function.
// +kubebuilder:object:generate=true
// +groupName=registry.fn.crossplane.io
// +versionName=v1beta1
package v1beta1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Input defines the input schema for the composition-time context
// resolver: which schemas a composite resource wants surfaced, and the
// discovery knobs that govern how far the engine looks for them.
// +kubebuilder:object:root=true
// +kubebuilder:storageversion
// +kubebuilder:resource:categories=crossplane
type Input struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// Query describes what the requestor wants to discover.
	// +kubebuilder:validation:Required
	Query Query `json:"query"`

	// Context carries the discovery knobs for this invocation.
	Context *DiscoveryContext `json:"context,omitempty"`
}

// Query describes the requestor's resource type and which related schemas
// it wants returned.
type Query struct {
	// ResourceType is the kind of the requesting composite resource, e.g.
	// "XApp".
	// +kubebuilder:validation:Required
	ResourceType string `json:"resourceType"`

	// RequestedSchemas lists the short schema names to resolve (e.g.
	// "kubEnv", "githubProject"). Omitted or empty means "every schema
	// accessible to ResourceType".
	RequestedSchemas []string `json:"requestedSchemas,omitempty"`

	// IncludeFullSchemas attaches each resolved kind's registered
	// OpenAPI-shaped schema to its schema block's metadata. Instance
	// summaries are the same with or without it.
	// +kubebuilder:default=true
	IncludeFullSchemas bool `json:"includeFullSchemas,omitempty"`

	// IncludeSecurityAnalysis opts into the supplemental security-insight
	// rules of the Insights Generator.
	// +kubebuilder:default=false
	IncludeSecurityAnalysis bool `json:"includeSecurityAnalysis,omitempty"`

	// IncludePerformanceAnalysis opts into the supplemental
	// performance-insight rules of the Insights Generator.
	// +kubebuilder:default=false
	IncludePerformanceAnalysis bool `json:"includePerformanceAnalysis,omitempty"`
}

// DiscoveryContext carries per-invocation discovery knobs, each falling
// back to the function's environment-configured defaults when unset.
type DiscoveryContext struct {
	// EnableTransitiveDiscovery turns on multi-hop chain traversal (M4).
	// +kubebuilder:default=true
	EnableTransitiveDiscovery bool `json:"enableTransitiveDiscovery,omitempty"`

	// TransitiveMaxDepth bounds the number of hops the transitive engine
	// will walk for this query; 0 turns transitive discovery off.
	// +kubebuilder:validation:Minimum=0
	TransitiveMaxDepth *int `json:"transitiveMaxDepth,omitempty"`

	// References carries resource references already known to the caller,
	// keyed by "<shortName>Refs" (e.g. "kubEnvRefs"), used to seed forward
	// resolution without a discovery round-trip.
	References map[string][]ResourceReference `json:"references,omitempty"`
}

// ResourceReference identifies a resource the caller already knows about.
// APIVersion and Kind are optional: when omitted they are filled in from
// the reference's map key via the platform model's short-name lookup.
type ResourceReference struct {
	APIVersion string `json:"apiVersion,omitempty"`
	Kind       string `json:"kind,omitempty"`
	// +kubebuilder:validation:Required
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}
