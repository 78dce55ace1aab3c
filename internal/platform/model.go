// Package platform holds the compile-time model of the KubeCore platform
// graph: which kinds exist, how they reference each other, and the
// reference-field tables the discovery engines walk. It performs no I/O.
package platform

// AccessibleKinds maps a requestor kind to the platform kinds that may
// legitimately appear in its response.
var AccessibleKinds = map[string][]string{
	"XApp": {
		"XKubEnv",
		"XQualityGate",
		"XGitHubProject",
		"XGitHubApp",
		"XKubeCluster",
		"XKubeNet",
		"XKubeSystem",
	},
	"XKubeSystem":    {"XKubeCluster", "XKubEnv", "XGitHubProject", "XKubeNet", "XGitHubProvider"},
	"XKubEnv":        {"XKubeCluster", "XQualityGate", "XGitHubProject", "XKubeNet"},
	"XKubeCluster":   {"XGitHubProject", "XKubeNet", "XGitHubProvider"},
	"XGitHubProject": {"XGitHubProvider"},
	"XGitHubApp":     {"XGitHubProject", "XGitHubProvider"},
	"XQualityGate":   {},
	"XKubeNet":       {},
	"XGitHubProvider": {},
}

// Relation enumerates the named edge kinds of OutboundEdges.
type Relation string

const (
	RelationOwns       Relation = "owns"
	RelationBelongsTo  Relation = "belongsTo"
	RelationUses       Relation = "uses"
	RelationSupports   Relation = "supports"
	RelationRunsOn     Relation = "runsOn"
	RelationHosts      Relation = "hosts"
	RelationAppliesTo  Relation = "appliesTo"
	RelationSources    Relation = "sources"
	RelationSourcedBy  Relation = "sourcedBy"
	RelationDeploysTo  Relation = "deploysTo"
)

// OutboundEdges maps a kind to its declared relation -> target-kinds table.
var OutboundEdges = map[string]map[Relation][]string{
	"XGitHubProvider": {RelationOwns: {"XGitHubProject"}},
	"XGitHubProject": {
		RelationBelongsTo: {"XGitHubProvider"},
		RelationOwns:      {"XKubeCluster", "XGitHubApp"},
	},
	"XKubeNet": {RelationSupports: {"XKubeCluster"}},
	"XKubeCluster": {
		RelationBelongsTo: {"XGitHubProject"},
		RelationUses:      {"XKubeNet"},
		RelationHosts:     {"XKubeSystem", "XKubEnv"},
	},
	"XKubeSystem": {RelationRunsOn: {"XKubeCluster"}},
	"XKubEnv": {
		RelationRunsOn: {"XKubeCluster"},
		RelationUses:   {"XQualityGate"},
	},
	"XQualityGate": {RelationAppliesTo: {"XKubEnv", "XApp"}},
	"XGitHubApp": {
		RelationBelongsTo: {"XGitHubProject"},
		RelationSources:   {"XApp"},
	},
	"XApp": {
		RelationBelongsTo: {"XGitHubProject"},
		RelationSourcedBy: {"XGitHubApp"},
		RelationDeploysTo: {"XKubEnv"},
	},
}

// cardinalityKey is the (from, to) pair key for RelationshipCardinality.
type cardinalityKey struct{ From, To string }

// RelationshipCardinality reports the declared cardinality of an edge.
var RelationshipCardinality = map[cardinalityKey]string{
	{"XGitHubProvider", "XGitHubProject"}: "1:N",
	{"XGitHubProject", "XKubeCluster"}:    "1:1",
	{"XGitHubProject", "XGitHubApp"}:      "1:N",
	{"XKubeNet", "XKubeCluster"}:          "1:N",
	{"XKubeCluster", "XKubeSystem"}:       "1:1",
	{"XKubeCluster", "XKubEnv"}:           "1:N",
	{"XGitHubApp", "XApp"}:                "1:1",
	{"XApp", "XKubEnv"}:                   "N:N",
	{"XQualityGate", "XKubEnv"}:           "N:N",
	{"XQualityGate", "XApp"}:              "N:N",
}

// Cardinality looks up the cardinality of from->to, defaulting to "unknown".
func Cardinality(from, to string) string {
	if c, ok := RelationshipCardinality[cardinalityKey{from, to}]; ok {
		return c
	}
	return "unknown"
}

// ResourceDescriptions carries one documentation-grade line per kind.
var ResourceDescriptions = map[string]string{
	"XGitHubProvider": "Contains credentials and semantics for GitHub organization",
	"XGitHubProject":  "Software product with GitOps repository, teams, and permissions",
	"XKubeNet":        "Network infrastructure (VPC, DNS) shared across multiple projects",
	"XKubeCluster":    "Kubernetes cluster (1:1 with GitHubProject, references KubeNet)",
	"XKubeSystem":     "Platform tools runtime (ArgoCD, Crossplane, etc.) on KubeCluster",
	"XKubEnv":         "Deployment environment with app node groups on KubeCluster",
	"XQualityGate":    "Reusable validation workflows applicable to environments/apps",
	"XGitHubApp":      "Source control for software component (1:1 with App)",
	"XApp":            "Kubernetes application deployment semantic (references multiple KubEnvs)",
}

// KindAPIVersions maps each platform kind to the apiVersion it is served
// under, so callers that only know a kind (e.g. the requestor on an
// incoming request) can build a complete ResourceRef.
var KindAPIVersions = map[string]string{
	"XGitHubProvider": "github.platform.kubecore.io/v1alpha1",
	"XGitHubProject":  "github.platform.kubecore.io/v1alpha1",
	"XKubeNet":        "network.platform.kubecore.io/v1alpha1",
	"XKubeCluster":    "platform.kubecore.io/v1alpha1",
	"XKubeSystem":     "platform.kubecore.io/v1alpha1",
	"XKubEnv":         "platform.kubecore.io/v1alpha1",
	"XQualityGate":    "ci.platform.kubecore.io/v1alpha1",
	"XGitHubApp":      "github.platform.kubecore.io/v1alpha1",
	"XApp":            "app.kubecore.io/v1alpha1",
}

// APIVersionForKind returns the declared apiVersion for kind, or "" if the
// kind is unknown to the model.
func APIVersionForKind(kind string) string {
	return KindAPIVersions[kind]
}

// DescribeKind returns the documentation line for a kind, or a generic
// fallback when the kind is unknown to the model.
func DescribeKind(kind string) string {
	if d, ok := ResourceDescriptions[kind]; ok {
		return d
	}
	return "No description available"
}

// ReferenceFields maps a kind to the field names under .spec that may
// carry a reference, used by the fetcher's edge extractor.
var ReferenceFields = map[string][]string{
	"XGitHubProject": {"githubProviderRef"},
	"XKubeCluster":   {"githubProjectRef", "kubeNetRef"},
	"XKubeSystem":    {"kubeClusterRef"},
	"XKubEnv":        {"kubeClusterRef", "qualityGates"},
	"XGitHubApp":     {"githubProjectRef"},
	"XApp":           {"githubProjectRef", "environments", "kubenvRef"},
}

// ReverseSearchEntry is one (searcherKind, apiVersion, refField) candidate
// consulted by reverse discovery for a given target kind.
type ReverseSearchEntry struct {
	SearcherKind string
	APIVersion   string
	RefField     string
}

// ReverseSearch maps a target kind to the searcher kinds that might hold a
// reference to it (inverted: which searchers reference *this* target kind).
var ReverseSearch = map[string][]ReverseSearchEntry{
	"XGitHubProject": {
		{SearcherKind: "XKubeCluster", APIVersion: "platform.kubecore.io/v1alpha1", RefField: "githubProjectRef"},
		{SearcherKind: "XGitHubApp", APIVersion: "github.platform.kubecore.io/v1alpha1", RefField: "githubProjectRef"},
	},
	"XKubeCluster": {
		{SearcherKind: "XKubEnv", APIVersion: "platform.kubecore.io/v1alpha1", RefField: "kubeClusterRef"},
		{SearcherKind: "XKubeSystem", APIVersion: "platform.kubecore.io/v1alpha1", RefField: "kubeClusterRef"},
	},
	"XKubeNet": {
		{SearcherKind: "XKubeCluster", APIVersion: "platform.kubecore.io/v1alpha1", RefField: "kubeNetRef"},
	},
	"XQualityGate": {
		{SearcherKind: "XKubEnv", APIVersion: "platform.kubecore.io/v1alpha1", RefField: "qualityGates"},
	},
	"XKubEnv": {
		{SearcherKind: "XApp", APIVersion: "app.kubecore.io/v1alpha1", RefField: "environments"},
	},
}

// TransitiveChainStep is one target reachable from a source kind through a
// declared chain of reference fields.
type TransitiveChainStep struct {
	TargetKind string
	RefChain   []string
}

// TransitiveChains declares the multi-hop chains evaluated by the
// transitive engine.
var TransitiveChains = map[string][]TransitiveChainStep{
	"XGitHubProject": {
		{TargetKind: "XKubeCluster", RefChain: []string{"githubProjectRef"}},
		{TargetKind: "XGitHubApp", RefChain: []string{"githubProjectRef"}},
		{TargetKind: "XKubEnv", RefChain: []string{"githubProjectRef", "kubeClusterRef"}},
		{TargetKind: "XKubeSystem", RefChain: []string{"githubProjectRef", "kubeClusterRef"}},
		{TargetKind: "XApp", RefChain: []string{"githubProjectRef", "kubeClusterRef", "kubenvRef"}},
	},
	"XKubeCluster": {
		{TargetKind: "XKubEnv", RefChain: []string{"kubeClusterRef"}},
		{TargetKind: "XKubeSystem", RefChain: []string{"kubeClusterRef"}},
		{TargetKind: "XApp", RefChain: []string{"kubeClusterRef", "kubenvRef"}},
	},
	"XKubEnv": {
		{TargetKind: "XApp", RefChain: []string{"kubenvRef"}},
		{TargetKind: "XQualityGate", RefChain: []string{"qualityGates"}},
	},
	"XApp": {
		{TargetKind: "XKubEnv", RefChain: []string{"kubenvRef"}},
		{TargetKind: "XGitHubApp", RefChain: []string{"githubProjectRef"}},
	},
}

// RefFieldSearchConfig is one (kind, apiVersion) pair known to carry a
// given reference field, the static table the transitive engine's
// back-reference search consults instead of scanning every kind.
type RefFieldSearchConfig struct {
	Kind       string
	APIVersion string
}

// refFieldSearchConfigs lists which kinds to List when looking for
// resources that reference a target via a given reference field.
var refFieldSearchConfigs = map[string][]RefFieldSearchConfig{
	"githubProjectRef": {
		{Kind: "XKubeCluster", APIVersion: "platform.kubecore.io/v1alpha1"},
		{Kind: "XGitHubApp", APIVersion: "github.platform.kubecore.io/v1alpha1"},
		{Kind: "XApp", APIVersion: "app.kubecore.io/v1alpha1"},
		{Kind: "XQualityGate", APIVersion: "ci.platform.kubecore.io/v1alpha1"},
	},
	"kubeClusterRef": {
		{Kind: "XKubEnv", APIVersion: "platform.kubecore.io/v1alpha1"},
		{Kind: "XKubeSystem", APIVersion: "platform.kubecore.io/v1alpha1"},
	},
	"kubenvRef": {
		{Kind: "XApp", APIVersion: "app.kubecore.io/v1alpha1"},
	},
	"qualityGates": {
		{Kind: "XKubEnv", APIVersion: "platform.kubecore.io/v1alpha1"},
		{Kind: "XApp", APIVersion: "app.kubecore.io/v1alpha1"},
	},
}

// SearchConfigsForRefField returns the candidate (kind, apiVersion) pairs
// for a reference field name, or nil if the field is unknown to the model.
func SearchConfigsForRefField(refField string) []RefFieldSearchConfig {
	return refFieldSearchConfigs[refField]
}

// kindToShortName converts a typed kind to the external short form used as
// a SchemaBlock key (e.g. XKubeCluster -> kubeCluster).
var kindToShortName = map[string]string{
	"XGitHubProvider": "githubProvider",
	"XGitHubProject":  "githubProject",
	"XKubeNet":        "kubeNet",
	"XKubeCluster":    "kubeCluster",
	"XKubeSystem":     "kubeSystem",
	"XKubEnv":         "kubEnv",
	"XQualityGate":    "qualityGate",
	"XGitHubApp":      "githubApp",
	"XApp":            "app",
}

var shortNameToKind = func() map[string]string {
	m := make(map[string]string, len(kindToShortName))
	for k, v := range kindToShortName {
		m[v] = k
	}
	return m
}()

// ShortName converts a typed kind to its external short form.
func ShortName(kind string) string {
	if s, ok := kindToShortName[kind]; ok {
		return s
	}
	return kind
}

// KindForShortName resolves a short name (optionally already a typed kind,
// e.g. "XApp") back to its typed kind. Returns ok=false when unknown.
func KindForShortName(name string) (string, bool) {
	if k, ok := shortNameToKind[name]; ok {
		return k, true
	}
	if _, ok := AccessibleKinds[name]; ok {
		return name, true
	}
	return "", false
}

// ExpectedRelationships is the cross-cutting "you'd normally connect these"
// table consulted by the Insights Generator.
var ExpectedRelationships = map[string][]string{
	"XApp":           {"kubEnv", "githubProject"},
	"XKubeSystem":    {"kubeCluster", "kubEnv"},
	"XKubEnv":        {"kubeCluster", "qualityGate"},
	"XKubeCluster":   {"kubeNet", "githubProject"},
	"XGitHubProject": {"githubProvider"},
}

// HubKinds lists kinds for which reverse discovery is always attempted
// because they sit at fan-in points of the graph (many kinds reference
// them, so walking forward from the requestor alone would miss them).
var HubKinds = map[string]bool{
	"XGitHubProject": true,
	"XKubeCluster":   true,
	"XKubeNet":       true,
	"XQualityGate":   true,
}

// KindHint is the (apiVersion, kind) a reference field points at, and
// whether the field holds a list of references.
type KindHint struct {
	APIVersion string
	Kind       string
	IsArray    bool
}

// referenceSuffixKindHints maps well-known reference field names to the
// KindHint they point at, used only when the reference object itself omits
// apiVersion/kind.
var referenceSuffixKindHints = map[string]KindHint{
	"githubProjectRef":  {APIVersion: "github.platform.kubecore.io/v1alpha1", Kind: "XGitHubProject"},
	"githubProviderRef": {APIVersion: "github.platform.kubecore.io/v1alpha1", Kind: "XGitHubProvider"},
	"kubeClusterRef":    {APIVersion: "platform.kubecore.io/v1alpha1", Kind: "XKubeCluster"},
	"kubeNetRef":        {APIVersion: "network.platform.kubecore.io/v1alpha1", Kind: "XKubeNet"},
	"kubenvRef":         {APIVersion: "platform.kubecore.io/v1alpha1", Kind: "XKubEnv"},
	"environments":      {APIVersion: "platform.kubecore.io/v1alpha1", Kind: "XKubEnv", IsArray: true},
	"providerConfigRef": {APIVersion: "pkg.crossplane.io/v1", Kind: "ProviderConfig"},
	"secretRef":         {APIVersion: "v1", Kind: "Secret"},
	"configMapRef":      {APIVersion: "v1", Kind: "ConfigMap"},
	"serviceAccountRef": {APIVersion: "v1", Kind: "ServiceAccount"},
	"qualityGateRef":    {APIVersion: "ci.platform.kubecore.io/v1alpha1", Kind: "XQualityGate"},
	"qualityGateRefs":   {APIVersion: "ci.platform.kubecore.io/v1alpha1", Kind: "XQualityGate", IsArray: true},
	"qualityGates":      {APIVersion: "ci.platform.kubecore.io/v1alpha1", Kind: "XQualityGate", IsArray: true},
}

// InferReferenceTarget infers (apiVersion, kind) for a reference field
// whose object lacks explicit apiVersion/kind, falling back to (v1,
// ConfigMap) for unrecognized suffixes. Conservative by design: callers
// must prefer explicit apiVersion/kind when present and only fall back to
// this heuristic otherwise.
func InferReferenceTarget(fieldName string) KindHint {
	if hint, ok := referenceSuffixKindHints[fieldName]; ok {
		return hint
	}
	return KindHint{APIVersion: "v1", Kind: "ConfigMap"}
}
