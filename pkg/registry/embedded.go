package registry

import "sync"

// EmbeddedRegistry implements Registry with the property skeletons
// compiled from the platform's nine resource kinds.
type EmbeddedRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*ResourceSchema
}

// NewEmbeddedRegistry returns a registry pre-loaded with every known kind.
func NewEmbeddedRegistry() *EmbeddedRegistry {
	r := &EmbeddedRegistry{schemas: make(map[string]*ResourceSchema)}
	for _, s := range builtinSchemas() {
		r.schemas[s.Kind] = s
	}
	return r
}

// GetSchema returns the registered schema for kind, if any.
func (r *EmbeddedRegistry) GetSchema(kind string) (*ResourceSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// ListKinds returns every kind this registry knows about.
func (r *EmbeddedRegistry) ListKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	return kinds
}

func builtinSchemas() []*ResourceSchema {
	return []*ResourceSchema{
		{
			APIVersion:    "github.platform.kubecore.io/v1alpha1",
			Kind:          "XGitHubProvider",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"organization":      {Type: "string", Description: "GitHub organization login"},
				"credentialsRef":    {Type: "object", Description: "Secret reference holding the provider token"},
				"defaultVisibility": {Type: "string", Description: "Default repository visibility for owned projects"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":         {Type: "boolean"},
				"rateLimitUsed": {Type: "integer"},
			},
			PriorityFields: []string{"organization", "defaultVisibility", "credentialsRef"},
		},
		{
			APIVersion:    "github.platform.kubecore.io/v1alpha1",
			Kind:          "XGitHubProject",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"repositoryName":    {Type: "string"},
				"githubProviderRef": {Type: "object", Description: "Owning XGitHubProvider"},
				"teams":             {Type: "array", Items: itemsOf(FieldSchema{Type: "string"})},
				"gitopsPath":        {Type: "string"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":         {Type: "boolean"},
				"repoURL":       {Type: "string"},
				"defaultBranch": {Type: "string"},
			},
			PriorityFields: []string{"repositoryName", "githubProviderRef", "gitopsPath"},
		},
		{
			APIVersion:    "network.platform.kubecore.io/v1alpha1",
			Kind:          "XKubeNet",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"cidrBlock": {Type: "string"},
				"region":    {Type: "string"},
				"dnsZone":   {Type: "string"},
				"subnets":   {Type: "array", Items: itemsOf(FieldSchema{Type: "object"})},
			},
			StatusFields: map[string]FieldSchema{
				"ready": {Type: "boolean"},
				"vpcID": {Type: "string"},
			},
			PriorityFields: []string{"cidrBlock", "region", "dnsZone"},
		},
		{
			APIVersion:    "platform.kubecore.io/v1alpha1",
			Kind:          "XKubeCluster",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"githubProjectRef": {Type: "object", Description: "Owning XGitHubProject, 1:1"},
				"kubeNetRef":       {Type: "object", Description: "Shared XKubeNet this cluster runs in"},
				"version":          {Type: "string"},
				"nodePools":        {Type: "array", Items: itemsOf(FieldSchema{Type: "object"})},
			},
			StatusFields: map[string]FieldSchema{
				"ready":       {Type: "boolean"},
				"endpoint":    {Type: "string"},
				"kubeVersion": {Type: "string"},
			},
			PriorityFields: []string{"githubProjectRef", "kubeNetRef", "version"},
		},
		{
			APIVersion:    "platform.kubecore.io/v1alpha1",
			Kind:          "XKubeSystem",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"kubeClusterRef": {Type: "object", Description: "Cluster this toolset runs on"},
				"components":     {Type: "array", Items: itemsOf(FieldSchema{Type: "string"}), Description: "e.g. argocd, crossplane"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":             {Type: "boolean"},
				"componentsHealthy": {Type: "integer"},
			},
			PriorityFields: []string{"kubeClusterRef", "components"},
		},
		{
			APIVersion:    "platform.kubecore.io/v1alpha1",
			Kind:          "XKubEnv",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"kubeClusterRef":  {Type: "object", Description: "Cluster this environment runs on"},
				"environmentName": {Type: "string", Description: "e.g. dev, staging, prod"},
				"qualityGates":    {Type: "array", Items: itemsOf(FieldSchema{Type: "object"}), Description: "Applicable XQualityGate references"},
				"nodeGroup":       {Type: "object"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":     {Type: "boolean"},
				"namespace": {Type: "string"},
			},
			PriorityFields: []string{"environmentName", "kubeClusterRef", "qualityGates"},
		},
		{
			APIVersion:    "ci.platform.kubecore.io/v1alpha1",
			Kind:          "XQualityGate",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"checks":   {Type: "array", Items: itemsOf(FieldSchema{Type: "object"}), Description: "Validation workflows this gate runs"},
				"blocking": {Type: "boolean"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":       {Type: "boolean"},
				"lastRunPass": {Type: "boolean"},
			},
			PriorityFields: []string{"checks", "blocking"},
		},
		{
			APIVersion:    "github.platform.kubecore.io/v1alpha1",
			Kind:          "XGitHubApp",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"githubProjectRef": {Type: "object", Description: "Owning project, 1:1 with the App"},
				"buildPipeline":    {Type: "string"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":       {Type: "boolean"},
				"lastBuildID": {Type: "string"},
			},
			PriorityFields: []string{"githubProjectRef", "buildPipeline"},
		},
		{
			APIVersion:    "app.kubecore.io/v1alpha1",
			Kind:          "XApp",
			SchemaVersion: "v1alpha1",
			SpecFields: map[string]FieldSchema{
				"githubProjectRef": {Type: "object"},
				"environments":     {Type: "array", Items: itemsOf(FieldSchema{Type: "object"}), Description: "XKubEnv references this app deploys to"},
				"replicas":         {Type: "integer"},
				"image":            {Type: "string"},
			},
			StatusFields: map[string]FieldSchema{
				"ready":           {Type: "boolean"},
				"deployedVersion": {Type: "string"},
			},
			PriorityFields: []string{"image", "replicas", "environments", "githubProjectRef"},
		},
	}
}
